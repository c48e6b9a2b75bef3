package policyconsole

import "fmt"

// Category is a main category and its sub categories.
type Category struct {
	Name string
	Subs []string
}

// DefaultCatalog is the product catalog the console offers.
var DefaultCatalog = []Category{
	{Name: "Life", Subs: []string{"Term Life", "Whole Life", "Endowment"}},
	{Name: "Health", Subs: []string{"Individual", "Family Floater"}},
	{Name: "Motor", Subs: []string{"Two Wheeler", "Four Wheeler"}},
	{Name: "Property", Subs: []string{"Home", "Commercial"}},
}

// Statuses lists policy states, without the "All" filter entry.
var Statuses = []string{"Pending", "Approved", "Rejected"}

const (
	MainPlaceholder = "-- Select Main Category --"
	SubAll          = "-- All --"
	SubPlaceholder  = "-- Select Sub Category --"
	StatusAll       = "All"
)

// Policy is one row of the authorize grid.
type Policy struct {
	ID           int
	Name         string
	MainCategory string
	SubCategory  string
	Status       string
	Premium      string
	SumAssured   string
	Tenure       string
}

// SeedPolicies returns n policies spread over every category and status.
func SeedPolicies(catalog []Category, n int) []Policy {
	out := make([]Policy, 0, n)
	for i := 0; i < n; i++ {
		cat := catalog[i%len(catalog)]
		sub := cat.Subs[(i/len(catalog))%len(cat.Subs)]
		out = append(out, Policy{
			ID:           1001 + i,
			Name:         fmt.Sprintf("%s Plan %d", sub, i+1),
			MainCategory: cat.Name,
			SubCategory:  sub,
			Status:       Statuses[i%len(Statuses)],
			Premium:      fmt.Sprintf("%d", 2500+i*250),
			SumAssured:   fmt.Sprintf("%d", 500000+i*10000),
			Tenure:       fmt.Sprintf("%d", 5+i%20),
		})
	}
	return out
}

func subsOf(catalog []Category, main string) []string {
	for _, c := range catalog {
		if c.Name == main {
			return c.Subs
		}
	}
	return nil
}
