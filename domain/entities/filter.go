package entities

// FilterName identifies one of the grid filters. The declaration order is the
// order in which filters settle: the sub-category options depend on the main
// category.
type FilterName int

const (
	FilterMainCategory FilterName = iota
	FilterSubCategory
	FilterStatus
)

func (f FilterName) String() string {
	switch f {
	case FilterMainCategory:
		return "main-category"
	case FilterSubCategory:
		return "sub-category"
	case FilterStatus:
		return "status"
	default:
		return "unknown"
	}
}

// FilterSpec binds a filter to its <select> and the labels accepted as its
// default. The console is not consistent about default labels across
// environments, so several may be listed.
type FilterSpec struct {
	Name          FilterName
	Selector      Selector
	DefaultLabels []string
}

// FilterState is the selection read back from the filter dropdowns.
type FilterState struct {
	MainCategory string `json:"main_category"`
	SubCategory  string `json:"sub_category"`
	Status       string `json:"status"`
}

// Get returns the selected label of one filter.
func (s FilterState) Get(name FilterName) string {
	switch name {
	case FilterMainCategory:
		return s.MainCategory
	case FilterSubCategory:
		return s.SubCategory
	case FilterStatus:
		return s.Status
	}
	return ""
}

// Set stores the selected label of one filter.
func (s *FilterState) Set(name FilterName, label string) {
	switch name {
	case FilterMainCategory:
		s.MainCategory = label
	case FilterSubCategory:
		s.SubCategory = label
	case FilterStatus:
		s.Status = label
	}
}

// Option is one entry of a <select>.
type Option struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}
