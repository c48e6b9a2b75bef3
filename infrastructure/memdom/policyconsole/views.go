package policyconsole

import (
	"fmt"
	"html/template"
	"net/url"
)

type menuView struct {
	MenuOpen  bool
	HideLinks bool
}

type loginView struct {
	Error string
}

type dashboardView struct {
	Menu menuView
	User string
}

type optionView struct {
	Label    string
	Value    string
	Selected bool
}

type selectView struct {
	ID       string
	PostBack bool
	Options  []optionView
}

type pageView struct {
	N       int
	Current bool
	Href    template.URL
}

type authorizeView struct {
	Menu          menuView
	Main          selectView
	Sub           selectView
	Status        selectView
	Rows          []Policy
	Pages         []pageView
	ObstructPager bool
}

type formView struct {
	PolicyName string
	Premium    string
	SumAssured string
	Tenure     string
	Error      string
}

// reviewView mirrors the draft into the hidden fields the review dialog
// reads.
type reviewView struct {
	MainCategory string
	SubCategory  string
	Name         string
	SumAssured   string
	Premium      string
	Tenure       string
}

type createView struct {
	formView
	Menu      menuView
	Main      selectView
	Sub       selectView
	MaxTenure int
	Review    bool
	Hidden    reviewView
	ReviewSrc string
	Saved     string
}

func (c *Console) menu() menuView {
	return menuView{MenuOpen: c.menuOpen, HideLinks: c.opts.HideMenuLinks}
}

func (c *Console) dashboardView() dashboardView {
	return dashboardView{Menu: c.menu(), User: c.user}
}

// buildSelect marks the option whose value is selected. With noSelection no
// option carries the selected attribute.
func buildSelect(id string, postBack bool, placeholder string, values []string, selected string, noSelection bool) selectView {
	v := selectView{ID: id, PostBack: postBack}
	v.Options = append(v.Options, optionView{Label: placeholder, Value: "", Selected: !noSelection && selected == ""})
	for _, val := range values {
		v.Options = append(v.Options, optionView{Label: val, Value: val, Selected: !noSelection && val == selected})
	}
	return v
}

func (c *Console) mainCategories() []string {
	names := make([]string, len(c.opts.Catalog))
	for i, cat := range c.opts.Catalog {
		names[i] = cat.Name
	}
	return names
}

func (c *Console) authorizeView() authorizeView {
	rows := c.matching()
	pageCount := (len(rows) + c.opts.PageSize - 1) / c.opts.PageSize
	if c.page > pageCount {
		c.page = 1
	}
	start := (c.page - 1) * c.opts.PageSize
	end := start + c.opts.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	if start > end {
		start = end
	}

	view := authorizeView{
		Menu:          c.menu(),
		Main:          buildSelect(idMain, true, MainPlaceholder, c.mainCategories(), c.shown.main, c.noSelection),
		Sub:           buildSelect(idSub, false, SubAll, subsOf(c.opts.Catalog, c.shown.main), c.shown.sub, c.noSelection),
		Status:        buildSelect(idStatus, false, StatusAll, Statuses, c.shown.status, c.noSelection),
		Rows:          rows[start:end],
		ObstructPager: c.opts.ObstructPager,
	}
	for n := 1; n <= pageCount; n++ {
		view.Pages = append(view.Pages, pageView{
			N:       n,
			Current: n == c.page,
			Href:    template.URL(fmt.Sprintf("javascript:__doPostBack('%s','Page$%d')", gridTarget, n)),
		})
	}
	return view
}

func (c *Console) createView(form formView, main, sub string) createView {
	if form.Tenure == "" {
		form.Tenure = "0"
	}
	v := createView{
		formView:  form,
		Menu:      c.menu(),
		Main:      buildSelect(idMain, true, MainPlaceholder, c.mainCategories(), main, false),
		Sub:       buildSelect(idSub, false, SubPlaceholder, subsOf(c.opts.Catalog, main), sub, false),
		MaxTenure: MaxTenure,
		Saved:     c.saved,
	}
	if d := c.review; d != nil {
		v.Review = true
		v.Hidden = reviewView{
			MainCategory: d.MainCategory,
			SubCategory:  d.SubCategory,
			Name:         d.Name,
			SumAssured:   d.SumAssured,
			Premium:      d.Premium,
			Tenure:       d.Tenure,
		}
		v.ReviewSrc = ReviewPath + "?" + url.Values{
			"policyName":   {d.Name},
			"mainCategory": {d.MainCategory},
			"subCategory":  {d.SubCategory},
			"sumAssured":   {d.SumAssured},
			"premium":      {d.Premium},
			"tenure":       {d.Tenure},
		}.Encode()
	}
	return v
}
