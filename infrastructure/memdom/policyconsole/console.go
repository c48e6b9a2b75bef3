// Package policyconsole simulates the InsurEdge admin console as a memdom
// App: login, the side menu, the authorize-policy grid with its filters and
// pager, and the create-policy form. It reproduces the console's postback
// behaviour so the synchronization layer can be exercised without a browser.
package policyconsole

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"ui_automation/infrastructure/memdom"
)

const (
	idMain   = "ContentPlaceHolder_Admin_ddlMainCategory"
	idSub    = "ContentPlaceHolder_Admin_ddlSubCategory"
	idStatus = "ContentPlaceHolder_Admin_ddlStatus"
	idSearch = "ContentPlaceHolder_Admin_btnSearch"
	idReset  = "ContentPlaceHolder_Admin_btnReset"
	idCreate = "ContentPlaceHolder_Admin_btnCreate"
	idName   = "ContentPlaceHolder_Admin_txtPolicyName"
	idPrem   = "ContentPlaceHolder_Admin_txtPremium"
	idSum    = "ContentPlaceHolder_Admin_txtSumAssured"
	idTenure = "ContentPlaceHolder_Admin_sliderTenure"

	idHMain   = "ContentPlaceHolder_Admin_hiddenMainCategory"
	idHSub    = "ContentPlaceHolder_Admin_hiddenSubCategory"
	idHName   = "ContentPlaceHolder_Admin_hiddenPolicyName"
	idHSum    = "ContentPlaceHolder_Admin_hiddenSumAssured"
	idHPrem   = "ContentPlaceHolder_Admin_hiddenPremium"
	idHTenure = "ContentPlaceHolder_Admin_hiddenTenure"

	gridTarget    = "ctl00$ContentPlaceHolder_Admin$gvPolicies"
	confirmTarget = "ContentPlaceHolder_Admin_btnConfirmInsert"

	LoginPath     = "LoginPage.aspx"
	DashboardPath = "AdminDashboard.aspx"
	AuthorizePath = "AdminAuthorizePolicy.aspx"
	CreatePath    = "AdminCreatePolicy.aspx"
	ReviewPath    = "PolicyReview.aspx"

	MaxPremium = 10000000
	MaxTenure  = 30
)

// Options tune the console's behaviour.
type Options struct {
	Username string
	Password string
	// PageSize is the number of grid rows per page.
	PageSize int
	Catalog  []Category
	Policies []Policy
	// Delay postpones every postback response.
	Delay time.Duration
	// ResetAlert is shown after the authorize screen's reset, if set.
	ResetAlert string
	// ResetLeavesNoSelection renders the filters without any selected option
	// after a reset, as some deployments do.
	ResetLeavesNoSelection bool
	// ObstructPager covers the pager links so simulated clicks fail.
	ObstructPager bool
	// HideMenuLinks removes the side menu's links.
	HideMenuLinks bool
	// LoginAlert is shown after a successful login, if set.
	LoginAlert string
	// DOMValidation reports create-form errors in the page instead of an alert.
	DOMValidation bool
}

func (o *Options) defaults() {
	if o.Username == "" {
		o.Username = "admin_user"
	}
	if o.Password == "" {
		o.Password = "testadmin"
	}
	if o.PageSize <= 0 {
		o.PageSize = 5
	}
	if len(o.Catalog) == 0 {
		o.Catalog = DefaultCatalog
	}
	if o.Policies == nil {
		o.Policies = SeedPolicies(o.Catalog, 14)
	}
}

type filters struct {
	main, sub, status string
}

// Console is the simulated application. It is driven by a single memdom
// session and is not safe for concurrent use.
type Console struct {
	opts     Options
	policies []Policy
	user     string
	menuOpen bool

	// authorize screen
	shown       filters
	applied     filters
	page        int
	noSelection bool

	// create screen: the draft under review and the last save message
	review *Policy
	saved  string
}

var _ memdom.App = (*Console)(nil)

func New(opts Options) *Console {
	opts.defaults()
	return &Console{
		opts:     opts,
		policies: append([]Policy(nil), opts.Policies...),
		page:     1,
	}
}

// Policies returns every policy, including created ones.
func (c *Console) Policies() []Policy {
	return append([]Policy(nil), c.policies...)
}

func (c *Console) Handle(ev memdom.Event) memdom.Response {
	u, err := url.Parse(ev.URL)
	if err != nil {
		return memdom.Response{HTML: c.render("login", loginView{Error: "bad request"})}
	}
	screen := path.Base(u.Path)

	if c.user == "" && !strings.EqualFold(screen, LoginPath) {
		return memdom.Response{HTML: c.render("login", loginView{}), URL: LoginPath}
	}

	if ev.Kind == memdom.EventClick && ev.Target == "policyToggle" {
		c.menuOpen = !c.menuOpen
	}

	var resp memdom.Response
	switch strings.ToLower(screen) {
	case strings.ToLower(LoginPath):
		resp = c.login(ev)
	case strings.ToLower(AuthorizePath):
		resp = c.authorize(ev)
	case strings.ToLower(CreatePath):
		resp = c.create(ev)
	default:
		resp = memdom.Response{HTML: c.render("dashboard", c.dashboardView())}
	}
	if ev.Kind != memdom.EventNavigate {
		resp.Delay = c.opts.Delay
	}
	return resp
}

func (c *Console) login(ev memdom.Event) memdom.Response {
	if ev.Kind == memdom.EventClick && ev.Target == "BtnLogin" {
		if ev.Form.Get("txtUsername") == c.opts.Username && ev.Form.Get("txtPassword") == c.opts.Password {
			c.user = c.opts.Username
			return memdom.Response{
				HTML:  c.render("dashboard", c.dashboardView()),
				URL:   DashboardPath,
				Alert: c.opts.LoginAlert,
			}
		}
		return memdom.Response{HTML: c.render("login", loginView{Error: "Invalid username or password"})}
	}
	c.user = ""
	return memdom.Response{HTML: c.render("login", loginView{})}
}

func (c *Console) authorize(ev memdom.Event) memdom.Response {
	var alert string
	switch ev.Kind {
	case memdom.EventNavigate:
		c.shown = filters{}
		c.applied = filters{}
		c.page = 1
		c.noSelection = false
	case memdom.EventChange:
		c.noSelection = false
		c.shown = c.fromForm(ev.Form)
		if ev.Target == idMain {
			c.shown.sub = ""
		}
	case memdom.EventClick:
		switch {
		case ev.Target == idSearch:
			c.noSelection = false
			c.shown = c.fromForm(ev.Form)
			c.applied = c.shown
			c.page = 1
		case ev.Target == idReset:
			c.shown = filters{}
			c.applied = filters{}
			c.page = 1
			c.noSelection = c.opts.ResetLeavesNoSelection
			alert = c.opts.ResetAlert
		case ev.Target == gridTarget && strings.HasPrefix(ev.Argument, "Page$"):
			if n, err := strconv.Atoi(strings.TrimPrefix(ev.Argument, "Page$")); err == nil {
				c.page = n
			}
			c.shown = c.fromForm(ev.Form)
		}
	}
	return memdom.Response{HTML: c.render("authorize", c.authorizeView()), Alert: alert}
}

func (c *Console) fromForm(form url.Values) filters {
	f := filters{main: form.Get(idMain), sub: form.Get(idSub), status: form.Get(idStatus)}
	if subsOf(c.opts.Catalog, f.main) == nil {
		f.sub = ""
	}
	return f
}

func (c *Console) matching() []Policy {
	var out []Policy
	for _, p := range c.policies {
		if c.applied.main != "" && p.MainCategory != c.applied.main {
			continue
		}
		if c.applied.sub != "" && p.SubCategory != c.applied.sub {
			continue
		}
		if c.applied.status != "" && p.Status != c.applied.status {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (c *Console) create(ev memdom.Event) memdom.Response {
	form := formView{
		PolicyName: ev.Form.Get(idName),
		Premium:    ev.Form.Get(idPrem),
		SumAssured: ev.Form.Get(idSum),
		Tenure:     ev.Form.Get(idTenure),
	}
	main, sub := ev.Form.Get(idMain), ev.Form.Get(idSub)
	if subsOf(c.opts.Catalog, main) == nil {
		sub = ""
	}

	switch {
	case ev.Kind == memdom.EventNavigate:
		form = formView{}
		main, sub = "", ""
		c.review, c.saved = nil, ""
	case ev.Kind == memdom.EventChange && ev.Target == idMain:
		sub = ""
	case ev.Kind == memdom.EventClick && ev.Target == idReset:
		form = formView{}
		main, sub = "", ""
		c.review, c.saved = nil, ""
	case ev.Kind == memdom.EventClick && ev.Target == idCreate:
		if msg := validate(main, form); msg != "" {
			if !c.opts.DOMValidation {
				// the page script raises the dialog without a round trip
				return memdom.Response{Alert: msg}
			}
			form.Error = msg
		} else {
			c.saved = ""
			c.review = &Policy{
				Name:         form.PolicyName,
				MainCategory: main,
				SubCategory:  sub,
				Status:       "Pending",
				Premium:      form.Premium,
				SumAssured:   form.SumAssured,
				Tenure:       tenureOrZero(form.Tenure),
			}
		}
	case ev.Kind == memdom.EventClick && ev.Target == confirmTarget:
		// a confirm without an open review saves nothing
		if c.review != nil {
			p := *c.review
			p.ID = 1001 + len(c.policies)
			c.review = nil
			c.policies = append(c.policies, p)
			c.saved = fmt.Sprintf("Policy %d created", p.ID)
			return memdom.Response{HTML: c.render("create", c.createView(formView{}, "", "")), Alert: "Policy created successfully"}
		}
	}
	return memdom.Response{HTML: c.render("create", c.createView(form, main, sub))}
}

func tenureOrZero(v string) string {
	if strings.TrimSpace(v) == "" {
		return "0"
	}
	return v
}

func validate(main string, f formView) string {
	if strings.TrimSpace(f.Premium) == "" {
		return "Premium amount cannot be empty"
	}
	v, err := strconv.ParseFloat(f.Premium, 64)
	if err != nil || v <= 0 || v > MaxPremium {
		return "Please enter a valid premium amount"
	}
	if strings.TrimSpace(f.PolicyName) == "" {
		return "Policy name cannot be empty"
	}
	if main == "" {
		return "Please select a main category"
	}
	return ""
}

func (c *Console) render(name string, data any) string {
	var b bytes.Buffer
	if err := pages.ExecuteTemplate(&b, name, data); err != nil {
		return fmt.Sprintf("<html><body><pre id=\"render-error\">%s</pre></body></html>", template.HTMLEscapeString(err.Error()))
	}
	return b.String()
}
