package policyconsole

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
	"ui_automation/infrastructure/memdom"
)

const base = "http://console.test/Admin/"

func TestValidate(t *testing.T) {
	tests := []struct {
		main, name, premium string
		want                string
	}{
		{"Life", "Plan", "", "Premium amount cannot be empty"},
		{"Life", "Plan", "-1", "Please enter a valid premium amount"},
		{"Life", "Plan", "10000001", "Please enter a valid premium amount"},
		{"Life", "Plan", "abc", "Please enter a valid premium amount"},
		{"Life", "", "5000", "Policy name cannot be empty"},
		{"", "Plan", "5000", "Please select a main category"},
		{"Life", "Plan", "10000000", ""},
	}
	for _, tt := range tests {
		got := validate(tt.main, formView{PolicyName: tt.name, Premium: tt.premium})
		assert.Equal(t, tt.want, got, "premium=%q name=%q main=%q", tt.premium, tt.name, tt.main)
	}
}

func TestSeedPoliciesCoverCatalog(t *testing.T) {
	policies := SeedPolicies(DefaultCatalog, 14)
	require.Len(t, policies, 14)

	cats := map[string]bool{}
	statuses := map[string]bool{}
	for _, p := range policies {
		cats[p.MainCategory] = true
		statuses[p.Status] = true
		assert.Contains(t, subsOf(DefaultCatalog, p.MainCategory), p.SubCategory)
	}
	assert.Len(t, cats, len(DefaultCatalog))
	assert.Len(t, statuses, len(Statuses))
}

func TestUnauthenticatedRequestsShowLogin(t *testing.T) {
	c := New(Options{})
	resp := c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + AuthorizePath})
	assert.Equal(t, LoginPath, resp.URL)
	assert.Contains(t, resp.HTML, "txtUsername")
}

func TestAuthorizeFiltersAndPages(t *testing.T) {
	c := New(Options{})
	c.user = "admin_user"

	resp := c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + AuthorizePath})
	assert.Contains(t, resp.HTML, "Page$2")
	assert.Contains(t, resp.HTML, "Page$3")

	form := url.Values{idMain: {"Motor"}, idSub: {""}, idStatus: {""}}
	c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + AuthorizePath, Target: idSearch, Form: form})
	for _, p := range c.matching() {
		assert.Equal(t, "Motor", p.MainCategory)
	}
	assert.Equal(t, 1, c.page)

	c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + AuthorizePath, Target: idReset, Form: form})
	assert.Equal(t, filters{}, c.applied)
	assert.Len(t, c.matching(), 14)
}

func TestCreatePolicyThroughSession(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	c := New(Options{})
	s := memdom.NewSession(c, l)
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, base+LoginPath))
	c.user = "admin_user"
	require.NoError(t, s.Navigate(ctx, base+CreatePath))

	find := func(id string) entities.Selector { return entities.ID(id) }
	els, err := s.FindElements(ctx, find(idMain))
	require.NoError(t, err)
	require.Len(t, els, 1)
	require.NoError(t, els[0].SelectIndex(ctx, 1))

	for id, v := range map[string]string{idName: "Term Plan", idPrem: "4200"} {
		els, err := s.FindElements(ctx, find(id))
		require.NoError(t, err)
		require.Len(t, els, 1)
		require.NoError(t, els[0].SendKeys(ctx, v))
	}

	els, err = s.FindElements(ctx, find(idCreate))
	require.NoError(t, err)
	require.NoError(t, els[0].Click(ctx))

	els, err = s.FindElements(ctx, entities.ID("btnReviewOk"))
	require.NoError(t, err)
	require.Len(t, els, 1)
	shown, err := els[0].IsDisplayed(ctx)
	require.NoError(t, err)
	require.True(t, shown, "review dialog opens for a valid policy")
	require.NoError(t, els[0].Click(ctx))

	text, err := s.AlertText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Policy created successfully", text)
	require.NoError(t, s.AcceptAlert(ctx))

	all := c.Policies()
	require.Len(t, all, 15)
	created := all[14]
	assert.Equal(t, "Term Plan", created.Name)
	assert.Equal(t, "Life", created.MainCategory)
	assert.Equal(t, "4200", created.Premium)
}

func parse(t *testing.T, resp memdom.Response) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.HTML))
	require.NoError(t, err)
	return doc
}

func draftForm() url.Values {
	return url.Values{
		idMain:   {"Life"},
		idSub:    {"Whole Life"},
		idName:   {"Family Cover"},
		idPrem:   {"5000"},
		idSum:    {"500000"},
		idTenure: {"5"},
	}
}

func TestCreateReviewCarriesDraft(t *testing.T) {
	c := New(Options{})
	c.user = "admin_user"
	c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + CreatePath})

	doc := parse(t, c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: idCreate, Form: draftForm()}))
	assert.Contains(t, doc.Find("#policyReviewModal").AttrOr("style", ""), "display:block")
	for id, want := range map[string]string{
		idHMain:   "Life",
		idHSub:    "Whole Life",
		idHName:   "Family Cover",
		idHSum:    "500000",
		idHPrem:   "5000",
		idHTenure: "5",
	} {
		assert.Equal(t, want, doc.Find("#"+id).AttrOr("value", ""), id)
	}

	src, ok := doc.Find("#policyReviewFrame").Attr("src")
	require.True(t, ok)
	u, err := url.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, ReviewPath, u.Path)
	assert.Equal(t, "Family Cover", u.Query().Get("policyName"))
	assert.Equal(t, "500000", u.Query().Get("sumAssured"))
	assert.Equal(t, "5000", u.Query().Get("premium"))
	assert.Equal(t, "5", u.Query().Get("tenure"))
}

func TestConfirmSavesOnce(t *testing.T) {
	c := New(Options{})
	c.user = "admin_user"
	c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + CreatePath})
	c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: idCreate, Form: draftForm()})

	resp := c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: confirmTarget, Form: draftForm()})
	assert.Equal(t, "Policy created successfully", resp.Alert)
	doc := parse(t, resp)
	assert.Equal(t, "Policy 1015 created", strings.TrimSpace(doc.Find(".alert-success").Text()))
	assert.Contains(t, doc.Find("#policyReviewModal").AttrOr("style", ""), "display:none")

	resp = c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: confirmTarget, Form: draftForm()})
	assert.Empty(t, resp.Alert)
	require.Len(t, c.Policies(), 15, "a second confirm saves nothing")
	saved := c.Policies()[14]
	assert.Equal(t, "Whole Life", saved.SubCategory)
	assert.Equal(t, "5", saved.Tenure)
}

func TestTenureChangeUpdatesLabel(t *testing.T) {
	c := New(Options{})
	c.user = "admin_user"
	doc := parse(t, c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + CreatePath}))
	assert.Equal(t, "0", doc.Find("#tenureValue").Text())

	form := draftForm()
	form.Set(idTenure, "12")
	doc = parse(t, c.Handle(memdom.Event{Kind: memdom.EventChange, URL: base + CreatePath, Target: idTenure, Form: form}))
	assert.Equal(t, "12", doc.Find("#tenureValue").Text())
	assert.Equal(t, "12", doc.Find("#"+idTenure).AttrOr("value", ""))
	assert.Equal(t, "Family Cover", doc.Find("#"+idName).AttrOr("value", ""), "other fields survive the postback")
	assert.Equal(t, "Whole Life", doc.Find("#"+idSub+" option[selected]").AttrOr("value", ""))
}

func TestCreateResetRestoresDefaults(t *testing.T) {
	c := New(Options{})
	c.user = "admin_user"
	c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + CreatePath})
	c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: idCreate, Form: draftForm()})

	doc := parse(t, c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: idReset, Form: draftForm()}))
	assert.Equal(t, MainPlaceholder, strings.TrimSpace(doc.Find("#"+idMain+" option[selected]").Text()))
	assert.Equal(t, SubPlaceholder, strings.TrimSpace(doc.Find("#"+idSub+" option[selected]").Text()))
	for _, id := range []string{idName, idPrem, idSum} {
		assert.Empty(t, doc.Find("#"+id).AttrOr("value", ""), id)
	}
	assert.Equal(t, "0", doc.Find("#tenureValue").Text())
	assert.Contains(t, doc.Find("#policyReviewModal").AttrOr("style", ""), "display:none")

	c.Handle(memdom.Event{Kind: memdom.EventClick, URL: base + CreatePath, Target: confirmTarget, Form: draftForm()})
	assert.Len(t, c.Policies(), 14, "reset discards the draft under review")
}

func TestPremiumFieldIsDescribed(t *testing.T) {
	c := New(Options{})
	c.user = "admin_user"
	doc := parse(t, c.Handle(memdom.Event{Kind: memdom.EventNavigate, URL: base + CreatePath}))
	premium := doc.Find("#" + idPrem)
	assert.Equal(t, "number", premium.AttrOr("type", ""))
	assert.Contains(t, strings.ToLower(premium.AttrOr("placeholder", "")), "premium")
	assert.Equal(t, "Premium", doc.Find("label[for='"+idPrem+"']").Text())
}
