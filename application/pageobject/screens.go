package pageobject

import "ui_automation/domain/entities"

// Field names shared by the console screens.
const (
	FieldMainCategory = "mainCategory"
	FieldSubCategory  = "subCategory"
	FieldStatus       = "status"
	FieldSearch       = "search"
	FieldReset        = "reset"
	FieldGridRows     = "gridRows"
	FieldGridMainCell = "gridMainCategoryCells"
	FieldPager        = "pager"
	FieldOverlay      = "overlay"

	FieldPolicyName   = "policyName"
	FieldPremium      = "premium"
	FieldPremiumLabel = "premiumLabel"
	FieldSumAssured   = "sumAssured"
	FieldTenure       = "tenure"
	FieldTenureLabel  = "tenureLabel"
	FieldCreate       = "create"
	FieldValidation   = "validationMessages"
	FieldSuccess      = "successMessage"
	FieldReviewOK     = "reviewOk"
	FieldReview       = "reviewModal"
	FieldReviewFrame  = "reviewFrame"

	// Hidden fields the review dialog reads the draft from.
	FieldHiddenMainCategory = "hiddenMainCategory"
	FieldHiddenSubCategory  = "hiddenSubCategory"
	FieldHiddenPolicyName   = "hiddenPolicyName"
	FieldHiddenSumAssured   = "hiddenSumAssured"
	FieldHiddenPremium      = "hiddenPremium"
	FieldHiddenTenure       = "hiddenTenure"

	FieldUsername = "username"
	FieldPassword = "password"
	FieldLogin    = "login"

	FieldPolicyToggle  = "policyToggle"
	FieldLinkCreate    = "linkCreate"
	FieldLinkAuthorize = "linkAuthorize"
)

// Screen names, used in SELECTOR_<SCREEN>_<FIELD> overrides.
const (
	ScreenAuthorize = "authorize"
	ScreenCreate    = "create"
	ScreenLogin     = "login"
	ScreenMenu      = "menu"
)

const (
	AuthorizePolicyPath = "AdminAuthorizePolicy.aspx"
	CreatePolicyPath    = "AdminCreatePolicy.aspx"
)

const gridXPath = "//table[@id='ContentPlaceHolder_Admin_gvPolicies']/tbody/tr"

func AuthorizePolicyScreen() *Page {
	return New(ScreenAuthorize, map[string]entities.Selector{
		FieldMainCategory: entities.ID("ContentPlaceHolder_Admin_ddlMainCategory"),
		FieldSubCategory:  entities.ID("ContentPlaceHolder_Admin_ddlSubCategory"),
		FieldStatus:       entities.ID("ContentPlaceHolder_Admin_ddlStatus"),
		FieldSearch:       entities.ID("ContentPlaceHolder_Admin_btnSearch"),
		FieldReset:        entities.ID("ContentPlaceHolder_Admin_btnReset"),
		FieldGridRows:     entities.XPath(gridXPath),
		FieldGridMainCell: entities.XPath(gridXPath + "/td[2]"),
		FieldPager:        entities.XPath("//tr[contains(@class,'pagination-container')] | //ul[contains(@class,'pagination')]"),
		FieldOverlay:      entities.CSS(".loading, .spinner, .modal-backdrop"),
	})
}

func CreatePolicyScreen() *Page {
	return New(ScreenCreate, map[string]entities.Selector{
		FieldMainCategory: entities.ID("ContentPlaceHolder_Admin_ddlMainCategory"),
		FieldSubCategory:  entities.ID("ContentPlaceHolder_Admin_ddlSubCategory"),
		FieldPolicyName:   entities.ID("ContentPlaceHolder_Admin_txtPolicyName"),
		FieldPremium:      entities.ID("ContentPlaceHolder_Admin_txtPremium"),
		FieldPremiumLabel: entities.XPath("//label[@for='ContentPlaceHolder_Admin_txtPremium']"),
		FieldSumAssured:   entities.ID("ContentPlaceHolder_Admin_txtSumAssured"),
		FieldTenure:       entities.ID("ContentPlaceHolder_Admin_sliderTenure"),
		FieldTenureLabel:  entities.ID("tenureValue"),
		FieldCreate:       entities.ID("ContentPlaceHolder_Admin_btnCreate"),
		FieldReset:        entities.ID("ContentPlaceHolder_Admin_btnReset"),
		FieldValidation:   entities.CSS(".invalid-feedback, .text-danger, .alert-danger"),
		FieldSuccess:      entities.CSS(".alert-success, .text-success"),
		FieldReview:       entities.ID("policyReviewModal"),
		FieldReviewOK:     entities.XPath("//div[@id='policyReviewModal']//button[contains(.,'OK')]"),
		FieldReviewFrame:  entities.ID("policyReviewFrame"),

		FieldHiddenMainCategory: entities.ID("ContentPlaceHolder_Admin_hiddenMainCategory"),
		FieldHiddenSubCategory:  entities.ID("ContentPlaceHolder_Admin_hiddenSubCategory"),
		FieldHiddenPolicyName:   entities.ID("ContentPlaceHolder_Admin_hiddenPolicyName"),
		FieldHiddenSumAssured:   entities.ID("ContentPlaceHolder_Admin_hiddenSumAssured"),
		FieldHiddenPremium:      entities.ID("ContentPlaceHolder_Admin_hiddenPremium"),
		FieldHiddenTenure:       entities.ID("ContentPlaceHolder_Admin_hiddenTenure"),
	})
}

func LoginScreen() *Page {
	return New(ScreenLogin, map[string]entities.Selector{
		FieldUsername: entities.ID("txtUsername"),
		FieldPassword: entities.ID("txtPassword"),
		FieldLogin:    entities.ID("BtnLogin"),
	})
}

func SideMenu() *Page {
	return New(ScreenMenu, map[string]entities.Selector{
		FieldPolicyToggle:  entities.CSS("a.nav-link[data-bs-target='#tables-nav']"),
		FieldLinkCreate:    entities.CSS("#tables-nav a[href*='AdminCreatePolicy']"),
		FieldLinkAuthorize: entities.CSS("#tables-nav a[href*='AdminAuthorizePolicy']"),
	})
}

// Screens returns every console screen keyed by name.
func Screens() map[string]*Page {
	return map[string]*Page{
		ScreenAuthorize: AuthorizePolicyScreen(),
		ScreenCreate:    CreatePolicyScreen(),
		ScreenLogin:     LoginScreen(),
		ScreenMenu:      SideMenu(),
	}
}

// FilterSpecs binds the authorize screen's filters to their accepted default
// labels.
func FilterSpecs(p *Page, mainDefaults, subDefaults, statusDefaults []string) []entities.FilterSpec {
	return []entities.FilterSpec{
		{Name: entities.FilterMainCategory, Selector: p.MustField(FieldMainCategory), DefaultLabels: mainDefaults},
		{Name: entities.FilterSubCategory, Selector: p.MustField(FieldSubCategory), DefaultLabels: subDefaults},
		{Name: entities.FilterStatus, Selector: p.MustField(FieldStatus), DefaultLabels: statusDefaults},
	}
}
