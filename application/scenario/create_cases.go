package scenario

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"ui_automation/application/pageobject"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
)

// policyDraft is what a create-screen case types into the form.
type policyDraft struct {
	Category   string
	Name       string
	SumAssured string
	Premium    string
	Tenure     string
}

// createCases covers the create screen beyond validation: the category
// selects, the tenure slider, the review dialog, saving and the form reset.
func createCases(categories []string) []Case {
	cases := []Case{
		{Name: "CP_MainCategory_OptionsListed", Screen: pageobject.ScreenCreate, Run: mainOptionsListed(categories)},
		{Name: "CP_Tenure_LabelFollowsSlider", Screen: pageobject.ScreenCreate, Run: tenureLabelFollowsSlider},
		{Name: "CP_PremiumField_PlaceholderAndType", Screen: pageobject.ScreenCreate, Run: premiumFieldDescribed},
	}
	if len(categories) == 0 {
		return cases
	}
	if len(categories) > 1 {
		cases = append(cases, Case{
			Name:   "CP_MainCategory_SingleSelection_And_Update",
			Screen: pageobject.ScreenCreate,
			Run:    mainCategoryUpdate(categories[0], categories[1]),
		})
	}
	return append(cases,
		Case{Name: "CP_ReviewDialog_DisplaysSelectedValues", Screen: pageobject.ScreenCreate, Run: reviewShowsDraft(categories[0])},
		Case{Name: "CP_Success_And_NoDuplicateOnSingleConfirm", Screen: pageobject.ScreenCreate, Run: saveOnce(categories[0])},
		Case{Name: "CP_Reset_ReturnsDefaults", Screen: pageobject.ScreenCreate, Run: createResetRestoresDefaults(categories[0])},
	)
}

func mainOptionsListed(categories []string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		opts, err := h.runner.Options(ctx, h.create.MustField(pageobject.FieldMainCategory))
		if err != nil {
			return err
		}
		if len(opts) == 0 || !h.isMainPlaceholder(opts[0].Label) {
			return fmt.Errorf("main category does not start with a placeholder: %v", labelsOf(opts))
		}
		labels := labelsOf(opts)
		for _, c := range categories {
			if !containsLabel(labels, c) {
				return fmt.Errorf("main category does not offer %q: %v", c, labels)
			}
		}
		return nil
	}
}

func mainCategoryUpdate(first, second string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		mainSel := h.create.MustField(pageobject.FieldMainCategory)
		subSel := h.create.MustField(pageobject.FieldSubCategory)

		if err := h.selectOption(ctx, mainSel, first, -1, true); err != nil {
			return err
		}
		before, err := h.settledSubOptions(ctx)
		if err != nil {
			return err
		}
		if len(before) > 1 {
			if err := h.runner.SelectIndex(ctx, subSel, 1); err != nil {
				return err
			}
		}

		if err := h.selectOption(ctx, mainSel, second, -1, true); err != nil {
			return err
		}
		after, err := h.settledSubOptions(ctx)
		if err != nil {
			return err
		}

		mainOpts, err := h.runner.Options(ctx, mainSel)
		if err != nil {
			return err
		}
		var selected []string
		for _, o := range mainOpts {
			if o.Selected {
				selected = append(selected, o.Label)
			}
		}
		if len(selected) != 1 || !strings.EqualFold(strings.TrimSpace(selected[0]), second) {
			return fmt.Errorf("main category selection is %v, want only %q", selected, second)
		}
		if sameLabels(before, after) {
			return fmt.Errorf("sub categories did not change from %q to %q: %v", first, second, labelsOf(after))
		}
		sub, ok, err := h.runner.SelectedOption(ctx, subSel)
		if err != nil {
			return err
		}
		if ok && sub.Value != "" {
			return fmt.Errorf("sub category kept %q after the main category changed", sub.Label)
		}
		return nil
	}
}

func tenureLabelFollowsSlider(ctx context.Context, h *Harness) error {
	for _, years := range []string{"5", "12"} {
		if err := h.setTenure(ctx, years); err != nil {
			return err
		}
		got, err := h.runner.Value(ctx, h.create.MustField(pageobject.FieldTenure))
		if err != nil {
			return err
		}
		if got != years {
			return fmt.Errorf("tenure slider reads %q, want %q", got, years)
		}
	}
	return nil
}

func premiumFieldDescribed(ctx context.Context, h *Harness) error {
	sel := h.create.MustField(pageobject.FieldPremium)
	typ, err := h.runner.Attribute(ctx, sel, "type")
	if err != nil {
		return err
	}
	if !strings.EqualFold(typ, "number") {
		return fmt.Errorf("premium input has type %q, want number", typ)
	}

	placeholder, err := h.runner.Attribute(ctx, sel, "placeholder")
	if err != nil {
		return err
	}
	if containsAny(placeholder, []string{"premium", "enter"}) {
		return nil
	}
	err = h.engine.UntilWithin(ctx, wait.TextMatchesAny(h.create.MustField(pageobject.FieldPremiumLabel), []string{"Premium"}), h.cfg.AlertTimeout)
	if err == nil {
		return nil
	}
	if !wait.IsTimeout(err) {
		return err
	}
	return fmt.Errorf("premium field has neither a placeholder (%q) nor a label", placeholder)
}

func reviewShowsDraft(category string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		draft := policyDraft{Category: category, Name: "Review Plan", SumAssured: "500000", Premium: "5000", Tenure: "5"}
		sub, err := h.fillDraft(ctx, draft)
		if err != nil {
			return err
		}
		if err := h.openReview(ctx); err != nil {
			return err
		}

		want := map[string]string{
			pageobject.FieldHiddenMainCategory: category,
			pageobject.FieldHiddenSubCategory:  sub,
			pageobject.FieldHiddenPolicyName:   draft.Name,
			pageobject.FieldHiddenSumAssured:   draft.SumAssured,
			pageobject.FieldHiddenPremium:      draft.Premium,
			pageobject.FieldHiddenTenure:       draft.Tenure,
		}
		for _, field := range []string{
			pageobject.FieldHiddenMainCategory,
			pageobject.FieldHiddenSubCategory,
			pageobject.FieldHiddenPolicyName,
			pageobject.FieldHiddenSumAssured,
			pageobject.FieldHiddenPremium,
			pageobject.FieldHiddenTenure,
		} {
			got, err := h.runner.Value(ctx, h.create.MustField(field))
			if err != nil {
				return err
			}
			if got != want[field] {
				return fmt.Errorf("review %s is %q, want %q", field, got, want[field])
			}
		}

		src, err := h.runner.Attribute(ctx, h.create.MustField(pageobject.FieldReviewFrame), "src")
		if err != nil {
			return err
		}
		u, err := url.Parse(src)
		if err != nil {
			return fmt.Errorf("review frame src %q: %w", src, err)
		}
		q := u.Query()
		for key, v := range map[string]string{
			"policyName": draft.Name,
			"sumAssured": draft.SumAssured,
			"premium":    draft.Premium,
			"tenure":     draft.Tenure,
		} {
			if q.Get(key) != v {
				return fmt.Errorf("review frame src %q: %s is %q, want %q", src, key, q.Get(key), v)
			}
		}
		return nil
	}
}

func saveOnce(category string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		draft := policyDraft{Category: category, Name: "Single Confirm Plan", SumAssured: "500000", Premium: "5000", Tenure: "5"}
		if _, err := h.fillDraft(ctx, draft); err != nil {
			return err
		}
		if err := h.openReview(ctx); err != nil {
			return err
		}
		if err := h.runner.Click(ctx, h.create.MustField(pageobject.FieldReviewOK)); err != nil {
			return err
		}
		if res := h.guard.DismissIfPresent(ctx, h.cfg.Timeout); res.Outcome == entities.AlertUnavailable {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return entities.ErrSessionLost
		}

		if err := h.engine.Until(ctx, wait.Visible(h.create.MustField(pageobject.FieldSuccess))); err != nil {
			return fmt.Errorf("no visible success message: %w", err)
		}
		if err := h.engine.Until(ctx, wait.Invisible(h.create.MustField(pageobject.FieldReview))); err != nil {
			return fmt.Errorf("review dialog still open after confirming: %w", err)
		}
		shown, err := h.engine.Resolve(ctx, h.create.MustField(pageobject.FieldSuccess))
		if err != nil {
			return err
		}
		if len(shown) != 1 {
			return fmt.Errorf("%d success messages after a single confirm", len(shown))
		}
		return nil
	}
}

func createResetRestoresDefaults(category string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		draft := policyDraft{Category: category, Name: "Discarded Plan", SumAssured: "250000", Premium: "3000", Tenure: "7"}
		if _, err := h.fillDraft(ctx, draft); err != nil {
			return err
		}

		before, err := h.engine.First(ctx, h.create.MustField(pageobject.FieldCreate), 0)
		if err != nil {
			return err
		}
		if err := h.runner.Click(ctx, h.create.MustField(pageobject.FieldReset)); err != nil {
			return err
		}
		if _, err := h.guard.Drain(ctx, h.cfg.AlertTimeout); err != nil {
			return err
		}
		if _, err := h.engine.Await(ctx, wait.Stale(before), h.cfg.Timeout, 0); err != nil && !wait.IsTimeout(err) {
			return err
		}
		if err := h.engine.Until(ctx, wait.TextEquals(h.create.MustField(pageobject.FieldTenureLabel), "0")); err != nil {
			return fmt.Errorf("tenure label after reset: %w", err)
		}

		main, _, err := h.runner.SelectedOption(ctx, h.create.MustField(pageobject.FieldMainCategory))
		if err != nil {
			return err
		}
		if main.Value != "" && !h.isMainPlaceholder(main.Label) {
			return fmt.Errorf("main category is %q after reset", main.Label)
		}
		for _, field := range []string{pageobject.FieldPolicyName, pageobject.FieldSumAssured, pageobject.FieldPremium} {
			got, err := h.runner.Value(ctx, h.create.MustField(field))
			if err != nil {
				return err
			}
			if got != "" {
				return fmt.Errorf("%s reads %q after reset", field, got)
			}
		}
		return nil
	}
}

// fillDraft fills every create-screen field and returns the value of the
// sub category it picked, if the category offers any.
func (h *Harness) fillDraft(ctx context.Context, d policyDraft) (string, error) {
	if err := h.fillPolicy(ctx, d.Category, d.Name, d.Premium); err != nil {
		return "", err
	}
	var sub string
	if d.Category != "" {
		opts, err := h.settledSubOptions(ctx)
		if err != nil {
			return "", err
		}
		if len(opts) > 1 {
			if err := h.runner.SelectIndex(ctx, h.create.MustField(pageobject.FieldSubCategory), 1); err != nil {
				return "", err
			}
			sub = opts[1].Value
		}
	}
	if err := h.runner.SetText(ctx, h.create.MustField(pageobject.FieldSumAssured), d.SumAssured); err != nil {
		return "", err
	}
	if d.Tenure != "" {
		if err := h.setTenure(ctx, d.Tenure); err != nil {
			return "", err
		}
	}
	return sub, nil
}

// setTenure moves the tenure slider and waits for its label to follow.
func (h *Harness) setTenure(ctx context.Context, years string) error {
	if err := h.runner.SetSlider(ctx, h.create.MustField(pageobject.FieldTenure), years); err != nil {
		return err
	}
	if err := h.engine.Until(ctx, wait.TextEquals(h.create.MustField(pageobject.FieldTenureLabel), years)); err != nil {
		return fmt.Errorf("tenure label: %w", err)
	}
	return nil
}

// openReview clicks Create and waits for the review dialog. A dialog in its
// place means the draft was rejected.
func (h *Harness) openReview(ctx context.Context) error {
	if err := h.runner.Click(ctx, h.create.MustField(pageobject.FieldCreate)); err != nil {
		return err
	}
	if res := h.guard.DismissIfPresent(ctx, h.cfg.AlertTimeout); res.Outcome == entities.AlertDismissed {
		return fmt.Errorf("draft rejected: %q", res.Text)
	}
	if err := h.engine.Until(ctx, wait.Visible(h.create.MustField(pageobject.FieldReview))); err != nil {
		return fmt.Errorf("review dialog: %w", err)
	}
	return nil
}

func (h *Harness) settledSubOptions(ctx context.Context) ([]entities.Option, error) {
	sel := h.create.MustField(pageobject.FieldSubCategory)
	if err := h.engine.Until(ctx, wait.SelectSettled(sel)); err != nil {
		return nil, fmt.Errorf("sub category: %w", err)
	}
	return h.runner.Options(ctx, sel)
}

func (h *Harness) isMainPlaceholder(label string) bool {
	return wait.MatchesAnyLabel(label, h.cfg.MainDefaults) || strings.Contains(strings.ToLower(label), "select")
}

func labelsOf(opts []entities.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = strings.TrimSpace(o.Label)
	}
	return out
}

func containsLabel(labels []string, want string) bool {
	for _, l := range labels {
		if strings.EqualFold(l, strings.TrimSpace(want)) {
			return true
		}
	}
	return false
}

func sameLabels(a, b []entities.Option) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if strings.TrimSpace(a[i].Label) != strings.TrimSpace(b[i].Label) {
			return false
		}
	}
	return true
}
