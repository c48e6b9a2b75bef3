package scenario

import (
	"context"
	"fmt"
	"strings"

	"ui_automation/application/pageobject"
	"ui_automation/application/reset"
	"ui_automation/application/wait"
	"ui_automation/domain/entities"
)

// Case is one scenario. Screen names the screen CleanState prepares before
// Run is called.
type Case struct {
	Name   string
	Screen string
	Run    func(ctx context.Context, h *Harness) error
}

// InvalidPremiums are the premium values the create form must reject.
var InvalidPremiums = []string{"-1", "10000001", ""}

var validationWords = []string{"premium", "invalid", "amount", "empty"}

// DefaultCases returns the console regression suite for the configured
// categories.
func DefaultCases(categories []string) []Case {
	var cases []Case
	for _, category := range categories {
		cases = append(cases, filterByCategory(category))
	}
	cases = append(cases,
		Case{Name: "PA_TC002_ClearedFilter_ShowsAllCategories", Screen: pageobject.ScreenAuthorize, Run: clearedFilterShowsAll},
		Case{Name: "PA_TC003_Reset_ClearsAllFilters", Screen: pageobject.ScreenAuthorize, Run: resetClearsFilters(categories)},
		Case{Name: "PA_TC004_Reset_ReturnsToFirstPage", Screen: pageobject.ScreenAuthorize, Run: resetReturnsToFirstPage},
		Case{Name: "CP_PremiumField_Overwrite", Screen: pageobject.ScreenCreate, Run: overwrite(pageobject.FieldPremium, "abc", "5000")},
		Case{Name: "CP_PolicyNameField_Overwrite", Screen: pageobject.ScreenCreate, Run: overwrite(pageobject.FieldPolicyName, "Old Name", "New Policy")},
	)
	for _, premium := range InvalidPremiums {
		cases = append(cases, invalidPremium(premium))
	}
	if len(categories) > 0 {
		cases = append(cases, Case{Name: "CP_ValidPolicy_IsCreated", Screen: pageobject.ScreenCreate, Run: createPolicy(categories[0])})
	}
	return append(cases, createCases(categories)...)
}

func filterByCategory(category string) Case {
	return Case{
		Name:   "PA_TC001_FilterByMainCategory/" + category,
		Screen: pageobject.ScreenAuthorize,
		Run: func(ctx context.Context, h *Harness) error {
			if err := h.selectFilter(ctx, entities.FilterMainCategory, category, -1); err != nil {
				return err
			}
			if err := h.search(ctx); err != nil {
				return err
			}
			cells, err := h.mainCategoryCells(ctx)
			if err != nil {
				return err
			}
			if len(cells) == 0 {
				return fmt.Errorf("no policies listed for %q", category)
			}
			for _, c := range cells {
				if !strings.EqualFold(c, category) {
					return fmt.Errorf("grid lists %q while filtered on %q", c, category)
				}
			}
			return nil
		},
	}
}

func clearedFilterShowsAll(ctx context.Context, h *Harness) error {
	if err := h.selectFilter(ctx, entities.FilterMainCategory, "Select Main Category", 0); err != nil {
		return err
	}
	if err := h.search(ctx); err != nil {
		return err
	}
	return h.expectVariety(ctx)
}

func resetClearsFilters(categories []string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		if len(categories) == 0 {
			return fmt.Errorf("no main categories configured")
		}
		if err := h.selectFilter(ctx, entities.FilterMainCategory, categories[0], -1); err != nil {
			return err
		}
		if err := h.selectFirstNonDefault(ctx, entities.FilterSubCategory); err != nil {
			return err
		}
		if err := h.selectFilter(ctx, entities.FilterStatus, "Approved", 1); err != nil {
			return err
		}
		if err := h.search(ctx); err != nil {
			return err
		}

		state, err := h.reset.ResetFilters(ctx, h.specs)
		if err != nil {
			return err
		}
		if bad := reset.Mismatches(state, h.specs); len(bad) > 0 {
			return fmt.Errorf("filters not back to defaults after reset: %v (main=%q sub=%q status=%q)",
				bad, state.MainCategory, state.SubCategory, state.Status)
		}
		return h.expectVariety(ctx)
	}
}

func resetReturnsToFirstPage(ctx context.Context, h *Harness) error {
	move, err := h.pager.GoToPage(ctx, 3)
	if err != nil {
		return err
	}
	if move == entities.NoSuchPage {
		if move, err = h.pager.GoToPage(ctx, 2); err != nil {
			return err
		}
	}
	if move == entities.NoSuchPage {
		return fmt.Errorf("grid has a single page, nothing to page through")
	}
	if onFirst, err := h.pager.IsCurrentPage(ctx, 1); err != nil {
		return err
	} else if onFirst {
		return fmt.Errorf("still on page 1 after paging")
	}

	if _, err := h.reset.ResetFilters(ctx, h.specs); err != nil {
		return err
	}
	onFirst, err := h.pager.IsCurrentPage(ctx, 1)
	if err != nil {
		return err
	}
	if !onFirst {
		return fmt.Errorf("page 1 is not current after reset")
	}
	linked, err := h.pager.HasPageLink(ctx, 1)
	if err != nil {
		return err
	}
	if linked {
		return fmt.Errorf("page 1 is still rendered as a link after reset")
	}
	return nil
}

func overwrite(field, first, second string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		sel := h.create.MustField(field)
		if err := h.runner.SetText(ctx, sel, first); err != nil {
			return err
		}
		if err := h.runner.SetText(ctx, sel, second); err != nil {
			return err
		}
		got, err := h.runner.Value(ctx, sel)
		if err != nil {
			return err
		}
		if got != second {
			return fmt.Errorf("%s reads %q, want %q", field, got, second)
		}
		return nil
	}
}

func invalidPremium(premium string) Case {
	name := premium
	if name == "" {
		name = "empty"
	}
	return Case{
		Name:   "CP_InvalidPremium_IsRejected/" + name,
		Screen: pageobject.ScreenCreate,
		Run: func(ctx context.Context, h *Harness) error {
			if err := h.fillPolicy(ctx, "", "Rejected Premium Plan", premium); err != nil {
				return err
			}
			if err := h.runner.Click(ctx, h.create.MustField(pageobject.FieldCreate)); err != nil {
				return err
			}

			res := h.guard.DismissIfPresent(ctx, h.cfg.AlertTimeout)
			switch res.Outcome {
			case entities.AlertUnavailable:
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return entities.ErrSessionLost
			case entities.AlertDismissed:
				if containsAny(res.Text, validationWords) {
					return nil
				}
				return fmt.Errorf("premium %q: unexpected dialog %q", premium, res.Text)
			}

			err := h.engine.UntilWithin(ctx, wait.Visible(h.create.MustField(pageobject.FieldValidation)), h.cfg.AlertTimeout)
			if err == nil {
				return nil
			}
			if !wait.IsTimeout(err) {
				return err
			}
			return fmt.Errorf("premium %q was accepted without a validation message", premium)
		},
	}
}

func createPolicy(category string) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		if err := h.fillPolicy(ctx, category, "Automation Plan", "5000"); err != nil {
			return err
		}
		if err := h.runner.SetText(ctx, h.create.MustField(pageobject.FieldSumAssured), "500000"); err != nil {
			return err
		}
		if err := h.runner.Click(ctx, h.create.MustField(pageobject.FieldCreate)); err != nil {
			return err
		}
		if res := h.guard.DismissIfPresent(ctx, h.cfg.AlertTimeout); res.Outcome == entities.AlertDismissed {
			return fmt.Errorf("valid policy rejected: %q", res.Text)
		}
		if err := h.engine.Until(ctx, wait.Visible(h.create.MustField(pageobject.FieldReview))); err != nil {
			return err
		}
		if err := h.runner.Click(ctx, h.create.MustField(pageobject.FieldReviewOK)); err != nil {
			return err
		}
		res := h.guard.DismissIfPresent(ctx, h.cfg.Timeout)
		if res.Outcome != entities.AlertDismissed {
			return fmt.Errorf("no confirmation after creating the policy")
		}
		if !containsAny(res.Text, []string{"success", "created"}) {
			return fmt.Errorf("unexpected confirmation %q", res.Text)
		}
		return nil
	}
}

// fillPolicy fills the create form. An empty category leaves the placeholder.
func (h *Harness) fillPolicy(ctx context.Context, category, name, premium string) error {
	if category != "" {
		if err := h.selectOption(ctx, h.create.MustField(pageobject.FieldMainCategory), category, -1, true); err != nil {
			return err
		}
	}
	if err := h.runner.SetText(ctx, h.create.MustField(pageobject.FieldPolicyName), name); err != nil {
		return err
	}
	return h.runner.SetText(ctx, h.create.MustField(pageobject.FieldPremium), premium)
}

// selectFirstNonDefault selects the first option that is not one of the
// filter's default labels.
func (h *Harness) selectFirstNonDefault(ctx context.Context, name entities.FilterName) error {
	spec := h.spec(name)
	opts, err := h.runner.Options(ctx, spec.Selector)
	if err != nil {
		return err
	}
	for _, o := range opts {
		if !wait.MatchesAnyLabel(o.Label, spec.DefaultLabels) {
			return h.selectOption(ctx, spec.Selector, o.Label, -1, false)
		}
	}
	return fmt.Errorf("%s offers only default options", name)
}

// expectVariety checks that the grid lists more than one main category.
func (h *Harness) expectVariety(ctx context.Context) error {
	cells, err := h.mainCategoryCells(ctx)
	if err != nil {
		return err
	}
	if d := distinct(cells); len(d) <= 1 {
		return fmt.Errorf("grid lists a single main category %v, want several", d)
	}
	return nil
}

func containsAny(text string, words []string) bool {
	text = strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
