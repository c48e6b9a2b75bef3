package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
)

// Suite runs cases one after another on a single session. Every case starts
// from CleanState; a lost session aborts the rest of the run.
type Suite struct {
	harness *Harness
	cases   []Case
	driver  string
	logger  *logrus.Logger
	now     func() time.Time
}

func NewSuite(h *Harness, driver string, cases []Case) *Suite {
	return &Suite{
		harness: h,
		cases:   cases,
		driver:  driver,
		logger:  h.logger,
		now:     time.Now,
	}
}

// Cases returns the names of the suite's cases.
func (s *Suite) Cases() []string {
	names := make([]string, len(s.cases))
	for i, c := range s.cases {
		names[i] = c.Name
	}
	return names
}

// Select narrows the suite to the named cases. A name also selects every
// case below it, so "PA_TC001_FilterByMainCategory" picks all categories.
func (s *Suite) Select(names []string) (*Suite, error) {
	if len(names) == 0 {
		return s, nil
	}
	var picked []Case
	for _, name := range names {
		found := false
		for _, c := range s.cases {
			if strings.EqualFold(c.Name, name) || strings.HasPrefix(strings.ToLower(c.Name), strings.ToLower(name)+"/") {
				picked = append(picked, c)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown case %q", name)
		}
	}
	narrowed := *s
	narrowed.cases = picked
	return &narrowed, nil
}

// Run executes every case and returns the report. The error is non-nil only
// when the run stopped early: ctx was canceled or the session was lost.
func (s *Suite) Run(ctx context.Context) (*entities.RunReport, error) {
	report := &entities.RunReport{
		ID:        uuid.NewString(),
		Driver:    s.driver,
		StartedAt: s.now(),
	}
	defer func() { report.FinishedAt = s.now() }()

	s.logger.Infof("Run %s started with %d cases on %s", report.ID, len(s.cases), s.driver)

	var stopErr error
	for _, c := range s.cases {
		if stopErr != nil {
			report.Results = append(report.Results, entities.CaseResult{
				Name:    c.Name,
				Status:  entities.CaseStatusAborted,
				Message: stopErr.Error(),
			})
			continue
		}

		select {
		case <-ctx.Done():
			stopErr = fmt.Errorf("run canceled: %w", ctx.Err())
			report.Results = append(report.Results, entities.CaseResult{
				Name:    c.Name,
				Status:  entities.CaseStatusAborted,
				Message: stopErr.Error(),
			})
			continue
		default:
		}

		result, err := s.runCase(ctx, c)
		report.Results = append(report.Results, result)
		if err != nil {
			stopErr = err
		}
	}

	total, passed, failed := report.Totals()
	s.logger.Infof("Run %s finished: %d cases, %d passed, %d failed", report.ID, total, passed, failed)
	return report, stopErr
}

// runCase runs one case. The returned error is set only when the run must
// stop.
func (s *Suite) runCase(ctx context.Context, c Case) (entities.CaseResult, error) {
	start := s.now()
	s.logger.Infof("Case %s", c.Name)

	err := s.harness.CleanState(ctx, c.Screen)
	if err != nil {
		err = fmt.Errorf("clean state: %w", err)
	} else {
		err = c.Run(ctx, s.harness)
	}

	result := entities.CaseResult{Name: c.Name, Status: entities.CaseStatusPassed, Duration: s.now().Sub(start)}
	if err == nil {
		s.logger.Infof("Case %s passed in %s", c.Name, result.Duration)
		return result, nil
	}

	result.Message = err.Error()
	if entities.IsSessionFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		result.Status = entities.CaseStatusAborted
		s.logger.Errorf("Case %s aborted: %v", c.Name, err)
		return result, fmt.Errorf("case %s: %w", c.Name, err)
	}

	result.Status = entities.CaseStatusFailed
	s.logger.Warnf("Case %s failed: %v", c.Name, err)

	// A failed case may leave a dialog open; the next CleanState drains it.
	return result, nil
}
