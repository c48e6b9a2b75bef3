package interfaces

import "ui_automation/domain/entities"

// ReportStore persists suite run reports
type ReportStore interface {
	// SaveReport writes a report and marks it as the latest
	SaveReport(report *entities.RunReport) error

	// LoadReport loads a report by ID
	LoadReport(id string) (*entities.RunReport, error)

	// LoadLatest loads the most recently saved report
	LoadLatest() (*entities.RunReport, error)
}
