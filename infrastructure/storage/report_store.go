package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

const latestFile = "latest.json"

// ReportStore keeps run reports as JSON files in one directory.
type ReportStore struct {
	dir string
}

var _ interfaces.ReportStore = (*ReportStore)(nil)

// NewReportStore - creates the report directory if needed
func NewReportStore(dir string) (*ReportStore, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dir = filepath.Join(homeDir, ".ui_automation", "reports")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}
	return &ReportStore{dir: dir}, nil
}

// Dir returns the directory reports are written to.
func (s *ReportStore) Dir() string {
	return s.dir
}

func (s *ReportStore) reportPath(id string) string {
	return filepath.Join(s.dir, "report-"+id+".json")
}

// SaveReport - writes the report and replaces latest.json
func (s *ReportStore) SaveReport(report *entities.RunReport) error {
	if report == nil || report.ID == "" {
		return errors.New("report has no ID")
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := writeFileAtomic(s.reportPath(report.ID), data); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, latestFile), data)
}

// LoadReport - loads a report by ID
func (s *ReportStore) LoadReport(id string) (*entities.RunReport, error) {
	return readReport(s.reportPath(id))
}

// LoadLatest - loads the last saved report
func (s *ReportStore) LoadLatest() (*entities.RunReport, error) {
	return readReport(filepath.Join(s.dir, latestFile))
}

func readReport(path string) (*entities.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var report entities.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", path, err)
	}
	return &report, nil
}

// writeFileAtomic writes through a temp file so readers never see a partial
// report.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
