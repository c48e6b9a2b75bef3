package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
)

func sampleReport(id string) *entities.RunReport {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	return &entities.RunReport{
		ID:         id,
		Driver:     "memory",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Results: []entities.CaseResult{
			{Name: "PA_TC001_FilterByMainCategory/Life", Status: entities.CaseStatusPassed, Duration: time.Second},
			{Name: "PA_TC004_Reset_ReturnsToFirstPage", Status: entities.CaseStatusFailed, Message: "grid has a single page", Duration: 2 * time.Second},
		},
	}
}

func TestSaveAndLoadReport(t *testing.T) {
	store, err := NewReportStore(filepath.Join(t.TempDir(), "nested", "reports"))
	require.NoError(t, err)

	require.NoError(t, store.SaveReport(sampleReport("run-1")))
	require.NoError(t, store.SaveReport(sampleReport("run-2")))

	first, err := store.LoadReport("run-1")
	require.NoError(t, err)
	assert.Equal(t, sampleReport("run-1"), first)

	latest, err := store.LoadLatest()
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.ID)

	total, passed, failed := latest.Totals()
	assert.Equal(t, []int{2, 1, 1}, []int{total, passed, failed})

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 3, "two reports plus latest.json, no temp files")
}

func TestLoadMissingReport(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.LoadLatest()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveReportWithoutID(t *testing.T) {
	store, err := NewReportStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.SaveReport(&entities.RunReport{}))
}
