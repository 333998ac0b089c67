package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestImportReport_SuccessfulRun(t *testing.T) {
	report := NewImportReport(ImportKindProducts)
	report.RecordCreated()
	report.RecordCreated()
	report.RecordUpdated()
	report.Finish()

	assert.True(t, report.Success)
	assert.Equal(t, 3, report.Attempted())
	assert.Equal(t, "product import: 2 created, 1 updated", report.Message)
	assert.False(t, report.CompletedAt.Before(report.StartedAt))
}

func TestImportReport_RecordFailureCarriesExternalID(t *testing.T) {
	report := NewImportReport(ImportKindCategories)
	report.RecordCreated()
	report.RecordFailure("CAT-7", errors.New("record has no name"))
	report.Finish()

	assert.False(t, report.Success)
	assert.Equal(t, 2, report.Attempted())
	assert.Equal(t, []string{"CAT-7: record has no name"}, report.Errors)
	assert.Equal(t, "category import: 1 created, 0 updated", report.Message)
}

func TestImportReport_RunLevelFailure(t *testing.T) {
	report := NewImportReport(ImportKindProducts)
	report.Fail(errors.New("failed to fetch category listing: connection refused"))
	report.Finish()

	assert.False(t, report.Success)
	assert.Equal(t, 0, report.Attempted())
	assert.Len(t, report.Errors, 1)
}

func TestImportReport_ToRun(t *testing.T) {
	report := NewImportReport(ImportKindProducts)
	report.RecordCreated()
	report.Finish()

	run := report.ToRun("ops@example.com")

	assert.Equal(t, ImportKindProducts, run.Kind)
	assert.Equal(t, 1, run.CreatedCount)
	assert.True(t, run.Success)
	assert.Equal(t, "ops@example.com", run.InitiatedBy)
	assert.NotNil(t, run.CompletedAt)
}

func TestTagNameKey(t *testing.T) {
	assert.Equal(t, "bestseller", TagNameKey("  Bestseller "))
	assert.Equal(t, NewTag("Classic").NameKey, NewTag(" cLaSsIc ").NameKey)
}
