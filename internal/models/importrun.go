package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportKind identifies which entity type an import run covered
type ImportKind string

const (
	ImportKindCategories ImportKind = "CATEGORIES"
	ImportKindProducts   ImportKind = "PRODUCTS"
)

// StringSlice custom type for a PostgreSQL JSONB array of strings
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, s)
}

// ImportRun is the persisted record of one synchronization run
type ImportRun struct {
	ID   uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Kind ImportKind `gorm:"type:varchar(50);not null;index:idx_import_runs_kind" json:"kind"`

	StartedAt   time.Time  `gorm:"not null" json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CreatedCount int  `gorm:"default:0" json:"createdCount"`
	UpdatedCount int  `gorm:"default:0" json:"updatedCount"`
	FailedCount  int  `gorm:"default:0" json:"failedCount"`
	Success      bool `gorm:"default:false" json:"success"`

	Message string      `gorm:"type:text" json:"message"`
	Errors  StringSlice `gorm:"type:jsonb" json:"errors,omitempty"`

	InitiatedBy string `gorm:"type:varchar(255)" json:"initiatedBy,omitempty"`

	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// TableName specifies the table name for ImportRun
func (ImportRun) TableName() string {
	return "import_runs"
}

// ImportReport accumulates the outcome of one synchronization run. It is
// built up record by record and sealed with Finish; errors are captured as
// values, one entry per failed record.
type ImportReport struct {
	Kind        ImportKind `json:"kind"`
	StartedAt   time.Time  `json:"startedAt"`
	CompletedAt time.Time  `json:"completedAt"`

	CreatedCount int      `json:"createdCount"`
	UpdatedCount int      `json:"updatedCount"`
	FailedCount  int      `json:"failedCount"`
	Errors       []string `json:"errors,omitempty"`

	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewImportReport starts a report for a run of the given kind.
func NewImportReport(kind ImportKind) *ImportReport {
	return &ImportReport{
		Kind:      kind,
		StartedAt: time.Now().UTC(),
	}
}

// RecordCreated counts a record that resulted in a new entity.
func (r *ImportReport) RecordCreated() {
	r.CreatedCount++
}

// RecordUpdated counts a record that updated an existing entity.
func (r *ImportReport) RecordUpdated() {
	r.UpdatedCount++
}

// RecordFailure counts a failed record and captures its error with the
// external id as context.
func (r *ImportReport) RecordFailure(externalID string, err error) {
	r.FailedCount++
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", externalID, err))
}

// Fail records a run-level error that prevented any records from being
// processed.
func (r *ImportReport) Fail(err error) {
	r.Errors = append(r.Errors, err.Error())
}

// Attempted returns the number of records the run attempted.
func (r *ImportReport) Attempted() int {
	return r.CreatedCount + r.UpdatedCount + r.FailedCount
}

// Finish stamps the completion time and derives success and the summary
// message. A run succeeds when no record failed and no run-level error was
// recorded.
func (r *ImportReport) Finish() *ImportReport {
	r.CompletedAt = time.Now().UTC()
	r.Success = r.FailedCount == 0 && len(r.Errors) == 0
	kind := "category"
	if r.Kind == ImportKindProducts {
		kind = "product"
	}
	r.Message = fmt.Sprintf("%s import: %d created, %d updated", kind, r.CreatedCount, r.UpdatedCount)
	return r
}

// ToRun converts the report to its persisted form.
func (r *ImportReport) ToRun(initiatedBy string) *ImportRun {
	completed := r.CompletedAt
	return &ImportRun{
		ID:           uuid.New(),
		Kind:         r.Kind,
		StartedAt:    r.StartedAt,
		CompletedAt:  &completed,
		CreatedCount: r.CreatedCount,
		UpdatedCount: r.UpdatedCount,
		FailedCount:  r.FailedCount,
		Success:      r.Success,
		Message:      r.Message,
		Errors:       StringSlice(r.Errors),
		InitiatedBy:  initiatedBy,
	}
}
