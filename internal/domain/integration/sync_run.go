package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/order"
	"github.com/morganchorlton3/order-tracker/internal/domain/shared"
)

// SyncKind represents the kind of synchronization job
type SyncKind string

const (
	SyncKindOrderImport   SyncKind = "order_import"
	SyncKindOrderExport   SyncKind = "order_export"
	SyncKindProductImport SyncKind = "product_import"
	SyncKindProductExport SyncKind = "product_export"
)

// IsValid checks if the kind is a valid SyncKind
func (k SyncKind) IsValid() bool {
	switch k {
	case SyncKindOrderImport, SyncKindOrderExport, SyncKindProductImport, SyncKindProductExport:
		return true
	}
	return false
}

// String returns the string representation of SyncKind
func (k SyncKind) String() string {
	return string(k)
}

// SyncStatus represents the lifecycle status of a sync run
type SyncStatus string

const (
	SyncStatusPending    SyncStatus = "pending"
	SyncStatusInProgress SyncStatus = "in_progress"
	SyncStatusSuccess    SyncStatus = "success"
	SyncStatusFailed     SyncStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state
func (s SyncStatus) IsTerminal() bool {
	return s == SyncStatusSuccess || s == SyncStatusFailed
}

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// SyncRun is the durable ledger entry for one execution attempt of an import
// or export job. Run-level status answers "did the batch mechanism work";
// the record counts answer "how much data landed". A run that tolerated some
// per-record failures still ends in success, with the failures counted.
type SyncRun struct {
	ID               uuid.UUID    `gorm:"type:uuid;primary_key"`
	Kind             SyncKind     `gorm:"type:varchar(30);not null;index"`
	Status           SyncStatus   `gorm:"type:varchar(20);not null;index"`
	Source           order.Source `gorm:"type:varchar(20);not null;index"`
	RecordsProcessed int          `gorm:"not null;default:0"`
	RecordsSucceeded int          `gorm:"not null;default:0"`
	RecordsFailed    int          `gorm:"not null;default:0"`
	ErrorMessage     string       `gorm:"type:text"`
	StartedAt        time.Time    `gorm:"not null;index"`
	CompletedAt      *time.Time
}

// TableName specifies the table name for GORM
func (SyncRun) TableName() string {
	return "sync_runs"
}

// NewSyncRun creates a pending sync run for the given kind and source
func NewSyncRun(kind SyncKind, source order.Source) (*SyncRun, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_SYNC_KIND", "Unknown sync kind")
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", "Unknown sync source")
	}
	return &SyncRun{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    SyncStatusPending,
		Source:    source,
		StartedAt: time.Now(),
	}, nil
}

// Start transitions the run to in_progress
func (r *SyncRun) Start() error {
	if r.Status != SyncStatusPending {
		return shared.ErrInvalidState
	}
	r.Status = SyncStatusInProgress
	return nil
}

// Complete transitions the run to success with the final counts.
// CompletedAt is always set on a terminal transition.
func (r *SyncRun) Complete(processed, succeeded, failed int) {
	r.Status = SyncStatusSuccess
	r.RecordsProcessed = processed
	r.RecordsSucceeded = succeeded
	r.RecordsFailed = failed
	now := time.Now()
	r.CompletedAt = &now
}

// Fail transitions the run to failed with the final counts and error message.
// CompletedAt is always set, even on total failure.
func (r *SyncRun) Fail(processed, succeeded, failed int, errMsg string) {
	r.Status = SyncStatusFailed
	r.RecordsProcessed = processed
	r.RecordsSucceeded = succeeded
	r.RecordsFailed = failed
	r.ErrorMessage = errMsg
	now := time.Now()
	r.CompletedAt = &now
}
