package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/morganchorlton3/order-tracker/internal/domain/integration"
)

// BeginAuthorizationResponse is returned when an authorization flow starts
type BeginAuthorizationResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
	Message          string `json:"message"`
}

// AuthorizationResult is returned when a callback completes successfully
type AuthorizationResult struct {
	Source   string `json:"source"`
	ShopID   string `json:"shop_id"`
	ShopName string `json:"shop_name"`
}

// AuthStatusResponse describes the credential state for one source
type AuthStatusResponse struct {
	Authenticated bool       `json:"authenticated"`
	Expired       bool       `json:"expired"`
	ShopID        string     `json:"shop_id,omitempty"`
	ShopName      string     `json:"shop_name,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// SyncRunResponse represents one sync run in API responses
type SyncRunResponse struct {
	ID               uuid.UUID  `json:"id"`
	Kind             string     `json:"sync_type"`
	Status           string     `json:"status"`
	Source           string     `json:"source"`
	RecordsProcessed int        `json:"records_processed"`
	RecordsSucceeded int        `json:"records_successful"`
	RecordsFailed    int        `json:"records_failed"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// ToSyncRunResponse converts a domain sync run to a response
func ToSyncRunResponse(run *integration.SyncRun) SyncRunResponse {
	return SyncRunResponse{
		ID:               run.ID,
		Kind:             run.Kind.String(),
		Status:           run.Status.String(),
		Source:           run.Source.String(),
		RecordsProcessed: run.RecordsProcessed,
		RecordsSucceeded: run.RecordsSucceeded,
		RecordsFailed:    run.RecordsFailed,
		ErrorMessage:     run.ErrorMessage,
		StartedAt:        run.StartedAt,
		CompletedAt:      run.CompletedAt,
	}
}
