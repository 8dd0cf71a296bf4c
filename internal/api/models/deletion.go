package models

// The deletion endpoints keep the wire contract of the original deletion API:
// snake_case field names that predate the camelCase standardization, and a
// domain-specific 409 body instead of an RFC7807 problem. Existing clients
// parse these shapes directly.

// DeletionInitiateRequest is the request body for initiating a person deletion.
type DeletionInitiateRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// DeletionInitiateResponse is returned when a deletion is successfully initiated.
type DeletionInitiateResponse struct {
	Success              bool      `json:"success"`
	ConfirmationToken    string    `json:"confirmation_token"`
	ExpiresAt            Timestamp `json:"expires_at"`
	BlockingRecordsFound int       `json:"blocking_records_found"`
}

// DeletionConfirmRequest is the request body for confirming a person deletion.
type DeletionConfirmRequest struct {
	ConfirmationToken string  `json:"confirmation_token"`
	Reason            *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// RelatedRecord describes one record that blocks a person's deletion.
type RelatedRecord struct {
	ID         string    `json:"id"`
	ParentID   string    `json:"parent_id"`
	ParentName *string   `json:"parent_name,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  Timestamp `json:"created_at"`
}

// ReferentialIntegrityError is the 409 response body when blocking records exist.
type ReferentialIntegrityError struct {
	Error          string          `json:"error"`
	Message        string          `json:"message"`
	RelatedRecords []RelatedRecord `json:"related_records"`
}

// ErrCodeReferentialIntegrity is the error code in ReferentialIntegrityError payloads.
const ErrCodeReferentialIntegrity = "REFERENTIAL_INTEGRITY_VIOLATION"
