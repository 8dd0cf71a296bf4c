// Package deletion implements the two-phase person deletion workflow:
// a deletion is initiated, which checks referential integrity and
// issues a short-lived confirmation token, and later confirmed with
// that token, which re-checks integrity and performs the delete.
package deletion

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

// Token lifetime and generation constants.
const (
	TokenTTL        = 15 * time.Minute
	TokenLength     = 32 // bytes of entropy
	MaxReasonLength = 500
)

// Workflow errors.
var (
	ErrTokenNotFound         = errors.New("deletion token not found")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired confirmation token")
	ErrForbidden             = errors.New("confirmation token belongs to a different actor")
)

// Token authorizes one specific person's deletion. Tokens are
// single-use, actor-bound, and expire after TokenTTL.
type Token struct {
	// Value is the opaque token string presented by the client.
	Value string

	// PersonID is the person this token authorizes deleting.
	PersonID string

	// RequestedBy is the actor who initiated the deletion. Only the
	// same actor may confirm.
	RequestedBy string

	Reason *string

	IssuedAt  time.Time
	ExpiresAt time.Time
	Consumed  bool

	// RequestIP and UserAgent are pass-through request metadata for
	// the audit trail.
	RequestIP string
	UserAgent string
}

// Expired reports whether the token is past its expiry at the given time.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// GenerateTokenValue creates a cryptographically random token value.
func GenerateTokenValue() (string, error) {
	bytes := make([]byte, TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("generating deletion token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// RelatedRecord describes one dependent record that blocks a deletion.
type RelatedRecord struct {
	ID         string
	ParentID   string
	ParentName *string
	Status     string
	CreatedAt  time.Time
}

// IntegrityError is returned when active or pending dependent records
// block a person's deletion. It enumerates every blocking record so
// clients can show the user what to resolve first.
type IntegrityError struct {
	PersonID       string
	RelatedRecords []RelatedRecord
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("person %s has %d blocking records", e.PersonID, len(e.RelatedRecords))
}
