package deletion

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/peopleregistry/peopleregistry/internal/audit"
	"github.com/peopleregistry/peopleregistry/internal/person"
	"github.com/peopleregistry/peopleregistry/internal/project"
	"github.com/peopleregistry/peopleregistry/internal/subscription"
)

// PersonDirectory resolves and deletes the people targeted by the
// workflow. Satisfied by person.Repository.
type PersonDirectory interface {
	Get(ctx context.Context, id string) (*person.Person, error)
	Delete(ctx context.Context, id string) error
}

// SubscriptionSource lists the dependent records that can block a
// deletion. Satisfied by subscription.Repository.
type SubscriptionSource interface {
	ListByPerson(ctx context.Context, personID string) ([]*subscription.Subscription, error)
}

// ProjectSource resolves project names for blocking-record payloads.
// Satisfied by project.Repository.
type ProjectSource interface {
	Get(ctx context.Context, id string) (*project.Project, error)
}

// Notifier sends the post-deletion notification. Satisfied by
// notify.Client.
type Notifier interface {
	SendDeletionConfirmed(ctx context.Context, email, name string) error
}

// Actor identifies the authenticated caller of a workflow operation,
// with opaque request metadata for the audit trail.
type Actor struct {
	ID        string
	IP        string
	UserAgent string
}

// InitiateResult is returned by a successful Initiate.
type InitiateResult struct {
	Token                string
	ExpiresAt            time.Time
	BlockingRecordsFound int
}

// Service implements the two-phase deletion workflow.
type Service struct {
	people   PersonDirectory
	subs     SubscriptionSource
	projects ProjectSource
	tokens   TokenStore
	audit    audit.Sink
	notifier Notifier
	logger   zerolog.Logger
}

// Config holds the service's collaborators. Notifier may be nil.
type Config struct {
	People   PersonDirectory
	Subs     SubscriptionSource
	Projects ProjectSource
	Tokens   TokenStore
	Audit    audit.Sink
	Notifier Notifier
	Logger   zerolog.Logger
}

// NewService creates a new deletion service.
func NewService(cfg Config) *Service {
	return &Service{
		people:   cfg.People,
		subs:     cfg.Subs,
		projects: cfg.Projects,
		tokens:   cfg.Tokens,
		audit:    cfg.Audit,
		notifier: cfg.Notifier,
		logger:   cfg.Logger,
	}
}

// Initiate checks whether the person can be deleted and, if so, issues
// a confirmation token. Any previous unconsumed token for the same
// person is replaced. Returns person.ErrPersonNotFound or an
// *IntegrityError on failure.
func (s *Service) Initiate(ctx context.Context, personID string, actor Actor, reason *string) (*InitiateResult, error) {
	if _, err := s.people.Get(ctx, personID); err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			s.record(ctx, audit.EventDeletionDenied, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
				"error": "person not found",
			})
		}
		return nil, err
	}

	blocking, err := s.findBlockingRecords(ctx, personID)
	if err != nil {
		return nil, err
	}
	if len(blocking) > 0 {
		s.record(ctx, audit.EventDeletionBlocked, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
			"blocking_records": len(blocking),
		})
		return nil, &IntegrityError{PersonID: personID, RelatedRecords: blocking}
	}

	value, err := GenerateTokenValue()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	tok := &Token{
		Value:       value,
		PersonID:    personID,
		RequestedBy: actor.ID,
		Reason:      reason,
		IssuedAt:    now,
		ExpiresAt:   now.Add(TokenTTL),
		RequestIP:   actor.IP,
		UserAgent:   actor.UserAgent,
	}
	if err := s.tokens.Put(ctx, tok); err != nil {
		return nil, err
	}

	s.record(ctx, audit.EventDeletionInitiated, personID, actor, audit.OutcomeSuccess, audit.SeverityInfo, map[string]any{
		"reason":     derefReason(reason),
		"expires_at": tok.ExpiresAt,
	})

	return &InitiateResult{
		Token:     value,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

// Confirm validates the presented token and, if valid, performs the
// deletion. The token is consumed only when the delete succeeds; a
// failed delete releases it so the client can retry before expiry.
func (s *Service) Confirm(ctx context.Context, personID, tokenValue string, actor Actor, reason *string) error {
	target, err := s.people.Get(ctx, personID)
	if err != nil {
		// A missing person whose token record still exists means the
		// deletion already went through and this confirm is a replay.
		// Replays are reported as an invalid token, not a missing
		// person.
		if errors.Is(err, person.ErrPersonNotFound) {
			if tok, lookupErr := s.tokens.FindByValue(ctx, tokenValue); lookupErr == nil && tok.PersonID == personID {
				s.record(ctx, audit.EventDeletionDenied, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
					"error": "token already consumed",
				})
				return ErrInvalidOrExpiredToken
			}
		}
		return err
	}

	tok, err := s.tokens.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			s.record(ctx, audit.EventDeletionDenied, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
				"error": "invalid or expired token",
			})
			return ErrInvalidOrExpiredToken
		}
		return err
	}

	// A token for a different person is reported identically to a
	// missing token so callers cannot probe other people's tokens.
	if tok.PersonID != personID {
		s.record(ctx, audit.EventDeletionDenied, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
			"error": "token does not match person",
		})
		return ErrInvalidOrExpiredToken
	}

	if tok.RequestedBy != actor.ID {
		s.record(ctx, audit.EventDeletionDenied, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
			"error":        "token owned by different actor",
			"requested_by": tok.RequestedBy,
		})
		return ErrForbidden
	}

	// Re-check integrity: a subscription may have become active
	// between initiate and confirm. The token is left alive so the
	// client can resolve the records and retry before expiry.
	blocking, err := s.findBlockingRecords(ctx, personID)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		s.record(ctx, audit.EventDeletionBlocked, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
			"blocking_records": len(blocking),
			"phase":            "confirm",
		})
		return &IntegrityError{PersonID: personID, RelatedRecords: blocking}
	}

	// Claim the token before deleting so two racing confirms resolve
	// to a single winner.
	claimed, err := s.tokens.Consume(ctx, tokenValue)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrInvalidOrExpiredToken
	}

	if err := s.people.Delete(ctx, personID); err != nil {
		// Un-claim so the entity never outlives a burned token.
		if releaseErr := s.tokens.Release(ctx, tokenValue); releaseErr != nil {
			s.logger.Error().Err(releaseErr).Str("person_id", personID).Msg("failed to release deletion token")
		}
		s.record(ctx, audit.EventDeletionFailed, personID, actor, audit.OutcomeFailure, audit.SeverityWarning, map[string]any{
			"error": err.Error(),
		})
		return err
	}

	s.record(ctx, audit.EventDeletionConfirmed, personID, actor, audit.OutcomeSuccess, audit.SeverityInfo, map[string]any{
		"reason": derefReason(reason),
	})

	if s.notifier != nil {
		if err := s.notifier.SendDeletionConfirmed(ctx, target.Email, target.FullName()); err != nil {
			s.logger.Warn().Err(err).Str("person_id", personID).Msg("failed to send deletion notification")
		}
	}

	return nil
}

// findBlockingRecords returns all active or pending subscriptions for
// the person, enriched with project names where available.
func (s *Service) findBlockingRecords(ctx context.Context, personID string) ([]RelatedRecord, error) {
	subs, err := s.subs.ListByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}

	var blocking []RelatedRecord
	for _, sub := range subs {
		if !sub.Status.Blocking() {
			continue
		}

		record := RelatedRecord{
			ID:        sub.ID,
			ParentID:  sub.ProjectID,
			Status:    string(sub.Status),
			CreatedAt: sub.CreatedAt,
		}
		if prj, err := s.projects.Get(ctx, sub.ProjectID); err == nil {
			record.ParentName = &prj.Name
		}
		blocking = append(blocking, record)
	}
	return blocking, nil
}

// record reports an event to the audit sink. Audit failures are logged
// and never fail the operation being audited.
func (s *Service) record(ctx context.Context, eventType, personID string, actor Actor, outcome, severity string, details map[string]any) {
	event := audit.NewEvent(eventType, personID, actor.ID, outcome, severity)
	event.IP = actor.IP
	event.UserAgent = actor.UserAgent
	event.Details = details

	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Str("person_id", personID).Msg("failed to record audit event")
	}
}

func derefReason(reason *string) string {
	if reason == nil {
		return ""
	}
	return *reason
}
