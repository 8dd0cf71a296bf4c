package deletion

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresTokenStore is a PostgreSQL implementation of TokenStore.
// Consume relies on a conditional UPDATE so racing confirms resolve
// to a single winner inside the database.
type PostgresTokenStore struct {
	pool *pgxpool.Pool
}

// NewPostgresTokenStore creates a new PostgreSQL token store.
func NewPostgresTokenStore(pool *pgxpool.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

// Put stores the token, replacing any live token for the same person.
func (s *PostgresTokenStore) Put(ctx context.Context, tok *Token) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storing deletion token: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM deletion_tokens WHERE person_id = $1`, tok.PersonID); err != nil {
		return fmt.Errorf("replacing deletion token: %w", err)
	}

	query := `
		INSERT INTO deletion_tokens (
			token, person_id, requested_by, reason,
			issued_at, expires_at, consumed, request_ip, user_agent
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.Exec(ctx, query,
		tok.Value,
		tok.PersonID,
		tok.RequestedBy,
		tok.Reason,
		tok.IssuedAt,
		tok.ExpiresAt,
		tok.Consumed,
		tok.RequestIP,
		tok.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("storing deletion token: %w", err)
	}

	return tx.Commit(ctx)
}

// GetByToken retrieves a live token by its value.
func (s *PostgresTokenStore) GetByToken(ctx context.Context, value string) (*Token, error) {
	query := `
		SELECT token, person_id, requested_by, reason,
		       issued_at, expires_at, consumed, request_ip, user_agent
		FROM deletion_tokens
		WHERE token = $1 AND NOT consumed AND expires_at > now()
	`

	var tok Token
	err := s.pool.QueryRow(ctx, query, value).Scan(
		&tok.Value,
		&tok.PersonID,
		&tok.RequestedBy,
		&tok.Reason,
		&tok.IssuedAt,
		&tok.ExpiresAt,
		&tok.Consumed,
		&tok.RequestIP,
		&tok.UserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &tok, nil
}

// FindByValue retrieves a token record whether or not it has been
// consumed or has expired.
func (s *PostgresTokenStore) FindByValue(ctx context.Context, value string) (*Token, error) {
	query := `
		SELECT token, person_id, requested_by, reason,
		       issued_at, expires_at, consumed, request_ip, user_agent
		FROM deletion_tokens
		WHERE token = $1
	`

	var tok Token
	err := s.pool.QueryRow(ctx, query, value).Scan(
		&tok.Value,
		&tok.PersonID,
		&tok.RequestedBy,
		&tok.Reason,
		&tok.IssuedAt,
		&tok.ExpiresAt,
		&tok.Consumed,
		&tok.RequestIP,
		&tok.UserAgent,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &tok, nil
}

// Consume atomically marks the token consumed.
func (s *PostgresTokenStore) Consume(ctx context.Context, value string) (bool, error) {
	query := `
		UPDATE deletion_tokens
		SET consumed = true
		WHERE token = $1 AND NOT consumed AND expires_at > now()
	`
	result, err := s.pool.Exec(ctx, query, value)
	if err != nil {
		return false, fmt.Errorf("consuming deletion token: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// Release un-consumes a token.
func (s *PostgresTokenStore) Release(ctx context.Context, value string) error {
	_, err := s.pool.Exec(ctx, `UPDATE deletion_tokens SET consumed = false WHERE token = $1`, value)
	if err != nil {
		return fmt.Errorf("releasing deletion token: %w", err)
	}
	return nil
}

// Invalidate removes any live token for the person.
func (s *PostgresTokenStore) Invalidate(ctx context.Context, personID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM deletion_tokens WHERE person_id = $1`, personID)
	if err != nil {
		return fmt.Errorf("invalidating deletion token: %w", err)
	}
	return nil
}

// SweepExpired removes tokens past their expiry.
func (s *PostgresTokenStore) SweepExpired(ctx context.Context) (int, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM deletion_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("sweeping expired deletion tokens: %w", err)
	}
	return int(result.RowsAffected()), nil
}

// Ensure PostgresTokenStore implements TokenStore interface.
var _ TokenStore = (*PostgresTokenStore)(nil)
