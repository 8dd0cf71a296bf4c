package person

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL person repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const personColumns = `
	id, first_name, last_name, email, phone, date_of_birth,
	street, city, state, postal_code, country,
	is_admin, is_active, email_verified,
	created_at, updated_at, last_login_at
`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	err := row.Scan(
		&p.ID,
		&p.FirstName,
		&p.LastName,
		&p.Email,
		&p.Phone,
		&p.DateOfBirth,
		&p.Address.Street,
		&p.Address.City,
		&p.Address.State,
		&p.Address.PostalCode,
		&p.Address.Country,
		&p.IsAdmin,
		&p.IsActive,
		&p.EmailVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get retrieves a person by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = $1`
	return scanPerson(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a person by email address.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE email = $1`
	return scanPerson(r.pool.QueryRow(ctx, query, email))
}

// List retrieves a page of people ordered by ID.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	// Fetch one extra row to detect whether another page exists.
	query := `SELECT ` + personColumns + ` FROM people WHERE id > $1 ORDER BY id LIMIT $2`
	rows, err := r.pool.Query(ctx, query, opts.Cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("listing people: %w", err)
	}
	defer rows.Close()

	result := &ListResult{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(result.Items) > limit {
		result.Items = result.Items[:limit]
		result.NextCursor = result.Items[limit-1].ID
	}

	return result, nil
}

// Create creates a new person.
func (r *PostgresRepository) Create(ctx context.Context, p *Person) error {
	query := `
		INSERT INTO people (` + personColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.DateOfBirth,
		p.Address.Street,
		p.Address.City,
		p.Address.State,
		p.Address.PostalCode,
		p.Address.Country,
		p.IsAdmin,
		p.IsActive,
		p.EmailVerified,
		p.CreatedAt,
		p.UpdatedAt,
		p.LastLoginAt,
	)
	return err
}

// Update updates an existing person.
func (r *PostgresRepository) Update(ctx context.Context, p *Person) error {
	query := `
		UPDATE people SET
			first_name = $2,
			last_name = $3,
			email = $4,
			phone = $5,
			date_of_birth = $6,
			street = $7,
			city = $8,
			state = $9,
			postal_code = $10,
			country = $11,
			is_admin = $12,
			is_active = $13,
			email_verified = $14,
			updated_at = $15,
			last_login_at = $16
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.FirstName,
		p.LastName,
		p.Email,
		p.Phone,
		p.DateOfBirth,
		p.Address.Street,
		p.Address.City,
		p.Address.State,
		p.Address.PostalCode,
		p.Address.Country,
		p.IsAdmin,
		p.IsActive,
		p.EmailVerified,
		p.UpdatedAt,
		p.LastLoginAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrPersonNotFound
	}

	return nil
}

// Delete deletes a person.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM people WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrPersonNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
