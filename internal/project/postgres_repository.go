package project

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

// NewPostgresRepository creates a new PostgreSQL project repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const projectColumns = `
	id, name, description, start_date, end_date, max_participants, status,
	category, location, requirements, registration_end_date, is_enabled,
	created_at, updated_at
`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.StartDate,
		&p.EndDate,
		&p.MaxParticipants,
		&p.Status,
		&p.Category,
		&p.Location,
		&p.Requirements,
		&p.RegistrationEndDate,
		&p.IsEnabled,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Get retrieves a project by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

// List retrieves a page of projects ordered by ID.
func (r *PostgresRepository) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	// Fetch one extra row to detect whether another page exists.
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id > $1 ORDER BY id LIMIT $2`
	rows, err := r.pool.Query(ctx, query, opts.Cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	result := &ListResult{}
	for rows.Next() {
		p, err := scanProject(rows)
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

// Create creates a new project.
func (r *PostgresRepository) Create(ctx context.Context, p *Project) error {
	query := `
		INSERT INTO projects (` + projectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.StartDate,
		p.EndDate,
		p.MaxParticipants,
		p.Status,
		p.Category,
		p.Location,
		p.Requirements,
		p.RegistrationEndDate,
		p.IsEnabled,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

// Update updates an existing project.
func (r *PostgresRepository) Update(ctx context.Context, p *Project) error {
	query := `
		UPDATE projects SET
			name = $2,
			description = $3,
			start_date = $4,
			end_date = $5,
			max_participants = $6,
			status = $7,
			category = $8,
			location = $9,
			requirements = $10,
			registration_end_date = $11,
			is_enabled = $12,
			updated_at = $13
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.StartDate,
		p.EndDate,
		p.MaxParticipants,
		p.Status,
		p.Category,
		p.Location,
		p.Requirements,
		p.RegistrationEndDate,
		p.IsEnabled,
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Delete deletes a project.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM projects WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
