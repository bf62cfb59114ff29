package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const connectionColumns = "id, instructor_id, lms_type, name, credentials, is_active, last_sync, created_at, updated_at"

func scanConnection(row interface{ Scan(...any) error }) (LMSConnection, error) {
	var c LMSConnection
	err := row.Scan(
		&c.ID, &c.InstructorID, &c.LMSType, &c.Name, &c.Credentials,
		&c.IsActive, &c.LastSync, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, wrapErr(err)
}

type CreateConnectionParams struct {
	InstructorID uuid.UUID
	LMSType      string
	Name         string
	Credentials  map[string]string
}

func (s *Store) CreateConnection(ctx context.Context, p CreateConnectionParams) (LMSConnection, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO lms_connections (instructor_id, lms_type, name, credentials)
		VALUES ($1, $2, $3, $4)
		RETURNING `+connectionColumns,
		p.InstructorID, p.LMSType, p.Name, p.Credentials,
	)
	return scanConnection(row)
}

func (s *Store) GetConnection(ctx context.Context, id uuid.UUID) (LMSConnection, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+connectionColumns+`
		FROM lms_connections
		WHERE id = $1`,
		id,
	)
	return scanConnection(row)
}

// ListConnectionsByInstructor returns an instructor's connections, newest
// first. With activeOnly set, inactive connections are filtered out.
func (s *Store) ListConnectionsByInstructor(ctx context.Context, instructorID uuid.UUID, activeOnly bool) ([]LMSConnection, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+connectionColumns+`
		FROM lms_connections
		WHERE instructor_id = $1 AND ($2 = false OR is_active)
		ORDER BY created_at DESC`,
		instructorID, activeOnly,
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	return collectConnections(rows)
}

func collectConnections(rows pgx.Rows) ([]LMSConnection, error) {
	out := []LMSConnection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, wrapErr(rows.Err())
}

// UpdateConnectionParams carries partial updates; nil fields keep the stored
// value.
type UpdateConnectionParams struct {
	Name        *string
	LMSType     *string
	Credentials map[string]string
	IsActive    *bool
}

func (s *Store) UpdateConnection(ctx context.Context, id uuid.UUID, p UpdateConnectionParams) (LMSConnection, error) {
	// A nil map would encode as jsonb 'null' rather than SQL NULL and defeat
	// the COALESCE, so pass a bare NULL when credentials are unchanged.
	var creds any
	if p.Credentials != nil {
		creds = p.Credentials
	}
	row := s.pool.QueryRow(ctx, `
		UPDATE lms_connections
		SET name        = COALESCE($2, name),
		    lms_type    = COALESCE($3, lms_type),
		    credentials = COALESCE($4, credentials),
		    is_active   = COALESCE($5, is_active),
		    updated_at  = now()
		WHERE id = $1
		RETURNING `+connectionColumns,
		id, p.Name, p.LMSType, creds, p.IsActive,
	)
	return scanConnection(row)
}

// TouchConnectionSync records a completed sync by moving last_sync to now.
func (s *Store) TouchConnectionSync(ctx context.Context, id uuid.UUID, at time.Time) (LMSConnection, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE lms_connections
		SET last_sync = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+connectionColumns,
		id, at,
	)
	return scanConnection(row)
}

func (s *Store) DeleteConnection(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM lms_connections WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
