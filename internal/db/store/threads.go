package store

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const threadColumns = "id, instructor_id, title, created_at, updated_at"

const defaultThreadTitle = "New Conversation"

func scanThread(row interface{ Scan(...any) error }) (Thread, error) {
	var t Thread
	err := row.Scan(&t.ID, &t.InstructorID, &t.Title, &t.CreatedAt, &t.UpdatedAt)
	return t, wrapErr(err)
}

// CreateThread starts a conversation for an instructor. An empty title falls
// back to the default.
func (s *Store) CreateThread(ctx context.Context, instructorID uuid.UUID, title string) (Thread, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultThreadTitle
	}
	row := s.pool.QueryRow(ctx, `
		INSERT INTO threads (instructor_id, title)
		VALUES ($1, $2)
		RETURNING `+threadColumns,
		instructorID, title,
	)
	return scanThread(row)
}

func (s *Store) GetThread(ctx context.Context, id uuid.UUID) (Thread, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+threadColumns+`
		FROM threads
		WHERE id = $1`,
		id,
	)
	return scanThread(row)
}

// ListThreadsByInstructor returns threads ordered by most recent activity.
func (s *Store) ListThreadsByInstructor(ctx context.Context, instructorID uuid.UUID) ([]Thread, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+threadColumns+`
		FROM threads
		WHERE instructor_id = $1
		ORDER BY updated_at DESC`,
		instructorID,
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	out := []Thread{}
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, wrapErr(rows.Err())
}

func (s *Store) UpdateThreadTitle(ctx context.Context, id uuid.UUID, title string) (Thread, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE threads
		SET title = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+threadColumns,
		id, title,
	)
	return scanThread(row)
}

// DeleteThread removes a thread; its messages go with it via the cascade.
func (s *Store) DeleteThread(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
