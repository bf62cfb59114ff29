package store

import (
	"context"

	"github.com/google/uuid"
)

const messageColumns = "id, thread_id, role, content, external_id, created_at"

func scanMessage(row interface{ Scan(...any) error }) (Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ThreadID, &m.Role, &m.Content, &m.ExternalID, &m.CreatedAt)
	return m, wrapErr(err)
}

type CreateMessageParams struct {
	ThreadID   uuid.UUID
	Role       string
	Content    string
	ExternalID *string
}

// CreateMessage appends a message and bumps the thread's updated_at in the
// same transaction, so thread ordering tracks latest activity. A duplicate
// external_id fails with ErrConflict; a missing thread with ErrNotFound.
func (s *Store) CreateMessage(ctx context.Context, p CreateMessageParams) (Message, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Message{}, wrapErr(err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO messages (thread_id, role, content, external_id)
		VALUES ($1, $2, $3, $4)
		RETURNING `+messageColumns,
		p.ThreadID, p.Role, p.Content, p.ExternalID,
	)
	m, err := scanMessage(row)
	if err != nil {
		return Message{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE threads SET updated_at = now() WHERE id = $1`, p.ThreadID); err != nil {
		return Message{}, wrapErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Message{}, wrapErr(err)
	}
	return m, nil
}

// ListMessagesByThread returns a thread's messages in chronological order.
func (s *Store) ListMessagesByThread(ctx context.Context, threadID uuid.UUID) ([]Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE thread_id = $1
		ORDER BY created_at ASC, id ASC`,
		threadID,
	)
	if err != nil {
		return nil, wrapErr(err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, wrapErr(rows.Err())
}

func (s *Store) GetMessageByExternalID(ctx context.Context, externalID string) (Message, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE external_id = $1`,
		externalID,
	)
	return scanMessage(row)
}
