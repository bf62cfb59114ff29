package store

import (
	"context"

	"github.com/google/uuid"
)

const instructorColumns = "id, clerk_user_id, onboarding_completed, created_at, updated_at"

func scanInstructor(row interface{ Scan(...any) error }) (Instructor, error) {
	var i Instructor
	err := row.Scan(&i.ID, &i.ClerkUserID, &i.OnboardingCompleted, &i.CreatedAt, &i.UpdatedAt)
	return i, wrapErr(err)
}

// CreateInstructor inserts a new instructor. A duplicate Clerk user id fails
// with ErrConflict.
func (s *Store) CreateInstructor(ctx context.Context, clerkUserID string) (Instructor, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO instructors (clerk_user_id)
		VALUES ($1)
		RETURNING `+instructorColumns,
		clerkUserID,
	)
	return scanInstructor(row)
}

func (s *Store) GetInstructor(ctx context.Context, id uuid.UUID) (Instructor, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+instructorColumns+`
		FROM instructors
		WHERE id = $1`,
		id,
	)
	return scanInstructor(row)
}

func (s *Store) GetInstructorByClerkID(ctx context.Context, clerkUserID string) (Instructor, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+instructorColumns+`
		FROM instructors
		WHERE clerk_user_id = $1`,
		clerkUserID,
	)
	return scanInstructor(row)
}

func (s *Store) SetInstructorOnboarding(ctx context.Context, id uuid.UUID, completed bool) (Instructor, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE instructors
		SET onboarding_completed = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+instructorColumns,
		id, completed,
	)
	return scanInstructor(row)
}

func (s *Store) DeleteInstructor(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM instructors WHERE id = $1`, id)
	if err != nil {
		return wrapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
