package store

import (
	"time"

	"github.com/google/uuid"
)

// Instructor is an account owner. Authentication is delegated to Clerk; the
// backend only keys rows by the Clerk user id.
type Instructor struct {
	ID                  uuid.UUID `json:"id"`
	ClerkUserID         string    `json:"clerk_user_id"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// LMSConnection is a stored LMS credential set belonging to one instructor.
// Credentials hold raw secret values and must be masked before leaving the
// service.
type LMSConnection struct {
	ID           uuid.UUID         `json:"id"`
	InstructorID uuid.UUID         `json:"instructor_id"`
	LMSType      string            `json:"lms_type"`
	Name         string            `json:"name"`
	Credentials  map[string]string `json:"credentials"`
	IsActive     bool              `json:"is_active"`
	LastSync     *time.Time        `json:"last_sync"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Thread is one conversation belonging to an instructor. UpdatedAt moves
// whenever a message lands in the thread.
type Thread struct {
	ID           uuid.UUID `json:"id"`
	InstructorID uuid.UUID `json:"instructor_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Message is one turn in a thread. ExternalID gives upstream callers an
// idempotency handle.
type Message struct {
	ID         uuid.UUID `json:"id"`
	ThreadID   uuid.UUID `json:"thread_id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	ExternalID *string   `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}
