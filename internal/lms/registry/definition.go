package registry

// Definition describes one supported LMS and how to build its validator.
type Definition interface {
	// Identity
	Kind() string        // e.g., "canvas"
	DisplayName() string // e.g., "Canvas"

	// NewValidator binds credentials to a fresh single-use validator.
	// It must not perform any network calls.
	NewValidator(creds Credentials) (Validator, error)
}
