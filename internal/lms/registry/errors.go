package registry

import (
	"fmt"
	"strings"
)

// UnsupportedLMSTypeError is returned by Registry.Create for unknown LMS types.
type UnsupportedLMSTypeError struct {
	Kind      string
	Supported []string
}

func (e *UnsupportedLMSTypeError) Error() string {
	return fmt.Sprintf("LMS type %q is not supported; supported types: %s",
		e.Kind, strings.Join(e.Supported, ", "))
}

// InvalidCredentialsError is returned by structural credential checks. The
// reason is safe to surface to clients and never contains credential values.
type InvalidCredentialsError struct {
	Reason string
}

func (e *InvalidCredentialsError) Error() string {
	return e.Reason
}
