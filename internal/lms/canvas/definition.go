package canvas

import (
	"github.com/anita-ai/anita/internal/lms/registry"
)

// Kind is the registry identifier for Canvas connections.
const Kind = "canvas"

// Definition registers the Canvas validator with the LMS registry.
type Definition struct{}

func (Definition) Kind() string        { return Kind }
func (Definition) DisplayName() string { return "Canvas" }

// NewValidator binds a validator to one credential set. No network access and
// no structural checks happen here; the pipeline runs those.
func (Definition) NewValidator(creds registry.Credentials) (registry.Validator, error) {
	return newValidator(creds), nil
}
