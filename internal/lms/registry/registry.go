package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the central registry for all LMS validators.
type Registry struct {
	definitions map[string]Definition
	order       []string // Registration order
}

// New creates a new validator registry.
func New() *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		order:       make([]string, 0),
	}
}

// Register adds a validator definition to the registry.
func (r *Registry) Register(def Definition) error {
	kind := strings.ToLower(strings.TrimSpace(def.Kind()))
	if kind == "" {
		return fmt.Errorf("lms kind cannot be empty")
	}
	if _, exists := r.definitions[kind]; exists {
		return fmt.Errorf("lms kind %q already registered", kind)
	}
	r.definitions[kind] = def
	r.order = append(r.order, kind)
	return nil
}

// Get retrieves a validator definition by kind.
func (r *Registry) Get(kind string) (Definition, bool) {
	def, ok := r.definitions[strings.ToLower(strings.TrimSpace(kind))]
	return def, ok
}

// Create builds a validator for the given LMS type bound to the supplied
// credentials. Unknown types fail with *UnsupportedLMSTypeError.
func (r *Registry) Create(lmsType string, creds Credentials) (Validator, error) {
	def, ok := r.Get(lmsType)
	if !ok {
		return nil, &UnsupportedLMSTypeError{Kind: lmsType, Supported: r.SupportedTypes()}
	}
	return def.NewValidator(creds)
}

// SupportedTypes returns all registered LMS type identifiers, sorted.
func (r *Registry) SupportedTypes() []string {
	kinds := make([]string, len(r.order))
	copy(kinds, r.order)
	sort.Strings(kinds)
	return kinds
}

// IsSupported reports whether an LMS type has a registered validator.
func (r *Registry) IsSupported(kind string) bool {
	_, ok := r.Get(kind)
	return ok
}

// All returns all registered definitions in registration order.
func (r *Registry) All() []Definition {
	defs := make([]Definition, 0, len(r.order))
	for _, kind := range r.order {
		defs = append(defs, r.definitions[kind])
	}
	return defs
}
