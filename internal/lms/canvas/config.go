package canvas

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/anita-ai/anita/internal/lms/registry"
)

const (
	credKeyBaseURL  = "base_url"
	credKeyAPIToken = "api_token"

	// Canvas personal access tokens are long opaque strings; anything this
	// short is a paste error, not a real token.
	minTokenLength = 10
)

// Config holds the Canvas connection credentials.
type Config struct {
	BaseURL  string
	APIToken string
}

// ConfigFromCredentials extracts the Canvas config from a raw credential map.
func ConfigFromCredentials(creds registry.Credentials) Config {
	return Config{
		BaseURL:  creds[credKeyBaseURL],
		APIToken: creds[credKeyAPIToken],
	}
}

// Normalized returns a copy with whitespace and trailing slashes trimmed.
func (c Config) Normalized() Config {
	return Config{
		BaseURL:  strings.TrimRight(strings.TrimSpace(c.BaseURL), "/"),
		APIToken: strings.TrimSpace(c.APIToken),
	}
}

// Validate checks the credential structure without touching the network.
// Failures are *registry.InvalidCredentialsError; reasons never include the
// token value.
func (c Config) Validate() error {
	n := c.Normalized()

	if n.BaseURL == "" {
		return &registry.InvalidCredentialsError{
			Reason: fmt.Sprintf("Missing %q in credentials", credKeyBaseURL),
		}
	}
	if n.APIToken == "" {
		return &registry.InvalidCredentialsError{
			Reason: fmt.Sprintf("Missing %q in credentials", credKeyAPIToken),
		}
	}

	u, err := url.Parse(n.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &registry.InvalidCredentialsError{
			Reason: "Canvas base URL must start with http:// or https:// (e.g. https://canvas.instructure.com)",
		}
	}

	if len(n.APIToken) < minTokenLength {
		return &registry.InvalidCredentialsError{
			Reason: "Canvas API token looks too short. Generate a new token under Account > Settings > New Access Token",
		}
	}
	return nil
}
