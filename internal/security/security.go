// Package security holds helpers for keeping credentials out of logs and responses.
package security

import (
	"net/url"
	"strings"
)

const maskedValue = "***MASKED***"

// MaskCredential masks a secret for display, keeping a short identifying tail.
// Empty and very short values collapse to "****" so nothing useful leaks.
func MaskCredential(secret string) string {
	s := strings.TrimSpace(secret)
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	tail := s[len(s)-4:]
	prefix := ""
	if idx := strings.Index(s, "~"); idx > 0 && idx <= 6 {
		// Canvas tokens carry a numeric shard prefix ("7~..."); keep it for support triage.
		prefix = s[:idx+1]
	}
	return prefix + "****" + tail
}

// MaskURLCredentials masks userinfo embedded in a URL while preserving the host and path.
func MaskURLCredentials(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword("***", "***")
	} else {
		u.User = url.User("***")
	}
	return u.String()
}

// SanitizeLogFields returns a shallow copy of fields with sensitive keys masked.
// Values are not recursed into; nested maps stay untouched.
func SanitizeLogFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if IsSensitiveKey(key) {
			out[key] = maskedValue
			continue
		}
		out[key] = value
	}
	return out
}

// MaskCredentialMap masks every value of a credential mapping for API responses.
func MaskCredentialMap(creds map[string]string) map[string]string {
	if creds == nil {
		return nil
	}
	out := make(map[string]string, len(creds))
	for key, value := range creds {
		if IsSensitiveKey(key) {
			out[key] = MaskCredential(value)
			continue
		}
		out[key] = value
	}
	return out
}

// IsSensitiveKey reports whether a field name looks like it holds a secret.
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	sensitive := []string{
		"token",
		"secret",
		"password",
		"passphrase",
		"private",
		"refresh",
		"bearer",
		"credential",
		"accesskey",
		"api_key",
		"apikey",
	}
	for _, fragment := range sensitive {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
