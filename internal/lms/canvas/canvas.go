package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultPageSize  = 100
	maxRetriesOn429  = 3
	maxErrorBodySize = 1 << 20 // 1 MiB
)

// Client is a minimal Canvas REST API client. Only the endpoints needed for
// connection validation are implemented.
type Client struct {
	BaseURL  string
	APIToken string
	HTTP     *http.Client
}

type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"primary_email"`
	Login string `json:"login_id"`
}

type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

type Enrollment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Assignment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Account struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// APIError is a non-2xx Canvas API response.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	if e.Message != "" && e.URL != "" {
		return fmt.Sprintf("canvas api failed: %s: %s (url=%s)", e.Status, e.Message, e.URL)
	}
	if e.Message != "" {
		return fmt.Sprintf("canvas api failed: %s: %s", e.Status, e.Message)
	}
	if e.URL != "" {
		return fmt.Sprintf("canvas api failed: %s (url=%s)", e.Status, e.URL)
	}
	return fmt.Sprintf("canvas api failed: %s", e.Status)
}

// IsUnauthorized reports whether err is a Canvas 401 response.
func IsUnauthorized(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusUnauthorized
}

// IsAccessDenied reports whether err is a Canvas 401 or 403 response.
func IsAccessDenied(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) &&
		(ae.StatusCode == http.StatusUnauthorized || ae.StatusCode == http.StatusForbidden)
}

// IsNotFound reports whether err is a Canvas 404 response.
func IsNotFound(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.StatusCode == http.StatusNotFound
}

// New creates a Canvas client. The base URL and token must be non-empty;
// structural validation beyond that belongs to Config.Validate.
func New(baseURL, apiToken string) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiToken = strings.TrimSpace(apiToken)

	if base == "" {
		return nil, errors.New("canvas base URL is required")
	}
	if apiToken == "" {
		return nil, errors.New("canvas api token is required")
	}

	return &Client{
		BaseURL:  base,
		APIToken: apiToken,
		HTTP:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

func (c *Client) ensureClient() error {
	if c.BaseURL == "" {
		return errors.New("canvas base URL is required")
	}
	if c.APIToken == "" {
		return errors.New("canvas api token is required")
	}
	if c.HTTP == nil {
		return errors.New("canvas http client is not configured")
	}
	return nil
}

// GetSelf fetches the profile of the token's owner. This is the cheapest
// authenticated call Canvas offers and doubles as the connection test.
func (c *Client) GetSelf(ctx context.Context) (User, error) {
	if err := c.ensureClient(); err != nil {
		return User{}, err
	}
	endpoint, err := c.endpoint("/api/v1/users/self", nil)
	if err != nil {
		return User{}, err
	}
	body, _, err := c.get(ctx, endpoint)
	if err != nil {
		return User{}, err
	}
	var user User
	if err := json.Unmarshal(body, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// ListCourses lists the courses the token's owner teaches.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	if err := c.ensureClient(); err != nil {
		return nil, err
	}
	return listPaginated[Course](ctx, c, "/api/v1/courses", url.Values{
		"enrollment_type": []string{"teacher"},
	})
}

// ListCourseStudents lists student enrollments for one course.
func (c *Client) ListCourseStudents(ctx context.Context, courseID int64) ([]Enrollment, error) {
	if err := c.ensureClient(); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/api/v1/courses/%d/users", courseID)
	return listPaginated[Enrollment](ctx, c, path, url.Values{
		"enrollment_type[]": []string{"student"},
	})
}

// ListCourseAssignments lists assignments for one course.
func (c *Client) ListCourseAssignments(ctx context.Context, courseID int64) ([]Assignment, error) {
	if err := c.ensureClient(); err != nil {
		return nil, err
	}
	path := fmt.Sprintf("/api/v1/courses/%d/assignments", courseID)
	return listPaginated[Assignment](ctx, c, path, nil)
}

// ListAccounts lists the accounts visible to the token's owner.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	if err := c.ensureClient(); err != nil {
		return nil, err
	}
	return listPaginated[Account](ctx, c, "/api/v1/accounts", nil)
}

// listPaginated walks a Canvas collection endpoint following Link rel="next"
// headers until the last page.
func listPaginated[T any](ctx context.Context, c *Client, path string, params url.Values) ([]T, error) {
	endpoint, err := c.endpoint(path, params)
	if err != nil {
		return nil, err
	}

	var out []T
	for endpoint != "" {
		body, header, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		var page []T
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}
		out = append(out, page...)
		endpoint = nextPageURL(header.Get("Link"))
	}
	return out, nil
}

func (c *Client) endpoint(path string, params url.Values) (string, error) {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		return "", errors.New("canvas base URL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	q.Set("per_page", strconv.Itoa(defaultPageSize))
	u.RawQuery = q.Encode()
	u.Fragment = ""
	return u.String(), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, http.Header, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetriesOn429; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, nil, err
		}
		req.Header.Set("Authorization", "Bearer "+c.APIToken)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "anita")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, nil, err
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		resp.Body.Close()
		if readErr != nil {
			return nil, nil, readErr
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = newAPIError(endpoint, resp, body)
			if attempt == maxRetriesOn429 {
				return nil, nil, lastErr
			}
			wait, ok := retryAfterDuration(resp.Header.Get("Retry-After"))
			if !ok {
				wait = time.Second
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, nil, err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, nil, newAPIError(endpoint, resp, body)
		}
		return body, resp.Header, nil
	}
	if lastErr != nil {
		return nil, nil, lastErr
	}
	return nil, nil, errors.New("canvas request failed")
}

// nextPageURL extracts the rel="next" target from a Canvas Link header.
func nextPageURL(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(section[0]), "<>")
		for _, param := range section[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}

func retryAfterDuration(header string) (time.Duration, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newAPIError(reqURL string, resp *http.Response, body []byte) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    extractCanvasAPIErrorMessage(body),
		URL:        safeURL(reqURL),
	}
}

func extractCanvasAPIErrorMessage(body []byte) string {
	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Errors) > 0 {
			if msg := strings.TrimSpace(payload.Errors[0].Message); msg != "" {
				return msg
			}
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return ""
	}
	if strings.HasPrefix(msg, "<!DOCTYPE html") || strings.HasPrefix(msg, "<html") {
		return ""
	}
	msg = strings.Join(strings.Fields(msg), " ")
	const maxLen = 300
	if len(msg) > maxLen {
		msg = msg[:maxLen] + "…"
	}
	return msg
}

func safeURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery != "" {
		return u.Scheme + "://" + u.Host + u.Path + "?" + u.RawQuery
	}
	return u.Scheme + "://" + u.Host + u.Path
}
