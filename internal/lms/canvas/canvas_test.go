package canvas

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
)

func TestListCoursesFollowsLinkHeader(t *testing.T) {
	var calls int32

	c, err := New("https://canvas.example.edu", "7~FqT9mX2vLp8KdRw4aB")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.HTTP.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(&calls, 1)
		if req.URL.Path != "/api/v1/courses" {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`{"errors":[{"message":"not found"}]}`)),
				Request:    req,
			}, nil
		}
		if req.URL.Query().Get("page") == "2" {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(strings.NewReader(`[{"id":3,"name":"Chem 101","course_code":"CHEM101"}]`)),
				Request:    req,
			}, nil
		}
		h := make(http.Header)
		h.Set("Link", `<https://canvas.example.edu/api/v1/courses?page=2&per_page=100>; rel="next", <https://canvas.example.edu/api/v1/courses?page=1&per_page=100>; rel="first"`)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     h,
			Body: io.NopCloser(strings.NewReader(
				`[{"id":1,"name":"Bio 101","course_code":"BIO101"},{"id":2,"name":"Bio 201","course_code":"BIO201"}]`,
			)),
			Request: req,
		}, nil
	})

	courses, err := c.ListCourses(context.Background())
	if err != nil {
		t.Fatalf("ListCourses error: %v", err)
	}
	if len(courses) != 3 {
		t.Fatalf("expected 3 courses, got %d", len(courses))
	}
	if courses[0].ID != 1 || courses[0].Name != "Bio 101" || courses[0].CourseCode != "BIO101" {
		t.Fatalf("unexpected courses[0]: %#v", courses[0])
	}
	if courses[2].ID != 3 || courses[2].Name != "Chem 101" {
		t.Fatalf("unexpected courses[2]: %#v", courses[2])
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestGetSelfRetriesOn429(t *testing.T) {
	var calls int32

	c, err := New("https://canvas.example.edu", "7~FqT9mX2vLp8KdRw4aB")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.HTTP.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			h := make(http.Header)
			h.Set("Retry-After", "0")
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Status:     "429 Too Many Requests",
				Header:     h,
				Body:       io.NopCloser(strings.NewReader(`{"errors":[{"message":"rate limit"}]}`)),
				Request:    req,
			}, nil
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(`{"id":42,"name":"Prof. Xu","primary_email":"xu@example.edu"}`)),
			Request:    req,
		}, nil
	})

	self, err := c.GetSelf(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got error: %v", err)
	}
	if self.ID != 42 || self.Name != "Prof. Xu" {
		t.Fatalf("unexpected self: %#v", self)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 requests, got %d", got)
	}
}

func TestGetSelfSendsBearerToken(t *testing.T) {
	c, err := New("https://canvas.example.edu/", "7~FqT9mX2vLp8KdRw4aB")
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.HTTP.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get("Authorization"); got != "Bearer 7~FqT9mX2vLp8KdRw4aB" {
			t.Fatalf("unexpected Authorization header: %q", got)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(`{"id":1,"name":"A"}`)),
			Request:    req,
		}, nil
	})

	if _, err := c.GetSelf(context.Background()); err != nil {
		t.Fatalf("GetSelf error: %v", err)
	}
}

func TestErrorIncludesCanvasMessageNotToken(t *testing.T) {
	const token = "7~FqT9mX2vLp8KdRw4aB"

	c, err := New("https://canvas.example.edu", token)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.HTTP.Transport = roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusUnauthorized,
			Status:     "401 Unauthorized",
			Header:     make(http.Header),
			Body:       io.NopCloser(strings.NewReader(`{"errors":[{"message":"Invalid access token."}]}`)),
			Request:    req,
		}, nil
	})

	_, getErr := c.GetSelf(context.Background())
	if getErr == nil {
		t.Fatal("expected error")
	}
	if !IsUnauthorized(getErr) {
		t.Fatalf("expected unauthorized error, got: %v", getErr)
	}
	if !strings.Contains(getErr.Error(), "Invalid access token.") {
		t.Fatalf("expected error to include canvas message, got: %s", getErr)
	}
	if strings.Contains(getErr.Error(), token) {
		t.Fatalf("error leaked the api token: %s", getErr)
	}
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{`<https://c.example.edu/api/v1/courses?page=1>; rel="current"`, ""},
		{`<https://c.example.edu/api/v1/courses?page=2>; rel="next", <https://c.example.edu/api/v1/courses?page=9>; rel="last"`, "https://c.example.edu/api/v1/courses?page=2"},
	}
	for _, tt := range tests {
		if got := nextPageURL(tt.header); got != tt.want {
			t.Fatalf("nextPageURL(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
