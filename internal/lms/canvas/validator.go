package canvas

import (
	"context"
	"errors"
	"time"

	"github.com/anita-ai/anita/internal/lms/registry"
)

// Required read permissions, probed in this order. read_courses gates the
// other two: without it there is no course to probe against.
const (
	PermReadCourses     = "read_courses"
	PermReadStudents    = "read_students"
	PermReadAssignments = "read_assignments"
)

// validator checks a Canvas credential set. Instances are single-use: state
// captured during one pipeline run (profile, probe course, notes) feeds the
// metadata step of that same run only.
type validator struct {
	cfg    Config
	client *Client

	self        *User
	probeCourse *Course
	notes       []string
}

func newValidator(creds registry.Credentials) *validator {
	return &validator{cfg: ConfigFromCredentials(creds).Normalized()}
}

func (v *validator) Kind() string { return Kind }

func (v *validator) ValidateCredentialsStructure() error {
	return v.cfg.Validate()
}

func (v *validator) ensureClient() error {
	if v.client != nil {
		return nil
	}
	client, err := New(v.cfg.BaseURL, v.cfg.APIToken)
	if err != nil {
		return err
	}
	v.client = client
	return nil
}

// TestConnection makes one authenticated call against the token owner's
// profile. Failure messages are written for the instructor and never contain
// the token.
func (v *validator) TestConnection(ctx context.Context) (bool, string) {
	if err := v.ensureClient(); err != nil {
		return false, err.Error()
	}

	self, err := v.client.GetSelf(ctx)
	if err != nil {
		switch {
		case IsUnauthorized(err):
			return false, "Invalid Canvas API token. Generate a new token under Account > Settings > New Access Token and try again"
		case IsAccessDenied(err):
			return false, "The Canvas API token is not authorized to access this instance"
		case IsNotFound(err):
			return false, "Canvas API not found at " + v.cfg.BaseURL + ". Verify the base URL points at your Canvas instance"
		default:
			var ae *APIError
			if errors.As(err, &ae) {
				return false, "Canvas API error: " + ae.Status
			}
			return false, "Could not connect to Canvas at " + v.cfg.BaseURL + ". Check the URL and your network access"
		}
	}

	v.self = &self
	return true, "Connected as " + self.Name
}

// CheckPermissions probes the required read scopes. A denied course list ends
// the probe immediately: the remaining checks need a course to run against.
// Zero courses is a pass; the gap is noted in the run metadata.
func (v *validator) CheckPermissions(ctx context.Context) (bool, []string, error) {
	if err := v.ensureClient(); err != nil {
		return false, nil, err
	}

	courses, err := v.client.ListCourses(ctx)
	if err != nil {
		if IsAccessDenied(err) {
			return false, []string{PermReadCourses}, nil
		}
		return false, nil, err
	}

	if len(courses) == 0 {
		v.notes = append(v.notes, "no course available for testing; course-level permissions were not probed")
		return true, nil, nil
	}
	v.probeCourse = &courses[0]

	var missing []string
	if _, err := v.client.ListCourseStudents(ctx, v.probeCourse.ID); err != nil {
		if !IsAccessDenied(err) {
			return false, nil, err
		}
		missing = append(missing, PermReadStudents)
	}
	if _, err := v.client.ListCourseAssignments(ctx, v.probeCourse.ID); err != nil {
		if !IsAccessDenied(err) {
			return false, nil, err
		}
		missing = append(missing, PermReadAssignments)
	}

	return len(missing) == 0, missing, nil
}

// Metadata assembles connection details for a successful validation. Account
// lookup failures are tolerated; whatever was gathered is returned.
func (v *validator) Metadata(ctx context.Context) map[string]any {
	details := map[string]any{
		"canvas_instance": v.cfg.BaseURL,
		"validated_at":    time.Now().UTC().Format(time.RFC3339),
	}

	if v.self != nil {
		details["canvas_user_id"] = v.self.ID
		details["canvas_user_name"] = v.self.Name
		if v.self.Email != "" {
			details["canvas_user_email"] = v.self.Email
		}
	}
	if v.probeCourse != nil {
		details["probe_course_id"] = v.probeCourse.ID
		details["probe_course_name"] = v.probeCourse.Name
	}

	if v.client != nil {
		if accounts, err := v.client.ListAccounts(ctx); err == nil && len(accounts) > 0 {
			details["account_id"] = accounts[0].ID
			details["account_name"] = accounts[0].Name
		}
	}

	if len(v.notes) > 0 {
		details["notes"] = v.notes
	}
	return details
}
