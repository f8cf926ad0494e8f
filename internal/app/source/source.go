// Package source defines the read-only data-access boundary the dashboard
// engine consumes: the Gateway interface, the raw upstream record shapes,
// and the per-call failure record.
package source

import (
	"context"
	"strings"

	"github.com/dalemusser/strataboard/internal/domain/models"
)

// Session carries the caller's credentials and company scope. It is passed
// explicitly into every gateway call; nothing reads it from global state.
type Session struct {
	Token     string
	CompanyID string
	UserID    string
}

// Valid reports whether the session can mount a fetch batch.
func (s Session) Valid() bool {
	return strings.TrimSpace(s.Token) != ""
}

// Scope returns the company scope key used to index snapshots.
// An empty company means the platform-wide scope.
func (s Session) Scope() string {
	if c := strings.TrimSpace(s.CompanyID); c != "" {
		return c
	}
	return "all"
}

// Gateway is one typed accessor per upstream capability. Every call is
// independent and may fail without affecting the others.
type Gateway interface {
	Stats(ctx context.Context, s Session) (models.Stats, error)
	Attendance(ctx context.Context, s Session) ([]AttendanceRecord, error)
	Participation(ctx context.Context, s Session) ([]models.SeriesPoint, error)
	Competency(ctx context.Context, s Session) ([]models.CompetencyShare, error)
	Engagement(ctx context.Context, s Session) ([]models.SeriesPoint, error)
	CoursePerformance(ctx context.Context, s Session) ([]models.CoursePerformance, error)
	UserAnalytics(ctx context.Context, s Session) (models.UserAnalytics, error)
	CompetencyTargets(ctx context.Context, s Session) ([]models.CompetencyTarget, error)

	Companies(ctx context.Context, s Session) ([]Company, error)
	Users(ctx context.Context, s Session) ([]User, error)
	CompanyCourses(ctx context.Context, s Session) ([]Course, error)
	Courses(ctx context.Context, s Session) ([]Course, error)
	Enrollments(ctx context.Context, s Session) ([]Enrollment, error)

	// Per-entity lookups.
	CompanyUserCount(ctx context.Context, s Session, companyID string) (int, error)
	CompanyCourseCount(ctx context.Context, s Session, companyID string) (int, error)
	CompanyLogo(ctx context.Context, s Session, companyID string) (string, error)
	UserPerformance(ctx context.Context, s Session, userID string) (Performance, error)
	UserCourseCount(ctx context.Context, s Session, userID string) (int, error)

	// UpdateSchool is a pass-through write. The caller refreshes on success.
	UpdateSchool(ctx context.Context, s Session, id string, fields SchoolUpdate) (bool, error)
}
