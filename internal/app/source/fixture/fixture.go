// Package fixture is an in-memory source.Gateway. It serves a fixed data
// set and can be told to fail or delay individual calls, which makes it the
// gateway of choice for tests and for running the dashboard without an LMS.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Operation names accepted by Fail, Delay and Stall. They match the
// Gateway method names.
const (
	OpStats              = "Stats"
	OpAttendance         = "Attendance"
	OpParticipation      = "Participation"
	OpCompetency         = "Competency"
	OpEngagement         = "Engagement"
	OpCoursePerformance  = "CoursePerformance"
	OpUserAnalytics      = "UserAnalytics"
	OpCompetencyTargets  = "CompetencyTargets"
	OpCompanies          = "Companies"
	OpUsers              = "Users"
	OpCompanyCourses     = "CompanyCourses"
	OpCourses            = "Courses"
	OpEnrollments        = "Enrollments"
	OpCompanyUserCount   = "CompanyUserCount"
	OpCompanyCourseCount = "CompanyCourseCount"
	OpCompanyLogo        = "CompanyLogo"
	OpUserPerformance    = "UserPerformance"
	OpUserCourseCount    = "UserCourseCount"
	OpUpdateSchool       = "UpdateSchool"
)

// Data is the data set a Gateway serves. Per-entity maps are keyed by
// company or user ID.
type Data struct {
	Stats             models.Stats               `json:"stats"`
	Attendance        []source.AttendanceRecord  `json:"attendance"`
	Participation     []models.SeriesPoint       `json:"participation"`
	Competency        []models.CompetencyShare   `json:"competency"`
	Engagement        []models.SeriesPoint       `json:"engagement"`
	CoursePerformance []models.CoursePerformance `json:"course_performance"`
	UserAnalytics     models.UserAnalytics       `json:"user_analytics"`
	CompetencyTargets []models.CompetencyTarget  `json:"competency_targets"`

	Companies      []source.Company    `json:"companies"`
	Users          []source.User       `json:"users"`
	CompanyCourses []source.Course     `json:"company_courses"`
	Courses        []source.Course     `json:"courses"`
	Enrollments    []source.Enrollment `json:"enrollments"`

	CompanyUserCounts   map[string]int                `json:"company_user_counts"`
	CompanyCourseCounts map[string]int                `json:"company_course_counts"`
	CompanyLogos        map[string]string             `json:"company_logos"`
	UserPerformance     map[string]source.Performance `json:"user_performance"`
	UserCourseCounts    map[string]int                `json:"user_course_counts"`
}

// Gateway serves Data. It is safe for concurrent use.
type Gateway struct {
	mu       sync.Mutex
	data     Data
	failures map[string]error
	delays   map[string]time.Duration
	stalls   map[string]time.Duration
	calls    map[string]int
}

var _ source.Gateway = (*Gateway)(nil)

// New returns a Gateway serving d.
func New(d Data) *Gateway {
	return &Gateway{
		data:     d,
		failures: make(map[string]error),
		delays:   make(map[string]time.Duration),
		stalls:   make(map[string]time.Duration),
		calls:    make(map[string]int),
	}
}

// ReadFile reads a JSON data set from path.
func ReadFile(path string) (Data, error) {
	var d Data
	b, err := os.ReadFile(path)
	if err != nil {
		return d, fmt.Errorf("read fixture: %w", err)
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return d, nil
}

// LoadFile returns a Gateway serving the data set at path.
func LoadFile(path string) (*Gateway, error) {
	d, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(d), nil
}

// Fail makes every call to op return err.
func (g *Gateway) Fail(op string, err error) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[op] = err
	return g
}

// Delay makes calls to op wait d before answering. The wait ends early,
// with the context's error, when ctx is done.
func (g *Gateway) Delay(op string, d time.Duration) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delays[op] = d
	return g
}

// Stall makes calls to op block for d regardless of the context, like an
// upstream client that ignores cancellation.
func (g *Gateway) Stall(op string, d time.Duration) *Gateway {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stalls[op] = d
	return g
}

// Calls reports how many times op has been called.
func (g *Gateway) Calls(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[op]
}

// begin records a call and applies any injected delay or failure.
func (g *Gateway) begin(ctx context.Context, op string) error {
	g.mu.Lock()
	g.calls[op]++
	fail, delay, stall := g.failures[op], g.delays[op], g.stalls[op]
	g.mu.Unlock()

	if stall > 0 {
		time.Sleep(stall)
	}
	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fail
}

// read runs begin and returns a copy of the value selected by pick.
func read[T any](g *Gateway, ctx context.Context, op string, pick func(*Data) T) (T, error) {
	var zero T
	if err := g.begin(ctx, op); err != nil {
		return zero, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return pick(&g.data), nil
}

func (g *Gateway) Stats(ctx context.Context, _ source.Session) (models.Stats, error) {
	return read(g, ctx, OpStats, func(d *Data) models.Stats { return d.Stats })
}

func (g *Gateway) Attendance(ctx context.Context, _ source.Session) ([]source.AttendanceRecord, error) {
	return read(g, ctx, OpAttendance, func(d *Data) []source.AttendanceRecord { return slices.Clone(d.Attendance) })
}

func (g *Gateway) Participation(ctx context.Context, _ source.Session) ([]models.SeriesPoint, error) {
	return read(g, ctx, OpParticipation, func(d *Data) []models.SeriesPoint { return slices.Clone(d.Participation) })
}

func (g *Gateway) Competency(ctx context.Context, _ source.Session) ([]models.CompetencyShare, error) {
	return read(g, ctx, OpCompetency, func(d *Data) []models.CompetencyShare { return slices.Clone(d.Competency) })
}

func (g *Gateway) Engagement(ctx context.Context, _ source.Session) ([]models.SeriesPoint, error) {
	return read(g, ctx, OpEngagement, func(d *Data) []models.SeriesPoint { return slices.Clone(d.Engagement) })
}

func (g *Gateway) CoursePerformance(ctx context.Context, _ source.Session) ([]models.CoursePerformance, error) {
	return read(g, ctx, OpCoursePerformance, func(d *Data) []models.CoursePerformance { return slices.Clone(d.CoursePerformance) })
}

func (g *Gateway) UserAnalytics(ctx context.Context, _ source.Session) (models.UserAnalytics, error) {
	return read(g, ctx, OpUserAnalytics, func(d *Data) models.UserAnalytics { return d.UserAnalytics })
}

func (g *Gateway) CompetencyTargets(ctx context.Context, _ source.Session) ([]models.CompetencyTarget, error) {
	return read(g, ctx, OpCompetencyTargets, func(d *Data) []models.CompetencyTarget { return slices.Clone(d.CompetencyTargets) })
}

// Companies returns every company, or only the session's company when the
// session is scoped.
func (g *Gateway) Companies(ctx context.Context, s source.Session) ([]source.Company, error) {
	return read(g, ctx, OpCompanies, func(d *Data) []source.Company {
		if s.CompanyID == "" {
			return slices.Clone(d.Companies)
		}
		out := make([]source.Company, 0, 1)
		for _, c := range d.Companies {
			if c.ID == s.CompanyID {
				out = append(out, c)
			}
		}
		return out
	})
}

// Users returns every user, or only the session company's users.
func (g *Gateway) Users(ctx context.Context, s source.Session) ([]source.User, error) {
	return read(g, ctx, OpUsers, func(d *Data) []source.User {
		if s.CompanyID == "" {
			return slices.Clone(d.Users)
		}
		out := make([]source.User, 0, len(d.Users))
		for _, u := range d.Users {
			if u.CompanyID == s.CompanyID {
				out = append(out, u)
			}
		}
		return out
	})
}

// CompanyCourses returns the rows owned by the session's company. Rows
// without a company belong to the platform scope.
func (g *Gateway) CompanyCourses(ctx context.Context, s source.Session) ([]source.Course, error) {
	return read(g, ctx, OpCompanyCourses, func(d *Data) []source.Course {
		out := make([]source.Course, 0, len(d.CompanyCourses))
		for _, c := range d.CompanyCourses {
			if c.CompanyID == s.CompanyID {
				out = append(out, c)
			}
		}
		return out
	})
}

func (g *Gateway) Courses(ctx context.Context, _ source.Session) ([]source.Course, error) {
	return read(g, ctx, OpCourses, func(d *Data) []source.Course { return slices.Clone(d.Courses) })
}

// Enrollments returns every enrollment, or only those of the session
// company's users.
func (g *Gateway) Enrollments(ctx context.Context, s source.Session) ([]source.Enrollment, error) {
	return read(g, ctx, OpEnrollments, func(d *Data) []source.Enrollment {
		if s.CompanyID == "" {
			return slices.Clone(d.Enrollments)
		}
		member := make(map[string]bool, len(d.Users))
		for _, u := range d.Users {
			if u.CompanyID == s.CompanyID {
				member[u.ID] = true
			}
		}
		out := make([]source.Enrollment, 0, len(d.Enrollments))
		for _, e := range d.Enrollments {
			if member[e.UserID] {
				out = append(out, e)
			}
		}
		return out
	})
}

func (g *Gateway) CompanyUserCount(ctx context.Context, _ source.Session, id string) (int, error) {
	return read(g, ctx, OpCompanyUserCount, func(d *Data) int { return d.CompanyUserCounts[id] })
}

func (g *Gateway) CompanyCourseCount(ctx context.Context, _ source.Session, id string) (int, error) {
	return read(g, ctx, OpCompanyCourseCount, func(d *Data) int { return d.CompanyCourseCounts[id] })
}

func (g *Gateway) CompanyLogo(ctx context.Context, _ source.Session, id string) (string, error) {
	return read(g, ctx, OpCompanyLogo, func(d *Data) string { return d.CompanyLogos[id] })
}

func (g *Gateway) UserPerformance(ctx context.Context, _ source.Session, id string) (source.Performance, error) {
	return read(g, ctx, OpUserPerformance, func(d *Data) source.Performance { return d.UserPerformance[id] })
}

func (g *Gateway) UserCourseCount(ctx context.Context, _ source.Session, id string) (int, error) {
	return read(g, ctx, OpUserCourseCount, func(d *Data) int { return d.UserCourseCounts[id] })
}

// UpdateSchool applies the non-nil fields of u to the company with the
// given id. It reports false when no such company exists, fails with
// source.ErrOutOfScope for a school outside the session's company and with
// source.ErrDuplicate when the new name is taken.
func (g *Gateway) UpdateSchool(ctx context.Context, s source.Session, id string, u source.SchoolUpdate) (bool, error) {
	if err := g.begin(ctx, OpUpdateSchool); err != nil {
		return false, err
	}
	if !source.InScope(s, id) {
		return false, source.ErrOutOfScope
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if u.Name != nil {
		folded := text.Fold(*u.Name)
		for _, c := range g.data.Companies {
			if c.ID != id && text.Fold(c.Name) == folded {
				return false, source.ErrDuplicate
			}
		}
	}
	for i := range g.data.Companies {
		c := &g.data.Companies[i]
		if c.ID != id {
			continue
		}
		if u.Name != nil {
			c.Name = *u.Name
		}
		if u.City != nil {
			c.City = *u.City
		}
		if u.Country != nil {
			c.Country = *u.Country
		}
		if u.Region != nil {
			c.Region = *u.Region
		}
		if u.Status != nil {
			c.Status = *u.Status
			c.Suspended = *u.Status == models.SchoolInactive
		}
		if u.MaxUsers != nil {
			c.MaxUsers = *u.MaxUsers
		}
		return true, nil
	}
	return false, nil
}
