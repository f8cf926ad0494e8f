// Package mongosource implements source.Gateway over the dashboard's MongoDB
// collections. Every call is scoped by the session's company; an empty
// company reads the platform-wide data.
package mongosource

import (
	"context"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	analyticsstore "github.com/dalemusser/strataboard/internal/app/store/analytics"
	attendancestore "github.com/dalemusser/strataboard/internal/app/store/attendance"
	companystore "github.com/dalemusser/strataboard/internal/app/store/companies"
	coursestore "github.com/dalemusser/strataboard/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/strataboard/internal/app/store/enrollments"
	metricsstore "github.com/dalemusser/strataboard/internal/app/store/metrics"
	ratingstore "github.com/dalemusser/strataboard/internal/app/store/ratings"
	userstore "github.com/dalemusser/strataboard/internal/app/store/users"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ source.Gateway = (*Gateway)(nil)

type Gateway struct {
	db          *mongo.Database
	companies   *companystore.Store
	users       *userstore.Store
	courses     *coursestore.Store
	enrollments *enrollmentstore.Store
	attendance  *attendancestore.Store
	ratings     *ratingstore.Store
	analytics   *analyticsstore.Store
	now         func() time.Time
}

func New(db *mongo.Database) *Gateway {
	return &Gateway{
		db:          db,
		companies:   companystore.New(db),
		users:       userstore.New(db),
		courses:     coursestore.New(db),
		enrollments: enrollmentstore.New(db),
		attendance:  attendancestore.New(db),
		ratings:     ratingstore.New(db),
		analytics:   analyticsstore.New(db),
		now:         time.Now,
	}
}

// WithClock replaces the clock used for activity windows.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

func (g *Gateway) Stats(ctx context.Context, s source.Session) (models.Stats, error) {
	return metricsstore.FetchStats(ctx, g.db, s.CompanyID, g.now())
}

func (g *Gateway) Attendance(ctx context.Context, s source.Session) ([]source.AttendanceRecord, error) {
	return g.attendance.List(ctx, s.CompanyID)
}

func (g *Gateway) Participation(ctx context.Context, s source.Session) ([]models.SeriesPoint, error) {
	return g.analytics.Series(ctx, analyticsstore.KindParticipation, s.CompanyID)
}

func (g *Gateway) Competency(ctx context.Context, s source.Session) ([]models.CompetencyShare, error) {
	return g.analytics.Competency(ctx, s.CompanyID)
}

func (g *Gateway) Engagement(ctx context.Context, s source.Session) ([]models.SeriesPoint, error) {
	return g.analytics.Series(ctx, analyticsstore.KindEngagement, s.CompanyID)
}

func (g *Gateway) CoursePerformance(ctx context.Context, s source.Session) ([]models.CoursePerformance, error) {
	return g.analytics.CoursePerformance(ctx, s.CompanyID)
}

func (g *Gateway) UserAnalytics(ctx context.Context, s source.Session) (models.UserAnalytics, error) {
	return metricsstore.FetchUserAnalytics(ctx, g.db, s.CompanyID, g.now())
}

func (g *Gateway) CompetencyTargets(ctx context.Context, s source.Session) ([]models.CompetencyTarget, error) {
	return g.analytics.Targets(ctx, s.CompanyID)
}

func (g *Gateway) Companies(ctx context.Context, s source.Session) ([]source.Company, error) {
	return g.companies.List(ctx, s.CompanyID)
}

func (g *Gateway) Users(ctx context.Context, s source.Session) ([]source.User, error) {
	return g.users.List(ctx, s.CompanyID)
}

func (g *Gateway) CompanyCourses(ctx context.Context, s source.Session) ([]source.Course, error) {
	return g.courses.ListByCompany(ctx, s.CompanyID)
}

func (g *Gateway) Courses(ctx context.Context, _ source.Session) ([]source.Course, error) {
	return g.courses.ListAll(ctx, 0)
}

func (g *Gateway) Enrollments(ctx context.Context, s source.Session) ([]source.Enrollment, error) {
	return g.enrollments.List(ctx, s.CompanyID)
}

func (g *Gateway) CompanyUserCount(ctx context.Context, _ source.Session, companyID string) (int, error) {
	n, err := g.users.CountByCompany(ctx, companyID)
	return int(n), err
}

func (g *Gateway) CompanyCourseCount(ctx context.Context, _ source.Session, companyID string) (int, error) {
	n, err := g.courses.CountByCompany(ctx, companyID)
	return int(n), err
}

func (g *Gateway) CompanyLogo(ctx context.Context, _ source.Session, companyID string) (string, error) {
	return g.companies.Logo(ctx, companyID)
}

func (g *Gateway) UserPerformance(ctx context.Context, _ source.Session, userID string) (source.Performance, error) {
	return g.ratings.Performance(ctx, userID)
}

func (g *Gateway) UserCourseCount(ctx context.Context, _ source.Session, userID string) (int, error) {
	return g.enrollments.CountCoursesForUser(ctx, userID)
}

// UpdateSchool writes fields to the school. Scoped sessions can only reach
// their own school.
func (g *Gateway) UpdateSchool(ctx context.Context, s source.Session, id string, fields source.SchoolUpdate) (bool, error) {
	if !source.InScope(s, id) {
		return false, source.ErrOutOfScope
	}
	return g.companies.Update(ctx, s.CompanyID, id, fields)
}
