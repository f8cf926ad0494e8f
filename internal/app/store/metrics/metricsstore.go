package metricsstore

import (
	"context"
	"fmt"
	"time"

	companystore "github.com/dalemusser/strataboard/internal/app/store/companies"
	coursestore "github.com/dalemusser/strataboard/internal/app/store/courses"
	enrollmentstore "github.com/dalemusser/strataboard/internal/app/store/enrollments"
	userstore "github.com/dalemusser/strataboard/internal/app/store/users"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// ActiveWindow is how recently a user must have accessed the platform to
// count as active in Stats.
const ActiveWindow = 30 * 24 * time.Hour

// FetchStats returns the headline totals for companyID. An empty companyID
// covers the whole platform. Any failed count fails the call.
func FetchStats(ctx context.Context, db *mongo.Database, companyID string, now time.Time) (models.Stats, error) {
	users := userstore.New(db)

	var out models.Stats
	counts := []struct {
		name string
		dst  *int
		fn   func() (int64, error)
	}{
		{"users", &out.TotalUsers, func() (int64, error) { return users.Count(ctx, companyID) }},
		{"courses", &out.TotalCourses, func() (int64, error) { return coursestore.New(db).Count(ctx, companyID) }},
		{"companies", &out.TotalCompanies, func() (int64, error) { return companystore.New(db).Count(ctx, companyID) }},
		{"active users", &out.ActiveUsers, func() (int64, error) { return users.CountActiveSince(ctx, companyID, now.Add(-ActiveWindow)) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return models.Stats{}, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.dst = int(n)
	}

	total, completed, err := enrollmentstore.New(db).Completion(ctx, companyID)
	if err != nil {
		return models.Stats{}, fmt.Errorf("completion: %w", err)
	}
	if total > 0 {
		out.CompletionRate = float64(completed) * 100 / float64(total)
	}
	return out, nil
}

// FetchUserAnalytics returns the activity counters for companyID.
func FetchUserAnalytics(ctx context.Context, db *mongo.Database, companyID string, now time.Time) (models.UserAnalytics, error) {
	users := userstore.New(db)
	now = now.UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var out models.UserAnalytics
	counts := []struct {
		dst *int
		fn  func() (int64, error)
	}{
		{&out.ActiveLast7Days, func() (int64, error) { return users.CountActiveSince(ctx, companyID, now.AddDate(0, 0, -7)) }},
		{&out.ActiveLast30Days, func() (int64, error) { return users.CountActiveSince(ctx, companyID, now.AddDate(0, 0, -30)) }},
		{&out.NewThisMonth, func() (int64, error) { return users.CountCreatedSince(ctx, companyID, monthStart) }},
	}
	for _, c := range counts {
		n, err := c.fn()
		if err != nil {
			return models.UserAnalytics{}, err
		}
		*c.dst = int(n)
	}
	return out, nil
}
