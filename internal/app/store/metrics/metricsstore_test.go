package metricsstore_test

import (
	"testing"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	metricsstore "github.com/dalemusser/strataboard/internal/app/store/metrics"
	"github.com/dalemusser/strataboard/internal/testutil"
)

func TestFetchStats_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	stats, err := metricsstore.FetchStats(ctx, db, "", time.Now())
	if err != nil {
		t.Fatalf("FetchStats failed: %v", err)
	}
	if stats.TotalUsers != 0 || stats.TotalCourses != 0 || stats.TotalCompanies != 0 {
		t.Errorf("stats = %+v, want zeros", stats)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("CompletionRate = %v, want 0 with no enrollments", stats.CompletionRate)
	}
}

func TestFetchStats_WithData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	fx.CreateCompany(ctx, source.Company{ID: "c1", Name: "North"}, "")
	fx.CreateCompany(ctx, source.Company{ID: "c2", Name: "South"}, "")
	fx.CreateUser(ctx, source.User{ID: "u1", Role: "teacher", CompanyID: "c1", LastAccess: now.Add(-time.Hour).Unix()})
	fx.CreateUser(ctx, source.User{ID: "u2", Role: "student", CompanyID: "c1", LastAccess: now.AddDate(0, -3, 0).Unix()})
	fx.CreateUser(ctx, source.User{ID: "u3", Role: "student", CompanyID: "c2"})
	fx.CreateCourse(ctx, source.Course{ID: "k1", FullName: "Basics", CompanyID: "c1"})
	fx.CreateEnrollment(ctx, "c1", source.Enrollment{UserID: "u1", CourseID: "k1", Completed: true})
	fx.CreateEnrollment(ctx, "c1", source.Enrollment{UserID: "u2", CourseID: "k1"})
	fx.CreateEnrollment(ctx, "c1", source.Enrollment{UserID: "u3", CourseID: "k1"})
	fx.CreateEnrollment(ctx, "c1", source.Enrollment{UserID: "u4", CourseID: "k1", Completed: true})

	tests := []struct {
		company string
		users   int
		active  int
		schools int
		rate    float64
	}{
		{"", 3, 1, 2, 50},
		{"c1", 2, 1, 1, 50},
		{"c2", 1, 0, 1, 0},
	}
	for _, tt := range tests {
		t.Run("scope="+tt.company, func(t *testing.T) {
			stats, err := metricsstore.FetchStats(ctx, db, tt.company, now)
			if err != nil {
				t.Fatalf("FetchStats failed: %v", err)
			}
			if stats.TotalUsers != tt.users || stats.ActiveUsers != tt.active || stats.TotalCompanies != tt.schools {
				t.Errorf("stats = %+v", stats)
			}
			if stats.CompletionRate != tt.rate {
				t.Errorf("CompletionRate = %v, want %v", stats.CompletionRate, tt.rate)
			}
		})
	}
}

func TestFetchUserAnalytics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	fx.CreateUserAt(ctx, source.User{ID: "u1", LastAccess: now.AddDate(0, 0, -1).Unix()}, now.AddDate(0, 0, -3))
	fx.CreateUserAt(ctx, source.User{ID: "u2", LastAccess: now.AddDate(0, 0, -20).Unix()}, now.AddDate(0, -2, 0))
	fx.CreateUserAt(ctx, source.User{ID: "u3"}, now.AddDate(-1, 0, 0))

	got, err := metricsstore.FetchUserAnalytics(ctx, db, "", now)
	if err != nil {
		t.Fatalf("FetchUserAnalytics failed: %v", err)
	}
	if got.ActiveLast7Days != 1 || got.ActiveLast30Days != 2 || got.NewThisMonth != 1 {
		t.Errorf("analytics = %+v, want 1/2/1", got)
	}
}
