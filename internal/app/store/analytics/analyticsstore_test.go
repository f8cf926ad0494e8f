package analyticsstore_test

import (
	"errors"
	"testing"

	analyticsstore "github.com/dalemusser/strataboard/internal/app/store/analytics"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"github.com/dalemusser/strataboard/internal/testutil"
)

func TestStore_SeriesFallsBackToPlatform(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analyticsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	platform := []models.SeriesPoint{{Label: "Week 1", Value: 10}, {Label: "Week 2", Value: 20}}
	school := []models.SeriesPoint{{Label: "Week 1", Value: 3}}
	if err := store.PutSeries(ctx, analyticsstore.KindEngagement, "", platform); err != nil {
		t.Fatalf("PutSeries(platform) failed: %v", err)
	}
	if err := store.PutSeries(ctx, analyticsstore.KindEngagement, "c1", school); err != nil {
		t.Fatalf("PutSeries(c1) failed: %v", err)
	}

	tests := []struct {
		company string
		want    []models.SeriesPoint
	}{
		{"", platform},
		{"c1", school},
		{"c2", platform},
	}
	for _, tt := range tests {
		got, err := store.Series(ctx, analyticsstore.KindEngagement, tt.company)
		if err != nil {
			t.Fatalf("Series(%q) failed: %v", tt.company, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("Series(%q) = %v, want %v", tt.company, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Series(%q)[%d] = %v, want %v", tt.company, i, got[i], tt.want[i])
			}
		}
	}
}

func TestStore_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analyticsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Competency(ctx, "c1"); !errors.Is(err, analyticsstore.ErrNotFound) {
		t.Errorf("Competency err = %v, want ErrNotFound", err)
	}
	if _, err := store.Targets(ctx, ""); !errors.Is(err, analyticsstore.ErrNotFound) {
		t.Errorf("Targets err = %v, want ErrNotFound", err)
	}
	if _, err := store.Series(ctx, analyticsstore.KindCompetency, ""); err == nil {
		t.Error("expected error for non-series kind")
	}
}

func TestStore_PutReplaces(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := analyticsstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := []models.CompetencyTarget{{Name: "Pedagogy", Current: 50, Target: 80}}
	second := []models.CompetencyTarget{{Name: "Assessment", Current: 70, Target: 75}, {Name: "Pedagogy", Current: 60, Target: 80}}
	if err := store.PutTargets(ctx, "", first); err != nil {
		t.Fatalf("PutTargets failed: %v", err)
	}
	if err := store.PutTargets(ctx, "", second); err != nil {
		t.Fatalf("PutTargets (replace) failed: %v", err)
	}
	got, err := store.Targets(ctx, "")
	if err != nil {
		t.Fatalf("Targets failed: %v", err)
	}
	if len(got) != 2 || got[0] != second[0] || got[1] != second[1] {
		t.Errorf("Targets = %v, want %v", got, second)
	}

	perf := []models.CoursePerformance{{CourseID: "k1", Title: "Basics", CompletionRate: 80, AverageScore: 72}}
	if err := store.PutCoursePerformance(ctx, "c1", perf); err != nil {
		t.Fatalf("PutCoursePerformance failed: %v", err)
	}
	gotPerf, err := store.CoursePerformance(ctx, "c1")
	if err != nil || len(gotPerf) != 1 || gotPerf[0] != perf[0] {
		t.Errorf("CoursePerformance = %v, %v", gotPerf, err)
	}

	shares := []models.CompetencyShare{{Name: "Pedagogy", Percent: 60}, {Name: "Assessment", Percent: 40}}
	if err := store.PutCompetency(ctx, "", shares); err != nil {
		t.Fatalf("PutCompetency failed: %v", err)
	}
	gotShares, err := store.Competency(ctx, "c9")
	if err != nil || len(gotShares) != 2 || gotShares[1] != shares[1] {
		t.Errorf("Competency = %v, %v", gotShares, err)
	}
}
