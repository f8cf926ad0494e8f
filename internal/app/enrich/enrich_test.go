package enrich_test

import (
	"testing"

	"github.com/dalemusser/strataboard/internal/app/classify"
	"github.com/dalemusser/strataboard/internal/app/enrich"
	"github.com/dalemusser/strataboard/internal/domain/models"
)

func TestEnrich(t *testing.T) {
	snap := models.DashboardSnapshot{
		Trainers: []models.Trainer{
			{ID: "t1", AverageRating: 4.6, CoursesCount: 5},
			{ID: "t2", AverageRating: 3.0, CoursesCount: 0},
		},
		Trainees: []models.Trainee{
			{ID: "e1", ProgressPercent: 95, EnrolledCourses: 4, CompletedCourses: 3},
			{ID: "e2"},
		},
		Schools: []models.School{{ID: "s1", PerformanceScore: 85}},
		Sessions: []models.AttendanceSession{
			{ID: "a", AttendanceRate: 90, PresentCount: 9, TotalCount: 10},
			{ID: "b", AttendanceRate: 70, PresentCount: 7, TotalCount: 10},
		},
	}
	targets := []models.CompetencyTarget{{Name: "Pedagogy", Current: 60, Target: 80}}

	got := enrich.Enrich(snap, targets)

	if got.Trainers[0].Tag != classify.TagTop5 || got.Trainers[0].Tier != classify.TierTop {
		t.Errorf("t1 = %q/%q, want Top 5%%/top", got.Trainers[0].Tag, got.Trainers[0].Tier)
	}
	if got.Trainers[1].Tag != classify.TagNew {
		t.Errorf("t2 tag = %q, want New", got.Trainers[1].Tag)
	}
	if got.Trainees[0].Tag != classify.TagHighAchiever || got.Trainees[1].Tag != classify.TagNew {
		t.Errorf("trainee tags = %q, %q", got.Trainees[0].Tag, got.Trainees[1].Tag)
	}
	if got.Schools[0].PerformanceBand != classify.BandGood {
		t.Errorf("band = %q, want good", got.Schools[0].PerformanceBand)
	}
	if got.Attendance.Sessions != 2 || got.Attendance.AverageAttendance != 80 {
		t.Errorf("attendance = %+v", got.Attendance)
	}
	if len(got.CompetencyDeltas) != 1 || got.CompetencyDeltas[0].Delta != 20 {
		t.Errorf("deltas = %+v", got.CompetencyDeltas)
	}

	// Input is left untouched.
	if snap.Trainers[0].Tag != "" || snap.Trainees[0].Tag != "" || snap.Schools[0].PerformanceBand != "" {
		t.Error("Enrich modified its input")
	}
}

func TestEnrich_EveryEntityTagged(t *testing.T) {
	snap := models.DashboardSnapshot{}
	for i := 0; i < 50; i++ {
		snap.Trainers = append(snap.Trainers, models.Trainer{AverageRating: float64(i%6) * 0.9, CoursesCount: i % 7})
		snap.Trainees = append(snap.Trainees, models.Trainee{ProgressPercent: i * 2, EnrolledCourses: i % 5, CompletedCourses: i % 4})
	}
	got := enrich.Enrich(snap, nil)
	for i, tr := range got.Trainers {
		if tr.Tag == "" || tr.Tier == "" {
			t.Errorf("trainer %d unclassified", i)
		}
	}
	for i, tr := range got.Trainees {
		if tr.Tag == "" || tr.Tier == "" {
			t.Errorf("trainee %d unclassified", i)
		}
	}
	if got.CompetencyDeltas == nil {
		t.Error("CompetencyDeltas is nil")
	}
}
