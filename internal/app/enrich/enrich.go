// Package enrich annotates a normalized snapshot with classifier tags and
// analytics. It only derives values from data already in the snapshot.
package enrich

import (
	"slices"

	"github.com/dalemusser/strataboard/internal/app/analytics"
	"github.com/dalemusser/strataboard/internal/app/classify"
	"github.com/dalemusser/strataboard/internal/domain/models"
)

// Enrich returns a copy of snap with every trainer, trainee and school
// classified, the attendance report computed and competency deltas derived
// from targets. The entity slices of snap are not modified.
func Enrich(snap models.DashboardSnapshot, targets []models.CompetencyTarget) models.DashboardSnapshot {
	out := snap

	out.Trainers = slices.Clone(snap.Trainers)
	for i := range out.Trainers {
		t := &out.Trainers[i]
		r := classify.Trainer(classify.TrainerMetrics{Rating: t.AverageRating, CoursesCount: t.CoursesCount})
		t.Tag, t.Tier = r.Tag, r.Tier
	}

	out.Trainees = slices.Clone(snap.Trainees)
	for i := range out.Trainees {
		t := &out.Trainees[i]
		r := classify.Trainee(classify.TraineeMetrics{
			Progress:         float64(t.ProgressPercent),
			EnrolledCourses:  t.EnrolledCourses,
			CompletedCourses: t.CompletedCourses,
		})
		t.Tag, t.Tier = r.Tag, r.Tier
	}

	out.Schools = slices.Clone(snap.Schools)
	for i := range out.Schools {
		out.Schools[i].PerformanceBand = classify.SchoolBand(out.Schools[i].PerformanceScore)
	}

	out.Attendance = analytics.Report(snap.Sessions)
	out.CompetencyDeltas = analytics.CompetencyDeltas(targets)
	return out
}
