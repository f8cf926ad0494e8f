package source

import (
	"time"

	"github.com/dalemusser/strataboard/internal/domain/models"
)

// SchoolLookup holds the per-company secondary lookups.
type SchoolLookup struct {
	UserCount   int
	CourseCount int
	Logo        string
}

// TrainerLookup holds the per-trainer secondary lookups.
type TrainerLookup struct {
	Performance Performance
	CourseCount int
}

// Payload is the merged raw result of one fetch batch. Every field holds
// either the source's answer or its documented default.
type Payload struct {
	Scope     string
	FetchedAt time.Time

	Stats             models.Stats
	Attendance        []AttendanceRecord
	Participation     []models.SeriesPoint
	Competency        []models.CompetencyShare
	Engagement        []models.SeriesPoint
	CoursePerformance []models.CoursePerformance
	UserAnalytics     models.UserAnalytics
	CompetencyTargets []models.CompetencyTarget

	Companies   []Company
	Users       []User
	Courses     []Course
	Enrollments []Enrollment

	// CoursesFromFallback is set when the company-scoped course source was
	// empty and Courses came from the full course list instead.
	CoursesFromFallback bool

	SchoolLookups  map[string]SchoolLookup
	TrainerLookups map[string]TrainerLookup

	Failures []SourceError
}
