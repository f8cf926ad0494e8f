// internal/domain/models/snapshot.go
package models

import "time"

// SourceFailure records one upstream call that fell back to its default.
type SourceFailure struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Error  string `json:"error"`
}

// DashboardSnapshot is one immutable generation of dashboard data.
// A refresh builds a new snapshot; published snapshots are never mutated.
type DashboardSnapshot struct {
	ID         string    `json:"id"`
	Generation uint64    `json:"generation"`
	Scope      string    `json:"scope"`
	BuiltAt    time.Time `json:"built_at"`

	Schools  []School            `json:"schools"`
	Trainers []Trainer           `json:"trainers"`
	Trainees []Trainee           `json:"trainees"`
	Courses  []Course            `json:"courses"`
	Sessions []AttendanceSession `json:"sessions"`

	TotalSchools  int `json:"total_schools"`
	TotalTeachers int `json:"total_teachers"`
	TotalTrainers int `json:"total_trainers"`
	TotalCourses  int `json:"total_courses"`

	Stats             Stats               `json:"stats"`
	Competency        []CompetencyShare   `json:"competency"`
	Engagement        []SeriesPoint       `json:"engagement"`
	Participation     []SeriesPoint       `json:"participation"`
	CoursePerformance []CoursePerformance `json:"course_performance"`
	UserAnalytics     UserAnalytics       `json:"user_analytics"`
	CompetencyDeltas  []CompetencyDelta   `json:"competency_deltas"`
	Attendance        AttendanceReport    `json:"attendance"`

	CoursesFromFallback bool            `json:"courses_from_fallback"`
	SourceFailures      []SourceFailure `json:"source_failures"`
}
