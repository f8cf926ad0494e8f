// internal/domain/models/analytics.go
package models

// Stats holds platform-wide totals as reported upstream.
type Stats struct {
	TotalUsers     int     `json:"total_users"`
	TotalCourses   int     `json:"total_courses"`
	TotalCompanies int     `json:"total_companies"`
	ActiveUsers    int     `json:"active_users"`
	CompletionRate float64 `json:"completion_rate"`
}

// SeriesPoint is one labelled value of a chart series.
type SeriesPoint struct {
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// CompetencyShare is one slice of the competency distribution.
type CompetencyShare struct {
	Name    string  `json:"name" yaml:"name"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// CoursePerformance summarizes outcomes for one course.
type CoursePerformance struct {
	CourseID       string  `json:"course_id"`
	Title          string  `json:"title"`
	CompletionRate float64 `json:"completion_rate"`
	AverageScore   float64 `json:"average_score"`
}

// UserAnalytics holds activity counters for the user base.
type UserAnalytics struct {
	ActiveLast7Days  int `json:"active_last_7_days"`
	ActiveLast30Days int `json:"active_last_30_days"`
	NewThisMonth     int `json:"new_this_month"`
}

// CompetencyTarget pairs the current level of a competency with its goal.
type CompetencyTarget struct {
	Name    string  `json:"name" yaml:"name"`
	Current float64 `json:"current" yaml:"current"`
	Target  float64 `json:"target" yaml:"target"`
}

// CompetencyDelta is the gap between a competency target and its current level.
type CompetencyDelta struct {
	Name    string  `json:"name"`
	Current float64 `json:"current"`
	Target  float64 `json:"target"`
	Delta   float64 `json:"delta"` // target - current
	Met     bool    `json:"met"`
}
