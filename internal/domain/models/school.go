// internal/domain/models/school.go
package models

// School status values.
const (
	SchoolActive   = "active"
	SchoolInactive = "inactive"
)

// School is a normalized company record from the training platform.
// PerformanceScore, EngagementScore and TrainedPercent are always in [0,100].
type School struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
	Region  string `json:"region"`
	Status  string `json:"status"` // active | inactive
	LogoURL string `json:"logo_url"`

	TeacherCount int `json:"teacher_count"`
	CourseCount  int `json:"course_count"`
	MaxUsers     int `json:"max_users"`

	PerformanceScore int `json:"performance_score"`
	EngagementScore  int `json:"engagement_score"`
	TrainedPercent   int `json:"trained_percent"`

	// PerformanceBand is derived from PerformanceScore for UI coloring.
	PerformanceBand string `json:"performance_band"`
}
