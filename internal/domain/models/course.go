// internal/domain/models/course.go
package models

// Course delivery types.
const (
	CourseILT       = "ILT"
	CourseVILT      = "VILT"
	CourseSelfPaced = "Self-paced"
)

// Course statuses.
const (
	CourseActive   = "Active"
	CourseUpcoming = "Upcoming"
	CourseArchived = "Archived"
)

// Course levels.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a normalized course record.
type Course struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Type          string   `json:"type"`   // ILT | VILT | Self-paced
	Status        string   `json:"status"` // Active | Upcoming | Archived
	EnrolledCount int      `json:"enrolled_count"`
	Rating        float64  `json:"rating"` // 0.0–5.0
	Level         string   `json:"level"`
	Duration      string   `json:"duration"`
	Instructor    string   `json:"instructor"`
	Tags          []string `json:"tags"`
}
