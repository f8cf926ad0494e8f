// internal/domain/models/people.go
package models

import "time"

// Trainer is a user the platform tags as a teacher/instructor.
type Trainer struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	AverageRating   float64   `json:"average_rating"` // 0.0–5.0
	CoursesCount    int       `json:"courses_count"`
	LastAccess      time.Time `json:"last_access,omitempty"`
	LastAccessLabel string    `json:"last_access_label"`

	Tag  string `json:"tag"`
	Tier string `json:"tier"`
}

// Trainee is a user enrolled in training courses.
// CompletedCourses never exceeds EnrolledCourses.
type Trainee struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	ProgressPercent  int    `json:"progress_percent"` // 0–100
	EnrolledCourses  int    `json:"enrolled_courses"`
	CompletedCourses int    `json:"completed_courses"`

	Tag  string `json:"tag"`
	Tier string `json:"tier"`
}
