// internal/domain/models/attendance.go
package models

import "time"

// DefaultSessionMinutes is used when a session lacks a start or end time.
const DefaultSessionMinutes = 60

// AttendanceSession is one delivered training session.
// PresentCount <= TotalCount and AttendanceRate is in [0,100].
type AttendanceSession struct {
	ID              string    `json:"id"`
	Label           string    `json:"label"`
	Date            time.Time `json:"date"`
	Type            string    `json:"type"`
	PresentCount    int       `json:"present_count"`
	TotalCount      int       `json:"total_count"`
	AttendanceRate  float64   `json:"attendance_rate"`
	Instructor      string    `json:"instructor"`
	Location        string    `json:"location"`
	StartTime       string    `json:"start_time,omitempty"` // HH:MM
	EndTime         string    `json:"end_time,omitempty"`   // HH:MM
	DurationMinutes int       `json:"duration_minutes"`
}
