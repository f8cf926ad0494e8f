// internal/domain/models/report.go
package models

// Trend directions.
const (
	TrendUp   = "up"
	TrendDown = "down"
	TrendFlat = "flat"
)

// Risk levels.
const (
	RiskHigh   = "high"
	RiskMedium = "medium"
	RiskLow    = "low"
)

// Time-of-day buckets.
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// Trend describes the recent direction of attendance.
type Trend struct {
	Value     float64 `json:"value"`
	Direction string  `json:"direction"` // up | down | flat
	Magnitude float64 `json:"magnitude"`
}

// GroupStat is a count + average attendance for one group-by key.
type GroupStat struct {
	Key               string  `json:"key"`
	Count             int     `json:"count"`
	AverageAttendance float64 `json:"average_attendance"`
}

// InstructorStat aggregates attendance over every session an instructor ran.
type InstructorStat struct {
	Instructor string  `json:"instructor"`
	Sessions   int     `json:"sessions"`
	Present    int     `json:"present"`
	Total      int     `json:"total"`
	Ratio      float64 `json:"ratio"` // present/total × 100
}

// AttendanceReport is everything derived from the session list.
type AttendanceReport struct {
	Sessions          int              `json:"sessions"`
	AverageAttendance float64          `json:"average_attendance"`
	Trend             Trend            `json:"trend"`
	Risk              string           `json:"risk"`
	PredictedNext     float64          `json:"predicted_next"`
	OptimalSlot       string           `json:"optimal_slot"`
	Instructors       []InstructorStat `json:"instructors"`
	ByType            []GroupStat      `json:"by_type"`
	BySlot            []GroupStat      `json:"by_slot"`
}
