// Package analytics derives attendance metrics from a chronologically
// ordered session list. Every function is pure: the same sessions always
// produce the same result.
package analytics

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/dalemusser/strataboard/internal/domain/models"
)

// TrendWindow is the number of most recent sessions the trend looks at.
const TrendWindow = 10

// Risk thresholds, in percent.
const (
	lowAttendance  = 75
	highAttendance = 90
)

// UnassignedInstructor labels sessions that have no instructor.
const UnassignedInstructor = "Unassigned"

// AverageAttendance is the mean attendance rate, 0 for no sessions.
func AverageAttendance(sessions []models.AttendanceSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sessions {
		sum += s.AttendanceRate
	}
	return sum / float64(len(sessions))
}

// Trend averages the deltas between consecutive sessions over the most
// recent TrendWindow sessions.
func Trend(sessions []models.AttendanceSession) models.Trend {
	recent := sessions
	if len(recent) > TrendWindow {
		recent = recent[len(recent)-TrendWindow:]
	}
	if len(recent) < 2 {
		return models.Trend{Direction: models.TrendFlat}
	}

	var sum float64
	for i := 1; i < len(recent); i++ {
		sum += recent[i].AttendanceRate - recent[i-1].AttendanceRate
	}
	v := sum / float64(len(recent)-1)

	dir := models.TrendFlat
	switch {
	case v > 0:
		dir = models.TrendUp
	case v < 0:
		dir = models.TrendDown
	}
	return models.Trend{Value: v, Direction: dir, Magnitude: math.Abs(v)}
}

// Risk is high when more sessions fall below 75% than rise above 90%,
// medium when any session is below 75%, and low otherwise.
func Risk(sessions []models.AttendanceSession) string {
	var below, above int
	for _, s := range sessions {
		switch {
		case s.AttendanceRate < lowAttendance:
			below++
		case s.AttendanceRate > highAttendance:
			above++
		}
	}
	switch {
	case below > above:
		return models.RiskHigh
	case below > 0:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

// PredictNext estimates the next session's attendance as the average
// plus the trend, clamped to [0,100].
func PredictNext(sessions []models.AttendanceSession) float64 {
	return clamp(AverageAttendance(sessions)+Trend(sessions).Value, 0, 100)
}

// TimeSlot buckets a "HH:MM" start time. ok is false when the time
// cannot be parsed.
func TimeSlot(start string) (slot string, ok bool) {
	h, ok := hourOf(start)
	if !ok {
		return "", false
	}
	switch {
	case h < 12:
		return models.SlotMorning, true
	case h < 17:
		return models.SlotAfternoon, true
	default:
		return models.SlotEvening, true
	}
}

// slotOrder is used for output ordering and to break ties.
var slotOrder = []string{models.SlotMorning, models.SlotAfternoon, models.SlotEvening}

// OptimalTimeSlot returns the bucket with the highest summed attendance.
// Sessions without a start time are ignored; "" means no session had one.
func OptimalTimeSlot(sessions []models.AttendanceSession) string {
	sums := map[string]float64{}
	seen := false
	for _, s := range sessions {
		if slot, ok := TimeSlot(s.StartTime); ok {
			sums[slot] += s.AttendanceRate
			seen = true
		}
	}
	if !seen {
		return ""
	}
	best := ""
	for _, slot := range slotOrder {
		if _, ok := sums[slot]; !ok {
			continue
		}
		if best == "" || sums[slot] > sums[best] {
			best = slot
		}
	}
	return best
}

// RankInstructors aggregates present/total per instructor and ranks them
// by ratio, highest first. Equal ratios keep first-appearance order.
func RankInstructors(sessions []models.AttendanceSession) []models.InstructorStat {
	idx := map[string]int{}
	out := []models.InstructorStat{}
	for _, s := range sessions {
		name := strings.TrimSpace(s.Instructor)
		if name == "" {
			name = UnassignedInstructor
		}
		i, ok := idx[name]
		if !ok {
			i = len(out)
			idx[name] = i
			out = append(out, models.InstructorStat{Instructor: name})
		}
		out[i].Sessions++
		out[i].Present += s.PresentCount
		out[i].Total += s.TotalCount
	}
	for i := range out {
		if out[i].Total > 0 {
			out[i].Ratio = float64(out[i].Present) / float64(out[i].Total) * 100
		}
	}
	slices.SortStableFunc(out, func(a, b models.InstructorStat) int {
		switch {
		case a.Ratio > b.Ratio:
			return -1
		case a.Ratio < b.Ratio:
			return 1
		}
		return 0
	})
	return out
}

// ByType groups sessions by type in first-appearance order.
func ByType(sessions []models.AttendanceSession) []models.GroupStat {
	return groupBy(sessions, func(s models.AttendanceSession) (string, bool) {
		t := strings.TrimSpace(s.Type)
		if t == "" {
			t = "Other"
		}
		return t, true
	}, nil)
}

// ByTimeSlot groups sessions by time-of-day bucket in morning, afternoon,
// evening order. Sessions without a start time are left out.
func ByTimeSlot(sessions []models.AttendanceSession) []models.GroupStat {
	return groupBy(sessions, func(s models.AttendanceSession) (string, bool) {
		return TimeSlot(s.StartTime)
	}, slotOrder)
}

func groupBy(sessions []models.AttendanceSession, key func(models.AttendanceSession) (string, bool), order []string) []models.GroupStat {
	idx := map[string]int{}
	sums := []float64{}
	out := []models.GroupStat{}
	for _, s := range sessions {
		k, ok := key(s)
		if !ok {
			continue
		}
		i, seen := idx[k]
		if !seen {
			i = len(out)
			idx[k] = i
			out = append(out, models.GroupStat{Key: k})
			sums = append(sums, 0)
		}
		out[i].Count++
		sums[i] += s.AttendanceRate
	}
	for i := range out {
		out[i].AverageAttendance = sums[i] / float64(out[i].Count)
	}
	if order == nil {
		return out
	}
	ordered := make([]models.GroupStat, 0, len(out))
	for _, k := range order {
		if i, ok := idx[k]; ok {
			ordered = append(ordered, out[i])
		}
	}
	return ordered
}

// CompetencyDeltas computes target - current for each competency.
func CompetencyDeltas(targets []models.CompetencyTarget) []models.CompetencyDelta {
	out := make([]models.CompetencyDelta, 0, len(targets))
	for _, t := range targets {
		d := t.Target - t.Current
		out = append(out, models.CompetencyDelta{
			Name:    t.Name,
			Current: t.Current,
			Target:  t.Target,
			Delta:   d,
			Met:     d <= 0,
		})
	}
	return out
}

// Report bundles every attendance metric for the session list.
func Report(sessions []models.AttendanceSession) models.AttendanceReport {
	return models.AttendanceReport{
		Sessions:          len(sessions),
		AverageAttendance: AverageAttendance(sessions),
		Trend:             Trend(sessions),
		Risk:              Risk(sessions),
		PredictedNext:     PredictNext(sessions),
		OptimalSlot:       OptimalTimeSlot(sessions),
		Instructors:       RankInstructors(sessions),
		ByType:            ByType(sessions),
		BySlot:            ByTimeSlot(sessions),
	}
}

// hourOf parses the hour from "HH:MM" or "HH:MM:SS".
func hourOf(hhmm string) (int, bool) {
	hhmm = strings.TrimSpace(hhmm)
	if hhmm == "" {
		return 0, false
	}
	hs, _, _ := strings.Cut(hhmm, ":")
	h, err := strconv.Atoi(hs)
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	return h, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
