// Package normalizer maps a merged fetch payload into the fixed dashboard
// entity shapes. Absent optional fields take explicit defaults, numeric
// fields are clamped into their documented ranges, and every collection
// in the result is non-nil.
//
// Normalize is pure: it reads only the payload passed in and never touches
// the network. Per-entity lookups (user counts, logos, ratings) have already
// been resolved by the fetch orchestrator into Payload.SchoolLookups and
// Payload.TrainerLookups.
package normalizer

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/htmlsanitize"
	"github.com/dalemusser/strataboard/internal/app/system/normalize"
	"github.com/dalemusser/strataboard/internal/domain/models"
)

// DefaultRegion labels schools that upstream did not place in a region.
const DefaultRegion = "Unassigned"

// Defaults for optional course fields.
const (
	DefaultCourseDuration   = "4-8 weeks"
	DefaultCourseRating     = 4.0
	DefaultCourseInstructor = "TBD"
	DefaultCourseLevel      = models.LevelIntermediate
)

// DefaultCourseTags is applied when a course has no tags. Callers get a copy.
func DefaultCourseTags() []string { return []string{"Professional Development"} }

// Normalize builds a snapshot from p. ID, Generation and the classifier and
// analytics annotations are left for later stages.
func Normalize(p source.Payload) models.DashboardSnapshot {
	trainerUsers, traineeUsers := PartitionUsers(p.Users)

	snap := models.DashboardSnapshot{
		Scope:    p.Scope,
		BuiltAt:  p.FetchedAt,
		Schools:  Schools(p.Companies, p.SchoolLookups),
		Trainers: Trainers(trainerUsers, p.TrainerLookups, p.FetchedAt),
		Trainees: Trainees(traineeUsers, p.Enrollments),
		Courses:  Courses(p.Courses, p.Enrollments, p.FetchedAt),
		Sessions: Sessions(p.Attendance),

		Stats:             p.Stats,
		Competency:        cloneOrEmpty(p.Competency),
		Engagement:        cloneOrEmpty(p.Engagement),
		Participation:     cloneOrEmpty(p.Participation),
		CoursePerformance: cloneOrEmpty(p.CoursePerformance),
		UserAnalytics:     p.UserAnalytics,
		CompetencyDeltas:  []models.CompetencyDelta{},

		CoursesFromFallback: p.CoursesFromFallback,
		SourceFailures:      Failures(p.Failures),
	}
	snap.Stats.CompletionRate = clampFloat(snap.Stats.CompletionRate, 0, 100)

	snap.TotalSchools = len(snap.Schools)
	snap.TotalTeachers = len(snap.Trainees)
	snap.TotalTrainers = len(snap.Trainers)
	snap.TotalCourses = len(snap.Courses)
	return snap
}

// Schools normalizes companies. Engagement is the school's course count
// relative to the largest course count in the batch.
func Schools(companies []source.Company, lookups map[string]source.SchoolLookup) []models.School {
	out := make([]models.School, 0, len(companies))

	maxCourses := 1
	for _, c := range companies {
		maxCourses = max(maxCourses, lookups[c.ID].CourseCount)
	}

	for _, c := range companies {
		l := lookups[c.ID]
		users := max(l.UserCount, 0)
		courses := max(l.CourseCount, 0)
		maxUsers := max(c.MaxUsers, 0)

		perf := Performance(users, maxUsers)
		s := models.School{
			ID:      c.ID,
			Name:    schoolName(c),
			City:    htmlsanitize.PlainText(c.City),
			Country: htmlsanitize.PlainText(c.Country),
			Region:  normalize.OrDefault(htmlsanitize.PlainText(c.Region), DefaultRegion),
			Status:  schoolStatus(c),
			LogoURL: strings.TrimSpace(l.Logo),

			TeacherCount: users,
			CourseCount:  courses,
			MaxUsers:     maxUsers,

			PerformanceScore: perf,
			EngagementScore:  percent(float64(courses), float64(maxCourses)),
			TrainedPercent:   clampInt(perf, 0, 100),
		}
		out = append(out, s)
	}
	return out
}

// Performance is userCount as a share of max(maxUsers, userCount), rounded.
// It is 0 when both are 0 and never exceeds 100.
func Performance(userCount, maxUsers int) int {
	return percent(float64(userCount), float64(max(maxUsers, userCount)))
}

func schoolName(c source.Company) string {
	if n := normalize.Name(htmlsanitize.PlainText(c.Name)); n != "" {
		return n
	}
	return normalize.Name(htmlsanitize.PlainText(c.ShortName))
}

func schoolStatus(c source.Company) string {
	if c.Suspended {
		return models.SchoolInactive
	}
	switch normalize.Status(c.Status) {
	case models.SchoolInactive, "suspended", "disabled":
		return models.SchoolInactive
	}
	return models.SchoolActive
}

// Trainers normalizes trainer users. Rating and course count come from the
// per-trainer lookups; a missing lookup yields 0 for both.
func Trainers(users []source.User, lookups map[string]source.TrainerLookup, now time.Time) []models.Trainer {
	out := make([]models.Trainer, 0, len(users))
	for _, u := range users {
		l := lookups[u.ID]
		t := models.Trainer{
			ID:              u.ID,
			Name:            userName(u),
			Email:           normalize.Email(u.Email),
			Role:            normalize.Role(u.Role),
			AverageRating:   clampFloat(l.Performance.AverageRating, 0, 5),
			CoursesCount:    max(l.CourseCount, 0),
			LastAccessLabel: LastAccessLabel(u.LastAccess, now),
		}
		if u.LastAccess > 0 {
			t.LastAccess = time.Unix(u.LastAccess, 0).UTC()
		}
		out = append(out, t)
	}
	return out
}

func userName(u source.User) string {
	return normalize.FullName(
		htmlsanitize.PlainText(u.FullName),
		htmlsanitize.PlainText(u.FirstName),
		htmlsanitize.PlainText(u.LastName),
		u.Username,
	)
}

// Trainees normalizes trainee users from their enrollments. Progress is the
// mean enrollment progress; completed is clamped to enrolled.
func Trainees(users []source.User, enrollments []source.Enrollment) []models.Trainee {
	type agg struct {
		enrolled  int
		completed int
		progress  float64
	}
	byUser := make(map[string]*agg)
	for _, e := range enrollments {
		a := byUser[e.UserID]
		if a == nil {
			a = &agg{}
			byUser[e.UserID] = a
		}
		a.enrolled++
		if e.Completed {
			a.completed++
		}
		a.progress += clampFloat(e.Progress, 0, 100)
	}

	out := make([]models.Trainee, 0, len(users))
	for _, u := range users {
		t := models.Trainee{
			ID:    u.ID,
			Name:  userName(u),
			Email: normalize.Email(u.Email),
		}
		if a := byUser[u.ID]; a != nil {
			t.EnrolledCourses = a.enrolled
			t.CompletedCourses = min(a.completed, a.enrolled)
			t.ProgressPercent = clampInt(int(math.Round(a.progress/float64(a.enrolled))), 0, 100)
		}
		out = append(out, t)
	}
	return out
}

// Courses normalizes course rows. Enrolled count falls back to the number
// of enrollments seen for the course.
func Courses(courses []source.Course, enrollments []source.Enrollment, now time.Time) []models.Course {
	enrolled := make(map[string]int)
	for _, e := range enrollments {
		enrolled[e.CourseID]++
	}

	out := make([]models.Course, 0, len(courses))
	for _, c := range courses {
		mc := models.Course{
			ID:            c.ID,
			Title:         normalize.Name(htmlsanitize.PlainText(c.FullName)),
			Type:          CourseType(c.Format),
			Status:        CourseStatus(c, now),
			EnrolledCount: enrolled[c.ID],
			Rating:        DefaultCourseRating,
			Level:         DefaultCourseLevel,
			Duration:      DefaultCourseDuration,
			Instructor:    DefaultCourseInstructor,
			Tags:          DefaultCourseTags(),
		}
		if c.EnrolledCount != nil {
			mc.EnrolledCount = max(*c.EnrolledCount, 0)
		}
		if c.Rating != nil {
			mc.Rating = clampFloat(*c.Rating, 0, 5)
		}
		if c.Level != nil && strings.TrimSpace(*c.Level) != "" {
			mc.Level = strings.TrimSpace(*c.Level)
		}
		if c.Duration != nil && strings.TrimSpace(*c.Duration) != "" {
			mc.Duration = strings.TrimSpace(*c.Duration)
		}
		if c.Instructor != nil && strings.TrimSpace(*c.Instructor) != "" {
			mc.Instructor = normalize.Name(*c.Instructor)
		}
		if len(c.Tags) > 0 {
			mc.Tags = slices.Clone(c.Tags)
		}
		out = append(out, mc)
	}
	return out
}

// CourseType maps an upstream course format to a delivery type.
func CourseType(format string) string {
	switch normalize.Status(format) {
	case "ilt", "classroom", "inperson", "in-person":
		return models.CourseILT
	case "vilt", "virtual", "online", "webinar":
		return models.CourseVILT
	}
	return models.CourseSelfPaced
}

// CourseStatus derives Active, Upcoming or Archived from visibility and
// the course dates relative to now.
func CourseStatus(c source.Course, now time.Time) string {
	switch {
	case c.Visible != nil && !*c.Visible:
		return models.CourseArchived
	case c.EndDate > 0 && time.Unix(c.EndDate, 0).Before(now):
		return models.CourseArchived
	case c.StartDate > 0 && time.Unix(c.StartDate, 0).After(now):
		return models.CourseUpcoming
	}
	return models.CourseActive
}

// Sessions normalizes attendance records and orders them chronologically.
// Present is clamped to [0,total]; records with the same date keep their
// input order. Records without a parseable date follow the dated ones in
// input order.
func Sessions(records []source.AttendanceRecord) []models.AttendanceSession {
	out := make([]models.AttendanceSession, 0, len(records))
	for _, r := range records {
		total := max(r.Total, 0)
		present := clampInt(r.Present, 0, total)

		s := models.AttendanceSession{
			ID:              r.ID,
			Label:           normalize.OrDefault(htmlsanitize.PlainText(r.Label), r.ID),
			Type:            strings.TrimSpace(r.Type),
			PresentCount:    present,
			TotalCount:      total,
			AttendanceRate:  AttendanceRate(present, total),
			Instructor:      normalize.Name(htmlsanitize.PlainText(r.Instructor)),
			Location:        htmlsanitize.PlainText(r.Location),
			StartTime:       strings.TrimSpace(r.StartTime),
			EndTime:         strings.TrimSpace(r.EndTime),
			DurationMinutes: DurationMinutes(r.StartTime, r.EndTime),
		}
		if d, err := time.Parse(time.DateOnly, strings.TrimSpace(r.Date)); err == nil {
			s.Date = d
		}
		out = append(out, s)
	}
	slices.SortStableFunc(out, func(a, b models.AttendanceSession) int {
		switch az, bz := a.Date.IsZero(), b.Date.IsZero(); {
		case az && bz:
			return 0
		case az:
			return 1
		case bz:
			return -1
		}
		return a.Date.Compare(b.Date)
	})
	return out
}

// AttendanceRate is present/total × 100, or 0 when total is 0.
func AttendanceRate(present, total int) float64 {
	if total <= 0 {
		return 0
	}
	return clampFloat(float64(present)/float64(total)*100, 0, 100)
}

// DurationMinutes is the span between two HH:MM times. It falls back to
// models.DefaultSessionMinutes when either is missing or malformed, or
// when end is not after start.
func DurationMinutes(start, end string) int {
	s, okS := minuteOfDay(start)
	e, okE := minuteOfDay(end)
	if !okS || !okE || e <= s {
		return models.DefaultSessionMinutes
	}
	return e - s
}

func minuteOfDay(hhmm string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// LastAccessLabel renders a unix last-access time relative to now.
func LastAccessLabel(unix int64, now time.Time) string {
	if unix <= 0 {
		return "Never"
	}
	t := time.Unix(unix, 0).UTC()
	days := int(now.UTC().Truncate(24*time.Hour).Sub(t.Truncate(24*time.Hour)).Hours() / 24)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 30:
		return strconv.Itoa(days) + " days ago"
	}
	return t.Format("Jan 2, 2006")
}

// Failures converts source errors into their snapshot form.
func Failures(errs []source.SourceError) []models.SourceFailure {
	out := make([]models.SourceFailure, 0, len(errs))
	for _, e := range errs {
		f := models.SourceFailure{Source: e.Source, Kind: string(e.Kind)}
		if e.Err != nil {
			f.Error = e.Err.Error()
		}
		out = append(out, f)
	}
	return out
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return clampInt(int(math.Round(part/whole*100)), 0, 100)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// clampFloat also maps NaN to lo.
func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func cloneOrEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
