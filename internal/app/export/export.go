// Package export serializes a dashboard snapshot into a downloadable
// report. It is a pure step downstream of the engine.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dalemusser/strataboard/internal/domain/models"
)

// Formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatText = "text"
)

// Entities selectable for CSV export.
const (
	EntitySchools  = "schools"
	EntityTrainers = "trainers"
	EntityTrainees = "trainees"
	EntityCourses  = "courses"
	EntitySessions = "sessions"
)

var (
	ErrUnknownFormat = errors.New("export: unknown format")
	ErrUnknownEntity = errors.New("export: unknown entity")
)

// utf8BOM makes spreadsheet apps detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Report is a rendered export.
type Report struct {
	Body        []byte
	ContentType string
	Filename    string
}

// Render serializes snap in the given format. entity selects the table for
// CSV and is ignored otherwise; empty means schools.
func Render(snap *models.DashboardSnapshot, format, entity string) (Report, error) {
	stamp := snap.BuiltAt.UTC().Format("20060102_150405")
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON, "":
		b, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return Report{}, fmt.Errorf("export json: %w", err)
		}
		return Report{Body: b, ContentType: "application/json", Filename: "dashboard_" + stamp + ".json"}, nil

	case FormatCSV:
		if entity == "" {
			entity = EntitySchools
		}
		b, err := CSV(snap, entity)
		if err != nil {
			return Report{}, err
		}
		return Report{Body: b, ContentType: "text/csv; charset=utf-8", Filename: entity + "_" + stamp + ".csv"}, nil

	case FormatText:
		return Report{Body: Text(snap), ContentType: "text/plain; charset=utf-8", Filename: "dashboard_" + stamp + ".txt"}, nil
	}
	return Report{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// CSV writes one entity table with a header row.
func CSV(snap *models.DashboardSnapshot, entity string) ([]byte, error) {
	header, rows, err := table(snap, entity)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	cw := csv.NewWriter(&buf)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("export csv header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("export csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

func table(snap *models.DashboardSnapshot, entity string) ([]string, [][]string, error) {
	var rows [][]string
	switch strings.ToLower(strings.TrimSpace(entity)) {
	case EntitySchools:
		for _, s := range snap.Schools {
			rows = append(rows, []string{s.ID, s.Name, s.City, s.Country, s.Region, s.Status,
				itoa(s.TeacherCount), itoa(s.CourseCount), itoa(s.MaxUsers),
				itoa(s.PerformanceScore), itoa(s.EngagementScore), itoa(s.TrainedPercent), s.PerformanceBand})
		}
		return []string{"ID", "Name", "City", "Country", "Region", "Status", "Teachers", "Courses",
			"Max Users", "Performance", "Engagement", "Trained %", "Band"}, rows, nil

	case EntityTrainers:
		for _, t := range snap.Trainers {
			rows = append(rows, []string{t.ID, t.Name, t.Email, t.Role, ftoa(t.AverageRating),
				itoa(t.CoursesCount), t.LastAccessLabel, t.Tag})
		}
		return []string{"ID", "Name", "Email", "Role", "Rating", "Courses", "Last Access", "Tag"}, rows, nil

	case EntityTrainees:
		for _, t := range snap.Trainees {
			rows = append(rows, []string{t.ID, t.Name, t.Email, itoa(t.ProgressPercent),
				itoa(t.EnrolledCourses), itoa(t.CompletedCourses), t.Tag})
		}
		return []string{"ID", "Name", "Email", "Progress %", "Enrolled", "Completed", "Tag"}, rows, nil

	case EntityCourses:
		for _, c := range snap.Courses {
			rows = append(rows, []string{c.ID, c.Title, c.Type, c.Status, itoa(c.EnrolledCount),
				ftoa(c.Rating), c.Level, c.Duration, c.Instructor, strings.Join(c.Tags, "; ")})
		}
		return []string{"ID", "Title", "Type", "Status", "Enrolled", "Rating", "Level", "Duration",
			"Instructor", "Tags"}, rows, nil

	case EntitySessions:
		for _, s := range snap.Sessions {
			date := ""
			if !s.Date.IsZero() {
				date = s.Date.Format("2006-01-02")
			}
			rows = append(rows, []string{s.ID, s.Label, date, s.Type, itoa(s.PresentCount), itoa(s.TotalCount),
				ftoa(s.AttendanceRate), s.Instructor, s.Location, s.StartTime, s.EndTime, itoa(s.DurationMinutes)})
		}
		return []string{"ID", "Session", "Date", "Type", "Present", "Total", "Attendance %", "Instructor",
			"Location", "Start", "End", "Minutes"}, rows, nil
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
}

// Text renders a human-readable summary.
func Text(snap *models.DashboardSnapshot) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dashboard report (%s)\n", snap.Scope)
	fmt.Fprintf(&buf, "Built %s, generation %d\n\n", snap.BuiltAt.UTC().Format("2006-01-02 15:04 MST"), snap.Generation)

	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Schools\t%d\n", snap.TotalSchools)
	fmt.Fprintf(tw, "Teachers\t%d\n", snap.TotalTeachers)
	fmt.Fprintf(tw, "Trainers\t%d\n", snap.TotalTrainers)
	fmt.Fprintf(tw, "Courses\t%d\n", snap.TotalCourses)
	fmt.Fprintf(tw, "Completion rate\t%s%%\n", ftoa(snap.Stats.CompletionRate))
	tw.Flush()

	a := snap.Attendance
	buf.WriteString("\nAttendance\n")
	tw = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Sessions\t%d\n", a.Sessions)
	fmt.Fprintf(tw, "Average\t%s%%\n", ftoa(a.AverageAttendance))
	fmt.Fprintf(tw, "Trend\t%s (%s)\n", a.Trend.Direction, ftoa(a.Trend.Value))
	fmt.Fprintf(tw, "Risk\t%s\n", a.Risk)
	fmt.Fprintf(tw, "Predicted next\t%s%%\n", ftoa(a.PredictedNext))
	if a.OptimalSlot != "" {
		fmt.Fprintf(tw, "Best time slot\t%s\n", a.OptimalSlot)
	}
	tw.Flush()

	if len(a.Instructors) > 0 {
		buf.WriteString("\nInstructors\n")
		tw = tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
		for i, in := range a.Instructors {
			fmt.Fprintf(tw, "%d.\t%s\t%s%%\t%d sessions\n", i+1, in.Instructor, ftoa(in.Ratio), in.Sessions)
		}
		tw.Flush()
	}

	if len(snap.SourceFailures) > 0 {
		fmt.Fprintf(&buf, "\n%d source(s) unavailable; defaults were used.\n", len(snap.SourceFailures))
	}
	return buf.Bytes()
}

func itoa(n int) string { return strconv.Itoa(n) }

func ftoa(f float64) string { return strconv.FormatFloat(f, 'f', 1, 64) }
