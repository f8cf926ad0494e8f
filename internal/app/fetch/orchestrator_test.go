package fetch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/strataboard/internal/app/classify"
	"github.com/dalemusser/strataboard/internal/app/fetch"
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/source/fixture"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.uber.org/zap"
)

var sess = source.Session{Token: "token", UserID: "admin"}

func newOrchestrator(g source.Gateway, opts fetch.Options) *fetch.Orchestrator {
	return fetch.New(g, zap.NewNop(), opts)
}

func TestLoadSnapshot_Demo(t *testing.T) {
	o := newOrchestrator(fixture.New(fixture.Demo()), fetch.Options{})

	snap, errs, err := o.LoadSnapshot(context.Background(), sess)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if len(errs) != 0 {
		t.Fatalf("errs = %+v", errs)
	}
	if snap.ID == "" || snap.Scope != "all" {
		t.Errorf("id/scope = %q/%q", snap.ID, snap.Scope)
	}
	if snap.TotalSchools != 3 || snap.TotalTrainers != 3 || snap.TotalTeachers != 3 || snap.TotalCourses != 3 {
		t.Errorf("totals = %d/%d/%d/%d", snap.TotalSchools, snap.TotalTrainers, snap.TotalTeachers, snap.TotalCourses)
	}
	// The demo has no company-scoped courses, so the full list was used.
	if !snap.CoursesFromFallback {
		t.Error("CoursesFromFallback = false, want true")
	}

	var ada models.Trainer
	for _, tr := range snap.Trainers {
		if tr.ID == "usr-1" {
			ada = tr
		}
	}
	if ada.AverageRating != 4.7 || ada.CoursesCount != 5 || ada.Tag != classify.TagTop5 {
		t.Errorf("usr-1 = %+v", ada)
	}
	if snap.Schools[0].PerformanceScore != 80 || snap.Schools[0].LogoURL == "" {
		t.Errorf("sch-1 = %+v", snap.Schools[0])
	}
	if snap.Attendance.Trend.Direction != models.TrendDown {
		t.Errorf("trend = %+v, want down", snap.Attendance.Trend)
	}
	if len(snap.CompetencyDeltas) != 2 {
		t.Errorf("deltas = %+v", snap.CompetencyDeltas)
	}
}

func TestLoadSnapshot_NoSession(t *testing.T) {
	g := fixture.New(fixture.Demo())
	o := newOrchestrator(g, fetch.Options{})

	_, _, err := o.LoadSnapshot(context.Background(), source.Session{CompanyID: "sch-1"})
	if !errors.Is(err, fetch.ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
	if g.Calls(fixture.OpStats) != 0 {
		t.Error("gateway was called without a session")
	}
}

func TestLoadSnapshot_AnyOneSourceFails(t *testing.T) {
	defaults := fetch.BuiltinDefaults()
	ops := []struct {
		op     string
		source string
		check  func(t *testing.T, s models.DashboardSnapshot)
	}{
		{fixture.OpStats, fetch.SourceStats, func(t *testing.T, s models.DashboardSnapshot) {
			if s.Stats != (models.Stats{}) {
				t.Errorf("stats = %+v, want zero", s.Stats)
			}
		}},
		{fixture.OpAttendance, fetch.SourceAttendance, func(t *testing.T, s models.DashboardSnapshot) {
			if s.Sessions == nil || len(s.Sessions) != 0 || s.Attendance.Trend.Direction != models.TrendFlat {
				t.Errorf("sessions = %+v", s.Sessions)
			}
		}},
		{fixture.OpCompetency, fetch.SourceCompetency, func(t *testing.T, s models.DashboardSnapshot) {
			if len(s.Competency) != len(defaults.Competency) || s.Competency[0] != defaults.Competency[0] {
				t.Errorf("competency = %+v, want canned", s.Competency)
			}
		}},
		{fixture.OpEngagement, fetch.SourceEngagement, func(t *testing.T, s models.DashboardSnapshot) {
			if len(s.Engagement) != len(defaults.Engagement) {
				t.Errorf("engagement = %+v, want canned", s.Engagement)
			}
		}},
		{fixture.OpParticipation, fetch.SourceParticipation, func(t *testing.T, s models.DashboardSnapshot) {
			if len(s.Participation) != len(defaults.Participation) {
				t.Errorf("participation = %+v, want canned", s.Participation)
			}
		}},
		{fixture.OpCompanies, fetch.SourceCompanies, func(t *testing.T, s models.DashboardSnapshot) {
			if s.Schools == nil || len(s.Schools) != 0 {
				t.Errorf("schools = %+v, want empty", s.Schools)
			}
		}},
		{fixture.OpUsers, fetch.SourceUsers, func(t *testing.T, s models.DashboardSnapshot) {
			if len(s.Trainers) != 0 || len(s.Trainees) != 0 {
				t.Errorf("trainers/trainees = %d/%d, want 0/0", len(s.Trainers), len(s.Trainees))
			}
		}},
		{fixture.OpEnrollments, fetch.SourceEnrollments, func(t *testing.T, s models.DashboardSnapshot) {
			for _, tr := range s.Trainees {
				if tr.EnrolledCourses != 0 {
					t.Errorf("%s enrolled = %d, want 0", tr.ID, tr.EnrolledCourses)
				}
			}
		}},
	}

	for _, tt := range ops {
		t.Run(tt.op, func(t *testing.T) {
			g := fixture.New(fixture.Demo()).Fail(tt.op, errors.New("upstream 503"))
			o := newOrchestrator(g, fetch.Options{})

			snap, errs, err := o.LoadSnapshot(context.Background(), sess)
			if err != nil {
				t.Fatalf("LoadSnapshot: %v", err)
			}
			if len(errs) != 1 || errs[0].Source != tt.source {
				t.Fatalf("errs = %+v, want one for %s", errs, tt.source)
			}
			if len(snap.SourceFailures) != 1 || snap.SourceFailures[0].Source != tt.source {
				t.Errorf("snapshot failures = %+v", snap.SourceFailures)
			}
			tt.check(t, snap)
		})
	}
}

func TestLoadSnapshot_LookupFailuresDefaultPerEntity(t *testing.T) {
	g := fixture.New(fixture.Demo()).Fail(fixture.OpCompanyLogo, errors.New("no logo service"))
	o := newOrchestrator(g, fetch.Options{})

	snap, errs, err := o.LoadSnapshot(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if len(errs) != 3 {
		t.Errorf("errs = %d, want one per company", len(errs))
	}
	for _, s := range snap.Schools {
		if s.LogoURL != "" {
			t.Errorf("%s logo = %q, want empty", s.ID, s.LogoURL)
		}
	}
	// The sibling lookups still landed.
	if snap.Schools[0].TeacherCount != 32 {
		t.Errorf("sch-1 teacher count = %d, want 32", snap.Schools[0].TeacherCount)
	}
}

func TestLoadSnapshot_SlowSourceBoundedByTimeout(t *testing.T) {
	g := fixture.New(fixture.Demo()).Stall(fixture.OpEngagement, 3*time.Second)
	o := newOrchestrator(g, fetch.Options{SourceTimeout: 100 * time.Millisecond})

	start := time.Now()
	snap, errs, err := o.LoadSnapshot(context.Background(), sess)
	elapsed := time.Since(start)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed > 2*time.Second {
		t.Errorf("LoadSnapshot took %v, want it bounded by the source timeout", elapsed)
	}
	if len(errs) != 1 || errs[0].Kind != source.KindTimeout {
		t.Errorf("errs = %+v, want one timeout", errs)
	}
	if len(snap.Engagement) != len(fetch.BuiltinDefaults().Engagement) {
		t.Errorf("engagement = %+v, want canned default", snap.Engagement)
	}
}

func TestLoadSnapshot_CallsRunInParallel(t *testing.T) {
	const delay = 150 * time.Millisecond
	g := fixture.New(fixture.Demo())
	for _, op := range []string{
		fixture.OpStats, fixture.OpAttendance, fixture.OpParticipation, fixture.OpCompetency,
		fixture.OpEngagement, fixture.OpCoursePerformance, fixture.OpUserAnalytics,
		fixture.OpCompetencyTargets, fixture.OpCompanies, fixture.OpUsers,
		fixture.OpCompanyCourses, fixture.OpCourses, fixture.OpEnrollments,
	} {
		g.Delay(op, delay)
	}
	o := newOrchestrator(g, fetch.Options{})

	start := time.Now()
	if _, _, err := o.LoadSnapshot(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	elapsed := time.Since(start)

	// Thirteen sequential calls would take about 2s.
	if elapsed > 800*time.Millisecond {
		t.Errorf("LoadSnapshot took %v, want close to %v", elapsed, delay)
	}
}

func TestLoadSnapshot_CompanyCoursesPreferred(t *testing.T) {
	d := fixture.Demo()
	d.CompanyCourses = []source.Course{{ID: "own", FullName: "Own Course"}}
	o := newOrchestrator(fixture.New(d), fetch.Options{})

	snap, _, err := o.LoadSnapshot(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	if snap.CoursesFromFallback || len(snap.Courses) != 1 || snap.Courses[0].ID != "own" {
		t.Errorf("courses = %+v, fallback %v", snap.Courses, snap.CoursesFromFallback)
	}
}

func TestLoadSnapshot_DefaultsNotShared(t *testing.T) {
	g := fixture.New(fixture.Demo()).Fail(fixture.OpCompetency, errors.New("down"))
	o := newOrchestrator(g, fetch.Options{})

	first, _, _ := o.LoadSnapshot(context.Background(), sess)
	first.Competency[0].Percent = -1

	second, _, _ := o.LoadSnapshot(context.Background(), sess)
	if second.Competency[0].Percent == -1 {
		t.Error("snapshots share the canned default backing array")
	}
	if first.ID == second.ID {
		t.Error("snapshot IDs repeat")
	}
}
