// Package fetch runs the source calls behind one dashboard load. Each call
// is an entry in a task table with its own default and timeout; one generic
// routine runs the table concurrently, substitutes defaults for failures and
// waits for every entry to settle.
package fetch

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/strataboard/internal/app/enrich"
	"github.com/dalemusser/strataboard/internal/app/normalizer"
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/system/timeouts"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNoSession is returned when a batch cannot be mounted because the
// caller has no usable session. It is the only error that aborts a load.
var ErrNoSession = errors.New("fetch: no session")

// FallbackCourseLimit caps the full course list when the company-scoped
// course source is empty.
const FallbackCourseLimit = 10

// Options tune an Orchestrator. Zero values pick the defaults; timeouts
// default to the system/timeouts values.
type Options struct {
	// Concurrency bounds calls in flight per phase. 0 is unbounded.
	Concurrency   int
	SourceTimeout time.Duration
	LookupTimeout time.Duration
	Defaults      *Defaults
	Now           func() time.Time
}

// Orchestrator fans a dashboard load out over a Gateway.
type Orchestrator struct {
	gw   source.Gateway
	log  *zap.Logger
	opts Options
}

// New builds an Orchestrator over gw.
func New(gw source.Gateway, logger *zap.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Defaults == nil {
		d := BuiltinDefaults()
		opts.Defaults = &d
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = timeouts.Source()
	}
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = timeouts.Lookup()
	}
	return &Orchestrator{gw: gw, log: logger, opts: opts}
}

// LoadSnapshot fetches, normalizes and enriches one snapshot for sess.
// Source failures are absorbed and returned for observability; the only
// error is ErrNoSession. The snapshot's Generation is left for the caller.
func (o *Orchestrator) LoadSnapshot(ctx context.Context, sess source.Session) (models.DashboardSnapshot, []source.SourceError, error) {
	p, errs, err := o.Fetch(ctx, sess)
	if err != nil {
		return models.DashboardSnapshot{}, nil, err
	}
	snap := enrich.Enrich(normalizer.Normalize(p), p.CompetencyTargets)
	snap.ID = uuid.NewString()
	return snap, errs, nil
}

// Fetch runs both phases of the batch and returns the merged payload.
//
// Phase one issues every top-level source call at once. Phase two issues
// the per-entity lookups: three per company and two per trainer. Elapsed
// time is roughly the slowest call of phase one plus the slowest of phase
// two, each bounded by its timeout.
func (o *Orchestrator) Fetch(ctx context.Context, sess source.Session) (source.Payload, []source.SourceError, error) {
	if !sess.Valid() {
		o.log.Error("fetch batch not started", zap.Error(ErrNoSession))
		return source.Payload{}, nil, ErrNoSession
	}

	start := o.opts.Now()
	defaults := o.opts.Defaults.clone()
	p := source.Payload{Scope: sess.Scope(), FetchedAt: start}

	var companyCourses, allCourses []source.Course
	errs := Run(ctx, o.sourceTasks(sess, &p, &companyCourses, &allCourses, defaults), o.opts.Concurrency)
	p.Courses, p.CoursesFromFallback = ApplyCourseFallback(companyCourses, allCourses)

	trainers, _ := normalizer.PartitionUsers(p.Users)
	tasks, collect := o.lookupTasks(sess, p.Companies, trainers)
	errs = append(errs, Run(ctx, tasks, o.opts.Concurrency)...)
	p.SchoolLookups, p.TrainerLookups = collect()

	p.Failures = errs
	for _, e := range errs {
		o.log.Warn("source call defaulted",
			zap.String("source", e.Source),
			zap.String("kind", string(e.Kind)),
			zap.Error(e.Err))
	}
	o.log.Info("fetch batch settled",
		zap.String("scope", p.Scope),
		zap.Int("companies", len(p.Companies)),
		zap.Int("users", len(p.Users)),
		zap.Int("failures", len(errs)),
		zap.Duration("elapsed", o.opts.Now().Sub(start)))
	return p, errs, nil
}

// sourceTasks is the top-level task table.
func (o *Orchestrator) sourceTasks(sess source.Session, p *source.Payload, companyCourses, allCourses *[]source.Course, d Defaults) []Task {
	gw, to := o.gw, o.opts.SourceTimeout
	return []Task{
		Bind(SourceStats, to, &p.Stats, bind(gw.Stats, sess), models.Stats{}),
		Bind(SourceAttendance, to, &p.Attendance, bind(gw.Attendance, sess), []source.AttendanceRecord{}),
		Bind(SourceParticipation, to, &p.Participation, bind(gw.Participation, sess), d.Participation),
		Bind(SourceCompetency, to, &p.Competency, bind(gw.Competency, sess), d.Competency),
		Bind(SourceEngagement, to, &p.Engagement, bind(gw.Engagement, sess), d.Engagement),
		Bind(SourceCoursePerformance, to, &p.CoursePerformance, bind(gw.CoursePerformance, sess), []models.CoursePerformance{}),
		Bind(SourceUserAnalytics, to, &p.UserAnalytics, bind(gw.UserAnalytics, sess), models.UserAnalytics{}),
		Bind(SourceCompetencyTargets, to, &p.CompetencyTargets, bind(gw.CompetencyTargets, sess), d.CompetencyTargets),
		Bind(SourceCompanies, to, &p.Companies, bind(gw.Companies, sess), []source.Company{}),
		Bind(SourceUsers, to, &p.Users, bind(gw.Users, sess), []source.User{}),
		Bind(SourceCompanyCourses, to, companyCourses, bind(gw.CompanyCourses, sess), []source.Course{}),
		Bind(SourceCourses, to, allCourses, bind(gw.Courses, sess), []source.Course{}),
		Bind(SourceEnrollments, to, &p.Enrollments, bind(gw.Enrollments, sess), []source.Enrollment{}),
	}
}

// lookupTasks builds the per-entity task table. Each task writes its own
// slot, so the tasks share no memory; collect assembles the maps after Run.
func (o *Orchestrator) lookupTasks(sess source.Session, companies []source.Company, trainers []source.User) ([]Task, func() (map[string]source.SchoolLookup, map[string]source.TrainerLookup)) {
	gw, to := o.gw, o.opts.LookupTimeout
	schools := make([]source.SchoolLookup, len(companies))
	people := make([]source.TrainerLookup, len(trainers))

	tasks := make([]Task, 0, 3*len(companies)+2*len(trainers))
	for i, c := range companies {
		id := c.ID
		tasks = append(tasks,
			Bind(SourceCompanyUserCount+":"+id, to, &schools[i].UserCount, bindID(gw.CompanyUserCount, sess, id), 0),
			Bind(SourceCompanyCourseCount+":"+id, to, &schools[i].CourseCount, bindID(gw.CompanyCourseCount, sess, id), 0),
			Bind(SourceCompanyLogo+":"+id, to, &schools[i].Logo, bindID(gw.CompanyLogo, sess, id), ""),
		)
	}
	for i, u := range trainers {
		id := u.ID
		tasks = append(tasks,
			Bind(SourceUserPerformance+":"+id, to, &people[i].Performance, bindID(gw.UserPerformance, sess, id), source.Performance{}),
			Bind(SourceUserCourseCount+":"+id, to, &people[i].CourseCount, bindID(gw.UserCourseCount, sess, id), 0),
		)
	}

	return tasks, func() (map[string]source.SchoolLookup, map[string]source.TrainerLookup) {
		sm := make(map[string]source.SchoolLookup, len(companies))
		for i, c := range companies {
			sm[c.ID] = schools[i]
		}
		tm := make(map[string]source.TrainerLookup, len(trainers))
		for i, u := range trainers {
			tm[u.ID] = people[i]
		}
		return sm, tm
	}
}

// ApplyCourseFallback prefers the company-scoped courses. When there are
// none, it returns at most FallbackCourseLimit rows of the full list and
// reports that the fallback was used.
func ApplyCourseFallback(company, all []source.Course) ([]source.Course, bool) {
	if len(company) > 0 {
		return company, false
	}
	if len(all) > FallbackCourseLimit {
		all = all[:FallbackCourseLimit]
	}
	out := make([]source.Course, len(all))
	copy(out, all)
	return out, true
}

func bind[T any](call func(context.Context, source.Session) (T, error), sess source.Session) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) { return call(ctx, sess) }
}

func bindID[T any](call func(context.Context, source.Session, string) (T, error), sess source.Session, id string) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) { return call(ctx, sess, id) }
}
