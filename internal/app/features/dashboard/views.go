package dashboard

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/query"
	"github.com/dalemusser/strataboard/internal/app/system/normalize"
	"github.com/dalemusser/strataboard/internal/app/system/paging"
	"github.com/dalemusser/strataboard/internal/domain/models"
	wafflequery "github.com/dalemusser/waffle/pantry/query"
)

// params are the list query parameters shared by every entity view.
type params struct {
	Q      string
	Status string
	Region string
	Type   string
	Min    *float64
	Sort   string
	Desc   bool
	Start  int
	Size   int
}

func parseParams(r *http.Request) params {
	p := params{
		Q:      normalize.QueryParam(wafflequery.Get(r, "q")),
		Status: normalize.QueryParam(wafflequery.Get(r, "status")),
		Region: normalize.QueryParam(wafflequery.Get(r, "region")),
		Type:   normalize.QueryParam(wafflequery.Get(r, "type")),
		Sort:   normalize.QueryParam(wafflequery.Get(r, "sort")),
		Desc:   strings.EqualFold(normalize.QueryParam(wafflequery.Get(r, "dir")), "desc"),
		Start:  paging.ParseStart(r),
		Size:   paging.ParseSize(r, paging.PageSize),
	}
	if s := normalize.QueryParam(wafflequery.Get(r, "min")); s != "" {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			p.Min = &v
		}
	}
	return p
}

// atLeast is the numeric threshold filter, or nil when min is unset.
func atLeast[T any](min *float64, field func(T) float64) query.Predicate[T] {
	if min == nil {
		return nil
	}
	return query.AtLeast(*min, field)
}

// view binds one snapshot collection to its filters and sort whitelist.
type view[T any] struct {
	items   func(*models.DashboardSnapshot) []T
	filters func(params) []query.Predicate[T]
	sorters query.Sorters[T]
}

type listResponse[T any] struct {
	Generation uint64 `json:"generation"`
	query.Result[T]
}

func serveView[T any](h *Handler, v view[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := h.current(w, r)
		if snap == nil {
			return
		}
		p := parseParams(r)
		res := query.Run(v.items(snap), v.sorters, query.Spec[T]{
			Filters:    v.filters(p),
			Sort:       p.Sort,
			Descending: p.Desc,
			Start:      p.Start,
			Size:       p.Size,
		})
		writeJSON(w, http.StatusOK, listResponse[T]{Generation: snap.Generation, Result: res})
	}
}

var schoolsView = view[models.School]{
	items: func(s *models.DashboardSnapshot) []models.School { return s.Schools },
	filters: func(p params) []query.Predicate[models.School] {
		return []query.Predicate[models.School]{
			query.Text(p.Q,
				func(s models.School) string { return s.Name },
				func(s models.School) string { return s.City },
				func(s models.School) string { return s.Country }),
			query.Equals(p.Status, func(s models.School) string { return s.Status }),
			query.Equals(p.Region, func(s models.School) string { return s.Region }),
			atLeast(p.Min, func(s models.School) float64 { return float64(s.PerformanceScore) }),
		}
	},
	sorters: query.Sorters[models.School]{
		"name":        query.ByFold(func(s models.School) string { return s.Name }),
		"city":        query.ByFold(func(s models.School) string { return s.City }),
		"region":      query.ByFold(func(s models.School) string { return s.Region }),
		"teachers":    query.By(func(s models.School) int { return s.TeacherCount }),
		"courses":     query.By(func(s models.School) int { return s.CourseCount }),
		"performance": query.By(func(s models.School) int { return s.PerformanceScore }),
		"engagement":  query.By(func(s models.School) int { return s.EngagementScore }),
		"trained":     query.By(func(s models.School) int { return s.TrainedPercent }),
	},
}

// Trainers and trainees filter their classification tag through "status".
var trainersView = view[models.Trainer]{
	items: func(s *models.DashboardSnapshot) []models.Trainer { return s.Trainers },
	filters: func(p params) []query.Predicate[models.Trainer] {
		return []query.Predicate[models.Trainer]{
			query.Text(p.Q,
				func(t models.Trainer) string { return t.Name },
				func(t models.Trainer) string { return t.Email }),
			query.Equals(p.Status, func(t models.Trainer) string { return t.Tag }),
			query.Equals(p.Type, func(t models.Trainer) string { return t.Tier }),
			atLeast(p.Min, func(t models.Trainer) float64 { return t.AverageRating }),
		}
	},
	sorters: query.Sorters[models.Trainer]{
		"name":        query.ByFold(func(t models.Trainer) string { return t.Name }),
		"email":       query.ByFold(func(t models.Trainer) string { return t.Email }),
		"rating":      query.By(func(t models.Trainer) float64 { return t.AverageRating }),
		"courses":     query.By(func(t models.Trainer) int { return t.CoursesCount }),
		"last_access": query.By(func(t models.Trainer) int64 { return t.LastAccess.Unix() }),
	},
}

var traineesView = view[models.Trainee]{
	items: func(s *models.DashboardSnapshot) []models.Trainee { return s.Trainees },
	filters: func(p params) []query.Predicate[models.Trainee] {
		return []query.Predicate[models.Trainee]{
			query.Text(p.Q,
				func(t models.Trainee) string { return t.Name },
				func(t models.Trainee) string { return t.Email }),
			query.Equals(p.Status, func(t models.Trainee) string { return t.Tag }),
			query.Equals(p.Type, func(t models.Trainee) string { return t.Tier }),
			atLeast(p.Min, func(t models.Trainee) float64 { return float64(t.ProgressPercent) }),
		}
	},
	sorters: query.Sorters[models.Trainee]{
		"name":      query.ByFold(func(t models.Trainee) string { return t.Name }),
		"progress":  query.By(func(t models.Trainee) int { return t.ProgressPercent }),
		"enrolled":  query.By(func(t models.Trainee) int { return t.EnrolledCourses }),
		"completed": query.By(func(t models.Trainee) int { return t.CompletedCourses }),
	},
}

var coursesView = view[models.Course]{
	items: func(s *models.DashboardSnapshot) []models.Course { return s.Courses },
	filters: func(p params) []query.Predicate[models.Course] {
		return []query.Predicate[models.Course]{
			query.Text(p.Q,
				func(c models.Course) string { return c.Title },
				func(c models.Course) string { return c.Instructor },
				func(c models.Course) string { return strings.Join(c.Tags, " ") }),
			query.Equals(p.Status, func(c models.Course) string { return c.Status }),
			query.Equals(p.Type, func(c models.Course) string { return c.Type }),
			query.Equals(p.Region, func(c models.Course) string { return c.Level }),
			atLeast(p.Min, func(c models.Course) float64 { return c.Rating }),
		}
	},
	sorters: query.Sorters[models.Course]{
		"title":    query.ByFold(func(c models.Course) string { return c.Title }),
		"type":     query.By(func(c models.Course) string { return c.Type }),
		"status":   query.By(func(c models.Course) string { return c.Status }),
		"enrolled": query.By(func(c models.Course) int { return c.EnrolledCount }),
		"rating":   query.By(func(c models.Course) float64 { return c.Rating }),
	},
}

var sessionsView = view[models.AttendanceSession]{
	items: func(s *models.DashboardSnapshot) []models.AttendanceSession { return s.Sessions },
	filters: func(p params) []query.Predicate[models.AttendanceSession] {
		return []query.Predicate[models.AttendanceSession]{
			query.Text(p.Q,
				func(a models.AttendanceSession) string { return a.Label },
				func(a models.AttendanceSession) string { return a.Instructor },
				func(a models.AttendanceSession) string { return a.Location }),
			query.Equals(p.Type, func(a models.AttendanceSession) string { return a.Type }),
			query.Equals(p.Region, func(a models.AttendanceSession) string { return a.Location }),
			atLeast(p.Min, func(a models.AttendanceSession) float64 { return a.AttendanceRate }),
		}
	},
	sorters: query.Sorters[models.AttendanceSession]{
		"date":       query.By(func(a models.AttendanceSession) int64 { return a.Date.Unix() }),
		"label":      query.ByFold(func(a models.AttendanceSession) string { return a.Label }),
		"rate":       query.By(func(a models.AttendanceSession) float64 { return a.AttendanceRate }),
		"present":    query.By(func(a models.AttendanceSession) int { return a.PresentCount }),
		"instructor": query.ByFold(func(a models.AttendanceSession) string { return a.Instructor }),
	},
}
