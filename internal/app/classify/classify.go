// Package classify assigns a discrete tag and tier to trainers, trainees
// and schools. Rules are evaluated in order and the first match wins; the
// last rule of each table always matches, so every entity is classified.
package classify

// Tiers.
const (
	TierTop          = "top"
	TierConsistent   = "consistent"
	TierRising       = "rising"
	TierNew          = "new"
	TierHighAchiever = "high-achiever"
	TierImproving    = "improving"
	TierActive       = "active"
)

// Tags.
const (
	TagTop5         = "Top 5%"
	TagTop10        = "Top 10%"
	TagConsistent   = "Consistent"
	TagRising       = "Rising"
	TagNew          = "New"
	TagHighAchiever = "High Achiever"
	TagImproving    = "Improving"
	TagActive       = "Active"
)

// School performance bands.
const (
	BandExcellent = "excellent"
	BandGood      = "good"
	BandFair      = "fair"
	BandPoor      = "poor"
)

// Result is the outcome of classifying one entity.
type Result struct {
	Tag  string
	Tier string
}

// TrainerMetrics are the inputs to trainer tagging.
type TrainerMetrics struct {
	Rating       float64
	CoursesCount int
}

// TraineeMetrics are the inputs to trainee tagging.
type TraineeMetrics struct {
	Progress         float64
	EnrolledCourses  int
	CompletedCourses int
}

type rule[M any] struct {
	match  func(M) bool
	result Result
}

var trainerRules = []rule[TrainerMetrics]{
	{func(m TrainerMetrics) bool { return m.Rating >= 4.5 && m.CoursesCount >= 5 }, Result{TagTop5, TierTop}},
	{func(m TrainerMetrics) bool { return m.Rating >= 4.0 && m.CoursesCount >= 3 }, Result{TagTop10, TierTop}},
	{func(m TrainerMetrics) bool { return m.CoursesCount >= 2 }, Result{TagConsistent, TierConsistent}},
	{func(m TrainerMetrics) bool { return m.Rating >= 4.0 }, Result{TagRising, TierRising}},
	{func(TrainerMetrics) bool { return true }, Result{TagNew, TierNew}},
}

var traineeRules = []rule[TraineeMetrics]{
	{func(m TraineeMetrics) bool { return m.Progress >= 90 && m.CompletedCourses >= 3 }, Result{TagHighAchiever, TierHighAchiever}},
	{func(m TraineeMetrics) bool { return m.Progress >= 70 && m.EnrolledCourses >= 2 }, Result{TagConsistent, TierConsistent}},
	{func(m TraineeMetrics) bool { return m.Progress >= 50 }, Result{TagImproving, TierImproving}},
	{func(m TraineeMetrics) bool { return m.EnrolledCourses >= 1 }, Result{TagActive, TierActive}},
	{func(TraineeMetrics) bool { return true }, Result{TagNew, TierNew}},
}

func first[M any](rules []rule[M], m M) Result {
	for _, r := range rules {
		if r.match(m) {
			return r.result
		}
	}
	// unreachable: every table ends with a catch-all
	return Result{TagNew, TierNew}
}

// Trainer tags a trainer by rating and course count.
func Trainer(m TrainerMetrics) Result { return first(trainerRules, m) }

// Trainee tags a trainee by progress and course counts.
func Trainee(m TraineeMetrics) Result { return first(traineeRules, m) }

// SchoolBand maps a performance score to its display band.
func SchoolBand(score int) string {
	switch {
	case score >= 90:
		return BandExcellent
	case score >= 80:
		return BandGood
	case score >= 70:
		return BandFair
	default:
		return BandPoor
	}
}
