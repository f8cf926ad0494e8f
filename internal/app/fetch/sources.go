package fetch

// Source names used in task tables and SourceError records. Per-entity
// lookups are suffixed with ":<id>".
const (
	SourceStats             = "stats"
	SourceAttendance        = "attendance"
	SourceParticipation     = "participation"
	SourceCompetency        = "competency"
	SourceEngagement        = "engagement"
	SourceCoursePerformance = "course-performance"
	SourceUserAnalytics     = "user-analytics"
	SourceCompetencyTargets = "competency-targets"
	SourceCompanies         = "companies"
	SourceUsers             = "users"
	SourceCompanyCourses    = "company-courses"
	SourceCourses           = "courses"
	SourceEnrollments       = "enrollments"

	SourceCompanyUserCount   = "company-user-count"
	SourceCompanyCourseCount = "company-course-count"
	SourceCompanyLogo        = "company-logo"
	SourceUserPerformance    = "user-performance"
	SourceUserCourseCount    = "user-course-count"
)
