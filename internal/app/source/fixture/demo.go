package fixture

import (
	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/domain/models"
)

// Demo returns a small data set for running the dashboard locally.
func Demo() Data {
	return Data{
		Stats: models.Stats{TotalUsers: 6, TotalCourses: 3, TotalCompanies: 3, ActiveUsers: 4, CompletionRate: 58.3},
		Attendance: []source.AttendanceRecord{
			{ID: "att-1", Label: "Orientation", Date: "2026-01-12", Type: "ILT", Present: 18, Total: 20, Instructor: "Ada Obi", Location: "Lagos Hub", StartTime: "09:00", EndTime: "11:00"},
			{ID: "att-2", Label: "Lesson Planning", Date: "2026-01-19", Type: "VILT", Present: 15, Total: 20, Instructor: "Kemi Ade", Location: "Online", StartTime: "14:00", EndTime: "15:30"},
			{ID: "att-3", Label: "Assessment Design", Date: "2026-01-26", Type: "ILT", Present: 14, Total: 20, Instructor: "Ada Obi", Location: "Abuja Hub", StartTime: "10:00"},
			{ID: "att-4", Label: "Classroom Tech", Date: "2026-02-02", Type: "VILT", Present: 12, Total: 20, Instructor: "Kemi Ade", Location: "Online", StartTime: "18:00", EndTime: "19:00"},
		},
		Participation: []models.SeriesPoint{{Label: "Enrolled", Value: 6}, {Label: "Active", Value: 4}, {Label: "Completed", Value: 2}},
		Competency: []models.CompetencyShare{
			{Name: "Pedagogy", Percent: 40},
			{Name: "Digital Literacy", Percent: 30},
			{Name: "Assessment", Percent: 30},
		},
		Engagement: []models.SeriesPoint{{Label: "Week 1", Value: 72}, {Label: "Week 2", Value: 80}, {Label: "Week 3", Value: 76}},
		CoursePerformance: []models.CoursePerformance{
			{CourseID: "crs-1", Title: "Foundations of Pedagogy", CompletionRate: 75, AverageScore: 82},
		},
		UserAnalytics: models.UserAnalytics{ActiveLast7Days: 3, ActiveLast30Days: 4, NewThisMonth: 1},
		CompetencyTargets: []models.CompetencyTarget{
			{Name: "Pedagogy", Current: 64, Target: 80},
			{Name: "Assessment", Current: 78, Target: 75},
		},

		Companies: []source.Company{
			{ID: "sch-1", Name: "North Ridge Academy", City: "Lagos", Country: "NG", Region: "South West", MaxUsers: 40},
			{ID: "sch-2", Name: "Hill Top College", City: "Abuja", Country: "NG", Region: "North Central", MaxUsers: 25},
			{ID: "sch-3", Name: "Riverside School", City: "Port Harcourt", Country: "NG", Suspended: true},
		},
		Users: []source.User{
			{ID: "usr-1", FirstName: "Ada", LastName: "Obi", Email: "ada@northridge.ng", Role: "teacher", CompanyID: "sch-1", LastAccess: 1768003200},
			{ID: "usr-2", FirstName: "Kemi", LastName: "Ade", Email: "kemi@hilltop.ng", Role: "teacher", CompanyID: "sch-2", LastAccess: 1767830400},
			{ID: "usr-3", FirstName: "Tunde", LastName: "Bello", Email: "tunde@northridge.ng", Role: "teacher", CompanyID: "sch-1"},
			{ID: "usr-4", FirstName: "Zainab", LastName: "Musa", Email: "zainab@hilltop.ng", Role: "student", CompanyID: "sch-2"},
		},
		Courses: []source.Course{
			{ID: "crs-1", FullName: "Foundations of Pedagogy", Format: "ilt"},
			{ID: "crs-2", FullName: "Teaching with Technology", Format: "vilt"},
			{ID: "crs-3", FullName: "Inclusive Classrooms"},
		},
		Enrollments: []source.Enrollment{
			{UserID: "usr-1", CourseID: "crs-1", Progress: 100, Completed: true},
			{UserID: "usr-1", CourseID: "crs-2", Progress: 80},
			{UserID: "usr-2", CourseID: "crs-1", Progress: 45},
			{UserID: "usr-3", CourseID: "crs-3", Progress: 95, Completed: true},
		},

		CompanyUserCounts:   map[string]int{"sch-1": 32, "sch-2": 11, "sch-3": 4},
		CompanyCourseCounts: map[string]int{"sch-1": 3, "sch-2": 2, "sch-3": 1},
		CompanyLogos:        map[string]string{"sch-1": "https://cdn.example.org/logos/sch-1.png"},
		UserPerformance: map[string]source.Performance{
			"usr-1": {AverageRating: 4.7, Ratings: 22},
			"usr-2": {AverageRating: 4.1, Ratings: 9},
		},
		UserCourseCounts: map[string]int{"usr-1": 5, "usr-2": 3, "usr-3": 1},
	}
}
