package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// insert stores rec with the extra fields merged over its bson encoding.
func (f *Fixtures) insert(ctx context.Context, coll string, rec any, extra bson.M) {
	f.t.Helper()

	raw, err := bson.Marshal(rec)
	if err != nil {
		f.t.Fatalf("marshal %s fixture: %v", coll, err)
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		f.t.Fatalf("unmarshal %s fixture: %v", coll, err)
	}
	for k, v := range extra {
		doc[k] = v
	}
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test %s: %v", coll, err)
	}
}

// CreateCompany inserts a school with its folded search fields.
func (f *Fixtures) CreateCompany(ctx context.Context, c source.Company, logoURL string) source.Company {
	f.t.Helper()
	now := time.Now().UTC()
	extra := bson.M{
		"name_ci":    text.Fold(c.Name),
		"city_ci":    text.Fold(c.City),
		"created_at": now,
		"updated_at": now,
	}
	if logoURL != "" {
		extra["logo_url"] = logoURL
	}
	f.insert(ctx, "companies", c, extra)
	return c
}

// CreateUser inserts a user created now.
func (f *Fixtures) CreateUser(ctx context.Context, u source.User) source.User {
	f.t.Helper()
	return f.CreateUserAt(ctx, u, time.Now().UTC())
}

// CreateUserAt inserts a user with an explicit creation time.
func (f *Fixtures) CreateUserAt(ctx context.Context, u source.User, created time.Time) source.User {
	f.t.Helper()
	f.insert(ctx, "users", u, bson.M{"created_at": created.UTC()})
	return u
}

// CreateCourse inserts a course.
func (f *Fixtures) CreateCourse(ctx context.Context, c source.Course) source.Course {
	f.t.Helper()
	f.insert(ctx, "courses", c, nil)
	return c
}

// CreateEnrollment inserts an enrollment scoped to companyID.
func (f *Fixtures) CreateEnrollment(ctx context.Context, companyID string, e source.Enrollment) source.Enrollment {
	f.t.Helper()
	f.insert(ctx, "enrollments", e, bson.M{"company_id": companyID})
	return e
}

// CreateAttendance inserts an attendance session scoped to companyID.
func (f *Fixtures) CreateAttendance(ctx context.Context, companyID string, a source.AttendanceRecord) source.AttendanceRecord {
	f.t.Helper()
	f.insert(ctx, "attendance", a, bson.M{"company_id": companyID})
	return a
}

// CreateRating inserts one rating of userID's delivery of courseID.
func (f *Fixtures) CreateRating(ctx context.Context, userID, courseID string, rating float64) {
	f.t.Helper()
	f.insert(ctx, "ratings", bson.M{
		"user_id":    userID,
		"course_id":  courseID,
		"rating":     rating,
		"created_at": time.Now().UTC(),
	}, nil)
}
