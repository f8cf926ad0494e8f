package mongosource

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/source/fixture"
	analyticsstore "github.com/dalemusser/strataboard/internal/app/store/analytics"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seed writes d into db so the mongo gateway serves the same data set as a
// fixture gateway. Records are upserted by ID, so seeding twice is harmless.
// Derived values (stats, per-entity counts) are not stored; the gateway
// computes them from the records.
func Seed(ctx context.Context, db *mongo.Database, d fixture.Data) error {
	now := time.Now().UTC()
	upsert := options.Replace().SetUpsert(true)

	companyOf := make(map[string]string, len(d.Users))
	for _, u := range d.Users {
		companyOf[u.ID] = u.CompanyID
	}

	for _, c := range d.Companies {
		doc, err := document(c, bson.M{
			"name_ci":    text.Fold(c.Name),
			"city_ci":    text.Fold(c.City),
			"logo_url":   d.CompanyLogos[c.ID],
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if _, err := db.Collection("companies").ReplaceOne(ctx, bson.M{"_id": c.ID}, doc, upsert); err != nil {
			return fmt.Errorf("seed company %s: %w", c.ID, err)
		}
	}
	for _, u := range d.Users {
		doc, err := document(u, bson.M{"created_at": now})
		if err != nil {
			return err
		}
		if _, err := db.Collection("users").ReplaceOne(ctx, bson.M{"_id": u.ID}, doc, upsert); err != nil {
			return fmt.Errorf("seed user %s: %w", u.ID, err)
		}
	}
	courses := append(append([]source.Course{}, d.CompanyCourses...), d.Courses...)
	for _, c := range courses {
		doc, err := document(c, nil)
		if err != nil {
			return err
		}
		if _, err := db.Collection("courses").ReplaceOne(ctx, bson.M{"_id": c.ID}, doc, upsert); err != nil {
			return fmt.Errorf("seed course %s: %w", c.ID, err)
		}
	}
	for _, e := range d.Enrollments {
		doc, err := document(e, bson.M{"company_id": companyOf[e.UserID]})
		if err != nil {
			return err
		}
		filter := bson.M{"user_id": e.UserID, "course_id": e.CourseID}
		if _, err := db.Collection("enrollments").ReplaceOne(ctx, filter, doc, upsert); err != nil {
			return fmt.Errorf("seed enrollment %s/%s: %w", e.UserID, e.CourseID, err)
		}
	}
	for _, a := range d.Attendance {
		doc, err := document(a, bson.M{"company_id": ""})
		if err != nil {
			return err
		}
		if _, err := db.Collection("attendance").ReplaceOne(ctx, bson.M{"_id": a.ID}, doc, upsert); err != nil {
			return fmt.Errorf("seed attendance %s: %w", a.ID, err)
		}
	}
	for userID, p := range d.UserPerformance {
		if _, err := db.Collection("ratings").DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
			return fmt.Errorf("seed ratings %s: %w", userID, err)
		}
		rows := make([]any, 0, p.Ratings)
		for range p.Ratings {
			rows = append(rows, bson.M{"user_id": userID, "rating": p.AverageRating, "created_at": now})
		}
		if len(rows) == 0 {
			continue
		}
		if _, err := db.Collection("ratings").InsertMany(ctx, rows); err != nil {
			return fmt.Errorf("seed ratings %s: %w", userID, err)
		}
	}

	a := analyticsstore.New(db)
	writes := []struct {
		kind string
		fn   func() error
	}{
		{analyticsstore.KindParticipation, func() error { return a.PutSeries(ctx, analyticsstore.KindParticipation, "", d.Participation) }},
		{analyticsstore.KindEngagement, func() error { return a.PutSeries(ctx, analyticsstore.KindEngagement, "", d.Engagement) }},
		{analyticsstore.KindCompetency, func() error { return a.PutCompetency(ctx, "", d.Competency) }},
		{analyticsstore.KindCoursePerformance, func() error { return a.PutCoursePerformance(ctx, "", d.CoursePerformance) }},
		{analyticsstore.KindCompetencyTargets, func() error { return a.PutTargets(ctx, "", d.CompetencyTargets) }},
	}
	for _, w := range writes {
		if err := w.fn(); err != nil {
			return fmt.Errorf("seed analytics %s: %w", w.kind, err)
		}
	}
	return nil
}

// document encodes rec and merges extra over it.
func document(rec any, extra bson.M) (bson.M, error) {
	raw, err := bson.Marshal(rec)
	if err != nil {
		return nil, err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	for k, v := range extra {
		doc[k] = v
	}
	return doc, nil
}
