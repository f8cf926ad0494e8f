// Package analyticsstore holds the precomputed chart documents the dashboard
// reads: participation and engagement series, the competency distribution,
// per-course performance and competency targets. Each document is keyed by
// kind and company; company "" is the platform-wide document and serves as
// the fallback for companies that have none of their own.
package analyticsstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the analytics collection.
const Collection = "analytics"

// Document kinds.
const (
	KindParticipation     = "participation"
	KindEngagement        = "engagement"
	KindCompetency        = "competency"
	KindCoursePerformance = "course_performance"
	KindCompetencyTargets = "competency_targets"
)

// ErrNotFound is returned when neither the company nor the platform has a
// document of the requested kind.
var ErrNotFound = errors.New("analytics document not found")

type point struct {
	Label string  `bson:"label"`
	Value float64 `bson:"value"`
}

type share struct {
	Name    string  `bson:"name"`
	Percent float64 `bson:"percent"`
}

type coursePerf struct {
	CourseID       string  `bson:"course_id"`
	Title          string  `bson:"title"`
	CompletionRate float64 `bson:"completion_rate"`
	AverageScore   float64 `bson:"average_score"`
}

type target struct {
	Name    string  `bson:"name"`
	Current float64 `bson:"current"`
	Target  float64 `bson:"target"`
}

type document struct {
	Kind       string       `bson:"kind"`
	CompanyID  string       `bson:"company_id"`
	Series     []point      `bson:"series,omitempty"`
	Competency []share      `bson:"competency,omitempty"`
	Courses    []coursePerf `bson:"courses,omitempty"`
	Targets    []target     `bson:"targets,omitempty"`
	UpdatedAt  time.Time    `bson:"updated_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// get loads the company's document of kind, falling back to the platform one.
func (s *Store) get(ctx context.Context, kind, companyID string) (document, error) {
	scopes := bson.A{""}
	if id := strings.TrimSpace(companyID); id != "" {
		scopes = append(scopes, id)
	}
	// Descending company_id puts a company document ahead of "".
	opts := options.FindOne().SetSort(bson.D{{Key: "company_id", Value: -1}})
	var doc document
	err := s.c.FindOne(ctx, bson.M{"kind": kind, "company_id": bson.M{"$in": scopes}}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return document{}, ErrNotFound
	}
	return doc, err
}

func (s *Store) put(ctx context.Context, kind, companyID string, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	filter := bson.M{"kind": kind, "company_id": strings.TrimSpace(companyID)}
	_, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set}, options.Update().SetUpsert(true))
	return err
}

func isSeries(kind string) bool {
	return kind == KindParticipation || kind == KindEngagement
}

var errNotSeries = errors.New("kind is not a series")

// Series returns the participation or engagement series for companyID.
func (s *Store) Series(ctx context.Context, kind, companyID string) ([]models.SeriesPoint, error) {
	if !isSeries(kind) {
		return nil, errNotSeries
	}
	doc, err := s.get(ctx, kind, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]models.SeriesPoint, 0, len(doc.Series))
	for _, p := range doc.Series {
		out = append(out, models.SeriesPoint{Label: p.Label, Value: p.Value})
	}
	return out, nil
}

// PutSeries replaces the series of kind for companyID.
func (s *Store) PutSeries(ctx context.Context, kind, companyID string, pts []models.SeriesPoint) error {
	if !isSeries(kind) {
		return errNotSeries
	}
	series := make([]point, 0, len(pts))
	for _, p := range pts {
		series = append(series, point{Label: p.Label, Value: p.Value})
	}
	return s.put(ctx, kind, companyID, bson.M{"series": series})
}

// Competency returns the competency distribution for companyID.
func (s *Store) Competency(ctx context.Context, companyID string) ([]models.CompetencyShare, error) {
	doc, err := s.get(ctx, KindCompetency, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CompetencyShare, 0, len(doc.Competency))
	for _, c := range doc.Competency {
		out = append(out, models.CompetencyShare{Name: c.Name, Percent: c.Percent})
	}
	return out, nil
}

// PutCompetency replaces the competency distribution for companyID.
func (s *Store) PutCompetency(ctx context.Context, companyID string, shares []models.CompetencyShare) error {
	rows := make([]share, 0, len(shares))
	for _, c := range shares {
		rows = append(rows, share{Name: c.Name, Percent: c.Percent})
	}
	return s.put(ctx, KindCompetency, companyID, bson.M{"competency": rows})
}

// CoursePerformance returns the per-course outcomes for companyID.
func (s *Store) CoursePerformance(ctx context.Context, companyID string) ([]models.CoursePerformance, error) {
	doc, err := s.get(ctx, KindCoursePerformance, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CoursePerformance, 0, len(doc.Courses))
	for _, c := range doc.Courses {
		out = append(out, models.CoursePerformance{
			CourseID:       c.CourseID,
			Title:          c.Title,
			CompletionRate: c.CompletionRate,
			AverageScore:   c.AverageScore,
		})
	}
	return out, nil
}

// PutCoursePerformance replaces the per-course outcomes for companyID.
func (s *Store) PutCoursePerformance(ctx context.Context, companyID string, perf []models.CoursePerformance) error {
	rows := make([]coursePerf, 0, len(perf))
	for _, c := range perf {
		rows = append(rows, coursePerf{
			CourseID:       c.CourseID,
			Title:          c.Title,
			CompletionRate: c.CompletionRate,
			AverageScore:   c.AverageScore,
		})
	}
	return s.put(ctx, KindCoursePerformance, companyID, bson.M{"courses": rows})
}

// Targets returns the competency targets for companyID.
func (s *Store) Targets(ctx context.Context, companyID string) ([]models.CompetencyTarget, error) {
	doc, err := s.get(ctx, KindCompetencyTargets, companyID)
	if err != nil {
		return nil, err
	}
	out := make([]models.CompetencyTarget, 0, len(doc.Targets))
	for _, t := range doc.Targets {
		out = append(out, models.CompetencyTarget{Name: t.Name, Current: t.Current, Target: t.Target})
	}
	return out, nil
}

// PutTargets replaces the competency targets for companyID.
func (s *Store) PutTargets(ctx context.Context, companyID string, targets []models.CompetencyTarget) error {
	rows := make([]target, 0, len(targets))
	for _, t := range targets {
		rows = append(rows, target{Name: t.Name, Current: t.Current, Target: t.Target})
	}
	return s.put(ctx, KindCompetencyTargets, companyID, bson.M{"targets": rows})
}
