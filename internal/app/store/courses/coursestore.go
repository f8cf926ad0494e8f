// internal/app/store/courses/coursestore.go
package coursestore

import (
	"context"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/source"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the courses collection.
const Collection = "courses"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// ListByCompany returns the courses owned by companyID, ordered by name.
// An empty companyID returns no courses; use ListAll for the catalog.
func (s *Store) ListByCompany(ctx context.Context, companyID string) ([]source.Course, error) {
	id := strings.TrimSpace(companyID)
	if id == "" {
		return []source.Course{}, nil
	}
	return s.find(ctx, bson.M{"company_id": id}, options.Find())
}

// ListAll returns up to limit courses across the whole catalog.
// A limit of zero or less means no limit.
func (s *Store) ListAll(ctx context.Context, limit int64) ([]source.Course, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return s.find(ctx, bson.M{}, opts)
}

func (s *Store) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]source.Course, error) {
	opts.SetSort(bson.D{{Key: "full_name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []source.Course{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByCompany returns the number of courses owned by companyID.
func (s *Store) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"company_id": companyID})
}

// Count returns the number of courses visible to companyID. An empty
// companyID counts the whole catalog.
func (s *Store) Count(ctx context.Context, companyID string) (int64, error) {
	filter := bson.M{}
	if id := strings.TrimSpace(companyID); id != "" {
		filter["company_id"] = id
	}
	return s.c.CountDocuments(ctx, filter)
}
