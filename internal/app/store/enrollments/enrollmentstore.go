package enrollmentstore

import (
	"context"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/source"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the enrollments collection.
const Collection = "enrollments"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

func scoped(companyID string) bson.M {
	filter := bson.M{}
	if id := strings.TrimSpace(companyID); id != "" {
		filter["company_id"] = id
	}
	return filter
}

// List returns the enrollments visible to companyID ordered by user then course.
func (s *Store) List(ctx context.Context, companyID string) ([]source.Enrollment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "user_id", Value: 1}, {Key: "course_id", Value: 1}})
	cur, err := s.c.Find(ctx, scoped(companyID), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []source.Enrollment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountCoursesForUser returns the number of distinct courses userID is enrolled in.
func (s *Store) CountCoursesForUser(ctx context.Context, userID string) (int, error) {
	ids, err := s.c.Distinct(ctx, "course_id", bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Completion returns the number of enrollments and how many of them are
// completed for companyID.
func (s *Store) Completion(ctx context.Context, companyID string) (total, completed int64, err error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: scoped(companyID)}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "done", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$completed", 1, 0}},
			}}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			N    int64 `bson:"n"`
			Done int64 `bson:"done"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, 0, err
		}
		total, completed = row.N, row.Done
	}
	return total, completed, cur.Err()
}
