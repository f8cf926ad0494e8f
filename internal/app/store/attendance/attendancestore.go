package attendancestore

import (
	"context"
	"strings"

	"github.com/dalemusser/strataboard/internal/app/source"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the attendance collection.
const Collection = "attendance"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// List returns the attendance sessions for companyID by date.
func (s *Store) List(ctx context.Context, companyID string) ([]source.AttendanceRecord, error) {
	filter := bson.M{}
	if id := strings.TrimSpace(companyID); id != "" {
		filter["company_id"] = id
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []source.AttendanceRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
