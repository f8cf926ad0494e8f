package ratingstore

import (
	"context"

	"github.com/dalemusser/strataboard/internal/app/source"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collection is the name of the ratings collection.
const Collection = "ratings"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Performance averages the ratings given to userID. A user with no ratings
// gets the zero Performance.
func (s *Store) Performance(ctx context.Context, userID string) (source.Performance, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"user_id": userID}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "average_rating", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "ratings", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return source.Performance{}, err
	}
	defer cur.Close(ctx)

	var out source.Performance
	if cur.Next(ctx) {
		if err := cur.Decode(&out); err != nil {
			return source.Performance{}, err
		}
	}
	return out, cur.Err()
}
