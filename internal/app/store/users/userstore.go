package userstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the users collection.
const Collection = "users"

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// scoped returns the base filter for companyID. Empty means every company.
func scoped(companyID string) bson.M {
	filter := bson.M{}
	if id := strings.TrimSpace(companyID); id != "" {
		filter["company_id"] = id
	}
	return filter
}

// List returns the users of companyID ordered by ID.
func (s *Store) List(ctx context.Context, companyID string) ([]source.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, scoped(companyID), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []source.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByCompany returns the number of users belonging to companyID.
func (s *Store) CountByCompany(ctx context.Context, companyID string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"company_id": companyID})
}

// Count returns the number of users visible to companyID.
func (s *Store) Count(ctx context.Context, companyID string) (int64, error) {
	return s.c.CountDocuments(ctx, scoped(companyID))
}

// CountActiveSince counts users whose last access is at or after since.
func (s *Store) CountActiveSince(ctx context.Context, companyID string, since time.Time) (int64, error) {
	filter := scoped(companyID)
	filter["last_access"] = bson.M{"$gte": since.Unix()}
	return s.c.CountDocuments(ctx, filter)
}

// CountCreatedSince counts users created at or after since.
func (s *Store) CountCreatedSince(ctx context.Context, companyID string, since time.Time) (int64, error) {
	filter := scoped(companyID)
	filter["created_at"] = bson.M{"$gte": since.UTC()}
	return s.c.CountDocuments(ctx, filter)
}
