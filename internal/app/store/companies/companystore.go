// internal/app/store/companies/companystore.go
package companystore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the schools collection.
const Collection = "companies"

// ErrDuplicateSchool wraps source.ErrDuplicate so callers above the store
// can match it without importing this package.
var ErrDuplicateSchool = fmt.Errorf("%w: a school with this name already exists", source.ErrDuplicate)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// List returns the schools visible to companyID, ordered by folded name.
// An empty companyID lists every school.
func (s *Store) List(ctx context.Context, companyID string) ([]source.Company, error) {
	filter := bson.M{}
	if id := strings.TrimSpace(companyID); id != "" {
		filter["_id"] = id
	}
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []source.Company
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logo returns the school's logo URL, or "" when the school has none.
func (s *Store) Logo(ctx context.Context, id string) (string, error) {
	var doc struct {
		LogoURL string `bson:"logo_url"`
	}
	opts := options.FindOne().SetProjection(bson.M{"logo_url": 1})
	err := s.c.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.LogoURL, nil
}

// Update applies the non-nil fields of upd and refreshes updated_at.
// It reports whether a school with id exists within scope. A non-empty
// scope restricts the update to that one school.
func (s *Store) Update(ctx context.Context, scope, id string, upd source.SchoolUpdate) (bool, error) {
	filter := bson.M{"_id": id}
	if sc := strings.TrimSpace(scope); sc != "" {
		filter["$and"] = bson.A{bson.M{"_id": sc}}
	}
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
		set["name_ci"] = text.Fold(*upd.Name)
	}
	if upd.City != nil {
		set["city"] = *upd.City
		set["city_ci"] = text.Fold(*upd.City)
	}
	if upd.Country != nil {
		set["country"] = *upd.Country
	}
	if upd.Region != nil {
		set["region"] = *upd.Region
	}
	if upd.Status != nil {
		set["status"] = *upd.Status
		if *upd.Status == "active" {
			set["suspended"] = false
		}
	}
	if upd.MaxUsers != nil {
		set["max_users"] = *upd.MaxUsers
	}
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return false, ErrDuplicateSchool
		}
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// Count returns the number of schools visible to companyID.
func (s *Store) Count(ctx context.Context, companyID string) (int64, error) {
	filter := bson.M{}
	if id := strings.TrimSpace(companyID); id != "" {
		filter["_id"] = id
	}
	return s.c.CountDocuments(ctx, filter)
}
