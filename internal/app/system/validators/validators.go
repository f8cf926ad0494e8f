// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the dashboard collections (if missing) and tries to
// attach JSON-Schema validators. On servers that don't support
// collMod/validators (e.g. some DocumentDB versions), we log and skip.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("companies", companiesSchema())
	ensure("users", usersSchema())
	ensure("courses", coursesSchema())
	ensure("enrollments", enrollmentsSchema())
	ensure("attendance", attendanceSchema())
	ensure("ratings", ratingsSchema())
	ensure("analytics", analyticsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var (
	nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}
	integer  = bson.A{"int", "long"}
	number   = bson.A{"int", "long", "double", "decimal"}
)

func schema(required bson.A, props bson.M) bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   required,
			"properties": props,
		},
	}
}

func companiesSchema() bson.M {
	return schema(bson.A{"name", "name_ci"}, bson.M{
		"_id":       bson.M{"bsonType": "string"},
		"name":      nonBlank,
		"name_ci":   nonBlank,
		"status":    bson.M{"enum": bson.A{"", "active", "inactive"}},
		"suspended": bson.M{"bsonType": "bool"},
		"max_users": bson.M{"bsonType": integer, "minimum": 0},
	})
}

func usersSchema() bson.M {
	return schema(bson.A{"role"}, bson.M{
		"_id":         bson.M{"bsonType": "string"},
		"role":        bson.M{"bsonType": "string"},
		"company_id":  bson.M{"bsonType": "string"},
		"last_access": bson.M{"bsonType": integer, "minimum": 0},
	})
}

func coursesSchema() bson.M {
	return schema(bson.A{"full_name"}, bson.M{
		"_id":       bson.M{"bsonType": "string"},
		"full_name": nonBlank,
		"rating":    bson.M{"bsonType": bson.A{"double", "int", "long", "null"}},
	})
}

func enrollmentsSchema() bson.M {
	return schema(bson.A{"user_id", "course_id"}, bson.M{
		"user_id":   bson.M{"bsonType": "string", "minLength": 1},
		"course_id": bson.M{"bsonType": "string", "minLength": 1},
		"progress":  bson.M{"bsonType": number, "minimum": 0, "maximum": 100},
		"completed": bson.M{"bsonType": "bool"},
	})
}

func attendanceSchema() bson.M {
	return schema(bson.A{"date", "present", "total"}, bson.M{
		"date":    bson.M{"bsonType": "string", "pattern": "^\\d{4}-\\d{2}-\\d{2}$"},
		"present": bson.M{"bsonType": integer, "minimum": 0},
		"total":   bson.M{"bsonType": integer, "minimum": 0},
	})
}

func ratingsSchema() bson.M {
	return schema(bson.A{"user_id", "rating"}, bson.M{
		"user_id": bson.M{"bsonType": "string", "minLength": 1},
		"rating":  bson.M{"bsonType": number, "minimum": 0},
	})
}

func analyticsSchema() bson.M {
	return schema(bson.A{"kind", "company_id"}, bson.M{
		"kind": bson.M{"enum": bson.A{
			"participation", "engagement", "competency", "course_performance", "competency_targets",
		}},
		"company_id": bson.M{"bsonType": "string"},
	})
}
