package validators_test

import (
	"testing"

	"github.com/dalemusser/strataboard/internal/app/source/fixture"
	"github.com/dalemusser/strataboard/internal/app/source/mongosource"
	"github.com/dalemusser/strataboard/internal/app/system/validators"
	"github.com/dalemusser/strataboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"companies", "users", "courses", "enrollments", "attendance", "ratings", "analytics"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestEnsureAll_AcceptsSeedData(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	if err := mongosource.Seed(ctx, db, fixture.Demo()); err != nil {
		t.Fatalf("Seed rejected by validators: %v", err)
	}
}

func TestEnsureAll_RejectsInvalidDocuments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	tests := []struct {
		name string
		coll string
		doc  bson.M
	}{
		{"blank school name", "companies", bson.M{"_id": "c1", "name": "  ", "name_ci": "x"}},
		{"unknown school status", "companies", bson.M{"_id": "c2", "name": "A", "name_ci": "a", "status": "closed"}},
		{"progress over 100", "enrollments", bson.M{"user_id": "u1", "course_id": "k1", "progress": 150.0}},
		{"attendance date format", "attendance", bson.M{"_id": "a1", "date": "01/02/2024", "present": 1, "total": 2}},
		{"negative rating", "ratings", bson.M{"user_id": "u1", "rating": -1.0}},
		{"unknown analytics kind", "analytics", bson.M{"kind": "heatmap", "company_id": ""}},
		{"user without role", "users", bson.M{"_id": "u2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.Collection(tt.coll).InsertOne(ctx, tt.doc); err == nil {
				t.Errorf("expected %s insert to be rejected", tt.coll)
			}
		})
	}
}
