package fixture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/source/fixture"
)

var sess = source.Session{Token: "t"}

func TestFailAndCalls(t *testing.T) {
	boom := errors.New("boom")
	g := fixture.New(fixture.Demo()).Fail(fixture.OpStats, boom)

	if _, err := g.Stats(context.Background(), sess); !errors.Is(err, boom) {
		t.Fatalf("Stats err = %v, want boom", err)
	}
	if _, err := g.Users(context.Background(), sess); err != nil {
		t.Fatalf("Users err = %v", err)
	}
	if g.Calls(fixture.OpStats) != 1 || g.Calls(fixture.OpUsers) != 1 || g.Calls(fixture.OpCourses) != 0 {
		t.Errorf("calls = %d/%d/%d", g.Calls(fixture.OpStats), g.Calls(fixture.OpUsers), g.Calls(fixture.OpCourses))
	}
}

func TestDelayHonorsContext(t *testing.T) {
	g := fixture.New(fixture.Demo()).Delay(fixture.OpUsers, time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := g.Users(ctx, sess)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("delay ignored the context")
	}
}

func TestCompaniesScoped(t *testing.T) {
	g := fixture.New(fixture.Demo())

	all, _ := g.Companies(context.Background(), sess)
	one, _ := g.Companies(context.Background(), source.Session{Token: "t", CompanyID: "sch-2"})
	if len(all) != 3 || len(one) != 1 || one[0].ID != "sch-2" {
		t.Errorf("all = %d, scoped = %+v", len(all), one)
	}
}

func TestScopedReads(t *testing.T) {
	d := fixture.Demo()
	d.CompanyCourses = []source.Course{
		{ID: "own-1", FullName: "Own", CompanyID: "sch-1"},
		{ID: "own-2", FullName: "Other", CompanyID: "sch-2"},
		{ID: "platform", FullName: "Platform"},
	}
	g := fixture.New(d)
	ctx := context.Background()
	scoped := source.Session{Token: "t", CompanyID: "sch-1"}

	users, _ := g.Users(ctx, scoped)
	if len(users) != 2 || users[0].ID != "usr-1" || users[1].ID != "usr-3" {
		t.Errorf("scoped users = %+v", users)
	}
	if all, _ := g.Users(ctx, sess); len(all) != len(d.Users) {
		t.Errorf("platform users = %d, want %d", len(all), len(d.Users))
	}

	// usr-1 has two enrollments and usr-3 one; usr-2 belongs to sch-2.
	enr, _ := g.Enrollments(ctx, scoped)
	if len(enr) != 3 {
		t.Errorf("scoped enrollments = %+v", enr)
	}
	for _, e := range enr {
		if e.UserID == "usr-2" {
			t.Errorf("enrollment of another school leaked: %+v", e)
		}
	}

	own, _ := g.CompanyCourses(ctx, scoped)
	if len(own) != 1 || own[0].ID != "own-1" {
		t.Errorf("scoped company courses = %+v", own)
	}
	platform, _ := g.CompanyCourses(ctx, sess)
	if len(platform) != 1 || platform[0].ID != "platform" {
		t.Errorf("platform company courses = %+v", platform)
	}
}

func TestUpdateSchool_ScopeAndDuplicates(t *testing.T) {
	g := fixture.New(fixture.Demo())
	ctx := context.Background()
	region, name := "Hijacked", "HILL TOP college"

	_, err := g.UpdateSchool(ctx, source.Session{Token: "t", CompanyID: "sch-1"}, "sch-2", source.SchoolUpdate{Region: &region})
	if !errors.Is(err, source.ErrOutOfScope) {
		t.Errorf("out-of-scope err = %v, want ErrOutOfScope", err)
	}
	_, err = g.UpdateSchool(ctx, sess, "sch-1", source.SchoolUpdate{Name: &name})
	if !errors.Is(err, source.ErrDuplicate) {
		t.Errorf("duplicate err = %v, want ErrDuplicate", err)
	}

	cs, _ := g.Companies(ctx, sess)
	for _, c := range cs {
		if c.Region == region || (c.ID == "sch-1" && c.Name == name) {
			t.Errorf("rejected update was applied: %+v", c)
		}
	}

	// Renaming a school to its own name is not a duplicate.
	same := "North Ridge Academy"
	if ok, err := g.UpdateSchool(ctx, sess, "sch-1", source.SchoolUpdate{Name: &same}); err != nil || !ok {
		t.Errorf("self rename = %v, %v", ok, err)
	}
}

func TestUpdateSchool(t *testing.T) {
	g := fixture.New(fixture.Demo())
	name, status := "North Ridge Intl", "inactive"

	ok, err := g.UpdateSchool(context.Background(), sess, "sch-1", source.SchoolUpdate{Name: &name, Status: &status})
	if err != nil || !ok {
		t.Fatalf("UpdateSchool = %v, %v", ok, err)
	}
	cs, _ := g.Companies(context.Background(), sess)
	if cs[0].Name != name || !cs[0].Suspended {
		t.Errorf("company = %+v", cs[0])
	}

	ok, err = g.UpdateSchool(context.Background(), sess, "missing", source.SchoolUpdate{Name: &name})
	if err != nil || ok {
		t.Errorf("UpdateSchool(missing) = %v, %v, want false, nil", ok, err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	g := fixture.New(fixture.Demo())
	users, _ := g.Users(context.Background(), sess)
	users[0].Role = "changed"

	again, _ := g.Users(context.Background(), sess)
	if again[0].Role != "teacher" {
		t.Error("Users returned a shared slice")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	body := `{"companies":[{"id":"c1","name":"One"}],"company_user_counts":{"c1":7}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	g, err := fixture.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	n, _ := g.CompanyUserCount(context.Background(), sess, "c1")
	if n != 7 {
		t.Errorf("CompanyUserCount = %d, want 7", n)
	}

	if _, err := fixture.LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
