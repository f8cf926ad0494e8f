package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/strataboard/internal/app/classify"
	"github.com/dalemusser/strataboard/internal/app/features/dashboard"
	"github.com/dalemusser/strataboard/internal/app/fetch"
	"github.com/dalemusser/strataboard/internal/app/snapshot"
	"github.com/dalemusser/strataboard/internal/app/source/fixture"
	"github.com/dalemusser/strataboard/internal/app/system/auth"
	"github.com/dalemusser/strataboard/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*dashboard.Handler, *fixture.Gateway) {
	t.Helper()
	gw := fixture.New(fixture.Demo())
	o := fetch.New(gw, zap.NewNop(), fetch.Options{})
	r := snapshot.NewRefresher(o, snapshot.NewRegistry(), zap.NewNop())
	return dashboard.NewHandler(r, gw, zap.NewNop()), gw
}

func newRouter(t *testing.T, h *dashboard.Handler) http.Handler {
	t.Helper()
	sm, err := auth.NewSessionManager(strings.Repeat("k", 32), "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	return dashboard.Routes(h, sm)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

type listResult struct {
	Generation uint64 `json:"generation"`
	Items      []struct {
		ID   string `json:"id"`
		Tier string `json:"tier"`
	} `json:"items"`
	Matched int `json:"matched"`
}

func get(t *testing.T, h http.Handler, target string, user testutil.TestUser) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewAuthenticatedRequest(http.MethodGet, target, user)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServeSnapshot(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := get(t, newRouter(t, h), "/snapshot", testutil.AdminUser())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	snap := decode[struct {
		Generation   uint64 `json:"generation"`
		TotalSchools int    `json:"total_schools"`
		Scope        string `json:"scope"`
	}](t, rec)
	if snap.TotalSchools != 3 || snap.Generation != 1 || snap.Scope != "all" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestServeSnapshot_EmptyStateWithoutToken(t *testing.T) {
	h, _ := newTestHandler(t)
	user := testutil.AdminUser()
	user.Token = ""
	rec := get(t, newRouter(t, h), "/snapshot", user)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["state"] != "empty" {
		t.Errorf("body = %v, want empty state", body)
	}
	if strings.Contains(rec.Body.String(), "session") {
		t.Errorf("raw error leaked: %s", rec.Body.String())
	}
}

func TestServeSchools_FilterAndSort(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newRouter(t, h)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"all in source order", "", []string{"sch-1", "sch-2", "sch-3"}},
		{"text search", "?q=north", []string{"sch-1"}},
		{"region default", "?region=unassigned", []string{"sch-3"}},
		{"status", "?status=inactive", []string{"sch-3"}},
		{"performance desc", "?sort=performance&dir=desc", []string{"sch-3", "sch-1", "sch-2"}},
		{"min performance", "?min=50&sort=name", []string{"sch-1", "sch-3"}},
		{"unknown sort keeps order", "?sort=secret", []string{"sch-1", "sch-2", "sch-3"}},
		{"window", "?start=2&size=1", []string{"sch-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, "/schools"+tt.query, testutil.AdminUser())
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			res := decode[listResult](t, rec)
			if len(res.Items) != len(tt.want) {
				t.Fatalf("items = %+v, want %v", res.Items, tt.want)
			}
			for i, id := range tt.want {
				if res.Items[i].ID != id {
					t.Errorf("items[%d] = %s, want %s", i, res.Items[i].ID, id)
				}
			}
		})
	}
}

func TestServeTrainersAndAttendance(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newRouter(t, h)

	rec := get(t, router, "/trainers?status="+url.QueryEscape(classify.TagTop5), testutil.AdminUser())
	res := decode[listResult](t, rec)
	if len(res.Items) != 1 || res.Items[0].ID != "usr-1" {
		t.Errorf("Top 5%% trainers = %+v", res.Items)
	}

	rec = get(t, router, "/trainers?type="+classify.TierTop, testutil.AdminUser())
	res = decode[listResult](t, rec)
	if res.Matched != 2 {
		t.Errorf("top tier matched = %d, want 2", res.Matched)
	}

	rec = get(t, router, "/attendance?min=75", testutil.AdminUser())
	res = decode[listResult](t, rec)
	if res.Matched != 2 {
		t.Errorf("sessions with >=75%% attendance = %d, want 2", res.Matched)
	}
}

func TestServeRefresh_AdvancesGeneration(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newRouter(t, h)

	get(t, router, "/snapshot", testutil.AdminUser())
	req := testutil.NewAuthenticatedRequest(http.MethodPost, "/refresh", testutil.AdminUser())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[struct {
		Generation uint64 `json:"generation"`
		Stale      bool   `json:"stale"`
	}](t, rec)
	if body.Generation != 2 || body.Stale {
		t.Errorf("refresh = %+v, want generation 2, not stale", body)
	}
}

func put(t *testing.T, router http.Handler, target, body string, user testutil.TestUser) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, user)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServeUpdateSchool(t *testing.T) {
	h, gw := newTestHandler(t)
	router := newRouter(t, h)

	rec := put(t, router, "/schools/sch-2", `{"region":" <b>North</b>  East "}`, testutil.ManagerUser(""))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if gw.Calls(fixture.OpUpdateSchool) != 1 {
		t.Errorf("UpdateSchool calls = %d", gw.Calls(fixture.OpUpdateSchool))
	}

	rec = get(t, router, "/schools?region="+url.QueryEscape("North East"), testutil.AdminUser())
	res := decode[listResult](t, rec)
	if len(res.Items) != 1 || res.Items[0].ID != "sch-2" {
		t.Errorf("after update = %+v", res.Items)
	}
}

func TestServeUpdateSchool_Rejects(t *testing.T) {
	h, gw := newTestHandler(t)
	router := newRouter(t, h)

	tests := []struct {
		name   string
		target string
		body   string
		user   testutil.TestUser
		status int
	}{
		{"empty update", "/schools/sch-1", `{}`, testutil.AdminUser(), http.StatusBadRequest},
		{"unknown field", "/schools/sch-1", `{"logo":"x"}`, testutil.AdminUser(), http.StatusBadRequest},
		{"malformed", "/schools/sch-1", `{`, testutil.AdminUser(), http.StatusBadRequest},
		{"bad status", "/schools/sch-1", `{"status":"closed"}`, testutil.AdminUser(), http.StatusUnprocessableEntity},
		{"blank name", "/schools/sch-1", `{"name":"   "}`, testutil.AdminUser(), http.StatusUnprocessableEntity},
		{"negative max users", "/schools/sch-1", `{"max_users":-1}`, testutil.AdminUser(), http.StatusUnprocessableEntity},
		{"missing school", "/schools/sch-9", `{"city":"Kano"}`, testutil.AdminUser(), http.StatusNotFound},
		{"viewer forbidden", "/schools/sch-1", `{"city":"Kano"}`, testutil.TestUser{ID: "v", Role: "viewer", Token: "t"}, http.StatusForbidden},
		{"other school's manager", "/schools/sch-2", `{"region":"Hijacked"}`, testutil.ManagerUser("sch-1"), http.StatusForbidden},
		{"duplicate name", "/schools/sch-1", `{"name":"hill top college"}`, testutil.AdminUser(), http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := put(t, router, tt.target, tt.body, tt.user)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
	// Only the missing-school and duplicate-name requests reached the gateway.
	if n := gw.Calls(fixture.OpUpdateSchool); n != 2 {
		t.Errorf("UpdateSchool calls = %d, want 2", n)
	}
}

func TestServeUpdateSchool_ManagerScope(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newRouter(t, h)
	manager := testutil.ManagerUser("sch-1")

	if rec := put(t, router, "/schools/sch-1", `{"region":"Lagos Central"}`, manager); rec.Code != http.StatusOK {
		t.Fatalf("own school status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := put(t, router, "/schools/sch-2", `{"region":"Hijacked"}`, manager); rec.Code != http.StatusForbidden {
		t.Errorf("foreign school status = %d, want 403", rec.Code)
	}

	res := decode[listResult](t, get(t, router, "/schools?region=Hijacked", testutil.AdminUser()))
	if len(res.Items) != 0 {
		t.Errorf("foreign school was modified: %+v", res.Items)
	}
	res = decode[listResult](t, get(t, router, "/schools?region="+url.QueryEscape("Lagos Central"), testutil.AdminUser()))
	if len(res.Items) != 1 || res.Items[0].ID != "sch-1" {
		t.Errorf("own school after update = %+v", res.Items)
	}
}

func TestServeExport(t *testing.T) {
	h, _ := newTestHandler(t)
	router := newRouter(t, h)

	rec := get(t, router, "/export?format=csv&entity=courses", testutil.AdminUser())
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "courses_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = get(t, router, "/export?format=pdf", testutil.AdminUser())
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status = %d, want 400", rec.Code)
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	rec := httptest.NewRecorder()
	newRouter(t, h).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
