package lmsclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/app/source/lmsclient"
)

var sess = source.Session{Token: "user-token", CompanyID: "sch-1"}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_ForwardsSessionToken(t *testing.T) {
	var gotAuth, gotCompany string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCompany = r.URL.Query().Get("company_id")
		writeJSON(w, []source.Company{{ID: "sch-1", Name: "North", MaxUsers: 40}})
	}))
	defer srv.Close()

	c := lmsclient.New(srv.URL + "/")
	got, err := c.Companies(context.Background(), sess)
	if err != nil {
		t.Fatalf("Companies failed: %v", err)
	}
	if len(got) != 1 || got[0].MaxUsers != 40 {
		t.Errorf("Companies = %+v", got)
	}
	if gotAuth != "Bearer user-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotCompany != "sch-1" {
		t.Errorf("company_id = %q", gotCompany)
	}
}

func TestClient_ClientCredentials(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		writeJSON(w, map[string]any{"access_token": "svc-token", "token_type": "bearer", "expires_in": 3600})
	})
	mux.HandleFunc("/users/usr-1/course-count", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer svc-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeJSON(w, map[string]int{"count": 5})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := lmsclient.New(srv.URL, lmsclient.WithClientCredentials("id", "secret", srv.URL+"/oauth/token"))
	for range 3 {
		n, err := c.UserCourseCount(context.Background(), sess, "usr-1")
		if err != nil {
			t.Fatalf("UserCourseCount failed: %v", err)
		}
		if n != 5 {
			t.Errorf("UserCourseCount = %d, want 5", n)
		}
	}
	if tokenCalls.Load() != 1 {
		t.Errorf("token endpoint called %d times, want 1", tokenCalls.Load())
	}
}

func TestClient_StatusErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := lmsclient.New(srv.URL).Stats(context.Background(), sess)
	if !errors.Is(err, source.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
	var se *lmsclient.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Errorf("StatusError = %+v", se)
	}
}

func TestClient_UpdateSchool(t *testing.T) {
	var body source.SchoolUpdate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/missing"):
			http.NotFound(w, r)
			return
		case strings.HasSuffix(r.URL.Path, "/taken"):
			w.WriteHeader(http.StatusConflict)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := lmsclient.New(srv.URL)
	platform := source.Session{Token: "user-token"}
	region := "West"
	ok, err := c.UpdateSchool(context.Background(), sess, "sch-1", source.SchoolUpdate{Region: &region})
	if err != nil || !ok {
		t.Fatalf("UpdateSchool = %v, %v", ok, err)
	}
	if body.Region == nil || *body.Region != "West" || body.Name != nil {
		t.Errorf("patched body = %+v", body)
	}

	ok, err = c.UpdateSchool(context.Background(), platform, "missing", source.SchoolUpdate{Region: &region})
	if err != nil || ok {
		t.Errorf("UpdateSchool(missing) = %v, %v; want false, nil", ok, err)
	}

	if _, err := c.UpdateSchool(context.Background(), platform, "taken", source.SchoolUpdate{Region: &region}); !errors.Is(err, source.ErrDuplicate) {
		t.Errorf("UpdateSchool(taken) err = %v, want ErrDuplicate", err)
	}

	// sess is scoped to sch-1.
	if _, err := c.UpdateSchool(context.Background(), sess, "sch-2", source.SchoolUpdate{Region: &region}); !errors.Is(err, source.ErrOutOfScope) {
		t.Errorf("out-of-scope err = %v, want ErrOutOfScope", err)
	}
}

func TestClient_CompanyCoursesPlatformScope(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, []source.Course{})
	}))
	defer srv.Close()

	got, err := lmsclient.New(srv.URL).CompanyCourses(context.Background(), source.Session{Token: "t"})
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("CompanyCourses = %v, %v", got, err)
	}
	if hits.Load() != 0 {
		t.Error("platform scope should not call the LMS")
	}
}

func TestClient_HonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lmsclient.New(srv.URL).Users(ctx, sess); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
