// Package lmsclient is a source.Gateway backed by the LMS HTTP API.
//
// Requests authenticate with the caller's session token. When client
// credentials are configured the client instead authenticates as a service
// through the OAuth2 client-credentials flow and forwards the session's
// company as a query parameter.
package lmsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/strataboard/internal/app/source"
	"github.com/dalemusser/strataboard/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// maxBody caps how much of a response body is read.
const maxBody = 8 << 20

var _ source.Gateway = (*Client)(nil)

// Client talks to the LMS API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      *clientcredentials.Config
	service    *http.Client
	logger     *zap.Logger
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets the base HTTP client used for every request.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the base HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithClientCredentials authenticates as a service instead of forwarding
// session tokens.
func WithClientCredentials(clientID, clientSecret, tokenURL string, scopes ...string) Option {
	return func(c *Client) {
		c.creds = &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       scopes,
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the LMS API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.creds != nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		c.service = c.creds.Client(ctx)
	}
	return c
}

// clientFor returns the authenticated HTTP client for one session.
func (c *Client) clientFor(s source.Session) *http.Client {
	if c.service != nil {
		return c.service
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: s.Token,
		TokenType:   "Bearer",
	}))
}

// StatusError is returned for non-2xx responses. It unwraps to
// source.ErrUnavailable.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("lms %s %s: status %d", e.Method, e.Path, e.Code)
}

func (e *StatusError) Unwrap() error { return source.ErrUnavailable }

func (c *Client) doRequest(ctx context.Context, s source.Session, method, path string, q url.Values, body any) ([]byte, error) {
	if q == nil {
		q = url.Values{}
	}
	if id := strings.TrimSpace(s.CompanyID); id != "" {
		q.Set("company_id", id)
	}
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.clientFor(s).Do(req)
	if err != nil {
		return nil, fmt.Errorf("lms %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("lms request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode}
	}
	return data, nil
}

func get[T any](ctx context.Context, c *Client, s source.Session, path string) (T, error) {
	var out T
	data, err := c.doRequest(ctx, s, http.MethodGet, path, nil, nil)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return out, nil
}

type countResponse struct {
	Count int `json:"count"`
}

func (c *Client) count(ctx context.Context, s source.Session, path string) (int, error) {
	r, err := get[countResponse](ctx, c, s, path)
	return r.Count, err
}

func (c *Client) Stats(ctx context.Context, s source.Session) (models.Stats, error) {
	return get[models.Stats](ctx, c, s, "/dashboard/stats")
}

func (c *Client) Attendance(ctx context.Context, s source.Session) ([]source.AttendanceRecord, error) {
	return get[[]source.AttendanceRecord](ctx, c, s, "/dashboard/attendance")
}

func (c *Client) Participation(ctx context.Context, s source.Session) ([]models.SeriesPoint, error) {
	return get[[]models.SeriesPoint](ctx, c, s, "/dashboard/participation")
}

func (c *Client) Competency(ctx context.Context, s source.Session) ([]models.CompetencyShare, error) {
	return get[[]models.CompetencyShare](ctx, c, s, "/dashboard/competency")
}

func (c *Client) Engagement(ctx context.Context, s source.Session) ([]models.SeriesPoint, error) {
	return get[[]models.SeriesPoint](ctx, c, s, "/dashboard/engagement")
}

func (c *Client) CoursePerformance(ctx context.Context, s source.Session) ([]models.CoursePerformance, error) {
	return get[[]models.CoursePerformance](ctx, c, s, "/dashboard/course-performance")
}

func (c *Client) UserAnalytics(ctx context.Context, s source.Session) (models.UserAnalytics, error) {
	return get[models.UserAnalytics](ctx, c, s, "/dashboard/user-analytics")
}

func (c *Client) CompetencyTargets(ctx context.Context, s source.Session) ([]models.CompetencyTarget, error) {
	return get[[]models.CompetencyTarget](ctx, c, s, "/dashboard/competency-targets")
}

func (c *Client) Companies(ctx context.Context, s source.Session) ([]source.Company, error) {
	return get[[]source.Company](ctx, c, s, "/companies")
}

func (c *Client) Users(ctx context.Context, s source.Session) ([]source.User, error) {
	return get[[]source.User](ctx, c, s, "/users")
}

// CompanyCourses returns the courses of the session's company, or none
// for the platform scope.
func (c *Client) CompanyCourses(ctx context.Context, s source.Session) ([]source.Course, error) {
	id := strings.TrimSpace(s.CompanyID)
	if id == "" {
		return []source.Course{}, nil
	}
	return get[[]source.Course](ctx, c, s, "/companies/"+url.PathEscape(id)+"/courses")
}

func (c *Client) Courses(ctx context.Context, s source.Session) ([]source.Course, error) {
	return get[[]source.Course](ctx, c, s, "/courses")
}

func (c *Client) Enrollments(ctx context.Context, s source.Session) ([]source.Enrollment, error) {
	return get[[]source.Enrollment](ctx, c, s, "/enrollments")
}

func (c *Client) CompanyUserCount(ctx context.Context, s source.Session, companyID string) (int, error) {
	return c.count(ctx, s, "/companies/"+url.PathEscape(companyID)+"/user-count")
}

func (c *Client) CompanyCourseCount(ctx context.Context, s source.Session, companyID string) (int, error) {
	return c.count(ctx, s, "/companies/"+url.PathEscape(companyID)+"/course-count")
}

func (c *Client) CompanyLogo(ctx context.Context, s source.Session, companyID string) (string, error) {
	r, err := get[struct {
		URL string `json:"url"`
	}](ctx, c, s, "/companies/"+url.PathEscape(companyID)+"/logo")
	return r.URL, err
}

func (c *Client) UserPerformance(ctx context.Context, s source.Session, userID string) (source.Performance, error) {
	return get[source.Performance](ctx, c, s, "/users/"+url.PathEscape(userID)+"/performance")
}

func (c *Client) UserCourseCount(ctx context.Context, s source.Session, userID string) (int, error) {
	return c.count(ctx, s, "/users/"+url.PathEscape(userID)+"/course-count")
}

// UpdateSchool patches the school. A 404 reports false with no error.
// UpdateSchool patches the company. A 404 reports false; 403 and 409 map
// to source.ErrOutOfScope and source.ErrDuplicate.
func (c *Client) UpdateSchool(ctx context.Context, s source.Session, id string, fields source.SchoolUpdate) (bool, error) {
	if !source.InScope(s, id) {
		return false, source.ErrOutOfScope
	}
	_, err := c.doRequest(ctx, s, http.MethodPatch, "/companies/"+url.PathEscape(id), nil, fields)
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusNotFound:
			return false, nil
		case http.StatusForbidden:
			return false, fmt.Errorf("%w: %w", source.ErrOutOfScope, err)
		case http.StatusConflict:
			return false, fmt.Errorf("%w: %w", source.ErrDuplicate, err)
		}
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
