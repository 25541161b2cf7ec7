// Package catalog talks to the public course catalogs: PlanetTerp for course
// heads, grade distributions and professors, umd.io for sections and gen-ed
// listings.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

// Upstream sources used as metric and cache labels.
const (
	SourcePlanetTerp = "planetterp"
	SourceUMDIO      = "umdio"
)

// ResponseCache stores raw upstream payloads keyed by "<source>:<path>?<query>".
type ResponseCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// RequestObserver records upstream request outcomes.
type RequestObserver interface {
	ObserveCatalogRequest(source, endpoint string, status int, duration time.Duration)
}

// Config configures a Client.
type Config struct {
	PlanetTerpBaseURL string
	UMDIOBaseURL      string
	Timeout           time.Duration
	CacheTTL          time.Duration
	HTTPClient        *http.Client
	Cache             ResponseCache
	Observer          RequestObserver
	Logger            *zap.Logger
}

// Client performs raw catalog requests.
type Client struct {
	http       *http.Client
	planetTerp string
	umdio      string
	cache      ResponseCache
	cacheTTL   time.Duration
	observer   RequestObserver
	logger     *zap.Logger
}

// NewClient constructs a catalog client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.PlanetTerpBaseURL == "" {
		cfg.PlanetTerpBaseURL = "https://api.planetterp.com/v1"
	}
	if cfg.UMDIOBaseURL == "" {
		cfg.UMDIOBaseURL = "https://api.umd.io/v1"
	}
	return &Client{
		http:       cfg.HTTPClient,
		planetTerp: strings.TrimRight(cfg.PlanetTerpBaseURL, "/"),
		umdio:      strings.TrimRight(cfg.UMDIOBaseURL, "/"),
		cache:      cfg.Cache,
		cacheTTL:   cfg.CacheTTL,
		observer:   cfg.Observer,
		logger:     cfg.Logger,
	}
}

// errUpstreamStatus marks a non-200 upstream answer so callers can map it to a
// domain error or an empty result.
type errUpstreamStatus struct {
	status int
}

func (e *errUpstreamStatus) Error() string {
	return fmt.Sprintf("upstream status %d", e.status)
}

func isUpstreamStatus(err error) bool {
	var statusErr *errUpstreamStatus
	return errors.As(err, &statusErr)
}

// Search runs a PlanetTerp free-text search.
func (c *Client) Search(ctx context.Context, query string) ([]SearchHit, error) {
	var hits []SearchHit
	err := c.get(ctx, SourcePlanetTerp, "/search", url.Values{"query": {query}}, &hits)
	if err != nil {
		return nil, c.mapStatus(err, appErrors.ErrCatalogUnavailable)
	}
	return hits, nil
}

// Course fetches one PlanetTerp course by code.
func (c *Client) Course(ctx context.Context, code string) (*PlanetTerpCourse, error) {
	var course PlanetTerpCourse
	err := c.get(ctx, SourcePlanetTerp, "/course", url.Values{"name": {code}}, &course)
	if err != nil {
		return nil, c.mapStatus(err, appErrors.Clone(appErrors.ErrCourseNotFound, code+" is not a valid course code"))
	}
	return &course, nil
}

// Courses fetches one alphabetical page of PlanetTerp courses.
func (c *Client) Courses(ctx context.Context, limit, offset int) ([]PlanetTerpCourse, error) {
	var courses []PlanetTerpCourse
	params := url.Values{"limit": {fmt.Sprint(limit)}, "offset": {fmt.Sprint(offset)}}
	if err := c.get(ctx, SourcePlanetTerp, "/courses", params, &courses); err != nil {
		return nil, c.mapStatus(err, appErrors.ErrCatalogUnavailable)
	}
	return courses, nil
}

// Grades fetches the grade distribution rows of a course.
func (c *Client) Grades(ctx context.Context, code string) ([]GradeRow, error) {
	var rows []GradeRow
	if err := c.get(ctx, SourcePlanetTerp, "/grades", url.Values{"course": {code}}, &rows); err != nil {
		return nil, c.mapStatus(err, appErrors.ErrCatalogUnavailable)
	}
	return rows, nil
}

// Professor fetches one PlanetTerp professor, optionally with reviews.
func (c *Client) Professor(ctx context.Context, name string, withReviews bool) (*PlanetTerpProfessor, error) {
	var prof PlanetTerpProfessor
	params := url.Values{"name": {name}, "reviews": {fmt.Sprint(withReviews)}}
	if err := c.get(ctx, SourcePlanetTerp, "/professor", params, &prof); err != nil {
		return nil, c.mapStatus(err, appErrors.Clone(appErrors.ErrProfessorNotFound, name+" not found"))
	}
	return &prof, nil
}

// Professors fetches one page of the PlanetTerp professor directory.
func (c *Client) Professors(ctx context.Context, offset int) ([]PlanetTerpProfessor, error) {
	var profs []PlanetTerpProfessor
	if err := c.get(ctx, SourcePlanetTerp, "/professors", url.Values{"offset": {fmt.Sprint(offset)}}, &profs); err != nil {
		return nil, c.mapStatus(err, appErrors.ErrCatalogUnavailable)
	}
	return profs, nil
}

// Sections fetches the umd.io sections of a course. Courses without published
// sections yield an empty list.
func (c *Client) Sections(ctx context.Context, code string) ([]UMDIOSection, error) {
	var sections []UMDIOSection
	err := c.get(ctx, SourceUMDIO, "/courses/"+url.PathEscape(code)+"/sections", nil, &sections)
	if err != nil {
		if isUpstreamStatus(err) {
			return []UMDIOSection{}, nil
		}
		return nil, c.mapStatus(err, appErrors.ErrCatalogUnavailable)
	}
	return sections, nil
}

// CoursesByGenEd lists umd.io courses carrying a gen-ed code, optionally limited
// to one department. An unmatched query yields an empty list.
func (c *Client) CoursesByGenEd(ctx context.Context, deptID, genEd string) ([]UMDIOCourse, error) {
	params := url.Values{"gen_ed": {genEd}}
	if deptID != "" {
		params.Set("dept_id", deptID)
	}
	var courses []UMDIOCourse
	if err := c.get(ctx, SourceUMDIO, "/courses", params, &courses); err != nil {
		if isUpstreamStatus(err) {
			return []UMDIOCourse{}, nil
		}
		return nil, c.mapStatus(err, appErrors.ErrCatalogUnavailable)
	}
	return courses, nil
}

// mapStatus converts a non-200 answer into the supplied domain error and any
// other failure into ErrCatalogUnavailable.
func (c *Client) mapStatus(err error, onStatus *appErrors.Error) error {
	if isUpstreamStatus(err) {
		return onStatus.With(err, "")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.ErrCatalogUnavailable.With(err, "")
}

func cacheKey(source, path string, params url.Values) string {
	key := source + ":" + path
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	return key
}

// get performs a GET and decodes the JSON body into dest. Successful bodies are
// cached verbatim so a cache hit decodes exactly like a live answer.
func (c *Client) get(ctx context.Context, source, path string, params url.Values, dest interface{}) error {
	key := cacheKey(source, path, params)
	if c.cache != nil {
		var cached json.RawMessage
		hit, err := c.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			if err := json.Unmarshal(cached, dest); err == nil {
				return nil
			}
		}
	}

	base := c.planetTerp
	if source == SourceUMDIO {
		base = c.umdio
	}
	endpoint := base + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(source, path, 0, time.Since(start))
		c.logger.Warn("catalog request failed", zap.String("source", source), zap.String("endpoint", path), zap.Error(err))
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()
	c.observe(source, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("catalog request returned non-200", zap.String("source", source), zap.String("endpoint", path), zap.Int("status", resp.StatusCode))
		_, _ = io.Copy(io.Discard, resp.Body)
		return &errUpstreamStatus{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, json.RawMessage(body), c.cacheTTL); err != nil {
			c.logger.Debug("catalog cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) observe(source, endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer.ObserveCatalogRequest(source, endpoint, status, duration)
	}
}
