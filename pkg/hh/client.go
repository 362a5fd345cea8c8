// Package hh provides a typed client for the public hh.ru vacancies API
// with request metrics and an optional Redis cache for vacancy details.
package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/hh-vacancy-collector/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Endpoint labels used in metrics and logs.
const (
	EndpointSearch  = "/vacancies"
	EndpointVacancy = "/vacancies/{id}"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.hh.ru"

// Prometheus metrics for API requests.
var (
	hhRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_requests_total",
		Help: "Total hh.ru API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	hhRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hh_request_duration_seconds",
		Help:    "hh.ru API request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	hhErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hh_errors_total",
		Help: "Total hh.ru API errors by class",
	}, []string{"class"})
)

// Client talks to the hh.ru API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cache      *cache.Manager
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the API, without trailing slash.
	BaseURL string

	// UserAgent is sent as User-Agent and HH-User-Agent.
	// hh.ru rejects requests without an application identifier.
	// Format: "AppName/Version (contact@example.com)"
	UserAgent string

	// Timeout bounds every request, including reading the body.
	Timeout time.Duration

	// Cache is optional; when set, vacancy details are served from it.
	Cache *cache.Manager
}

// DefaultConfig returns the configuration used by the collector.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: userAgent,
		Timeout:   10 * time.Second,
	}
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		cache:   cfg.Cache,
		config:  cfg,
		logger:  log.With().Str("component", "hh-client").Logger(),
	}, nil
}

// SearchVacancies fetches one page of search results.
// A non-200 answer is returned as *APIError carrying the status code.
func (c *Client) SearchVacancies(ctx context.Context, p SearchParams) (*SearchPage, error) {
	q := url.Values{}
	q.Set("text", p.Text)
	q.Set("area", strconv.Itoa(p.Area))
	q.Set("per_page", strconv.Itoa(p.PerPage))
	q.Set("page", strconv.Itoa(p.Page))

	body, err := c.get(ctx, EndpointSearch, c.endpointURL("vacancies", q))
	if err != nil {
		return nil, err
	}

	var page SearchPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, c.decodeError(EndpointSearch, err)
	}
	return &page, nil
}

// Vacancy fetches the full vacancy by id.
func (c *Client) Vacancy(ctx context.Context, id string) (*VacancyDetail, error) {
	key := cache.Key{Resource: "vacancies", ID: id}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			c.logger.Debug().Str("vacancy_id", id).Msg("Vacancy served from cache")
			return c.decodeVacancy(entry.Data)
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("vacancy_id", id).Msg("Cache get error")
		}
	}

	req, err := c.newRequest(ctx, c.endpointURL("vacancies/"+id, nil))
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, EndpointVacancy)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if c.cache == nil {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, c.networkError(EndpointVacancy, err)
		}
		return c.decodeVacancy(body)
	}

	entry, err := cache.ResponseToEntry(resp, c.cache.DefaultTTL())
	if err != nil {
		return nil, c.networkError(EndpointVacancy, err)
	}
	detail, err := c.decodeVacancy(entry.Data)
	if err != nil {
		return nil, err
	}

	// Only payloads that decode are cached.
	if err := c.cache.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Str("vacancy_id", id).Msg("Failed to cache response")
	}
	return detail, nil
}

func (c *Client) decodeVacancy(body []byte) (*VacancyDetail, error) {
	var detail VacancyDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, c.decodeError(EndpointVacancy, err)
	}
	return &detail, nil
}

func (c *Client) get(ctx context.Context, endpoint, target string) ([]byte, error) {
	req, err := c.newRequest(ctx, target)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(req, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.networkError(endpoint, err)
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("HH-User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do executes a request and returns the response only for 200 OK.
// Every other outcome becomes an *APIError; the body is closed in that case.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	defer func() {
		hhRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("url", req.URL.String()).
		Msg("Executing hh request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		hhRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, c.networkError(endpoint, err)
	}

	hhRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		class := classifyStatus(resp.StatusCode)
		hhErrorsTotal.WithLabelValues(string(class)).Inc()
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			ErrorClass: class,
			Message:    resp.Status,
		}
	}

	return resp, nil
}

func (c *Client) networkError(endpoint string, err error) error {
	hhErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
	return &APIError{
		Endpoint:   endpoint,
		ErrorClass: ErrorClassNetwork,
		Message:    "request failed",
		Err:        err,
	}
}

func (c *Client) decodeError(endpoint string, err error) error {
	hhErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: http.StatusOK,
		ErrorClass: ErrorClassDecode,
		Message:    "malformed body",
		Err:        fmt.Errorf("%w: %v", ErrDecode, err),
	}
}

func (c *Client) endpointURL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = joinPath(u.Path, path)
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func joinPath(base, path string) string {
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + path
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
