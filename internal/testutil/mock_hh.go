// Package testutil provides testing utilities for the hh.ru collector.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// SearchCall records one request to /vacancies.
type SearchCall struct {
	Text    string
	Area    string
	PerPage string
	Page    int
}

// MockHH is a configurable mock of the hh.ru vacancies API.
//
// Search pages are keyed by query text and zero-based page index; pages that
// were not configured answer with an empty item list. Vacancy details are
// keyed by id; unknown ids answer 404.
type MockHH struct {
	server *httptest.Server

	mu      sync.RWMutex
	pages   map[string]map[int]MockResponse
	details map[string]MockResponse

	searchCalls []SearchCall
	detailCalls []string
	lastHeader  http.Header
}

// NewMockHH creates and starts a new mock server.
func NewMockHH() *MockHH {
	m := &MockHH{
		pages:   make(map[string]map[int]MockResponse),
		details: make(map[string]MockResponse),
	}

	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the mock server URL.
func (m *MockHH) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHH) Close() {
	m.server.Close()
}

// SetPage configures the answer for one search page.
func (m *MockHH) SetPage(text string, page int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pages[text] == nil {
		m.pages[text] = make(map[int]MockResponse)
	}
	m.pages[text][page] = resp
}

// SetItems configures a 200 search page built from the given item JSON objects.
func (m *MockHH) SetItems(text string, page int, items ...string) {
	m.SetPage(text, page, NewSearchResponse(page, items...))
}

// SetDetail configures the answer for /vacancies/{id}.
func (m *MockHH) SetDetail(id string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.details[id] = resp
}

// SearchCalls returns the search requests received so far.
func (m *MockHH) SearchCalls() []SearchCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]SearchCall(nil), m.searchCalls...)
}

// DetailCalls returns the vacancy ids requested so far.
func (m *MockHH) DetailCalls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.detailCalls...)
}

// LastHeader returns the headers of the most recent request.
func (m *MockHH) LastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeader
}

// Reset clears all tracking data.
func (m *MockHH) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls = nil
	m.detailCalls = nil
	m.lastHeader = nil
}

func (m *MockHH) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.lastHeader = r.Header.Clone()
	m.mu.Unlock()

	switch {
	case r.URL.Path == "/vacancies":
		m.serveSearch(w, r)
	case strings.HasPrefix(r.URL.Path, "/vacancies/"):
		m.serveDetail(w, strings.TrimPrefix(r.URL.Path, "/vacancies/"))
	default:
		writeResponse(w, MockResponse{StatusCode: http.StatusNotFound, Body: `{"errors":[{"type":"not_found"}]}`})
	}
}

func (m *MockHH) serveSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	text := q.Get("text")

	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, SearchCall{
		Text:    text,
		Area:    q.Get("area"),
		PerPage: q.Get("per_page"),
		Page:    page,
	})
	resp, ok := m.pages[text][page]
	m.mu.Unlock()

	if !ok {
		resp = NewSearchResponse(page)
	}
	writeResponse(w, resp)
}

func (m *MockHH) serveDetail(w http.ResponseWriter, id string) {
	m.mu.Lock()
	m.detailCalls = append(m.detailCalls, id)
	resp, ok := m.details[id]
	m.mu.Unlock()

	if !ok {
		resp = MockResponse{StatusCode: http.StatusNotFound, Body: `{"errors":[{"type":"not_found"}]}`}
	}
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewSearchResponse builds a 200 search page from item JSON objects.
func NewSearchResponse(page int, items ...string) MockResponse {
	body := fmt.Sprintf(`{"items":[%s],"found":%d,"pages":%d,"page":%d,"per_page":50}`,
		strings.Join(items, ","), len(items), page+1, page)
	return MockResponse{StatusCode: http.StatusOK, Body: body}
}

// NewDetailResponse builds a 200 vacancy detail with the given skills and description.
func NewDetailResponse(id, description string, skills ...string) MockResponse {
	type skill struct {
		Name string `json:"name"`
	}
	payload := struct {
		ID          string  `json:"id"`
		KeySkills   []skill `json:"key_skills"`
		Description string  `json:"description"`
	}{ID: id, KeySkills: []skill{}, Description: description}
	for _, s := range skills {
		payload.KeySkills = append(payload.KeySkills, skill{Name: s})
	}

	body, _ := json.Marshal(payload)
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(body),
		Headers: map[string]string{
			"Expires": time.Now().Add(5 * time.Minute).Format(http.TimeFormat),
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"errors":[{"type":"internal"}]}`,
	}
}

// NewForbiddenResponse creates the 403 hh.ru sends without a valid HH-User-Agent.
func NewForbiddenResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"errors":[{"type":"forbidden"}]}`,
	}
}

// VacancyJSON renders a typical search item with all nested objects present.
func VacancyJSON(id, name string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"employer": {"id": "1", "name": "Employer %s"},
		"salary": {"from": 100000, "to": 200000, "currency": "RUR", "gross": false},
		"area": {"id": "1", "name": "Москва"},
		"experience": {"id": "between1And3", "name": "От 1 года до 3 лет"},
		"employment": {"id": "full", "name": "Полная занятость"},
		"published_at": "2024-05-01T10:00:00+0300",
		"alternate_url": "https://hh.ru/vacancy/%s"
	}`, id, name, id, id)
}

// VacancyJSONWithoutSalary renders a search item whose salary is null.
func VacancyJSONWithoutSalary(id, name string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"name": %q,
		"employer": {"id": "2", "name": "No Salary LLC"},
		"salary": null,
		"area": {"id": "2", "name": "Санкт-Петербург"},
		"published_at": "2024-05-02T09:30:00+0300",
		"alternate_url": "https://hh.ru/vacancy/%s"
	}`, id, name, id)
}

// VacancyItems renders n distinct search items with ids prefix1..prefixN.
func VacancyItems(prefix string, n int) []string {
	items := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("%s%d", prefix, i)
		items = append(items, VacancyJSON(id, "Vacancy "+id))
	}
	return items
}
