package hh

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SearchParams are the query parameters of GET /vacancies.
type SearchParams struct {
	Text    string
	Area    int
	PerPage int
	Page    int
}

// SearchPage is one page of GET /vacancies.
// Items stay raw so a single malformed vacancy does not fail the whole page.
type SearchPage struct {
	Items   []json.RawMessage `json:"items"`
	Found   int               `json:"found"`
	Pages   int               `json:"pages"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// Vacancy is a search result item. Nested objects are pointers because the
// API sends null (or omits them) for salary, employer and the dictionaries.
type Vacancy struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Employer     *Named  `json:"employer"`
	Salary       *Salary `json:"salary"`
	Area         *Named  `json:"area"`
	Experience   *Named  `json:"experience"`
	Employment   *Named  `json:"employment"`
	PublishedAt  string  `json:"published_at"`
	AlternateURL string  `json:"alternate_url"`
}

// Named is the {id, name} shape hh.ru uses for dictionaries and employers.
type Named struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Salary bounds; either bound may be null.
type Salary struct {
	From     *float64 `json:"from"`
	To       *float64 `json:"to"`
	Currency *string  `json:"currency"`
	Gross    *bool    `json:"gross"`
}

// VacancyDetail is the subset of GET /vacancies/{id} the collector uses.
type VacancyDetail struct {
	ID          string     `json:"id"`
	KeySkills   []KeySkill `json:"key_skills"`
	Description string     `json:"description"`
}

// KeySkill is a named skill tag.
type KeySkill struct {
	Name string `json:"name"`
}

// DecodeVacancy decodes one raw search item. Anything but a JSON object,
// including null, is an ErrDecode.
func DecodeVacancy(raw json.RawMessage) (*Vacancy, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: vacancy item is not an object", ErrDecode)
	}

	var v Vacancy
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("%w: vacancy item: %v", ErrDecode, err)
	}
	return &v, nil
}

// ItemID extracts the id of a raw item that failed to decode, for diagnostics.
// Returns "" when even the id is unreadable.
func ItemID(raw json.RawMessage) string {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &head); err != nil || len(head.ID) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(head.ID, &s); err == nil {
		return s
	}
	return string(head.ID)
}

// EmployerName returns the employer name or "" when absent.
func (v *Vacancy) EmployerName() string { return v.Employer.name() }

// AreaName returns the city/region name or "" when absent.
func (v *Vacancy) AreaName() string { return v.Area.name() }

// ExperienceName returns the experience level or "" when absent.
func (v *Vacancy) ExperienceName() string { return v.Experience.name() }

// EmploymentName returns the employment type or "" when absent.
func (v *Vacancy) EmploymentName() string { return v.Employment.name() }

func (n *Named) name() string {
	if n == nil {
		return ""
	}
	return n.Name
}
