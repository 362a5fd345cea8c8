package cache

import (
	"strings"
)

// KeyPrefix namespaces all collector keys in Redis.
const KeyPrefix = "hh"

// Key identifies a cached API resource, e.g. {Resource: "vacancies", ID: "93353083"}.
type Key struct {
	Resource string
	ID       string
}

// String renders the Redis key: hh:<resource>:<id>.
func (k Key) String() string {
	parts := []string{KeyPrefix}
	if r := strings.Trim(k.Resource, "/"); r != "" {
		parts = append(parts, r)
	}
	if k.ID != "" {
		parts = append(parts, k.ID)
	}
	return strings.Join(parts, ":")
}
