package cache

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResponseToEntry converts an HTTP response to an Entry.
// The response body is read and restored so the caller can still decode it.
// defaultTTL applies when the response carries no usable Expires header.
func ResponseToEntry(resp *http.Response, defaultTTL time.Duration) (*Entry, error) {
	if resp == nil {
		return nil, fmt.Errorf("response cannot be nil")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now()
	return &Entry{
		Data:       body,
		ETag:       resp.Header.Get("ETag"),
		StatusCode: resp.StatusCode,
		Expires:    parseExpires(resp.Header, now, defaultTTL),
		CachedAt:   now,
	}, nil
}

func parseExpires(headers http.Header, now time.Time, defaultTTL time.Duration) time.Time {
	raw := headers.Get("Expires")
	if raw == "" {
		return now.Add(defaultTTL)
	}

	expires, err := http.ParseTime(raw)
	if err != nil {
		return now.Add(defaultTTL)
	}

	// hh.ru answers detail requests with Expires in the past; treat that as "use our TTL".
	if !expires.After(now) {
		return now.Add(defaultTTL)
	}

	return expires
}
