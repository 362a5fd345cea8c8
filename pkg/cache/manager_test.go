package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// setupTestRedis starts an in-memory Redis for the test.
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
	})

	return client, mr
}

func TestNewManager(t *testing.T) {
	client, _ := setupTestRedis(t)

	manager := NewManager(client, 0)
	if manager.redis != client {
		t.Error("Manager redis client not set correctly")
	}
	if manager.DefaultTTL() != DefaultTTL {
		t.Errorf("DefaultTTL() = %v, want %v", manager.DefaultTTL(), DefaultTTL)
	}

	manager = NewManager(client, 10*time.Minute)
	if manager.DefaultTTL() != 10*time.Minute {
		t.Errorf("DefaultTTL() = %v, want 10m", manager.DefaultTTL())
	}
}

func TestNewManager_Panic(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("NewManager should panic with nil redis client")
		}
	}()
	NewManager(nil, time.Minute)
}

func TestManager_SetAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	manager := NewManager(client, time.Hour)
	ctx := context.Background()

	key := Key{Resource: "vacancies", ID: "42"}
	entry := &Entry{
		Data:       []byte(`{"description":"Python"}`),
		ETag:       `"abc123"`,
		StatusCode: 200,
		Expires:    time.Now().Add(5 * time.Minute),
		CachedAt:   time.Now(),
	}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if !mr.Exists("hh:vacancies:42") {
		t.Fatal("expected key hh:vacancies:42 in redis")
	}
	if ttl := mr.TTL("hh:vacancies:42"); ttl <= 0 || ttl > 5*time.Minute {
		t.Errorf("redis TTL = %v, want (0, 5m]", ttl)
	}

	got, err := manager.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got.Data) != string(entry.Data) {
		t.Errorf("Data = %s, want %s", got.Data, entry.Data)
	}
	if got.ETag != entry.ETag {
		t.Errorf("ETag = %s, want %s", got.ETag, entry.ETag)
	}
	if got.StatusCode != entry.StatusCode {
		t.Errorf("StatusCode = %d, want %d", got.StatusCode, entry.StatusCode)
	}
}

func TestManager_Get_CacheMiss(t *testing.T) {
	client, _ := setupTestRedis(t)
	manager := NewManager(client, time.Hour)

	_, err := manager.Get(context.Background(), Key{Resource: "vacancies", ID: "missing"})
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestManager_Get_InvalidEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	manager := NewManager(client, time.Hour)

	if err := mr.Set("hh:vacancies:7", "not json"); err != nil {
		t.Fatalf("seed redis: %v", err)
	}

	_, err := manager.Get(context.Background(), Key{Resource: "vacancies", ID: "7"})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry, got %v", err)
	}
}

func TestManager_Set_ExpiredEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	manager := NewManager(client, time.Hour)
	ctx := context.Background()

	key := Key{Resource: "vacancies", ID: "1"}
	entry := &Entry{
		Data:    []byte(`{}`),
		Expires: time.Now().Add(-1 * time.Hour),
	}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if mr.Exists(key.String()) {
		t.Error("expired entry should not be stored")
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss for expired entry, got %v", err)
	}
}

func TestManager_Expiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	manager := NewManager(client, time.Hour)
	ctx := context.Background()

	key := Key{Resource: "vacancies", ID: "2"}
	entry := &Entry{Data: []byte(`{}`), Expires: time.Now().Add(time.Minute)}
	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after TTL elapsed, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)
	manager := NewManager(client, time.Hour)
	ctx := context.Background()

	key := Key{Resource: "vacancies", ID: "3"}
	entry := &Entry{Data: []byte(`{}`), Expires: time.Now().Add(5 * time.Minute)}

	if err := manager.Set(ctx, key, entry); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); err != nil {
		t.Fatalf("Get after Set failed: %v", err)
	}
	if err := manager.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := manager.Get(ctx, key); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Expected ErrCacheMiss after Delete, got %v", err)
	}
}

func TestManager_Set_NilEntry(t *testing.T) {
	client, _ := setupTestRedis(t)
	manager := NewManager(client, time.Hour)

	if err := manager.Set(context.Background(), Key{ID: "x"}, nil); err == nil {
		t.Error("Set with nil entry should return error")
	}
}
