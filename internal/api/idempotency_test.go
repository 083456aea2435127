package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// fakeKVStore is an in-memory idempotencyStore for middleware tests.
type fakeKVStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKVStore() *fakeKVStore {
	return &fakeKVStore{data: make(map[string]string)}
}

func (s *fakeKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok, nil
}

func (s *fakeKVStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = value
	return true, nil
}

func (s *fakeKVStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *fakeKVStore) Del(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	store := newFakeKVStore()
	calls := 0
	handler := idempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"tx-1"}`))
	}))

	first := httptest.NewRequest(http.MethodPost, "/transfer", nil)
	first.Header.Set("Idempotency-Key", "key-1")
	firstRec := httptest.NewRecorder()
	handler.ServeHTTP(firstRec, first)

	if firstRec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 on first request, got %d", firstRec.Code)
	}
	if calls != 1 {
		t.Fatalf("expected handler to run once, got %d calls", calls)
	}

	second := httptest.NewRequest(http.MethodPost, "/transfer", nil)
	second.Header.Set("Idempotency-Key", "key-1")
	secondRec := httptest.NewRecorder()
	handler.ServeHTTP(secondRec, second)

	if calls != 1 {
		t.Fatalf("expected replay to skip the handler, got %d calls", calls)
	}
	if secondRec.Header().Get("X-Idempotency-Hit") != "true" {
		t.Fatalf("expected X-Idempotency-Hit header on replay, got %q", secondRec.Header().Get("X-Idempotency-Hit"))
	}
	if secondRec.Body.String() != `{"id":"tx-1"}` {
		t.Fatalf("expected cached body on replay, got %q", secondRec.Body.String())
	}
}

func TestIdempotencyRejectsConcurrentKey(t *testing.T) {
	store := newFakeKVStore()
	// Simulate another in-flight request holding the lock for the same key.
	if _, err := store.SetNX(context.Background(), idempotencyLockPfx+"key-2", "processing", idempotencyLockTTL); err != nil {
		t.Fatalf("seeding lock: %v", err)
	}

	calls := 0
	handler := idempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
	req.Header.Set("Idempotency-Key", "key-2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 while key is locked, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("expected handler not to run while key is locked, got %d calls", calls)
	}
}

func TestIdempotencyDoesNotCacheFailures(t *testing.T) {
	store := newFakeKVStore()
	calls := 0
	handler := idempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeError(w, http.StatusBadRequest, "Insufficient funds")
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"tx-2"}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
		req.Header.Set("Idempotency-Key", "key-3")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 && rec.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400 on first attempt, got %d", rec.Code)
		}
		if i == 1 {
			if rec.Code != http.StatusOK {
				t.Fatalf("expected retry to reach the handler, got status %d", rec.Code)
			}
			if rec.Header().Get("X-Idempotency-Hit") != "" {
				t.Fatalf("expected no replay header after a failed attempt, got %q", rec.Header().Get("X-Idempotency-Hit"))
			}
		}
	}
	if calls != 2 {
		t.Fatalf("expected handler to run twice, got %d calls", calls)
	}

	// The lock must be released after each attempt.
	if _, ok, _ := store.Get(context.Background(), idempotencyLockPfx+"key-3"); ok {
		t.Fatal("expected lock to be released after the request completed")
	}
}

func TestIdempotencyPassThroughWithoutKey(t *testing.T) {
	store := newFakeKVStore()
	calls := 0
	handler := idempotencyMiddleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/transfer", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", rec.Code)
		}
	}
	if calls != 2 {
		t.Fatalf("expected every request without a key to execute, got %d calls", calls)
	}
}
