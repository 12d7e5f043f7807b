package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newIdempotencyChain(t *testing.T, next http.Handler) (http.Handler, *InMemoryIdempotencyStore) {
	t.Helper()
	store := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(store.Stop)
	return Idempotency(store, "Idempotency-Key")(next), store
}

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"abc"}}`))
	})
	chain, _ := newIdempotencyChain(t, next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("request %d: expected 201, got %d", i, w.Code)
		}
	}

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotency_RetryAfterConflictReachesHandler(t *testing.T) {
	// First attempt conflicts; by the retry the conflicting booking is gone.
	// The conflict must not be replayed from the cache.
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"Booking overlaps an existing booking for this resource"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"abc"}}`))
	})
	chain, _ := newIdempotencyChain(t, next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	w := httptest.NewRecorder()
	chain.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("first attempt: expected 409, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
	req.Header.Set("Idempotency-Key", "key-1")
	w = httptest.NewRecorder()
	chain.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("retry after conflict cleared: expected 201, got %d", w.Code)
	}
	if w.Header().Get("X-Idempotency-Replay") == "true" {
		t.Error("expected retry to reach the handler, not a cache replay")
	}
	if calls != 2 {
		t.Errorf("expected handler to run twice, ran %d times", calls)
	}
}

func TestIdempotency_NoKeyBypassesCache(t *testing.T) {
	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})
	chain, _ := newIdempotencyChain(t, next)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		w := httptest.NewRecorder()
		chain.ServeHTTP(w, req)
	}

	if calls != 2 {
		t.Errorf("expected handler to run for every keyless request, ran %d times", calls)
	}
}

func TestShouldCacheResponse(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{http.StatusOK, true},
		{http.StatusCreated, true},
		{http.StatusBadRequest, false},
		{http.StatusConflict, false},
		{http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		if got := shouldCacheResponse(tt.status); got != tt.want {
			t.Errorf("shouldCacheResponse(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
