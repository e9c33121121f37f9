package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"saldo/internal/clock"
)

func TestLimiterWindow(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rl := NewLimiter(Config{RequestsPerMinute: 2, Clock: fake})
	defer rl.Stop()

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("a") {
		t.Fatal("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Fatal("other clients are not affected")
	}

	fake.Advance(time.Minute)
	if !rl.Allow("a") {
		t.Fatal("new window should reset the count")
	}
	if m := rl.GetMetrics(); m.TotalHits != 1 || m.ClientCount != 2 {
		t.Errorf("unexpected metrics %+v", m)
	}
}

func TestLimiterCleanup(t *testing.T) {
	fake := clock.NewFake(time.Unix(0, 0))
	rl := NewLimiter(Config{Clock: fake})
	defer rl.Stop()

	rl.Allow("a")
	fake.Advance(11 * time.Minute)
	rl.cleanupStaleEntries()
	if m := rl.GetMetrics(); m.ClientCount != 0 {
		t.Errorf("ClientCount = %d, want 0", m.ClientCount)
	}
}

func TestMiddlewareOnlyLimitsListedMethods(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, Clock: clock.NewFake(time.Unix(0, 0))})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "ip" }, nil, http.MethodPost)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	codes := []int{}
	for _, method := range []string{http.MethodPost, http.MethodPost, http.MethodGet} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/transactions", nil))
		codes = append(codes, rr.Code)
	}

	want := []int{http.StatusNoContent, http.StatusTooManyRequests, http.StatusNoContent}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d: status %d, want %d", i, codes[i], want[i])
		}
	}
}
