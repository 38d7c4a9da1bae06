package httpadapter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avolkov/docstream/internal/config"
)

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	env := newTestEnv(config.Config{
		APIRateLimitRPS:   1,
		APIRateLimitBurst: 1,
	})

	req1 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res1 := httptest.NewRecorder()
	env.handler.ServeHTTP(res1, req1)
	if res1.Code != http.StatusOK {
		t.Fatalf("first request expected 200, got %d", res1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res2 := httptest.NewRecorder()
	env.handler.ServeHTTP(res2, req2)
	if res2.Code != http.StatusTooManyRequests {
		t.Fatalf("second request expected 429, got %d", res2.Code)
	}
	if res2.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header for 429 response")
	}
}

func TestRateLimitDisabledWhenUnset(t *testing.T) {
	env := newTestEnv(config.Config{})

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		res := httptest.NewRecorder()
		env.handler.ServeHTTP(res, req)
		if res.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i, res.Code)
		}
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	env := newTestEnv(config.Config{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	res := httptest.NewRecorder()
	env.handler.ServeHTTP(res, req)

	if got := res.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("request id header = %q, want req-123", got)
	}

	anon := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	anonRes := httptest.NewRecorder()
	env.handler.ServeHTTP(anonRes, anon)
	if anonRes.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}
}
