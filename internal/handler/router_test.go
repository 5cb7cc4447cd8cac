package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewRouter_healthz(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewRouter(NewVodHandler(fakeWidget{}), RouterConfig{AllowedOrigins: []string{"*"}}))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz got %d %q", resp.StatusCode, body)
	}
}

func TestNewRouter_metrics(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewRouter(NewVodHandler(fakeWidget{}), RouterConfig{AllowedOrigins: []string{"*"}}))
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status got %d", resp.StatusCode)
	}
}

func TestNewRouter_rateLimitsRPC(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewRouter(NewVodHandler(fakeWidget{}), RouterConfig{
		AllowedOrigins: []string{"*"},
		RateLimit:      2,
		RateWindow:     time.Hour,
	}))
	t.Cleanup(srv.Close)

	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := srv.Client().Post(srv.URL+ListVodsProcedure, "application/json", strings.NewReader(`{"mount":"page"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("status codes got %v, want [200 200 429]", codes)
	}

	// ヘルスチェックは制限の対象外です
	resp, err := srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz status got %d", resp.StatusCode)
	}
}

func TestNewRouter_corsPreflight(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewRouter(NewVodHandler(fakeWidget{}), RouterConfig{AllowedOrigins: []string{"https://pac-12.com"}}))
	t.Cleanup(srv.Close)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+ListVodsProcedure, nil)
	req.Header.Set("Origin", "https://pac-12.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://pac-12.com" {
		t.Fatalf("Access-Control-Allow-Origin got %q", got)
	}
}
