package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracer_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), "", "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("expected no-op shutdown, got %v", err)
	}
}

func TestInitTracer_ExportsToCollector(t *testing.T) {
	tests := []struct {
		name     string
		endpoint func(srvURL string) string
	}{
		{"url form", func(srvURL string) string { return srvURL }},
		{"bare host and port", func(srvURL string) string { return strings.TrimPrefix(srvURL, "http://") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var hits int32
			collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodPost && r.URL.Path == "/v1/traces" {
					atomic.AddInt32(&hits, 1)
				}
				io.Copy(io.Discard, r.Body)
				w.WriteHeader(http.StatusOK)
			}))
			defer collector.Close()

			shutdown, err := InitTracer(context.Background(), tc.endpoint(collector.URL), "test")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, span := otel.Tracer("tracing-test").Start(context.Background(), "chat-turn")
			span.End()

			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown failed: %v", err)
			}
			if n := atomic.LoadInt32(&hits); n == 0 {
				t.Fatalf("expected the span to reach the collector")
			}
		})
	}
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://collector:4318", "http://collector:4318/v1/traces"},
		{"http://collector:4318/", "http://collector:4318/v1/traces"},
		{"collector:4318", "http://collector:4318/v1/traces"},
		{"https://otel.example.com/custom/traces", "https://otel.example.com/custom/traces"},
	}

	for _, tc := range tests {
		if got := endpointURL(tc.in); got != tc.want {
			t.Errorf("endpointURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNewHTTPClient_Roundtrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	resp, err := NewHTTPClient().Get(srv.URL)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if string(body) != "ok" {
		t.Fatalf("expected ok, got %q", body)
	}
}
