// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package api

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/beaconfall/internal/models"
)

func newTestServer(t *testing.T, maxBody int64) (http.Handler, *captureForwarder) {
	t.Helper()

	p, fw := newTestProcessor(t)
	handler := NewHandler(p, maxBody)
	router := NewRouter(handler, nil, RouterConfig{MetricsEnabled: true, MetricsPath: "/metrics"})
	return router.Setup(), fw
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, rec.Body.String())
	}
	return resp
}

func TestPostBeacon(t *testing.T) {
	t.Run("full payload", func(t *testing.T) {
		srv, fw := newTestServer(t, 1<<20)

		body := `{"restiming": [
			{"name": "https://example.com/a.js", "type": "script",
			 "timestamps": {"start": 100, "fetchStart": 150}},
			{"name": "https://example.com/b.css", "type": "css",
			 "timestamps": {"start": 120, "fetchStart": 400}}
		]}`
		req := httptest.NewRequest(http.MethodPost, "/beacon", strings.NewReader(body))
		req.Header.Set("Referer", "https://example.com/app")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		resp := decodeResponse(t, rec)
		if resp.Status != "success" {
			t.Errorf("Status = %q, want success", resp.Status)
		}
		data, ok := resp.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("Data has type %T", resp.Data)
		}
		if got := data["resources"].(float64); got != 2 {
			t.Errorf("resources = %v, want 2", got)
		}
		if forwarded := data["forwarded"].(bool); !forwarded {
			t.Error("forwarded = false, want true")
		}
		if fw.calls != 1 {
			t.Errorf("forwarder invoked %d times, want 1", fw.calls)
		}
		if rec.Header().Get("X-Request-ID") == "" {
			t.Error("X-Request-ID header missing")
		}
	})

	t.Run("empty body is an empty success", func(t *testing.T) {
		srv, fw := newTestServer(t, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/beacon", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		data := decodeResponse(t, rec).Data.(map[string]interface{})
		if got := data["resources"].(float64); got != 0 {
			t.Errorf("resources = %v, want 0", got)
		}
		if fw.calls != 0 {
			t.Errorf("forwarder invoked %d times, want 0", fw.calls)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		srv, _ := newTestServer(t, 1<<20)

		req := httptest.NewRequest(http.MethodPost, "/beacon", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "INVALID_PAYLOAD" {
			t.Errorf("Error = %+v, want INVALID_PAYLOAD", resp.Error)
		}
	})

	t.Run("oversized payload", func(t *testing.T) {
		srv, _ := newTestServer(t, 16)

		req := httptest.NewRequest(http.MethodPost, "/beacon", strings.NewReader(strings.Repeat("x", 64)))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("zero time span reports geometry error", func(t *testing.T) {
		srv, _ := newTestServer(t, 1<<20)

		body := `{"restiming": [{"name": "x", "timestamps": {"start": 100, "fetchStart": 100}}]}`
		req := httptest.NewRequest(http.MethodPost, "/beacon", strings.NewReader(body))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body.String())
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "GEOMETRY_ERROR" {
			t.Errorf("Error = %+v, want GEOMETRY_ERROR", resp.Error)
		}
	})
}

func TestGetBeacon(t *testing.T) {
	t.Run("restiming in query", func(t *testing.T) {
		srv, fw := newTestServer(t, 1<<20)

		restiming := `[
			{"name": "https://example.com/a.js",
			 "timestamps": {"start": 100, "fetchStart": 150}},
			{"name": "https://example.com/b.css",
			 "timestamps": {"start": 120, "fetchStart": 400}}
		]`
		q := url.Values{}
		q.Set("restiming", restiming)
		q.Set("r", "https://example.com/app")

		req := httptest.NewRequest(http.MethodGet, "/beacon?"+q.Encode(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		data := decodeResponse(t, rec).Data.(map[string]interface{})
		if got := data["resources"].(float64); got != 2 {
			t.Errorf("resources = %v, want 2", got)
		}
		if fw.calls != 1 {
			t.Errorf("forwarder invoked %d times, want 1", fw.calls)
		}
	})

	t.Run("no payload is an empty success", func(t *testing.T) {
		srv, fw := newTestServer(t, 1<<20)

		req := httptest.NewRequest(http.MethodGet, "/beacon", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
		if fw.calls != 0 {
			t.Errorf("forwarder invoked %d times, want 0", fw.calls)
		}
	})

	t.Run("page too long is rejected", func(t *testing.T) {
		srv, _ := newTestServer(t, 1<<20)

		q := url.Values{}
		q.Set("r", "https://example.com/"+strings.Repeat("a", 3000))
		req := httptest.NewRequest(http.MethodGet, "/beacon?"+q.Encode(), nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		resp := decodeResponse(t, rec)
		if resp.Error == nil || resp.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("Error = %+v, want VALIDATION_ERROR", resp.Error)
		}
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	t.Run("live", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		data := decodeResponse(t, rec).Data.(map[string]interface{})
		if alive := data["alive"].(bool); !alive {
			t.Error("alive = false, want true")
		}
	})

	t.Run("ready", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := decodeResponse(t, rec).Status; got != "ready" {
			t.Errorf("Status = %q, want ready", got)
		}
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, 1<<20)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "beacon_resources") {
		t.Error("metrics output missing beacon_resources histogram")
	}
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak", "line\\x0abreak"},
		{"tab\there", "tab\\x09here"},
		{"del\x7f", "del\\x7f"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateETagStable(t *testing.T) {
	a := generateETag([]byte("payload"))
	b := generateETag([]byte("payload"))
	c := generateETag([]byte("different"))
	if a != b {
		t.Errorf("same input produced different ETags: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different inputs produced the same ETag: %q", a)
	}
}
