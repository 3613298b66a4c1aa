// SPDX-License-Identifier: EPL-2.0

package observe

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	m, reader := newTestMetrics(t)
	var logs bytes.Buffer
	log := zerolog.New(&logs)

	var seenID string
	var seenLogger bool
	h := Middleware(m, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		seenLogger = zerolog.Ctx(r.Context()).GetLevel() != zerolog.Disabled
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pot", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}

	id := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("%s = %q is not a UUID", RequestIDHeader, id)
	}
	if seenID != id {
		t.Errorf("RequestID() in handler = %q, header = %q", seenID, id)
	}
	if !seenLogger {
		t.Error("handler context carries no logger")
	}

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("log %q: %v", logs.String(), err)
	}
	if entry["request_id"] != id || entry["status"] != float64(http.StatusTeapot) || entry["bytes"] != float64(15) {
		t.Errorf("log entry = %v", entry)
	}

	met := findMetric(collect(t, reader), "compress.http.request.duration")
	if met == nil {
		t.Fatal("compress.http.request.duration not found")
	}
	if hist := met.Data.(metricdata.Histogram[float64]); hist.DataPoints[0].Count != 1 {
		t.Errorf("count = %d, want 1", hist.DataPoints[0].Count)
	}
}

func TestMiddleware_KeepsIncomingID(t *testing.T) {
	t.Parallel()

	m, _ := newTestMetrics(t)
	h := Middleware(m, zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	tests := []struct {
		name string
		in   string
		keep bool
	}{
		{"uuid", "0b5c7a9e-3f61-4c1e-9a0e-2d9d7f3b8c11", true},
		{"garbage", "hello", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.in != "" {
			req.Header.Set(RequestIDHeader, tt.in)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		got := rec.Header().Get(RequestIDHeader)
		if (got == tt.in) != tt.keep {
			t.Errorf("%s: header = %q, incoming %q, keep %v", tt.name, got, tt.in, tt.keep)
		}
	}
}
