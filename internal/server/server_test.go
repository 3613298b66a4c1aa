// SPDX-License-Identifier: EPL-2.0

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/muhammadfauzanis/compressing-image-audio/encoder"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/mp3"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/wav"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/audiotest"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/config"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/observe"
	"github.com/muhammadfauzanis/compressing-image-audio/utils"
)

func testMetrics(t *testing.T) *observe.Metrics {
	t.Helper()

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	return m
}

func newTestServer(t *testing.T, cfg *config.Config, opts ...Option) http.Handler {
	t.Helper()

	opts = append([]Option{WithMetrics(testMetrics(t))}, opts...)
	return New(cfg, opts...).Handler()
}

func sineWAV(t *testing.T, rate, n int) []byte {
	t.Helper()

	pcm := make([]int16, n)
	utils.Float32ToInt16Slice(pcm, audiotest.Sine(n, rate, 440, 0.5))

	data, err := wav.EncodePCM16(rate, pcm)
	if err != nil {
		t.Fatalf("EncodePCM16: %v", err)
	}
	return data
}

// upload builds a multipart request with data under field.
func upload(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("note", "skipped"); err != nil {
		t.Fatal(err)
	}
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, CompressPath, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	return resp.Error
}

func TestCompress_WAV(t *testing.T) {
	t.Parallel()

	h := newTestServer(t, config.Default())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, FormField, "clip.wav", sineWAV(t, 22050, 44100)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != encoder.MediaType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="compressed_audio.mp3"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := rec.Body.Bytes()
	if got, _ := strconv.Atoi(rec.Header().Get("Content-Length")); got != len(body) {
		t.Errorf("Content-Length = %d, body = %d bytes", got, len(body))
	}

	info, err := mp3.Scan(body)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if got := rec.Header().Get(HeaderFrames); got != strconv.Itoa(info.Frames) {
		t.Errorf("%s = %q, want %d", HeaderFrames, got, info.Frames)
	}

	// 2 s of audio at the 44.1 kHz context rate
	ms, _ := strconv.Atoi(rec.Header().Get(HeaderDurationMs))
	if ms < 1900 || ms > 2300 {
		t.Errorf("%s = %d, want about 2000", HeaderDurationMs, ms)
	}
}

func TestCompress_FilenameFallback(t *testing.T) {
	t.Parallel()

	var created int
	factory := func(encoder.Config) (encoder.BlockEncoder, error) {
		created++
		enc := audiotest.NewRecordingEncoder()
		enc.Tail = []byte("tail")
		return enc, nil
	}

	h := newTestServer(t, config.Default(), WithEncoderFactory(factory))

	// a WAV whose magic is damaged still names its format in the filename
	data := sineWAV(t, 44100, 100)
	copy(data[8:12], "WAVX")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, FormField, "clip.wav", data))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if created != 0 {
		t.Errorf("encoder created for an undecodable upload")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, upload(t, FormField, "clip.bin", data))
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnsupportedMediaType)
	}
}

func TestCompress_Errors(t *testing.T) {
	t.Parallel()

	small := config.Default()
	small.Server.MaxUploadBytes = 1024

	native := config.Default()
	native.Audio.ContextSampleRate = 0

	failing := func(encoder.Config) (encoder.BlockEncoder, error) {
		enc := audiotest.NewRecordingEncoder()
		enc.FailFlush = true
		return enc, nil
	}

	plain := httptest.NewRequest(http.MethodPost, CompressPath, bytes.NewReader([]byte("hello")))
	plain.Header.Set("Content-Type", "text/plain")

	tests := []struct {
		name string
		cfg  *config.Config
		opts []Option
		req  *http.Request
		want int
	}{
		{"not multipart", nil, nil, plain, http.StatusBadRequest},
		{"missing field", nil, nil, upload(t, "file", "clip.wav", sineWAV(t, 44100, 10)), http.StatusBadRequest},
		{"empty file", nil, nil, upload(t, FormField, "clip.wav", nil), http.StatusBadRequest},
		{"unknown format", nil, nil, upload(t, FormField, "notes.txt", []byte("plain text, not audio")), http.StatusUnsupportedMediaType},
		{"too large", small, nil, upload(t, FormField, "clip.wav", sineWAV(t, 44100, 4096)), http.StatusRequestEntityTooLarge},
		{"no mp3 rate", native, nil, upload(t, FormField, "clip.wav", sineWAV(t, 96000, 960)), http.StatusUnprocessableEntity},
		{"encoder fails", nil, []Option{WithEncoderFactory(failing)}, upload(t, FormField, "clip.wav", sineWAV(t, 44100, 10)), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := tt.cfg
			if cfg == nil {
				cfg = config.Default()
			}

			rec := httptest.NewRecorder()
			newTestServer(t, cfg, tt.opts...).ServeHTTP(rec, tt.req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body)
			}
			if msg := decodeError(t, rec); msg == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestCompress_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, CompressPath, nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{fmt.Errorf("reading: %w", &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{errors.New("multipart: NextPart: EOF"), http.StatusBadRequest},
		{fmt.Errorf("%w: block 0: %w", encoder.ErrEncodingFailure, audiotest.ErrScripted), http.StatusInternalServerError},
		{fmt.Errorf("%w: %w", encoder.ErrEncoderInit, encoder.ErrUnsupportedSampleRate), http.StatusUnprocessableEntity},
		{encoder.ErrInvalidInput, http.StatusBadRequest},
		{errMissingField, http.StatusBadRequest},
	}

	for _, tt := range tests {
		if got := statusCode(tt.err); got != tt.want {
			t.Errorf("statusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthPath, nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body)
	}
	if rec.Header().Get(observe.RequestIDHeader) == "" {
		t.Error("response has no request ID")
	}
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	scrape := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "# metrics\n")
	})

	rec := httptest.NewRecorder()
	newTestServer(t, nil, WithMetricsHandler(scrape)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	if rec.Body.String() != "# metrics\n" {
		t.Errorf("/metrics = %q", rec.Body)
	}

	rec = httptest.NewRecorder()
	newTestServer(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("/metrics without handler = %d, want 404", rec.Code)
	}
}

func TestServe_Shutdown(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	srv := New(nil, WithMetrics(testMetrics(t)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + HealthPath)
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
