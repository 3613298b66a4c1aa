// SPDX-License-Identifier: EPL-2.0

package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	compress "github.com/muhammadfauzanis/compressing-image-audio"
	"github.com/muhammadfauzanis/compressing-image-audio/audio"
	"github.com/muhammadfauzanis/compressing-image-audio/encoder"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/mp3"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/observe"
)

var errMissingField = fmt.Errorf("multipart field %q is required", FormField)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCompress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)

	data, filename, err := readUpload(r)
	if err != nil {
		s.fail(w, r, "", err)
		return
	}

	buf, format, err := s.decode(data, filename)
	if err != nil {
		s.fail(w, r, format, err)
		return
	}

	pipeline := encoder.New(encoder.WithLogger(*log), encoder.WithFactory(s.factory))
	out, err := pipeline.Encode(buf)
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.RecordEncode(ctx, format, statusOf(err), elapsed, 0, 0)
		s.fail(w, r, format, err)
		return
	}

	s.metrics.RecordEncode(ctx, format, observe.StatusOK, elapsed, buf.Len(), len(out))
	s.metrics.RecordRequest(ctx, observe.StatusOK)

	h := w.Header()
	h.Set("Content-Type", encoder.MediaType)
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", compress.OutputFilename))
	h.Set("Content-Length", strconv.Itoa(len(out)))
	if info, err := mp3.Scan(out); err == nil {
		h.Set(HeaderFrames, strconv.Itoa(info.Frames))
		h.Set(HeaderDurationMs, strconv.FormatInt(info.Duration.Milliseconds(), 10))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)

	log.Info().
		Str("format", format).
		Str("filename", filename).
		Int("sample_rate", buf.SampleRate).
		Int("samples", buf.Len()).
		Int("bytes", len(out)).
		Dur("elapsed", elapsed).
		Msg("compressed upload")
}

// readUpload returns the contents and filename of the audio part. Parts
// before it are skipped without buffering.
func readUpload(r *http.Request) ([]byte, string, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, "", err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, "", errMissingField
		}
		if err != nil {
			return nil, "", err
		}

		if part.FormName() != FormField {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(part)
		_ = part.Close()
		if err != nil {
			return nil, "", err
		}

		return data, part.FileName(), nil
	}
}

// decode sniffs the upload and falls back to the filename extension when
// the header is not recognised.
func (s *Server) decode(data []byte, filename string) (*audio.Buffer, string, error) {
	opts := compress.DecodeOptions{SampleRate: s.cfg.Audio.ContextSampleRate}

	if format, ok := compress.Sniff(data); ok {
		buf, err := compress.Decode(bytes.NewReader(data), opts)
		return buf, format, err
	}

	format := compress.FormatFromFilename(filename)
	if format == "" {
		return nil, "", compress.ErrUnsupportedFormat
	}
	opts.Format = format

	buf, err := compress.Decode(bytes.NewReader(data), opts)
	return buf, format, err
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, format string, err error) {
	code := statusCode(err)
	s.metrics.RecordRequest(r.Context(), statusOf(err))

	ev := zerolog.Ctx(r.Context()).Warn()
	if code >= http.StatusInternalServerError {
		ev = zerolog.Ctx(r.Context()).Error()
	}
	ev.Err(err).Str("format", format).Int("status", code).Msg("compress failed")

	writeJSON(w, code, errorResponse{Error: err.Error()})
}

// statusCode maps an error to an HTTP status.
func statusCode(err error) int {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, compress.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, encoder.ErrEncoderInit):
		return http.StatusUnprocessableEntity
	case errors.Is(err, encoder.ErrEncodingFailure):
		return http.StatusInternalServerError
	default:
		// empty uploads, malformed forms and undecodable files
		return http.StatusBadRequest
	}
}

func statusOf(err error) string {
	switch statusCode(err) {
	case http.StatusRequestEntityTooLarge:
		return observe.StatusTooLarge
	case http.StatusUnsupportedMediaType:
		return observe.StatusUnsupportedFormat
	case http.StatusUnprocessableEntity:
		return observe.StatusEncoderInit
	case http.StatusInternalServerError:
		return observe.StatusEncodingFailure
	default:
		return observe.StatusInvalidInput
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}
