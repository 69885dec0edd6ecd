package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"lanes-cli/internal/model"
	"lanes-cli/internal/mutate"
	"lanes-cli/internal/store"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes an optional JSON body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return mutate.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}

func statusForError(err error) int {
	var (
		ve mutate.ValidationError
		nf store.NotFoundError
		ce store.ConflictError
		oe store.OwnerOnlyError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &oe):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	noteError(r, err)
	writeJSON(w, status, model.ErrorResponse{Message: msg})
}

type ctxKey int

const requestInfoKey ctxKey = 0

// requestInfo lets handlers attach the underlying error to the request log line.
type requestInfo struct {
	err error
}

func noteError(r *http.Request, err error) {
	if info, ok := r.Context().Value(requestInfoKey).(*requestInfo); ok && info != nil {
		info.err = err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack hands the connection to the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func contextWithInfo(r *http.Request, info *requestInfo) context.Context {
	return context.WithValue(r.Context(), requestInfoKey, info)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{}
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		req := r.WithContext(contextWithInfo(r, info))
		next.ServeHTTP(rec, req)

		fields := log.Fields{
			"method":      r.Method,
			"route":       routeOf(req),
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": durationToMillis(time.Since(start)),
			"actor":       s.actorForRequest(r),
		}
		if info.err != nil {
			fields["error"] = info.err.Error()
		}
		entry := s.logger.WithFields(fields)
		if rec.status >= http.StatusInternalServerError {
			entry.Error("http.request")
			return
		}
		entry.Info("http.request")
	})
}

func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
