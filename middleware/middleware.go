// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/starwars-api/auth"
	"github.com/danielhkuo/starwars-api/metrics"
	"github.com/danielhkuo/starwars-api/models"
)

// RequestIDHeader carries the per-request id back to the client
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id WithLogging assigned to the request
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusWriter remembers the status code written by the handler
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// WithLogging wraps a handler with request logging
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

		// Log request
		slog.Info("request started",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"client_ip", GetClientIP(r),
		)

		sw := &statusWriter{ResponseWriter: w}
		next(sw, r)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", duration.Milliseconds(),
		)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.
			WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).
			Observe(duration.Seconds())
	}
}

// TokenVerifier turns a bearer token into a principal
type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// Authenticate attaches the caller named by the Authorization header.
// Requests without a valid token continue anonymously; resolvers and
// handlers decide whether that is allowed.
func Authenticate(verifier TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		p, err := verifier.Verify(header)
		if err != nil {
			slog.Debug("ignoring invalid token",
				"request_id", RequestID(r.Context()),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	})
}

// JSONResponse encodes data as the response body with the given status
func JSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to write response body", "status", status, "error", err)
	}
}

// ErrorResponse answers with the status text as "error" and a human message
func ErrorResponse(w http.ResponseWriter, status int, message string) {
	CodedErrorResponse(w, status, "", message)
}

// CodedErrorResponse is ErrorResponse with a machine-readable code
func CodedErrorResponse(w http.ResponseWriter, status int, code, message string) {
	JSONResponse(w, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
	})
}

// maxBodyBytes bounds JSON bodies read by ParseJSONBody
const maxBodyBytes = 64 << 10

// ParseJSONBody decodes a single JSON value from the request body
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

// CORS answers preflight requests and reflects the caller's origin
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if origin := r.Header.Get("Origin"); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		} else {
			h.Set("Access-Control-Allow-Origin", "*")
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+RequestIDHeader)
		h.Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetClientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then
// the host part of RemoteAddr.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
