// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Each request gets an id (reused from an incoming X-Request-ID header when
present) that is echoed back in the response and available to handlers via
RequestID. Start and completion are logged with method, path, client IP,
status and duration_ms, and the latency is observed in the
starwars_http_request_duration_seconds histogram labelled by route pattern.

# Authentication

	handler = middleware.Authenticate(issuer, handler)

A valid "Authorization: Bearer <token>" attaches an auth.Principal to the
request context. Missing or invalid tokens leave the request anonymous.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

A request with an Origin header has it reflected with credentials allowed;
anything else gets "*". Preflight OPTIONS requests end with 204 and never
reach the mux.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.CodedErrorResponse(w, http.StatusConflict, "DUPLICATE_ERROR", "message")

	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

	ip := middleware.GetClientIP(r)

The first X-Forwarded-For hop wins, then X-Real-IP, then the host part of
RemoteAddr (IPv6 brackets removed).
*/
package middleware
