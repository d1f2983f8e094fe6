// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/starwars-api/models"
	"github.com/danielhkuo/starwars-api/testutil"
)

func newTestRouter(t *testing.T) *http.ServeMux {
	t.Helper()

	st := testutil.SetupTestStore(t)
	mux, err := NewRouter(st, testutil.GetTestConfig())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}
	return mux
}

func TestHealthEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.HealthResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != "healthy" || resp.Database != "connected" {
		t.Errorf("Unexpected health response %+v", resp)
	}
}

func TestRootEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.RootResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.GraphQL != "/graphql" {
		t.Errorf("Expected graphql endpoint '/graphql', got '%s'", resp.GraphQL)
	}
}

func TestUnknownPath(t *testing.T) {
	mux := newTestRouter(t)

	req := httptest.NewRequest("GET", "/does-not-exist", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestRouteExistence(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},
		{"POST", "/graphql"},
		{"POST", "/auth/register"},
		{"POST", "/auth/login"},
		{"GET", "/auth/me"},
		{"GET", "/metrics"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			// 400 and 401 are valid handler answers to an empty request
			if w.Code == http.StatusMethodNotAllowed || w.Code == http.StatusNotFound {
				t.Errorf("Route %s %s returned %d, expected route handler to exist", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux := newTestRouter(t)

	testCases := []struct {
		method string
		path   string
	}{
		{"POST", "/health"},
		{"GET", "/graphql"},
		{"GET", "/auth/login"},
		{"POST", "/auth/me"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("Expected 405 for %s %s, got %d", tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestGraphQLThroughRouter(t *testing.T) {
	st := testutil.SetupTestStore(t)
	testutil.SeedTestData(t, st)

	mux, err := NewRouter(st, testutil.GetTestConfig())
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, testutil.GraphQLRequest(`{ allPlanets { name } }`, nil, ""))

	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Tatooine") {
		t.Errorf("Expected Tatooine in response, got %s", w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	mux := newTestRouter(t)

	// One request so the histogram has a sample
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", nil))

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "starwars_http_request_duration_seconds") {
		t.Error("Expected request duration histogram in metrics output")
	}
}
