// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/starwars-api/auth"
	"github.com/danielhkuo/starwars-api/cliparse"
	"github.com/danielhkuo/starwars-api/db"
	"github.com/danielhkuo/starwars-api/models"
	"github.com/danielhkuo/starwars-api/store"
)

// TestSecret signs every token issued in tests
const TestSecret = "test-secret-key"

// TestPassword is the password of users made by CreateTestUser
const TestPassword = "password123"

// SetupTestDB creates a fresh SQLite database with the full schema. It lives
// in the test's temp dir and is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	conn, err := db.Open(ctx, db.SQLite, path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.Migrate(ctx, conn, db.SQLite); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return conn
}

// SetupTestStore is SetupTestDB wrapped in a store
func SetupTestStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(SetupTestDB(t), db.SQLite)
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         4001,
		DatabaseURL:  "test.db",
		DatabaseType: string(db.SQLite),
		SecretKey:    TestSecret,
		TokenTTL:     30 * time.Minute,
		LogLevel:     slog.LevelInfo,
	}
}

// TestIssuer returns the token issuer matching GetTestConfig
func TestIssuer() *auth.TokenIssuer {
	cfg := GetTestConfig()
	return auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenTTL)
}

// CreateTestUser stores a user with TestPassword and the given role
func CreateTestUser(t *testing.T, st *store.Store, username, role string) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	u, err := st.CreateUser(context.Background(), username, username+"@example.com", hash, role)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// BearerFor returns an Authorization header value for u
func BearerFor(t *testing.T, u models.User) string {
	t.Helper()

	token, err := TestIssuer().Issue(auth.Principal{ID: u.ID, Subject: u.Username, Role: u.Role})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return "Bearer " + token
}

// SeedTestData loads the default data set
func SeedTestData(t *testing.T, st *store.Store) {
	t.Helper()

	if _, err := st.Seed(context.Background()); err != nil {
		t.Fatalf("Failed to seed test data: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// GraphQLRequest builds a POST /graphql request. An empty bearer sends no
// Authorization header.
func GraphQLRequest(query string, variables map[string]interface{}, bearer string) *http.Request {
	headers := map[string]string{}
	if bearer != "" {
		headers["Authorization"] = bearer
	}
	return MakeRequest("POST", "/graphql", map[string]interface{}{
		"query":     query,
		"variables": variables,
	}, headers)
}

// GraphQLError is one entry of a GraphQL "errors" array
type GraphQLError struct {
	Message    string                 `json:"message"`
	Path       []interface{}          `json:"path"`
	Extensions map[string]interface{} `json:"extensions"`
}

// Code returns extensions.code, or "" when absent
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// DecodeGraphQL decodes a GraphQL response, unmarshalling data into v when
// v is not nil
func DecodeGraphQL(t *testing.T, w *httptest.ResponseRecorder, v interface{}) GraphQLResponse {
	t.Helper()

	var resp GraphQLResponse
	AssertJSON(t, w, &resp)
	if v != nil && len(resp.Data) > 0 && string(resp.Data) != "null" {
		if err := json.Unmarshal(resp.Data, v); err != nil {
			t.Fatalf("Failed to decode GraphQL data: %v", err)
		}
	}
	return resp
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
