// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/danielhkuo/starwars-api/middleware"
	"github.com/danielhkuo/starwars-api/models"
	"github.com/danielhkuo/starwars-api/resolvers"
	"github.com/danielhkuo/starwars-api/store"
	"github.com/danielhkuo/starwars-api/testutil"
)

// setupGraphQL returns a seeded store and the /graphql handler chain the
// router builds
func setupGraphQL(t *testing.T) (*store.Store, http.Handler) {
	t.Helper()

	st := testutil.SetupTestStore(t)
	testutil.SeedTestData(t, st)

	schema, err := resolvers.NewSchema(st)
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}
	return st, middleware.Authenticate(testutil.TestIssuer(), NewGraphQLHandler(schema, st))
}

func serveGraphQL(t *testing.T, h http.Handler, query string, vars map[string]interface{}, bearer string, v interface{}) testutil.GraphQLResponse {
	t.Helper()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, testutil.GraphQLRequest(query, vars, bearer))

	testutil.AssertStatus(t, w, http.StatusOK)
	return testutil.DecodeGraphQL(t, w, v)
}

func TestGraphQL_Query(t *testing.T) {
	_, h := setupGraphQL(t)

	var data struct {
		AllCharacters []struct {
			Name       string `json:"name"`
			HomePlanet *struct {
				Name string `json:"name"`
			} `json:"homePlanet"`
		} `json:"allCharacters"`
	}
	resp := serveGraphQL(t, h, `{ allCharacters { name homePlanet { name } } }`, nil, "", &data)

	if len(resp.Errors) != 0 {
		t.Fatalf("Unexpected errors: %+v", resp.Errors)
	}
	if len(data.AllCharacters) != 5 {
		t.Fatalf("Expected 5 characters, got %d", len(data.AllCharacters))
	}
	for _, c := range data.AllCharacters {
		if c.Name == "Luke Skywalker" && (c.HomePlanet == nil || c.HomePlanet.Name != "Tatooine") {
			t.Errorf("Expected Luke's home planet Tatooine, got %+v", c.HomePlanet)
		}
	}
}

func TestGraphQL_AuthErrors(t *testing.T) {
	st, h := setupGraphQL(t)
	user := testutil.CreateTestUser(t, st, "rebel", models.RoleUser)
	admin := testutil.CreateTestUser(t, st, "general", models.RoleAdmin)

	tests := []struct {
		name         string
		query        string
		bearer       string
		expectedCode string
	}{
		{
			name:         "anonymous create",
			query:        `mutation { createPlanet(input: {name: "Hoth"}) { id } }`,
			expectedCode: "UNAUTHENTICATED",
		},
		{
			name:         "invalid token is anonymous",
			query:        `mutation { createPlanet(input: {name: "Hoth"}) { id } }`,
			bearer:       "Bearer not.a.token",
			expectedCode: "UNAUTHENTICATED",
		},
		{
			name:         "user delete",
			query:        `mutation { deleteStarship(id: "1") }`,
			bearer:       testutil.BearerFor(t, user),
			expectedCode: "FORBIDDEN",
		},
		{
			name:   "user create",
			query:  `mutation { createPlanet(input: {name: "Hoth"}) { id } }`,
			bearer: testutil.BearerFor(t, user),
		},
		{
			name:   "admin delete",
			query:  `mutation { deleteStarship(id: "3") }`,
			bearer: testutil.BearerFor(t, admin),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := serveGraphQL(t, h, tt.query, nil, tt.bearer, nil)

			if tt.expectedCode == "" {
				if len(resp.Errors) != 0 {
					t.Errorf("Unexpected errors: %+v", resp.Errors)
				}
				return
			}
			if len(resp.Errors) == 0 {
				t.Fatalf("Expected %s error, got data %s", tt.expectedCode, resp.Data)
			}
			if got := resp.Errors[0].Code(); got != tt.expectedCode {
				t.Errorf("Expected code %s, got %s (%s)", tt.expectedCode, got, resp.Errors[0].Message)
			}
		})
	}
}

func TestGraphQL_ValidationError(t *testing.T) {
	st, h := setupGraphQL(t)
	user := testutil.CreateTestUser(t, st, "rebel", models.RoleUser)

	resp := serveGraphQL(t, h,
		`mutation { createPlanet(input: {name: "", climate: "`+strings.Repeat("x", 51)+`"}) { id } }`,
		nil, testutil.BearerFor(t, user), nil)

	if len(resp.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %+v", resp.Errors)
	}
	e := resp.Errors[0]
	if e.Code() != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %s", e.Code())
	}
	fields, ok := e.Extensions["errors"].([]interface{})
	if !ok || len(fields) != 2 {
		t.Errorf("Expected 2 field errors, got %v", e.Extensions["errors"])
	}
}

func TestGraphQL_InvalidRequests(t *testing.T) {
	_, h := setupGraphQL(t)

	t.Run("syntax error", func(t *testing.T) {
		resp := serveGraphQL(t, h, `{ allPlanets { name `, nil, "", nil)
		if len(resp.Errors) == 0 {
			t.Error("Expected a syntax error")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		resp := serveGraphQL(t, h, `{ allPlanets { population } }`, nil, "", nil)
		if len(resp.Errors) == 0 {
			t.Error("Expected a validation error for unknown field")
		}
	})

	t.Run("body too large", func(t *testing.T) {
		big := `{"query": "` + strings.Repeat(" ", maxQueryBytes+1) + `{ allPlanets { name } }"}`
		req := httptest.NewRequest("POST", "/graphql", strings.NewReader(big))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, http.StatusRequestEntityTooLarge)
	})

	t.Run("malformed body with debug logging", func(t *testing.T) {
		var logs bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
		t.Cleanup(func() { slog.SetDefault(prev) })

		req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query": `))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusBadRequest)
		if !strings.Contains(logs.String(), "graphql body not decodable for logging") {
			t.Errorf("Expected the decode failure to be logged, got %q", logs.String())
		}
	})
}

// TestGraphQL_ConcurrentCreates verifies that racing creates of one name
// leave exactly one row and fail the rest with DUPLICATE_ERROR
func TestGraphQL_ConcurrentCreates(t *testing.T) {
	st, h := setupGraphQL(t)
	bearer := testutil.BearerFor(t, testutil.CreateTestUser(t, st, "rebel", models.RoleUser))

	const attempts = 8
	var successCount, duplicateCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := httptest.NewRecorder()
			h.ServeHTTP(w, testutil.GraphQLRequest(`mutation { createPlanet(input: {name: "Hoth"}) { id } }`, nil, bearer))

			var resp testutil.GraphQLResponse
			if err := jsonDecode(w, &resp); err != nil {
				t.Errorf("Failed to decode response: %v", err)
				return
			}
			switch {
			case len(resp.Errors) == 0:
				successCount.Add(1)
			case resp.Errors[0].Code() == "DUPLICATE_ERROR":
				duplicateCount.Add(1)
			default:
				t.Errorf("Unexpected error: %+v", resp.Errors[0])
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful create, got %d", successCount.Load())
	}
	if duplicateCount.Load() != attempts-1 {
		t.Errorf("Expected %d duplicates, got %d", attempts-1, duplicateCount.Load())
	}

	planets, err := st.AllPlanets(t.Context())
	if err != nil {
		t.Fatalf("Failed to list planets: %v", err)
	}
	hoth := 0
	for _, p := range planets {
		if p.Name == "Hoth" {
			hoth++
		}
	}
	if hoth != 1 {
		t.Errorf("Expected 1 Hoth row, got %d", hoth)
	}
}

// TestGraphQL_ConcurrentQueries runs many read requests at once; each gets
// its own loaders and sees the same data
func TestGraphQL_ConcurrentQueries(t *testing.T) {
	_, h := setupGraphQL(t)

	const requests = 20
	var wg sync.WaitGroup
	results := make([]string, requests)

	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			w := httptest.NewRecorder()
			h.ServeHTTP(w, testutil.GraphQLRequest(`{ allStarships { name pilots { name } } }`, nil, ""))

			var resp testutil.GraphQLResponse
			if err := jsonDecode(w, &resp); err != nil {
				t.Errorf("Request %d: failed to decode response: %v", idx, err)
				return
			}
			if len(resp.Errors) != 0 {
				t.Errorf("Request %d: unexpected errors %+v", idx, resp.Errors)
			}
			results[idx] = string(resp.Data)
		}(i)
	}

	wg.Wait()

	for i := 1; i < requests; i++ {
		if results[i] != results[0] {
			t.Errorf("Request %d saw different data:\n%s\nvs\n%s", i, results[i], results[0])
		}
	}
}

func TestGraphQL_Workflow(t *testing.T) {
	st, h := setupGraphQL(t)
	user := testutil.BearerFor(t, testutil.CreateTestUser(t, st, "pilot", models.RoleUser))
	admin := testutil.BearerFor(t, testutil.CreateTestUser(t, st, "commander", models.RoleAdmin))

	// Step 1: create a planet, a character living there and a starship
	var planet struct {
		CreatePlanet struct {
			ID string `json:"id"`
		} `json:"createPlanet"`
	}
	resp := serveGraphQL(t, h, `mutation { createPlanet(input: {name: "Jakku", climate: "Arid"}) { id } }`, nil, user, &planet)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 1 - create planet failed: %+v", resp.Errors)
	}

	var character struct {
		CreateCharacter struct {
			ID string `json:"id"`
		} `json:"createCharacter"`
	}
	resp = serveGraphQL(t, h,
		fmt.Sprintf(`mutation { createCharacter(input: {name: "Rey", species: "Human", homePlanetId: %s}) { id } }`, planet.CreatePlanet.ID),
		nil, user, &character)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 1 - create character failed: %+v", resp.Errors)
	}

	var ship struct {
		CreateStarship struct {
			ID string `json:"id"`
		} `json:"createStarship"`
	}
	resp = serveGraphQL(t, h, `mutation { createStarship(input: {name: "Quadjumper"}) { id } }`, nil, user, &ship)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 1 - create starship failed: %+v", resp.Errors)
	}

	// Step 2: assign the starship
	vars := map[string]interface{}{"c": character.CreateCharacter.ID, "s": ship.CreateStarship.ID}
	resp = serveGraphQL(t, h, `mutation($c: ID!, $s: ID!) { assignStarship(input: {characterId: $c, starshipId: $s}) { id } }`, vars, user, nil)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 2 - assign failed: %+v", resp.Errors)
	}

	// Step 3: the planet cannot be deleted while Rey lives there
	resp = serveGraphQL(t, h, `mutation($id: ID!) { deletePlanet(id: $id) }`,
		map[string]interface{}{"id": planet.CreatePlanet.ID}, admin, nil)
	if len(resp.Errors) == 0 || resp.Errors[0].Code() != "CONSTRAINT_ERROR" {
		t.Fatalf("Step 3 - expected CONSTRAINT_ERROR, got %+v", resp.Errors)
	}

	// Step 4: delete the character, then the planet
	resp = serveGraphQL(t, h, `mutation($id: ID!) { deleteCharacter(id: $id) }`,
		map[string]interface{}{"id": character.CreateCharacter.ID}, admin, nil)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 4 - delete character failed: %+v", resp.Errors)
	}
	resp = serveGraphQL(t, h, `mutation($id: ID!) { deletePlanet(id: $id) }`,
		map[string]interface{}{"id": planet.CreatePlanet.ID}, admin, nil)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 4 - delete planet failed: %+v", resp.Errors)
	}

	// Step 5: the starship survives with no pilots
	var after struct {
		Starship *struct {
			Pilots []struct {
				Name string `json:"name"`
			} `json:"pilots"`
		} `json:"starship"`
	}
	resp = serveGraphQL(t, h, `query($id: ID!) { starship(id: $id) { pilots { name } } }`,
		map[string]interface{}{"id": ship.CreateStarship.ID}, "", &after)
	if len(resp.Errors) != 0 {
		t.Fatalf("Step 5 - query failed: %+v", resp.Errors)
	}
	if after.Starship == nil || len(after.Starship.Pilots) != 0 {
		t.Errorf("Step 5 - expected starship with no pilots, got %+v", after.Starship)
	}
}

func jsonDecode(w *httptest.ResponseRecorder, v interface{}) error {
	return json.NewDecoder(w.Body).Decode(v)
}
