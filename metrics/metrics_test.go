// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestCounters(t *testing.T) {
	before := counterValue(t, Mutations.WithLabelValues("createPlanet", "OK"))
	Mutations.WithLabelValues("createPlanet", "OK").Inc()
	assert.Equal(t, before+1, counterValue(t, Mutations.WithLabelValues("createPlanet", "OK")))

	before = counterValue(t, LoaderKeys.WithLabelValues("planet"))
	LoaderKeys.WithLabelValues("planet").Add(3)
	assert.Equal(t, before+3, counterValue(t, LoaderKeys.WithLabelValues("planet")))
}

func TestHandler(t *testing.T) {
	LoaderBatches.WithLabelValues("character").Inc()
	HTTPRequests.WithLabelValues("GET", "GET /health", "200").Observe(0.01)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, `starwars_loader_batches_total{loader="character"}`))
	assert.True(t, strings.Contains(body, "starwars_http_request_duration_seconds_bucket"))
}
