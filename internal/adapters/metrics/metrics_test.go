package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/adapters/metrics"
	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
)

type pingCommand struct{}

func TestPrometheusMiddleware_RecordsOutcome(t *testing.T) {
	c, err := metrics.New("test")
	require.NoError(t, err)

	mw := metrics.PrometheusMiddleware(c.Commands)
	ok := func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return "pong", nil
	}
	fail := func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return nil, errors.New("boom")
	}

	resp, err := mw(context.Background(), &pingCommand{}, ok)
	require.NoError(t, err)
	assert.Equal(t, "pong", resp)
	_, err = mw(context.Background(), &pingCommand{}, fail)
	assert.Error(t, err)

	count, err := testutil.GatherAndCount(c.Registry, "test_mediator_commands_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per status")
}

func TestPrometheusMiddleware_NilCollectorPassesThrough(t *testing.T) {
	mw := metrics.PrometheusMiddleware(nil)

	resp, err := mw(context.Background(), &pingCommand{}, func(ctx context.Context, r mediator.Request) (mediator.Response, error) {
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, resp)
}

func TestCollectors_Handler(t *testing.T) {
	c, err := metrics.New("")
	require.NoError(t, err)
	c.HTTP.RecordRequest(http.MethodGet, "/api/{kind}", 200, 0.01)
	c.Documents.RecordSave("decks", 512)
	c.Documents.RecordLoad("decks", false)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `fleetdeck_http_requests_total{method="GET",route="/api/{kind}",status_code="200"} 1`)
	assert.Contains(t, body, `fleetdeck_documents_saves_total{kind="decks"} 1`)
	assert.Contains(t, body, `fleetdeck_documents_loads_total{found="false",kind="decks"} 1`)
}

func TestCollectors_DisabledHandler(t *testing.T) {
	var c *metrics.Collectors

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.False(t, c.IsEnabled())
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
