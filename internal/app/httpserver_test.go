package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return rec.Code, string(body)
}

func TestHealthz_OK(t *testing.T) {
	h := NewHandler(Check{Name: "db", Ping: func(context.Context) error { return nil }})
	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body)
}

func TestHealthz_FailingCheck(t *testing.T) {
	h := NewHandler(
		Check{Name: "db", Ping: func(context.Context) error { return nil }},
		Check{Name: "redis", Ping: func(context.Context) error { return errors.New("connection refused") }},
	)
	code, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "redis not ok: connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	code, body := get(t, NewHandler(), "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "engage_db_ping_seconds")
}

func TestUnknownRoute(t *testing.T) {
	code, _ := get(t, NewHandler(), "/pets")
	assert.Equal(t, http.StatusNotFound, code)
}
