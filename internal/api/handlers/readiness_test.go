package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyz_AllHealthy(t *testing.T) {
	h := NewReadinessHandler(
		NewCheckFunc("user-api", func(context.Context) error { return nil }),
		NewCheckFunc("redis", func(context.Context) error { return nil }),
	)

	w := httptest.NewRecorder()
	h.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Len(t, body.Checks, 2)
}

func TestReadyz_OneUnhealthy(t *testing.T) {
	h := NewReadinessHandler(
		NewCheckFunc("user-api", func(context.Context) error { return errors.New("connection refused") }),
		NewCheckFunc("redis", func(context.Context) error { return nil }),
	)

	w := httptest.NewRecorder()
	h.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body readinessResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, checkResult{Name: "user-api", Status: "unhealthy", Error: "connection refused"}, body.Checks[0])
}

func TestHealthz(t *testing.T) {
	w := httptest.NewRecorder()
	NewReadinessHandler().Healthz(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
