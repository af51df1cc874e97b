package health

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

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func newTestServer(db DatabasePinger) *Server {
	return NewServer(Config{
		ServiceName: "sharpline-test",
		Version:     "dev",
		DB:          db,
	})
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sharpline-test", resp.Service)
}

func TestHandleReadyNotReady(t *testing.T) {
	srv := newTestServer(nil)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleReadyWithHealthyDatabase(t *testing.T) {
	srv := newTestServer(&fakePinger{})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["database"])
}

func TestHandleReadyWithFailingDatabase(t *testing.T) {
	srv := newTestServer(&fakePinger{err: errors.New("connection refused")})
	srv.SetReady(true)

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleReadyWithRegisteredChecks(t *testing.T) {
	srv := newTestServer(&fakePinger{})
	srv.SetReady(true)
	srv.RegisterCheck("odds_source", func(ctx context.Context) error {
		return nil
	})
	srv.RegisterCheck("broken", func(ctx context.Context) error {
		return errors.New("circuit open")
	})

	rec := httptest.NewRecorder()
	srv.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Checks["odds_source"])
	assert.Contains(t, resp.Checks["broken"], "circuit open")
}
