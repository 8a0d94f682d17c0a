package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, registrars ...RouteRegistrar) *httptest.Server {
	t.Helper()

	srv, err := New(&HTTPServerConfig{
		ListenAddr:    "127.0.0.1:0",
		DrainDuration: 10 * time.Millisecond,
	}, registrars...)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func getStatus(t *testing.T, url string) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/livez"))
	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/readyz"))
}

func TestDrainUndrain(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/drain"))
	assert.Equal(t, http.StatusServiceUnavailable, getStatus(t, ts.URL+"/readyz"))

	// Draining twice is not an error.
	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/drain"))

	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/undrain"))
	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/readyz"))
}

func TestRegistrarRoutes(t *testing.T) {
	registrar := RegistrarFunc(func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("pong"))
		})
	})
	ts := newTestServer(t, registrar)

	assert.Equal(t, http.StatusOK, getStatus(t, ts.URL+"/ping"))
}

func TestRequiresListenAddr(t *testing.T) {
	_, err := New(&HTTPServerConfig{})
	assert.Error(t, err)
}
