package directory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/testutil"
)

func newTestServer(t *testing.T, config *Config) (*httptest.Server, *Directory) {
	t.Helper()
	d := New(config, nil)
	r := chi.NewRouter()
	NewHandler(d, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, d
}

func TestHandlerDiscover(t *testing.T) {
	srv, d := newTestServer(t, nil)
	require.NoError(t, d.Register(testSupplier("alpha", true, protocol.ServiceFlightBooking)))
	require.NoError(t, d.Register(testSupplier("gamma", false, protocol.ServiceFlightBooking)))

	resp, err := http.Get(srv.URL + "/discover?serviceType=" + protocol.ServiceFlightBooking)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body protocol.DiscoveryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, protocol.ServiceFlightBooking, body.ServiceType)
	require.Len(t, body.Suppliers, 1)
	assert.Equal(t, "alpha", body.Suppliers[0].SupplierID)
}

func TestHandlerDiscoverIncludesUnverifiedOnRequest(t *testing.T) {
	srv, d := newTestServer(t, nil)
	require.NoError(t, d.Register(testSupplier("alpha", true, protocol.ServiceFlightBooking)))
	require.NoError(t, d.Register(testSupplier("gamma", false, protocol.ServiceFlightBooking)))

	resp, err := http.Get(srv.URL + "/discover?serviceType=" + protocol.ServiceFlightBooking + "&requireVerified=false")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body protocol.DiscoveryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Suppliers, 2)
}

func TestHandlerDiscoverStatusCodes(t *testing.T) {
	srv, d := newTestServer(t, &Config{Credential: "hunter2"})
	require.NoError(t, d.Register(testSupplier("alpha", true, protocol.ServiceFlightBooking)))

	get := func(t *testing.T, path, credential string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		if credential != "" {
			req.Header.Set(protocol.HeaderCredential, credential)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("missing credential", func(t *testing.T) {
		resp := get(t, "/discover?serviceType="+protocol.ServiceFlightBooking, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
	t.Run("bad credential", func(t *testing.T) {
		resp := get(t, "/discover?serviceType="+protocol.ServiceFlightBooking, "wrong")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
	t.Run("missing service type", func(t *testing.T) {
		resp := get(t, "/discover", "hunter2")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
	t.Run("no suppliers", func(t *testing.T) {
		resp := get(t, "/discover?serviceType="+protocol.ServiceWeatherForecast, "hunter2")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
	t.Run("ok", func(t *testing.T) {
		resp := get(t, "/discover?serviceType="+protocol.ServiceFlightBooking, "hunter2")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestHandlerAdminRegistration(t *testing.T) {
	srv, _ := newTestServer(t, &Config{AdminToken: "admin:secret"})

	body, err := json.Marshal(testSupplier("alpha", true, protocol.ServiceFlightBooking))
	require.NoError(t, err)

	// Without basic auth the admin surface is closed.
	resp, err := http.Post(srv.URL+"/admin/suppliers", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/admin/suppliers", bytes.NewReader(body))
	require.NoError(t, err)
	req.SetBasicAuth("admin", "secret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	discovered, err := http.Get(srv.URL + "/discover?serviceType=" + protocol.ServiceFlightBooking)
	require.NoError(t, err)
	defer discovered.Body.Close()
	assert.Equal(t, http.StatusOK, discovered.StatusCode)
}

func TestHandlerAdminUnregister(t *testing.T) {
	srv, d := newTestServer(t, nil)
	require.NoError(t, d.Register(testSupplier("alpha", true, protocol.ServiceFlightBooking)))

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/admin/suppliers/alpha", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	discovered, err := http.Get(srv.URL + "/discover?serviceType=" + protocol.ServiceFlightBooking)
	require.NoError(t, err)
	defer discovered.Body.Close()
	assert.Equal(t, http.StatusNotFound, discovered.StatusCode)
}

func TestHandlerAnnounce(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	// A self-registration claims verification; the directory must strip it.
	info := testSupplier("announced", true, protocol.ServiceFlightBooking)
	_, priv := testutil.GenerateTestKeyPair()
	signed, err := protocol.NewSigned(priv, &info)
	require.NoError(t, err)
	body, err := json.Marshal(signed)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Invisible to default discovery, present when unverified are allowed.
	discovered, err := http.Get(srv.URL + "/discover?serviceType=" + protocol.ServiceFlightBooking)
	require.NoError(t, err)
	discovered.Body.Close()
	assert.Equal(t, http.StatusNotFound, discovered.StatusCode)

	discovered, err = http.Get(srv.URL + "/discover?serviceType=" + protocol.ServiceFlightBooking + "&requireVerified=false")
	require.NoError(t, err)
	defer discovered.Body.Close()
	require.Equal(t, http.StatusOK, discovered.StatusCode)

	var page protocol.DiscoveryResponse
	require.NoError(t, json.NewDecoder(discovered.Body).Decode(&page))
	require.Len(t, page.Suppliers, 1)
	assert.Equal(t, "announced", page.Suppliers[0].SupplierID)
	assert.False(t, page.Suppliers[0].IsVerified)
}

func TestHandlerAnnounceRejectsTamperedRecord(t *testing.T) {
	srv, d := newTestServer(t, nil)

	info := testSupplier("honest", false, protocol.ServiceFlightBooking)
	_, priv := testutil.GenerateTestKeyPair()
	signed, err := protocol.NewSigned(priv, &info)
	require.NoError(t, err)

	// The record is swapped after signing.
	forged := testSupplier("forged", false, protocol.ServiceFlightBooking)
	signed.Object = &forged
	body, err := json.Marshal(signed)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/register", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, d.store.List())
}

func TestHandlerAdminRegisterBadPayload(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	resp, err := http.Post(srv.URL+"/admin/suppliers", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, err := json.Marshal(protocol.SupplierInfo{SupplierID: "x"})
	require.NoError(t, err)
	resp, err = http.Post(srv.URL+"/admin/suppliers", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
