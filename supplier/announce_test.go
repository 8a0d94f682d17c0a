package supplier

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/trebortGolin/agnostic-agent-api/crypto"
	"github.com/trebortGolin/agnostic-agent-api/directory"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

func TestInfoListsServicesSorted(t *testing.T) {
	cfg := testConfig()
	cfg.Quotes[protocol.ServiceWeatherForecast] = Quote{Price: 2.5, Currency: "EUR"}
	cfg.Quotes[protocol.ServiceHotelBooking] = Quote{Price: 120, Currency: "EUR"}

	s, err := New(cfg)
	require.NoError(t, err)

	info := s.Info()
	require.Equal(t, cfg.SupplierID, info.SupplierID)
	require.Equal(t, cfg.Name, info.Name)
	require.Equal(t, []string{
		protocol.ServiceFlightBooking,
		protocol.ServiceHotelBooking,
		protocol.ServiceWeatherForecast,
	}, info.SupportedServices)
	require.False(t, info.IsVerified)
}

func TestAnnounceRegistersUnverified(t *testing.T) {
	d := directory.New(nil, nil)
	r := chi.NewRouter()
	directory.NewHandler(d, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	s, err := New(testConfig())
	require.NoError(t, err)

	_, priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	require.NoError(t, s.Announce(context.Background(), nil, srv.URL, priv))

	// The announced supplier is discoverable only when unverified suppliers
	// are allowed.
	_, err = d.Discover(protocol.ServiceFlightBooking, true, "")
	require.True(t, protocol.IsNotFound(err))

	suppliers, err := d.Discover(protocol.ServiceFlightBooking, false, "")
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	require.Equal(t, testConfig().SupplierID, suppliers[0].SupplierID)
	require.False(t, suppliers[0].IsVerified)
}

func TestAnnounceSurfacesDirectoryRejection(t *testing.T) {
	d := directory.New(nil, nil)
	r := chi.NewRouter()
	directory.NewHandler(d, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	// An invalid record fails directory validation, not signature checks.
	cfg := testConfig()
	cfg.BaseURL = "not-a-url"
	s, err := New(cfg)
	require.NoError(t, err)

	_, priv, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	err = s.Announce(context.Background(), nil, srv.URL, priv)
	require.Error(t, err)
	require.Contains(t, err.Error(), "directory refused registration")
}
