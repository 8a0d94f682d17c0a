package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebortGolin/agnostic-agent-api/client"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/supplier"
	"github.com/trebortGolin/agnostic-agent-api/testutil"
)

func deployMarketplace(t *testing.T) *Orchestrator {
	t.Helper()

	o := NewOrchestrator(&OrchestratorConfig{
		DirectoryCredential: "e2e-credential",
		AdminToken:          "admin:e2e-secret",
		Suppliers: []SupplierSpec{
			{
				SupplierID: "sup-airfrance",
				Name:       "Air France Agent",
				Verified:   true,
				Quotes: map[string]supplier.Quote{
					protocol.ServiceFlightBooking: {Price: 480, Currency: "EUR"},
				},
			},
			{
				SupplierID: "sup-lufthansa",
				Name:       "Lufthansa Agent",
				Verified:   true,
				Quotes: map[string]supplier.Quote{
					protocol.ServiceFlightBooking: {Price: 475, Currency: "EUR"},
				},
			},
			{
				SupplierID: "sup-shady",
				Name:       "Shady Charters",
				Verified:   false,
				Quotes: map[string]supplier.Quote{
					protocol.ServiceFlightBooking: {Price: 99, Currency: "EUR"},
				},
			},
		},
	}, nil)

	require.NoError(t, o.Deploy())
	t.Cleanup(func() { o.Shutdown() })
	return o
}

func newShopper(t *testing.T, o *Orchestrator) *client.Shopper {
	t.Helper()
	s, err := client.New(&client.Config{
		DirectoryURL: o.DirectoryAddr(),
		RequesterID:  "req-e2e",
		Credential:   "e2e-credential",
	}, nil, nil)
	require.NoError(t, err)
	return s
}

func TestE2EShoppingRound(t *testing.T) {
	o := deployMarketplace(t)
	s := newShopper(t, o)

	receipt, err := s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(500)))
	require.NoError(t, err)

	// The cheapest verified supplier wins; the cheaper unverified one is
	// never part of the round.
	assert.Equal(t, "sup-lufthansa", receipt.Offer.Supplier.SupplierID)
	assert.Equal(t, 475.0, receipt.Offer.Offer.Price)
	assert.Equal(t, protocol.StatusConfirmed, receipt.Confirmation.Status)
	assert.Equal(t, "Booking confirmed via Lufthansa Agent.", receipt.Confirmation.Message)
	assert.NotEmpty(t, receipt.Confirmation.ConfirmationID)
}

func TestE2ECommittedOfferCannotBeReplayed(t *testing.T) {
	o := deployMarketplace(t)
	s := newShopper(t, o)

	receipt, err := s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(500)))
	require.NoError(t, err)

	_, err = s.Commit(context.Background(), receipt.Offer)
	assert.True(t, protocol.IsNotFound(err))
}

func TestE2EConsecutiveRoundsGetFreshOffers(t *testing.T) {
	o := deployMarketplace(t)
	s := newShopper(t, o)

	first, err := s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(500)))
	require.NoError(t, err)

	second, err := s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(500)))
	require.NoError(t, err)

	assert.NotEqual(t, first.Offer.Offer.OfferID, second.Offer.Offer.OfferID)
	assert.NotEqual(t, first.Confirmation.ConfirmationID, second.Confirmation.ConfirmationID)
}

func TestE2EBudgetBelowEveryPrice(t *testing.T) {
	o := deployMarketplace(t)
	s := newShopper(t, o)

	_, err := s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(100)))
	assert.ErrorIs(t, err, protocol.ErrNoOffers)
}

func TestE2EDiscoveryRequiresCredential(t *testing.T) {
	o := deployMarketplace(t)

	s, err := client.New(&client.Config{
		DirectoryURL: o.DirectoryAddr(),
		RequesterID:  "req-e2e",
	}, nil, nil)
	require.NoError(t, err)

	_, err = s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(500)))
	assert.True(t, protocol.IsAuth(err))
}

func TestE2EUnverifiedSuppliersOnRequest(t *testing.T) {
	o := deployMarketplace(t)

	s, err := client.New(&client.Config{
		DirectoryURL:    o.DirectoryAddr(),
		RequesterID:     "req-e2e",
		Credential:      "e2e-credential",
		AllowUnverified: true,
	}, nil, nil)
	require.NoError(t, err)

	receipt, err := s.Shop(context.Background(), testutil.NewTestIntent(testutil.WithMaxPrice(500)))
	require.NoError(t, err)
	assert.Equal(t, "sup-shady", receipt.Offer.Supplier.SupplierID)
}
