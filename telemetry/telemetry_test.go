package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestNewMetrics(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	// Recording with real instruments must not panic even without an
	// initialized meter provider (the global no-op provider applies).
	ctx := context.Background()
	m.RecordNegotiation(ctx, "flights", OutcomeOffer)
	m.RecordOffer(ctx, "offer-abc", "EUR", 475)
	m.RecordCommit(ctx, true)
	m.RecordCommit(ctx, false)
	m.RecordRound(ctx, "flights", 3, 2, 1, 120.5)
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordNegotiation(ctx, "flights", OutcomeRejection)
		m.RecordOffer(ctx, "offer-abc", "EUR", 475)
		m.RecordCommit(ctx, true)
		m.RecordRound(ctx, "flights", 0, 0, 0, 0)
	})
}

func TestNegotiationAttributes(t *testing.T) {
	attrs := NegotiationAttributes("txn-1", "flights", OutcomeOffer)
	assert.Contains(t, attrs, attribute.String(AttrOutcome, OutcomeOffer))
	assert.Contains(t, attrs, attribute.String(AttrTransactionID, "txn-1"))
	assert.Contains(t, attrs, attribute.String(AttrServiceType, "flights"))

	// Empty identifiers are omitted rather than recorded as blanks.
	attrs = NegotiationAttributes("", "", OutcomeError)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.String(AttrOutcome, OutcomeError), attrs[0])
}

func TestRoundAttributes(t *testing.T) {
	attrs := RoundAttributes("flights", 3, 2, 1)
	assert.Contains(t, attrs, attribute.String(AttrServiceType, "flights"))
	assert.Contains(t, attrs, attribute.Int(AttrRoundSuppliers, 3))
	assert.Contains(t, attrs, attribute.Int(AttrRoundOffers, 2))
	assert.Contains(t, attrs, attribute.Int(AttrRoundFailures, 1))
}

func TestOfferAttributes(t *testing.T) {
	attrs := OfferAttributes("offer-abc", "EUR", 475)
	assert.Contains(t, attrs, attribute.String(AttrOfferID, "offer-abc"))
	assert.Contains(t, attrs, attribute.String(AttrCurrency, "EUR"))
	assert.Contains(t, attrs, attribute.Float64(AttrPrice, 475))
}
