package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics tracks the offer lifecycle for production monitoring.
type Metrics struct {
	// negotiationCounter tracks negotiate calls by outcome
	negotiationCounter metric.Int64Counter

	// offerCounter tracks issued offers with their price point
	offerCounter metric.Int64Counter

	// commitCounter tracks commit attempts by result
	commitCounter metric.Int64Counter

	// roundDuration tracks shopping round wall-clock time
	roundDuration metric.Float64Histogram
}

// NewMetrics creates the ATP metric instruments on the global meter.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("atp")

	negotiationCounter, err := meter.Int64Counter(
		"atp.negotiations.total",
		metric.WithDescription("Negotiate calls by outcome"),
	)
	if err != nil {
		return nil, err
	}

	offerCounter, err := meter.Int64Counter(
		"atp.offers.total",
		metric.WithDescription("Offers issued by this supplier"),
	)
	if err != nil {
		return nil, err
	}

	commitCounter, err := meter.Int64Counter(
		"atp.commits.total",
		metric.WithDescription("Commit attempts by result"),
	)
	if err != nil {
		return nil, err
	}

	roundDuration, err := meter.Float64Histogram(
		"atp.round.duration_ms",
		metric.WithDescription("Shopping round duration in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		negotiationCounter: negotiationCounter,
		offerCounter:       offerCounter,
		commitCounter:      commitCounter,
		roundDuration:      roundDuration,
	}, nil
}

// RecordNegotiation increments the negotiation counter. Safe on a nil
// receiver so callers can leave metrics unconfigured.
func (m *Metrics) RecordNegotiation(ctx context.Context, serviceType, outcome string) {
	if m == nil {
		return
	}
	m.negotiationCounter.Add(ctx, 1, metric.WithAttributes(
		NegotiationAttributes("", serviceType, outcome)...,
	))
}

// RecordOffer counts one issued offer.
func (m *Metrics) RecordOffer(ctx context.Context, offerID, currency string, price float64) {
	if m == nil {
		return
	}
	m.offerCounter.Add(ctx, 1, metric.WithAttributes(
		OfferAttributes(offerID, currency, price)...,
	))
}

// RecordCommit increments the commit counter.
func (m *Metrics) RecordCommit(ctx context.Context, confirmed bool) {
	if m == nil {
		return
	}
	result := "confirmed"
	if !confirmed {
		result = "rejected"
	}
	m.commitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("atp.commit.result", result),
	))
}

// RecordRound records a completed shopping round.
func (m *Metrics) RecordRound(ctx context.Context, serviceType string, suppliers, offers, failures int, durationMs float64) {
	if m == nil {
		return
	}
	m.roundDuration.Record(ctx, durationMs, metric.WithAttributes(
		RoundAttributes(serviceType, suppliers, offers, failures)...,
	))
}
