package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for ATP telemetry.
const (
	// Negotiation attributes
	AttrTransactionID = "atp.transaction.id"
	AttrServiceType   = "atp.service.type"
	AttrRequesterID   = "atp.requester.id"
	AttrNegotiationID = "atp.negotiation.id"
	AttrOutcome       = "atp.negotiation.outcome" // "offer", "rejection", "error"
	AttrReasonCode    = "atp.rejection.reason"

	// Offer attributes
	AttrOfferID  = "atp.offer.id"
	AttrPrice    = "atp.offer.price"
	AttrCurrency = "atp.offer.currency"

	// Supplier attributes
	AttrSupplierID   = "atp.supplier.id"
	AttrSupplierName = "atp.supplier.name"

	// Shopping round attributes
	AttrRoundSuppliers = "atp.round.suppliers"
	AttrRoundOffers    = "atp.round.offers"
	AttrRoundFailures  = "atp.round.failures"
)

// Negotiation outcomes recorded on the negotiations counter.
const (
	OutcomeOffer     = "offer"
	OutcomeRejection = "rejection"
	OutcomeError     = "error"
)

// NegotiationAttributes returns common attributes for negotiation spans and
// counters.
func NegotiationAttributes(transactionID, serviceType, outcome string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrOutcome, outcome),
	}
	if transactionID != "" {
		attrs = append(attrs, attribute.String(AttrTransactionID, transactionID))
	}
	if serviceType != "" {
		attrs = append(attrs, attribute.String(AttrServiceType, serviceType))
	}
	return attrs
}

// OfferAttributes returns attributes describing one issued offer.
func OfferAttributes(offerID, currency string, price float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrOfferID, offerID),
		attribute.String(AttrCurrency, currency),
		attribute.Float64(AttrPrice, price),
	}
}

// RoundAttributes returns attributes summarizing one shopping round.
func RoundAttributes(serviceType string, suppliers, offers, failures int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrServiceType, serviceType),
		attribute.Int(AttrRoundSuppliers, suppliers),
		attribute.Int(AttrRoundOffers, offers),
		attribute.Int(AttrRoundFailures, failures),
	}
}
