package testutil

import (
	"fmt"
	"time"

	"github.com/trebortGolin/agnostic-agent-api/crypto"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/supplier"
)

// =====================================
// Cryptographic Generators
// =====================================

// GenerateTestKeyPair creates an Ed25519 key pair for testing.
func GenerateTestKeyPair() (crypto.PublicKey, crypto.PrivateKey) {
	pub, priv, err := crypto.GenerateKeyPair()
	if err != nil {
		panic(fmt.Sprintf("generate test key pair: %v", err))
	}
	return pub, priv
}

// =====================================
// Intent Generators
// =====================================

// IntentOption modifies a test intent.
type IntentOption func(*protocol.Intent)

// WithTransactionID sets the transaction id.
func WithTransactionID(txnID string) IntentOption {
	return func(in *protocol.Intent) {
		in.TransactionID = txnID
	}
}

// WithServiceType sets the service type.
func WithServiceType(serviceType string) IntentOption {
	return func(in *protocol.Intent) {
		in.ServiceType = serviceType
	}
}

// WithParams replaces the intent params.
func WithParams(params map[string]string) IntentOption {
	return func(in *protocol.Intent) {
		in.Params = params
	}
}

// WithMaxPrice sets the budget constraint.
func WithMaxPrice(maxPrice float64) IntentOption {
	return func(in *protocol.Intent) {
		in.Constraints.MaxPrice = &maxPrice
	}
}

// WithCurrency sets the currency constraint.
func WithCurrency(currency string) IntentOption {
	return func(in *protocol.Intent) {
		in.Constraints.Currency = currency
	}
}

// NewTestIntent creates a valid CDG to JFK flight booking intent.
func NewTestIntent(options ...IntentOption) protocol.Intent {
	intent := protocol.Intent{
		TransactionID: "txn-test",
		RequesterID:   "req-test",
		ServiceType:   protocol.ServiceFlightBooking,
		Params:        map[string]string{"from": "CDG", "to": "JFK", "date": "2026-10-01"},
		Constraints:   protocol.Constraints{Currency: "EUR"},
	}
	for _, opt := range options {
		opt(&intent)
	}
	return intent
}

// =====================================
// Supplier Generators
// =====================================

// SupplierOption modifies a test supplier config.
type SupplierOption func(*supplier.Config)

// WithQuote sets the supplier's price point for a service type.
func WithQuote(serviceType string, price float64, currency string) SupplierOption {
	return func(cfg *supplier.Config) {
		cfg.Quotes[serviceType] = supplier.Quote{Price: price, Currency: currency}
	}
}

// WithOfferTTL sets the offer validity window.
func WithOfferTTL(ttl time.Duration) SupplierOption {
	return func(cfg *supplier.Config) {
		cfg.OfferTTL = ttl
	}
}

// WithClock overrides the supplier's clock.
func WithClock(clock func() time.Time) SupplierOption {
	return func(cfg *supplier.Config) {
		cfg.Clock = clock
	}
}

// NewTestSupplier creates a supplier selling flights at 480 EUR.
func NewTestSupplier(options ...SupplierOption) *supplier.Supplier {
	cfg := &supplier.Config{
		SupplierID: "sup-test",
		Name:       "Test Supplier",
		BaseURL:    "http://supplier.test",
		Quotes: map[string]supplier.Quote{
			protocol.ServiceFlightBooking: {Price: 480, Currency: "EUR"},
		},
	}
	for _, opt := range options {
		opt(cfg)
	}

	s, err := supplier.New(cfg)
	if err != nil {
		panic(fmt.Sprintf("create test supplier: %v", err))
	}
	return s
}

// NewTestSupplierInfo creates a verified directory record.
func NewTestSupplierInfo(supplierID string, serviceTypes ...string) protocol.SupplierInfo {
	if len(serviceTypes) == 0 {
		serviceTypes = []string{protocol.ServiceFlightBooking}
	}
	return protocol.SupplierInfo{
		SupplierID:        supplierID,
		Name:              "Supplier " + supplierID,
		BaseURL:           fmt.Sprintf("http://%s.test", supplierID),
		SupportedServices: serviceTypes,
		IsVerified:        true,
	}
}
