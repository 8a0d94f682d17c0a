package protocol

import (
	"time"
)

// Service types recognized by the protocol. Intents form a tagged union
// keyed by serviceType: each variant has its own required parameter set,
// enforced by Intent.Validate.
const (
	ServiceFlightBooking   = "booking:flight"
	ServiceHotelBooking    = "booking:hotel"
	ServiceWeatherForecast = "weather:forecast"
)

// Rejection reason codes. ReasonPriceUnmet is the canonical budget code;
// suppliers may emit supplier-specific codes alongside it.
const (
	ReasonPriceUnmet         = "PRICE_UNMET"
	ReasonCurrencyMismatch   = "CURRENCY_MISMATCH"
	ReasonServiceUnsupported = "SERVICE_UNSUPPORTED"
)

// StatusConfirmed is the terminal status of a successful commit.
const StatusConfirmed = "CONFIRMED"

// Constraints carries the requester's negotiation limits.
// MaxPrice is optional; a nil pointer means no budget constraint.
type Constraints struct {
	MaxPrice *float64 `json:"maxPrice,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

// Intent describes what a requester wants and under what constraints.
// An Intent is immutable once sent; TransactionID must be unique per
// negotiation attempt and is minted by the client.
type Intent struct {
	TransactionID string            `json:"transactionId"`
	RequesterID   string            `json:"requesterId"`
	ServiceType   string            `json:"serviceType"`
	Params        map[string]string `json:"params"`
	Constraints   Constraints       `json:"constraints"`
}

// Offer is a supplier's binding proposal in response to an Intent.
// Lifecycle: issued -> consumed-by-commit (terminal) or expired (terminal,
// never consumed). An offer may be consumed at most once.
type Offer struct {
	OfferID        string    `json:"offerId"`
	Price          float64   `json:"price"`
	Currency       string    `json:"currency"`
	CommitEndpoint string    `json:"commitEndpoint"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// Expired reports whether the offer's validity window has passed at now.
func (o *Offer) Expired(now time.Time) bool {
	return !o.ExpiresAt.IsZero() && now.After(o.ExpiresAt)
}

// Rejection is emitted instead of an Offer when constraints cannot be met.
// It carries no lifecycle.
type Rejection struct {
	ReasonCode string `json:"reasonCode"`
	Message    string `json:"message"`
}

// SupplierInfo is the directory's registration record for one supplier.
// Registered out-of-band; read-only from the client's perspective.
type SupplierInfo struct {
	SupplierID        string   `json:"supplierId"`
	Name              string   `json:"name"`
	BaseURL           string   `json:"baseUrl"`
	SupportedServices []string `json:"supportedServices"`
	IsVerified        bool     `json:"isVerified"`
}

// Supports reports whether the supplier advertises the given service type.
func (s *SupplierInfo) Supports(serviceType string) bool {
	for _, svc := range s.SupportedServices {
		if svc == serviceType {
			return true
		}
	}
	return false
}

// CommitRequest is the second-phase payload consuming a specific offer.
// The commit payload is derived only from the transaction and offer ids,
// never from the full Offer.
type CommitRequest struct {
	TransactionID string `json:"transactionId"`
	OfferID       string `json:"offerId"`
}

// CommitRecord is created once per successful commit, after which the
// corresponding offer is removed from the supplier's ledger.
type CommitRecord struct {
	TransactionID  string `json:"transactionId"`
	OfferID        string `json:"offerId"`
	Status         string `json:"status"`
	ConfirmationID string `json:"confirmationId"`
}

// NegotiateResponse is the wire response of the negotiate endpoint.
// At most one of Offers and Rejections is populated.
type NegotiateResponse struct {
	TransactionID string      `json:"transactionId"`
	NegotiationID string      `json:"negotiationId"`
	Offers        []Offer     `json:"offers"`
	Rejections    []Rejection `json:"rejections"`
}

// HeaderCredential carries the discovery credential on directory requests.
const HeaderCredential = "X-Atp-Credential"

// DiscoveryResponse is the wire response of the discovery endpoint.
type DiscoveryResponse struct {
	ServiceType string         `json:"serviceType"`
	Suppliers   []SupplierInfo `json:"suppliers"`
}

// CommitResponse is the wire response of the commit endpoint.
type CommitResponse struct {
	TransactionID  string `json:"transactionId"`
	OfferID        string `json:"offerId"`
	Status         string `json:"status"`
	ConfirmationID string `json:"confirmationId"`
	Message        string `json:"message"`
}

// Record converts the wire response into a CommitRecord.
func (r *CommitResponse) Record() *CommitRecord {
	return &CommitRecord{
		TransactionID:  r.TransactionID,
		OfferID:        r.OfferID,
		Status:         r.Status,
		ConfirmationID: r.ConfirmationID,
	}
}
