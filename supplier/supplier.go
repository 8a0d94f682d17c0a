package supplier

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// DefaultOfferTTL bounds how long an issued offer stays committable.
const DefaultOfferTTL = 15 * time.Minute

// Quote is the supplier's fixed price point for one service type.
type Quote struct {
	Price    float64 `yaml:"price" json:"price"`
	Currency string  `yaml:"currency" json:"currency"`
}

// Config describes one supplier instance.
type Config struct {
	SupplierID string
	Name       string
	// BaseURL is the externally reachable root of this supplier's HTTP
	// endpoints; the commit endpoint in every issued offer is derived
	// from it.
	BaseURL string
	// Quotes maps serviceType to this supplier's price point.
	Quotes map[string]Quote
	// OfferTTL is how long issued offers stay valid. Zero means
	// DefaultOfferTTL.
	OfferTTL time.Duration
	// SkipExpiryCheck disables the expiry check at commit time. By default
	// a commit attempt past expiresAt is treated as if the offer were
	// already consumed. Expired entries are never actively swept.
	SkipExpiryCheck bool
	// StrictTransaction makes commit reject requests whose transaction id
	// does not match the one recorded at negotiation time. Off by default.
	StrictTransaction bool
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Supplier holds an offer ledger and implements the negotiate/commit state
// machine: Pending -> {Offered, Rejected}, then Offered -> Committed
// (terminal, ledger entry removed) or Offered -> Expired (terminal, never
// consumed).
type Supplier struct {
	config *Config
	ledger *Ledger
	now    func() time.Time
}

// New creates a supplier from config.
func New(config *Config) (*Supplier, error) {
	if config == nil {
		return nil, errors.New("config cannot be nil")
	}
	if config.SupplierID == "" {
		return nil, errors.New("supplier id cannot be empty")
	}
	if config.Name == "" {
		return nil, errors.New("supplier name cannot be empty")
	}
	if len(config.Quotes) == 0 {
		return nil, errors.New("supplier needs at least one quote")
	}
	if config.OfferTTL == 0 {
		config.OfferTTL = DefaultOfferTTL
	}

	now := config.Clock
	if now == nil {
		now = time.Now
	}

	return &Supplier{
		config: config,
		ledger: NewLedger(),
		now:    now,
	}, nil
}

// Ledger exposes the offer ledger, primarily for tests and introspection.
func (s *Supplier) Ledger() *Ledger {
	return s.ledger
}

// Name returns the supplier's display name.
func (s *Supplier) Name() string {
	return s.config.Name
}

// CommitEndpoint returns the absolute URL of this supplier's commit
// operation.
func (s *Supplier) CommitEndpoint() string {
	return strings.TrimRight(s.config.BaseURL, "/") + "/atp/v1/commit"
}

// Negotiate applies the deterministic pricing policy to an intent and
// returns either exactly one offer or exactly one rejection, never both.
//
// If the intent carries no maxPrice the supplier always offers at its
// quoted price. If maxPrice is below the quote, negotiation rejects with
// PRICE_UNMET and the numeric shortfall; no offer is issued and nothing is
// written to the ledger. Otherwise exactly one offer is issued and stored
// under a freshly minted offer id.
func (s *Supplier) Negotiate(intent *protocol.Intent) (*protocol.NegotiateResponse, error) {
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	resp := &protocol.NegotiateResponse{
		TransactionID: intent.TransactionID,
		NegotiationID: "neg-" + uuid.NewString(),
		Offers:        []protocol.Offer{},
		Rejections:    []protocol.Rejection{},
	}

	quote, ok := s.config.Quotes[intent.ServiceType]
	if !ok {
		resp.Rejections = append(resp.Rejections, protocol.Rejection{
			ReasonCode: protocol.ReasonServiceUnsupported,
			Message:    fmt.Sprintf("%s does not serve %s", s.config.Name, intent.ServiceType),
		})
		return resp, nil
	}

	if c := intent.Constraints.Currency; c != "" && c != quote.Currency {
		resp.Rejections = append(resp.Rejections, protocol.Rejection{
			ReasonCode: protocol.ReasonCurrencyMismatch,
			Message:    fmt.Sprintf("quotes are in %s, not %s", quote.Currency, c),
		})
		return resp, nil
	}

	if maxPrice := intent.Constraints.MaxPrice; maxPrice != nil && *maxPrice < quote.Price {
		resp.Rejections = append(resp.Rejections, protocol.Rejection{
			ReasonCode: protocol.ReasonPriceUnmet,
			Message: fmt.Sprintf("max price %.2f is %.2f below our price of %.2f %s",
				*maxPrice, quote.Price-*maxPrice, quote.Price, quote.Currency),
		})
		return resp, nil
	}

	offer := protocol.Offer{
		// Derived from the transaction id plus a random suffix so retries
		// with distinct transaction ids never collide.
		OfferID:        fmt.Sprintf("offer-%s-%s", intent.TransactionID, uuid.NewString()[:8]),
		Price:          quote.Price,
		Currency:       quote.Currency,
		CommitEndpoint: strings.TrimRight(s.config.BaseURL, "/") + "/atp/v1/commit",
		ExpiresAt:      s.now().Add(s.config.OfferTTL),
	}
	s.ledger.Put(offer, intent.TransactionID)

	resp.Offers = append(resp.Offers, offer)
	return resp, nil
}

// Commit consumes an offer exactly once. The ledger lookup-and-remove is
// atomic with respect to concurrent commits on the same offer id: the first
// caller gets a CONFIRMED record, everyone else gets NotFoundError. A commit
// attempt past the offer's expiry is treated as if the offer were already
// consumed, unless SkipExpiryCheck is set.
func (s *Supplier) Commit(req *protocol.CommitRequest) (*protocol.CommitResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, err := s.ledger.Take(req.OfferID, func(e Entry) error {
		if !s.config.SkipExpiryCheck && e.Offer.Expired(s.now()) {
			return &protocol.NotFoundError{Kind: "offer", ID: req.OfferID}
		}
		if s.config.StrictTransaction && e.TransactionID != req.TransactionID {
			return &protocol.ValidationError{
				Field: "transactionId",
				Msg:   "does not match the transaction this offer was issued for",
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &protocol.CommitResponse{
		TransactionID:  req.TransactionID,
		OfferID:        req.OfferID,
		Status:         protocol.StatusConfirmed,
		ConfirmationID: confirmationID(req.TransactionID),
		Message:        fmt.Sprintf("Booking confirmed via %s.", s.config.Name),
	}, nil
}

// confirmationID derives a deterministic, traceable confirmation id from the
// transaction id. Not secret.
func confirmationID(transactionID string) string {
	sum := sha256.Sum256([]byte(transactionID))
	return "conf-" + hex.EncodeToString(sum[:8])
}
