package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trebortGolin/agnostic-agent-api/crypto"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/telemetry"
)

// DefaultNegotiateTimeout bounds each per-supplier negotiation call.
const DefaultNegotiateTimeout = 5 * time.Second

// Config holds the shopper's settings.
type Config struct {
	// DirectoryURL is the base URL of the supplier directory.
	DirectoryURL string `koanf:"directory_url"`

	// RequesterID identifies this agent in the intents it sends.
	RequesterID string `koanf:"requester_id"`

	// Credential is sent on directory discovery calls when set.
	Credential string `koanf:"credential"`

	// AllowUnverified disables the directory's verification filter.
	AllowUnverified bool `koanf:"allow_unverified"`

	// NegotiateTimeout bounds each supplier negotiation independently.
	// A zero value means DefaultNegotiateTimeout.
	NegotiateTimeout time.Duration `koanf:"negotiate_timeout"`

	// SigningKey, when set, is used to sign the booking task produced by
	// a successful commit.
	SigningKey crypto.PrivateKey

	// HTTPClient overrides the client used for all calls. Nil means
	// http.DefaultClient.
	HTTPClient *http.Client
}

// Shopper is the buying agent. It discovers suppliers, negotiates with all
// of them concurrently, picks the cheapest offer and commits to exactly one
// supplier.
type Shopper struct {
	config  *Config
	http    *http.Client
	log     *slog.Logger
	metrics *telemetry.Metrics
}

// QuotedOffer pairs an offer with the supplier that made it and the
// transaction id it was negotiated under. Committing requires all three.
type QuotedOffer struct {
	Offer         protocol.Offer
	Supplier      protocol.SupplierInfo
	TransactionID string
}

// QuotedRejection pairs a rejection with the supplier that issued it.
type QuotedRejection struct {
	Rejection protocol.Rejection
	Supplier  protocol.SupplierInfo
}

// Round is the outcome of one negotiation fan-out. Suppliers that failed
// to respond in time appear in neither list.
type Round struct {
	Offers     []QuotedOffer
	Rejections []QuotedRejection
}

// Receipt is the result of a completed shopping run.
type Receipt struct {
	Confirmation protocol.CommitResponse
	Offer        QuotedOffer

	// SignedTask is the booking record signed with the shopper's key,
	// nil when no signing key is configured.
	SignedTask *protocol.SignedTask
}

// New creates a shopper. The logger and metrics may be nil.
func New(config *Config, log *slog.Logger, metrics *telemetry.Metrics) (*Shopper, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if config.DirectoryURL == "" {
		return nil, fmt.Errorf("directory URL cannot be empty")
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Shopper{config: config, http: httpClient, log: log, metrics: metrics}, nil
}

// Discover queries the directory for suppliers serving serviceType.
func (s *Shopper) Discover(ctx context.Context, serviceType string) ([]protocol.SupplierInfo, error) {
	u := fmt.Sprintf("%s/discover?serviceType=%s", s.config.DirectoryURL, url.QueryEscape(serviceType))
	if s.config.AllowUnverified {
		u += "&requireVerified=false"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build discovery request: %w", err)
	}
	if s.config.Credential != "" {
		req.Header.Set(protocol.HeaderCredential, s.config.Credential)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discovery request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("discovery", resp)
	}

	var body protocol.DiscoveryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode discovery response: %w", err)
	}
	return body.Suppliers, nil
}

// NegotiateAll sends the intent to every supplier concurrently. Each
// supplier gets a fresh transaction id and an independent timeout, so one
// slow or broken supplier cannot stall or sink the round. Failed suppliers
// are logged and skipped. The round lists offers in discovery order, not
// response order, so a given set of replies always produces the same round.
func (s *Shopper) NegotiateAll(ctx context.Context, intent protocol.Intent, suppliers []protocol.SupplierInfo) *Round {
	timeout := s.config.NegotiateTimeout
	if timeout <= 0 {
		timeout = DefaultNegotiateTimeout
	}

	type result struct {
		response *protocol.NegotiateResponse
		txnID    string
	}

	// Each goroutine writes only its own slot, keyed by the supplier's
	// position in the discovery list.
	results := make([]*result, len(suppliers))
	var wg sync.WaitGroup
	started := time.Now()

	for i, info := range suppliers {
		wg.Add(1)
		go func(i int, info protocol.SupplierInfo) {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			supplierIntent := intent
			supplierIntent.TransactionID = "txn-" + uuid.NewString()
			if supplierIntent.RequesterID == "" {
				supplierIntent.RequesterID = s.config.RequesterID
			}

			resp, err := s.negotiate(callCtx, info, supplierIntent)
			if err != nil {
				s.log.Warn("supplier negotiation failed",
					"supplier", info.SupplierID,
					"err", err,
				)
				return
			}
			results[i] = &result{response: resp, txnID: supplierIntent.TransactionID}
		}(i, info)
	}
	wg.Wait()

	round := &Round{}
	responded := 0
	for i, res := range results {
		if res == nil {
			continue
		}
		responded++
		for _, offer := range res.response.Offers {
			round.Offers = append(round.Offers, QuotedOffer{
				Offer:         offer,
				Supplier:      suppliers[i],
				TransactionID: res.txnID,
			})
		}
		for _, rej := range res.response.Rejections {
			round.Rejections = append(round.Rejections, QuotedRejection{
				Rejection: rej,
				Supplier:  suppliers[i],
			})
		}
	}

	failures := len(suppliers) - responded
	s.metrics.RecordRound(ctx, intent.ServiceType, len(suppliers), len(round.Offers), failures,
		float64(time.Since(started).Milliseconds()))
	s.log.Info("negotiation round complete",
		"service_type", intent.ServiceType,
		"suppliers", len(suppliers),
		"offers", len(round.Offers),
		"rejections", len(round.Rejections),
	)
	return round
}

func (s *Shopper) negotiate(ctx context.Context, info protocol.SupplierInfo, intent protocol.Intent) (*protocol.NegotiateResponse, error) {
	body, err := json.Marshal(intent)
	if err != nil {
		return nil, fmt.Errorf("encode intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, info.BaseURL+"/atp/v1/negotiate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build negotiate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("negotiate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("negotiate", resp)
	}

	var out protocol.NegotiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode negotiate response: %w", err)
	}
	return &out, nil
}

// SelectBest picks the cheapest offer. Ties resolve to the earliest offer
// in the slice, which follows the directory's supplier order, so selection
// is deterministic for a given round. An empty round yields ErrNoOffers.
func SelectBest(offers []QuotedOffer) (QuotedOffer, error) {
	if len(offers) == 0 {
		return QuotedOffer{}, protocol.ErrNoOffers
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if o.Offer.Price < best.Offer.Price {
			best = o
		}
	}
	return best, nil
}

// Commit consumes the selected offer at its supplier. Commit is sent to
// exactly one supplier; a failure here is terminal for the shopping run,
// there is no fallback to the next-best offer.
func (s *Shopper) Commit(ctx context.Context, quoted QuotedOffer) (*protocol.CommitResponse, error) {
	commit := protocol.CommitRequest{
		TransactionID: quoted.TransactionID,
		OfferID:       quoted.Offer.OfferID,
	}
	body, err := json.Marshal(commit)
	if err != nil {
		return nil, fmt.Errorf("encode commit request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, quoted.Offer.CommitEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build commit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		s.metrics.RecordCommit(ctx, false)
		return nil, fmt.Errorf("commit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.RecordCommit(ctx, false)
		return nil, statusError("commit", resp)
	}

	var out protocol.CommitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode commit response: %w", err)
	}

	s.metrics.RecordCommit(ctx, true)
	s.log.Info("commit confirmed",
		"supplier", quoted.Supplier.SupplierID,
		"offer_id", quoted.Offer.OfferID,
		"confirmation_id", out.ConfirmationID,
	)
	return &out, nil
}

// Shop runs the full pipeline: discover, negotiate with every supplier,
// select the cheapest offer and commit it. When a signing key is
// configured, the resulting booking record is returned as a signed task
// for downstream consumers.
func (s *Shopper) Shop(ctx context.Context, intent protocol.Intent) (*Receipt, error) {
	if intent.RequesterID == "" {
		intent.RequesterID = s.config.RequesterID
	}
	if intent.TransactionID == "" {
		intent.TransactionID = "txn-" + uuid.NewString()
	}
	if err := intent.Validate(); err != nil {
		return nil, err
	}

	suppliers, err := s.Discover(ctx, intent.ServiceType)
	if err != nil {
		return nil, err
	}

	round := s.NegotiateAll(ctx, intent, suppliers)
	best, err := SelectBest(round.Offers)
	if err != nil {
		return nil, err
	}

	confirmation, err := s.Commit(ctx, best)
	if err != nil {
		return nil, err
	}

	receipt := &Receipt{Confirmation: *confirmation, Offer: best}
	if len(s.config.SigningKey) > 0 {
		signed, err := protocol.SignTask(s.config.SigningKey, confirmation.Record())
		if err != nil {
			return nil, err
		}
		receipt.SignedTask = signed
	}
	return receipt, nil
}

// statusError converts a non-200 reply into the protocol error taxonomy so
// callers can branch on the error kind instead of status codes.
func statusError(op string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &protocol.AuthError{Missing: true, Msg: string(bytes.TrimSpace(msg))}
	case http.StatusForbidden:
		return &protocol.AuthError{Msg: string(bytes.TrimSpace(msg))}
	case http.StatusNotFound:
		return &protocol.NotFoundError{Kind: op, ID: string(bytes.TrimSpace(msg))}
	case http.StatusBadRequest:
		return &protocol.ValidationError{Field: op, Msg: string(bytes.TrimSpace(msg))}
	default:
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, bytes.TrimSpace(msg))
	}
}
