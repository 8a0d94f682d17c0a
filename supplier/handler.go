package supplier

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/telemetry"
)

// Handler exposes a supplier's negotiate and commit operations over HTTP.
type Handler struct {
	supplier *Supplier
	log      *slog.Logger
	metrics  *telemetry.Metrics
}

// NewHandler wraps a supplier with HTTP endpoints. The logger and metrics
// may be nil.
func NewHandler(s *Supplier, log *slog.Logger, metrics *telemetry.Metrics) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{supplier: s, log: log, metrics: metrics}
}

// RegisterRoutes registers the ATP supplier routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Recoverer)

	r.Post("/atp/v1/negotiate", h.handleNegotiate)
	r.Post("/atp/v1/commit", h.handleCommit)
	r.Get("/health", h.handleHealth)
}

func (h *Handler) handleNegotiate(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	intent, err := protocol.DecodeMessage[protocol.Intent](r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.supplier.Negotiate(intent)
	if err != nil {
		h.metrics.RecordNegotiation(r.Context(), intent.ServiceType, telemetry.OutcomeError)
		writeProtocolError(w, err)
		return
	}

	outcome := telemetry.OutcomeOffer
	if len(resp.Offers) == 0 {
		outcome = telemetry.OutcomeRejection
	}
	h.metrics.RecordNegotiation(r.Context(), intent.ServiceType, outcome)
	for _, offer := range resp.Offers {
		h.metrics.RecordOffer(r.Context(), offer.OfferID, offer.Currency, offer.Price)
	}
	h.log.Info("negotiated",
		"supplier", h.supplier.Name(),
		"transaction_id", intent.TransactionID,
		"service_type", intent.ServiceType,
		"outcome", outcome,
	)

	writeJSON(w, resp)
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	req, err := protocol.DecodeMessage[protocol.CommitRequest](r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.supplier.Commit(req)
	if err != nil {
		h.metrics.RecordCommit(r.Context(), false)
		h.log.Warn("commit rejected",
			"supplier", h.supplier.Name(),
			"offer_id", req.OfferID,
			"err", err,
		)
		writeProtocolError(w, err)
		return
	}

	h.metrics.RecordCommit(r.Context(), true)
	h.log.Info("commit confirmed",
		"supplier", h.supplier.Name(),
		"transaction_id", req.TransactionID,
		"offer_id", req.OfferID,
		"confirmation_id", resp.ConfirmationID,
	)

	writeJSON(w, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok", "supplier": h.supplier.Name()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// writeProtocolError maps the protocol error taxonomy onto HTTP status codes.
func writeProtocolError(w http.ResponseWriter, err error) {
	switch {
	case protocol.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case protocol.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
