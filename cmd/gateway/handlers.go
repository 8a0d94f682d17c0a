package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/trebortGolin/agnostic-agent-api/client"
	"github.com/trebortGolin/agnostic-agent-api/nlu"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// ChatRequest is one conversation turn. State carries the slot-filling
// progress from the previous reply; omit it on the first turn.
type ChatRequest struct {
	Message string                 `json:"message"`
	State   *nlu.ConversationState `json:"state,omitempty"`
}

// ChatResponse is the gateway's reply for one turn.
type ChatResponse struct {
	Reply   string                 `json:"reply"`
	State   *nlu.ConversationState `json:"state"`
	Booking *BookingOutput         `json:"booking,omitempty"`
}

// BookingOutput is emitted when a turn completes a booking. The auth token
// travels next to the signed task, never inside it: merging it into the
// task would break the signature and leak the token to every verifier.
type BookingOutput struct {
	Task      *protocol.SignedTask `json:"task"`
	AuthToken string               `json:"authToken,omitempty"`
	Supplier  string               `json:"supplier"`
	Price     float64              `json:"price"`
	Currency  string               `json:"currency"`
	Message   string               `json:"message"`
}

// Gateway glues the NLU collaborator to the shopping pipeline.
type Gateway struct {
	shopper  *client.Shopper
	parser   nlu.IntentParser
	renderer nlu.ResultRenderer
	log      *slog.Logger
}

// NewGateway creates the chat gateway.
func NewGateway(shopper *client.Shopper, parser nlu.IntentParser, renderer nlu.ResultRenderer, log *slog.Logger) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	return &Gateway{shopper: shopper, parser: parser, renderer: renderer, log: log}
}

// RegisterRoutes registers the gateway routes.
func (g *Gateway) RegisterRoutes(r chi.Router) {
	r.Post("/chat", g.handleChat)
	r.Get("/health", g.handleHealth)
}

func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message must not be empty", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	state, err := g.parser.ParseIntent(ctx, req.Message, req.State)
	if err != nil {
		g.log.Error("intent parsing failed", "err", err)
		http.Error(w, "could not understand the request", http.StatusBadGateway)
		return
	}

	// Slots still missing: ask for the next one instead of searching.
	if !state.Complete() {
		reply, err := g.renderer.RenderResult(ctx, req.Message, state, nil)
		if err != nil {
			g.log.Error("rendering failed", "err", err)
			http.Error(w, "could not produce a reply", http.StatusBadGateway)
			return
		}
		writeJSON(w, ChatResponse{Reply: reply, State: state})
		return
	}

	intent, err := state.FlightIntent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := g.shopper.Shop(ctx, intent)
	if err != nil && !errors.Is(err, protocol.ErrNoOffers) {
		g.log.Error("shopping failed", "err", err)
		http.Error(w, "shopping failed", http.StatusBadGateway)
		return
	}

	var booking *BookingOutput
	var summary any
	if receipt != nil {
		booking = &BookingOutput{
			Task:      receipt.SignedTask,
			AuthToken: bearerToken(r),
			Supplier:  receipt.Offer.Supplier.Name,
			Price:     receipt.Offer.Offer.Price,
			Currency:  receipt.Offer.Offer.Currency,
			Message:   receipt.Confirmation.Message,
		}
		// The renderer sees the booking summary, never the auth token.
		summary = map[string]any{
			"supplier": booking.Supplier,
			"price":    booking.Price,
			"currency": booking.Currency,
			"message":  booking.Message,
		}
	}

	reply, err := g.renderer.RenderResult(ctx, req.Message, state, summary)
	if err != nil {
		g.log.Error("rendering failed", "err", err)
		http.Error(w, "could not produce a reply", http.StatusBadGateway)
		return
	}

	writeJSON(w, ChatResponse{Reply: reply, State: state, Booking: booking})
}

func (g *Gateway) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// bearerToken extracts the end-user token from the Authorization header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return auth
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
