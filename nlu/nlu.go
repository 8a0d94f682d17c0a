package nlu

import (
	"context"
	"fmt"
	"strings"

	"github.com/trebortGolin/agnostic-agent-api/protocol"
)

// IntentParser turns free-form user text into an updated conversation
// state. The previous state carries slots filled in earlier turns; the
// parser merges the new utterance into it.
type IntentParser interface {
	ParseIntent(ctx context.Context, userText string, previous *ConversationState) (*ConversationState, error)
}

// ResultRenderer produces the natural-language reply for one turn, given
// the conversation state and the booking outcome (nil when no booking
// happened).
type ResultRenderer interface {
	RenderResult(ctx context.Context, userText string, state *ConversationState, booking any) (string, error)
}

// ConversationState is the slot-filling state carried across chat turns.
type ConversationState struct {
	Intent   string   `json:"intent"`
	Entities Entities `json:"entities"`
}

// Entities are the flight-search slots the NLU model extracts. Empty
// strings and nil prices mean the slot is still unfilled.
type Entities struct {
	Origin        string   `json:"origin"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date"`
	MaxPrice      *float64 `json:"max_price"`
	Currency      string   `json:"currency"`
}

// Missing lists the required slots that are still unfilled. Return date,
// budget and currency are optional.
func (s *ConversationState) Missing() []string {
	var missing []string
	if s.Entities.Origin == "" {
		missing = append(missing, "origin")
	}
	if s.Entities.Destination == "" {
		missing = append(missing, "destination")
	}
	if s.Entities.DepartureDate == "" {
		missing = append(missing, "departure_date")
	}
	return missing
}

// Complete reports whether the state has enough slots to search.
func (s *ConversationState) Complete() bool {
	return len(s.Missing()) == 0
}

// FlightIntent converts a complete state into a flight booking intent.
// The transaction and requester ids are left for the shopper to fill.
func (s *ConversationState) FlightIntent() (protocol.Intent, error) {
	if missing := s.Missing(); len(missing) > 0 {
		return protocol.Intent{}, fmt.Errorf("incomplete state, missing %s", strings.Join(missing, ", "))
	}

	currency := s.Entities.Currency
	if currency == "" {
		currency = "EUR"
	}
	return protocol.Intent{
		ServiceType: protocol.ServiceFlightBooking,
		Params: map[string]string{
			"from": s.Entities.Origin,
			"to":   s.Entities.Destination,
			"date": s.Entities.DepartureDate,
		},
		Constraints: protocol.Constraints{
			MaxPrice: s.Entities.MaxPrice,
			Currency: currency,
		},
	}, nil
}

// CleanJSON strips everything around the outermost JSON object in a raw
// model reply, including markdown code fences. Models decorate their
// output; downstream parsing must not care.
func CleanJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in model output: %q", s)
	}
	return s[start : end+1], nil
}
