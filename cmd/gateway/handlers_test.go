package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trebortGolin/agnostic-agent-api/client"
	"github.com/trebortGolin/agnostic-agent-api/crypto"
	"github.com/trebortGolin/agnostic-agent-api/nlu"
	"github.com/trebortGolin/agnostic-agent-api/protocol"
	"github.com/trebortGolin/agnostic-agent-api/services"
	"github.com/trebortGolin/agnostic-agent-api/supplier"
	"github.com/trebortGolin/agnostic-agent-api/testutil"
)

// scriptedNLU returns canned parses and echoes render inputs, standing in
// for the Gemini collaborator.
type scriptedNLU struct {
	state       *nlu.ConversationState
	lastBooking any
}

func (s *scriptedNLU) ParseIntent(_ context.Context, _ string, _ *nlu.ConversationState) (*nlu.ConversationState, error) {
	return s.state, nil
}

func (s *scriptedNLU) RenderResult(_ context.Context, _ string, _ *nlu.ConversationState, booking any) (string, error) {
	s.lastBooking = booking
	if booking == nil {
		return "Where are you flying from?", nil
	}
	return "Your flight is booked.", nil
}

func completeState() *nlu.ConversationState {
	price := 500.0
	return &nlu.ConversationState{
		Intent: "SEARCH_FLIGHT",
		Entities: nlu.Entities{
			Origin:        "CDG",
			Destination:   "JFK",
			DepartureDate: "2026-10-01",
			MaxPrice:      &price,
			Currency:      "EUR",
		},
	}
}

func setupGateway(t *testing.T, state *nlu.ConversationState) (*httptest.Server, *scriptedNLU, crypto.PublicKey) {
	t.Helper()

	o := services.NewOrchestrator(&services.OrchestratorConfig{
		Suppliers: []services.SupplierSpec{
			{
				SupplierID: "sup-lufthansa",
				Name:       "Lufthansa Agent",
				Verified:   true,
				Quotes: map[string]supplier.Quote{
					protocol.ServiceFlightBooking: {Price: 475, Currency: "EUR"},
				},
			},
		},
	}, nil)
	require.NoError(t, o.Deploy())
	t.Cleanup(func() { o.Shutdown() })

	pub, priv := testutil.GenerateTestKeyPair()

	shopper, err := client.New(&client.Config{
		DirectoryURL: o.DirectoryAddr(),
		RequesterID:  "req-gateway",
		SigningKey:   priv,
	}, nil, nil)
	require.NoError(t, err)

	brain := &scriptedNLU{state: state}
	r := chi.NewRouter()
	NewGateway(shopper, brain, brain, nil).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, brain, pub
}

func postChat(t *testing.T, url, message, authToken string) *ChatResponse {
	t.Helper()

	body, err := json.Marshal(ChatRequest{Message: message})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url+"/chat", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func TestChatAsksForMissingSlots(t *testing.T) {
	srv, _, _ := setupGateway(t, &nlu.ConversationState{
		Intent:   "SEARCH_FLIGHT",
		Entities: nlu.Entities{Destination: "JFK"},
	})

	out := postChat(t, srv.URL, "I want to fly to New York", "")
	assert.Equal(t, "Where are you flying from?", out.Reply)
	assert.Nil(t, out.Booking)
	require.NotNil(t, out.State)
	assert.Equal(t, "JFK", out.State.Entities.Destination)
}

func TestChatBooksAndSignsTask(t *testing.T) {
	srv, _, pub := setupGateway(t, completeState())

	out := postChat(t, srv.URL, "Book me a flight from Paris to New York on October 1st", "user-token-123")
	assert.Equal(t, "Your flight is booked.", out.Reply)
	require.NotNil(t, out.Booking)
	assert.Equal(t, "Lufthansa Agent", out.Booking.Supplier)
	assert.Equal(t, 475.0, out.Booking.Price)

	require.NotNil(t, out.Booking.Task)
	require.True(t, out.Booking.Task.Verify(pub))

	var record protocol.CommitRecord
	require.NoError(t, out.Booking.Task.DecodeTask(pub, &record))
	assert.Equal(t, protocol.StatusConfirmed, record.Status)
}

func TestChatAuthTokenStaysOutsideSignedTask(t *testing.T) {
	srv, brain, _ := setupGateway(t, completeState())

	out := postChat(t, srv.URL, "Book it", "user-token-123")
	require.NotNil(t, out.Booking)
	assert.Equal(t, "user-token-123", out.Booking.AuthToken)

	// The signed payload must not contain the token.
	assert.NotContains(t, string(out.Booking.Task.Task), "user-token-123")

	// Neither may the summary handed to the language model.
	summaryJSON, err := json.Marshal(brain.lastBooking)
	require.NoError(t, err)
	assert.NotContains(t, string(summaryJSON), "user-token-123")
}

func TestChatNoOffers(t *testing.T) {
	price := 100.0
	state := completeState()
	state.Entities.MaxPrice = &price
	srv, _, _ := setupGateway(t, state)

	out := postChat(t, srv.URL, "Book me a cheap flight", "")
	assert.Nil(t, out.Booking)
	assert.Equal(t, "Where are you flying from?", out.Reply, "no-booking turns render without booking data")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv, _, _ := setupGateway(t, completeState())

	body, _ := json.Marshal(ChatRequest{Message: "   "})
	resp, err := http.Post(srv.URL+"/chat", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
