package nlu

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

const nluSystemPrompt = `You are an expert NLU agent for a travel marketplace.
Your only task is to update a JSON object based on the user's request.
Reply with NOTHING but the final JSON.

You receive:
1. "Previous JSON state": the conversation state so far (may be {}).
2. "Current user request": what the user just said.

Rules:
- If the request is a new search, ignore the previous state and build a
  fresh JSON object.
- If the request answers an earlier question (e.g. "from Paris" or
  "on December 15th"), keep the previous state and only add or modify the
  information provided.
- Always carry over previous slots the user did not change.
- If the user changes their mind, update the affected slot.

The JSON object always has this structure:
{
  "intent": "SEARCH_FLIGHT",
  "entities": {
    "origin": "CITY_OR_IATA_CODE" (or null),
    "destination": "CITY_OR_IATA_CODE" (or null),
    "departure_date": "YYYY-MM-DD" (or null),
    "return_date": "YYYY-MM-DD" (or null),
    "max_price": NUMBER (or null),
    "currency": "EUR" (or "USD", "CAD", etc., or null)
  }
}`

const nlgSystemPrompt = `You are a friendly, helpful conversational travel agent.
Answer the user's request based on the booking data provided as JSON.

- Keep a warm, natural tone.
- If a booking was made, present the supplier name and price. Never expose
  internal identifiers such as offer or confirmation ids.
- If no booking was possible but all search slots are filled, politely say
  nothing matched.
- If slots are still missing, look at the conversation state and ask for
  exactly one missing piece of information at a time.`

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Gemini implements IntentParser and ResultRenderer on the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// Option configures the Gemini collaborator.
type Option func(*Gemini)

// WithModel sets the model.
func WithModel(model string) Option {
	return func(g *Gemini) {
		g.model = model
	}
}

// NewGemini creates the Gemini collaborator. An empty apiKey falls back to
// the GOOGLE_API_KEY / GEMINI_API_KEY environment variables.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	var cfg *genai.ClientConfig
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	g := &Gemini{client: client, model: DefaultModel}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ParseIntent implements IntentParser.
func (g *Gemini) ParseIntent(ctx context.Context, userText string, previous *ConversationState) (*ConversationState, error) {
	previousJSON := "{}"
	if previous != nil {
		raw, err := json.Marshal(previous)
		if err != nil {
			return nil, fmt.Errorf("encode previous state: %w", err)
		}
		previousJSON = string(raw)
	}

	prompt := fmt.Sprintf("Previous JSON state:\n%s\n\nCurrent user request:\n%q", previousJSON, userText)
	raw, err := g.generate(ctx, nluSystemPrompt, prompt, 0)
	if err != nil {
		return nil, err
	}

	cleaned, err := CleanJSON(raw)
	if err != nil {
		return nil, err
	}
	var state ConversationState
	if err := json.Unmarshal([]byte(cleaned), &state); err != nil {
		return nil, fmt.Errorf("decode model state: %w", err)
	}
	return &state, nil
}

// RenderResult implements ResultRenderer.
func (g *Gemini) RenderResult(ctx context.Context, userText string, state *ConversationState, booking any) (string, error) {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	bookingJSON := []byte("null")
	if booking != nil {
		if bookingJSON, err = json.Marshal(booking); err != nil {
			return "", fmt.Errorf("encode booking: %w", err)
		}
	}

	prompt := fmt.Sprintf(
		"Original user request: %q\n\nConversation state:\n%s\n\nBooking outcome:\n%s\n\nYour reply:",
		userText, stateJSON, bookingJSON,
	)
	return g.generate(ctx, nlgSystemPrompt, prompt, 0.7)
}

func (g *Gemini) generate(ctx context.Context, system, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature: &temperature,
	}
	contents := []*genai.Content{
		{Role: "user", Parts: []*genai.Part{{Text: prompt}}},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	var text string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			text += part.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}
	return text, nil
}

var (
	_ IntentParser   = (*Gemini)(nil)
	_ ResultRenderer = (*Gemini)(nil)
)
