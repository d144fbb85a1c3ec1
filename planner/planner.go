// Package planner generates itineraries and packing lists with an LLM.
package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrMalformedPlan indicates the model's answer could not be decoded.
var ErrMalformedPlan = errors.New("model returned a malformed plan")

// ErrEmptyCompletion indicates the model returned no choices.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

const defaultModel = openai.GPT4oMini

// chatCompleter is the slice of the OpenAI client the planner needs.
// *openai.Client implements it; tests inject fakes.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Planner turns trip parameters into an itinerary and a packing list.
type Planner struct {
	client chatCompleter
	model  string
	logger zerolog.Logger
}

// Option configures a Planner.
type Option func(*Planner)

// WithModel overrides the completion model.
func WithModel(model string) Option {
	return func(p *Planner) {
		if model != "" {
			p.model = model
		}
	}
}

// withChatCompleter injects a fake client for tests.
func withChatCompleter(client chatCompleter) Option {
	return func(p *Planner) {
		p.client = client
	}
}

// New creates a planner backed by the OpenAI API.
func New(apiKey string, logger zerolog.Logger, opts ...Option) *Planner {
	p := &Planner{
		client: openai.NewClient(apiKey),
		model:  defaultModel,
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Itinerary generates a day-by-day plan for the trip.
func (p *Planner) Itinerary(ctx context.Context, trip Trip) (*Itinerary, error) {
	var itinerary Itinerary
	if err := p.generate(ctx, buildItineraryPrompt(trip), &itinerary); err != nil {
		return nil, fmt.Errorf("generating itinerary: %w", err)
	}
	if len(itinerary.Days) == 0 {
		return nil, fmt.Errorf("generating itinerary: %w", ErrMalformedPlan)
	}
	return &itinerary, nil
}

// PackingList generates a packing checklist for the trip.
func (p *Planner) PackingList(ctx context.Context, trip Trip) (*PackingList, error) {
	var list PackingList
	if err := p.generate(ctx, buildPackingPrompt(trip), &list); err != nil {
		return nil, fmt.Errorf("generating packing list: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("generating packing list: %w", ErrMalformedPlan)
	}
	return &list, nil
}

func (p *Planner) generate(ctx context.Context, prompt string, out any) error {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return ErrEmptyCompletion
	}

	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		p.logger.Debug().Str("content", content).Msg("undecodable model answer")
		return fmt.Errorf("%w: %v", ErrMalformedPlan, err)
	}
	return nil
}

// stripFences removes a surrounding markdown code fence, which models emit
// despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
