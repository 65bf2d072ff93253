package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"staysearch/config"
	"staysearch/models"
	"staysearch/utils"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const intentSystemPrompt = `You turn a user's travel request into JSON. Respond with exactly one JSON object, no prose:
{"location": string, "check_in": "YYYY-MM-DD", "check_out": "YYYY-MM-DD", "guests": int, "budget_min": number|null, "budget_max": number|null, "currency": "USD", "clarification": string|null}
If the request is missing the location or the dates, set the unknown fields to null and put one short question in "clarification". Budgets are per night.`

// IntentOutcome is what the parser hands back: either a completed request
// or a clarification question for the user.
type IntentOutcome struct {
	Request       *models.SearchRequest
	Clarification string
}

// IntentParser turns free text into a normalized SearchRequest via a chat
// completion. It sits outside the pipeline: callers parse first, then hand
// the normalized request to the core.
type IntentParser struct {
	client *openai.Client
	model  string
	logger *utils.Logger
}

// NewIntentParser creates the parser, or nil when no API key is configured
// (callers then build requests from structured input instead).
func NewIntentParser(cfg *config.Config, logger *utils.Logger) *IntentParser {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := openai.NewClient(opts...)
	return &IntentParser{client: &client, model: cfg.OpenAIModel, logger: logger}
}

// intentPayload mirrors the JSON contract in intentSystemPrompt.
type intentPayload struct {
	Location      string   `json:"location"`
	CheckIn       string   `json:"check_in"`
	CheckOut      string   `json:"check_out"`
	Guests        int      `json:"guests"`
	BudgetMin     *float64 `json:"budget_min"`
	BudgetMax     *float64 `json:"budget_max"`
	Currency      string   `json:"currency"`
	Clarification *string  `json:"clarification"`
}

// Parse interprets the user's text. A clarification outcome is not an
// error; errors mean the collaborator itself failed.
func (p *IntentParser) Parse(ctx context.Context, text string) (*IntentOutcome, error) {
	response, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(intentSystemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("intent parsing failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no response choices returned")
	}

	raw := strings.TrimSpace(response.Choices[0].Message.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.Trim(raw, "` \n")

	var payload intentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("intent response was not valid JSON: %w", err)
	}

	if payload.Clarification != nil && *payload.Clarification != "" {
		return &IntentOutcome{Clarification: *payload.Clarification}, nil
	}

	checkIn, err := time.Parse("2006-01-02", payload.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("intent returned bad check-in date %q", payload.CheckIn)
	}
	checkOut, err := time.Parse("2006-01-02", payload.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("intent returned bad check-out date %q", payload.CheckOut)
	}

	req := &models.SearchRequest{
		Location:  strings.TrimSpace(payload.Location),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Guests:    payload.Guests,
		BudgetMin: payload.BudgetMin,
		BudgetMax: payload.BudgetMax,
		Currency:  payload.Currency,
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("intent produced an invalid request: %w", err)
	}
	return &IntentOutcome{Request: req}, nil
}
