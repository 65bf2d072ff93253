package services

import (
	"context"
	"fmt"
	"strings"

	"staysearch/config"
	"staysearch/models"
	"staysearch/utils"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Summarizer condenses a listing's reviews into one or two sentences.
// Implementations return ("", nil) when there is nothing to summarize.
type Summarizer interface {
	Summarize(ctx context.Context, title string, reviews []models.Review) (string, error)
}

// NewSummarizer returns the OpenAI-backed summarizer when an API key is
// configured, else the extractive fallback.
func NewSummarizer(cfg *config.Config, logger *utils.Logger) Summarizer {
	if cfg.OpenAIAPIKey == "" {
		logger.Debug("No OpenAI key configured, using extractive review summaries")
		return &ExtractiveSummarizer{}
	}
	return NewOpenAISummarizer(cfg, logger)
}

// OpenAISummarizer generates review summaries through a chat completion.
type OpenAISummarizer struct {
	client *openai.Client
	model  string
	logger *utils.Logger
}

// NewOpenAISummarizer creates the LLM-backed summarizer.
func NewOpenAISummarizer(cfg *config.Config, logger *utils.Logger) *OpenAISummarizer {
	opts := []option.RequestOption{option.WithAPIKey(cfg.OpenAIAPIKey)}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client := openai.NewClient(opts...)
	return &OpenAISummarizer{client: &client, model: cfg.OpenAIModel, logger: logger}
}

// Summarize asks the model for a short guest-sentiment summary.
func (s *OpenAISummarizer) Summarize(ctx context.Context, title string, reviews []models.Review) (string, error) {
	if len(reviews) == 0 {
		return "", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Summarize guest sentiment for the accommodation %q in at most two sentences. Reviews:\n", title)
	for i, r := range reviews {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, r.Text)
	}

	response, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(sb.String()),
		},
		MaxTokens:   openai.Int(120),
		Temperature: openai.Float(0.2),
	})
	if err != nil {
		return "", fmt.Errorf("review summary failed: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// ExtractiveSummarizer is the no-LLM fallback: it stitches the opening
// sentence of the first few reviews together.
type ExtractiveSummarizer struct{}

// Summarize picks leading sentences from up to three reviews.
func (s *ExtractiveSummarizer) Summarize(_ context.Context, _ string, reviews []models.Review) (string, error) {
	if len(reviews) == 0 {
		return "", nil
	}
	var parts []string
	for _, r := range reviews {
		sentence := firstSentence(r.Text)
		if sentence == "" {
			continue
		}
		parts = append(parts, sentence)
		if len(parts) >= 3 {
			break
		}
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "Guests say: " + strings.Join(parts, " "), nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	for _, sep := range []string{". ", "! ", "? "} {
		if idx := strings.Index(text, sep); idx != -1 {
			return text[:idx+1]
		}
	}
	if len(text) > 140 {
		return text[:140] + "..."
	}
	return text
}
