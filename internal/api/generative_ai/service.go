package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-trip-aggregator/config"
)

const defaultModel = "gemini-2.5-flash"

// ErrNoAPIKey is returned when no Gemini key is configured. Callers treat it as
// "no collaborator available" and fall back to deterministic output.
var ErrNoAPIKey = errors.New("gemini api key is not set")

// TextGenerator is the single-prompt text generation collaborator.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error)
}

var _ TextGenerator = (*AIClient)(nil)

type AIClient struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *slog.Logger
}

func NewAIClient(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*AIClient, error) {
	if cfg.LLM.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.LLM.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	model := cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}
	return &AIClient{
		client:      client,
		model:       model,
		temperature: cfg.LLM.Temperature,
		timeout:     cfg.LLM.Timeout,
		logger:      logger,
	}, nil
}

// DefaultConfig is the generation config used when callers pass nil.
func (ai *AIClient) DefaultConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](ai.temperature)}
}

func (ai *AIClient) GenerateContent(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.String("llm.model", ai.model),
		attribute.Int("llm.prompt_length", len(prompt)),
	))
	defer span.End()

	if config == nil {
		config = ai.DefaultConfig()
	}
	if ai.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ai.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text := result.Text()
	ai.logger.DebugContext(ctx, "LLM response received",
		slog.String("model", ai.model),
		slog.Int("response_length", len(text)),
		slog.Duration("latency", time.Since(start)))

	span.SetAttributes(attribute.Int("llm.response_length", len(text)))
	span.SetStatus(codes.Ok, "content generated")
	return text, nil
}
