package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/foodgpt/pizzeria-ai-platform/pkg/logging"
)

var completionTracer = otel.Tracer("pizzeria.internal.conversation.completion")

const completionTimeout = 30 * time.Second

// CompletionClient issues one round trip to the model given the full
// role-tagged history. An empty reply with a nil error means the service
// returned no content; the caller decides what to do with that.
type CompletionClient interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIClient is the production CompletionClient over the OpenAI chat API.
type OpenAIClient struct {
	client      chatCompleter
	model       string
	temperature float32
	maxTokens   int
	logger      *logging.Logger
}

// NewOpenAIClient wraps an OpenAI API client with the fixed sampling
// configuration the bot uses. Model defaults to gpt-3.5-turbo.
func NewOpenAIClient(client chatCompleter, model string, temperature float64, maxTokens int, logger *logging.Logger) *OpenAIClient {
	if client == nil {
		panic("conversation: openai client cannot be nil")
	}
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &OpenAIClient{
		client:      client,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Complete sends the history to the chat completion endpoint and returns the
// first choice's content, or "" when the service returned no content.
func (c *OpenAIClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	ctx, span := completionTracer.Start(ctx, "conversation.completion")
	defer span.End()
	span.SetAttributes(
		attribute.String("pizzeria.openai.model", c.model),
		attribute.Int("pizzeria.history_len", len(messages)),
	)

	history := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages:    history,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("conversation: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("openai returned no choices", "model", c.model)
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
