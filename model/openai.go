package model

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"legalrag/config"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIModel wraps the hosted embedding and chat models behind the Embedder
// and Completer interfaces. Embedding calls retry with bounded exponential
// backoff; completion retries are left to callers so that the grader can opt
// out of them.
type OpenAIModel struct {
	client       *openai.Client
	chatModel    string
	embedModel   string
	dimensions   int
	maxRetries   int
	retryDelay   time.Duration
	embedTimeout time.Duration
}

func NewOpenAIModel(cfg *config.Config) (*OpenAIModel, error) {
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	var clientCfg openai.ClientConfig
	if cfg.OpenAIBaseURL != "" {
		// Azure-style deployment: base URL plus pinned API version.
		clientCfg = openai.DefaultAzureConfig(cfg.OpenAIKey, cfg.OpenAIBaseURL)
		clientCfg.APIVersion = cfg.OpenAIAPIVersion
	} else {
		clientCfg = openai.DefaultConfig(cfg.OpenAIKey)
	}

	log.Printf("[MODEL] chat=%s embed=%s dims=%d", cfg.ChatModel, cfg.EmbedModel, cfg.EmbedDimensions)

	return &OpenAIModel{
		client:       openai.NewClientWithConfig(clientCfg),
		chatModel:    cfg.ChatModel,
		embedModel:   cfg.EmbedModel,
		dimensions:   cfg.EmbedDimensions,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		embedTimeout: cfg.EmbedTimeout,
	}, nil
}

// Embed returns the L2-normalized embedding of text. Embedding is a pure
// function of its input, so retrying is always safe.
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(Backoff(m.retryDelay, attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, m.embedTimeout)
		resp, err := m.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input:      []string{text},
			Model:      openai.EmbeddingModel(m.embedModel),
			Dimensions: m.dimensions,
		})
		cancel()

		if err != nil {
			lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
			if ctx.Err() != nil {
				return nil, lastErr
			}
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("attempt %d: no embedding returned", attempt+1)
			continue
		}

		return Normalize(resp.Data[0].Embedding), nil
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", m.maxRetries+1, lastErr)
}

// Complete runs a single chat completion with the given system and user
// messages. No internal retry.
func (m *OpenAIModel) Complete(ctx context.Context, system, user string, temperature float32) (string, error) {
	resp, err := m.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       m.chatModel,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Normalize scales a vector to unit length so cosine distance behaves.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
