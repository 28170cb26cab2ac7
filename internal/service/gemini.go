package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-1.5-flash"

// Generator produces text from a prompt. Satisfied by the Gemini client;
// tests supply a fake.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client  *genai.Client
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

// NewGeminiGenerator builds the Gemini client with a circuit breaker and a
// request rate limit in front of it.
func NewGeminiGenerator(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeminiAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Info("circuit breaker state changed", "name", name,
				"from", from.String(), "to", to.String())
		},
	})

	// free tier allows 10 requests per minute
	limiter := rate.NewLimiter(rate.Every(6*time.Second), 2)

	return &geminiGenerator{
		client:  client,
		breaker: breaker,
		limiter: limiter,
	}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	result, err := g.breaker.Execute(func() (interface{}, error) {
		model := g.client.GenerativeModel(geminiModel)
		model.SetTemperature(0.7)
		model.SetMaxOutputTokens(2048)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return nil, errors.New("empty response from model")
		}

		var text string
		for _, part := range resp.Candidates[0].Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}
