package provider

import (
	"context"
	"strings"
)

// reflectionSystem primes the model for terse meta-cognitive output.
const reflectionSystem = "You are observing your own cognitive processes. " +
	"Answer in one short sentence. Be specific and honest about uncertainty."

// ReflectFunc builds the reflection generator used by the
// meta-cognition engine. Temperature follows the chemistry's
// creativity parameter so an excited system reflects more loosely
// than a stressed one.
func ReflectFunc(r *Router, sessionID, model string, creativity func() float64) func(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return func(ctx context.Context, prompt string, maxTokens int) (string, error) {
		temp := 0.7
		if creativity != nil {
			temp = 0.7 + (creativity()-0.5)*0.4
		}
		resp, err := r.Route(ctx, sessionID, &ChatRequest{
			Model: model,
			Messages: []Message{
				{Role: "system", Content: reflectionSystem},
				{Role: "user", Content: prompt},
			},
			Temperature: temp,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(resp.Content), nil
	}
}
