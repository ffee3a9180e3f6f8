package model

import "context"

// Embedder turns text into a fixed-length normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer runs one chat completion. Callers that need determinism pass
// temperature 0.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float32) (string, error)
}
