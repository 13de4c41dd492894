package ai

import (
	"context"
	"errors"
)

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

type Client interface {
	// Explain rangkum satu report artifact forensik jadi penjelasan
	// yang bisa dibaca manusia
	Explain(ctx context.Context, reportURL string) (string, error)
}
