package ai

import (
	"context"

	"github.com/bryanwahyu/fileprobe-sec/internal/domain/ai"
)

type Service struct {
	client ai.Client
}

func NewService(client ai.Client) *Service {
	return &Service{client: client}
}

func (s *Service) Explain(ctx context.Context, reportURL string) (string, error) {
	return s.client.Explain(ctx, reportURL)
}
