package core

import (
	"context"

	"github.com/archnets/learn-miniapp/internal/api"
)

type HealthService struct {
	api *api.Client
}

func NewHealthService(client *api.Client) *HealthService {
	return &HealthService{api: client}
}

// Check pings the backend without credentials and with at most one retry.
func (s *HealthService) Check(ctx context.Context) (Health, error) {
	return api.Into[Health](s.api.Get(ctx, api.EndpointHealth, api.WithSkipAuth(), api.WithMaxRetries(1)))
}
