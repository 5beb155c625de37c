package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// HealthResponse reports server liveness.
type HealthResponse struct {
	Status string `json:"status" doc:"Server status"`
	Name   string `json:"name" doc:"Server name"`
}

// HealthOutput wraps the health response for huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(_ context.Context, _ *struct{}) (*HealthOutput, error) {
	return &HealthOutput{Body: HealthResponse{
		Status: "healthy",
		Name:   s.cfg.Server.Name,
	}}, nil
}
