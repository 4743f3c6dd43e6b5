package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHealthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, s.handleHealthCheck)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status            string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	ContentCheckpoint *time.Time                 `json:"content_checkpoint,omitempty" doc:"Latest content update; changes whenever cached pages should be refreshed"`
	Components        map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
	resp := HealthResponse{Status: "healthy", Components: make(map[string]ComponentHealth)}

	db, checkpoint := s.checkDatabase(ctx)
	resp.Components["database"] = db
	if db.Status != "healthy" {
		resp.Status = "unhealthy"
	}
	if !checkpoint.IsZero() {
		resp.ContentCheckpoint = &checkpoint
	}

	search := s.checkSearchIndex()
	resp.Components["search"] = search
	if search.Status == "unhealthy" {
		resp.Status = "unhealthy"
	} else if search.Status == "degraded" && resp.Status == "healthy" {
		resp.Status = "degraded"
	}

	return &HealthOutput{Body: resp}, nil
}

// checkDatabase reads the content checkpoint, which touches every
// content table.
func (s *Server) checkDatabase(ctx context.Context) (ComponentHealth, time.Time) {
	if s.store == nil {
		return ComponentHealth{Status: "degraded", Message: "database not configured"}, time.Time{}
	}

	start := time.Now()
	checkpoint, err := s.store.ContentCheckpoint(ctx)
	latency := time.Since(start)
	if err != nil {
		s.logger.Error("health check: database read failed", "error", err)
		return ComponentHealth{Status: "unhealthy", Latency: latency.String(), Message: "database read failed"}, time.Time{}
	}
	return ComponentHealth{Status: "healthy", Latency: latency.String()}, checkpoint
}

// checkSearchIndex verifies the bleve index answers.
func (s *Server) checkSearchIndex() ComponentHealth {
	if s.index == nil {
		return ComponentHealth{Status: "degraded", Message: "search index not configured"}
	}

	start := time.Now()
	count, err := s.index.DocumentCount()
	latency := time.Since(start)
	if err != nil {
		return ComponentHealth{Status: "unhealthy", Latency: latency.String(), Message: "search index unreachable"}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
		Message: formatDocCount(count),
	}
}

func formatDocCount(n uint64) string {
	if n == 1 {
		return "1 document"
	}
	return strconv.FormatUint(n, 10) + " documents"
}
