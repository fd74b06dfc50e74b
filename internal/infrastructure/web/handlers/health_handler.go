package handlers

import (
	"net/http"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
)

// HealthHandler maneja los endpoints de health check
type HealthHandler struct {
	store   interfaces.CacheStore
	warming interfaces.WarmingService
}

// NewHealthHandler crea una nueva instancia del health handler
func NewHealthHandler(store interfaces.CacheStore, warming interfaces.WarmingService) *HealthHandler {
	return &HealthHandler{
		store:   store,
		warming: warming,
	}
}

// Health godoc
// @Summary Basic health check
// @Description Verifies that the service is running. Responds quickly without checking dependencies.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse "Service is running correctly"
// @Router /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"service": "running",
	}

	writeJSONResponse(r.Context(), w, http.StatusOK, dto.NewHealthResponse("healthy", services))
}

// Ready godoc
// @Summary Readiness check
// @Description Reports cache statistics and the state of the warming jobs. The service is degraded while no job has completed yet.
// @Tags health
// @Produce json
// @Success 200 {object} dto.ReadyResponse "Service is ready to receive traffic"
// @Router /ready [get]
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"cache":   "ready",
		"service": "ready",
	}

	jobs := h.warming.Status()
	status := "ready"
	services["warming"] = "ready"

	completed := 0
	for _, job := range jobs {
		if job.Status == entities.JobCompleted {
			completed++
		}
	}
	if completed == 0 {
		status = "degraded"
		services["warming"] = "not warmed yet"
	}
	if h.warming.InFlight() {
		services["warming"] = "in progress"
	}

	response := dto.ReadyResponse{
		HealthResponse: *dto.NewHealthResponse(status, services),
		Caches:         dto.ToCacheStatsResponse(h.store.AllStats()),
		Warming:        dto.ToWarmingJobsData(jobs),
	}

	writeJSONResponse(r.Context(), w, http.StatusOK, response)
}
