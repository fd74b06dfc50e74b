package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/interfaces"

	"github.com/gorilla/mux"
)

// WarmingHandler expone el estado y la ejecución manual del precalentamiento
type WarmingHandler struct {
	warming interfaces.WarmingService
}

// NewWarmingHandler crea una nueva instancia del handler de precalentamiento
func NewWarmingHandler(warming interfaces.WarmingService) *WarmingHandler {
	return &WarmingHandler{warming: warming}
}

// Status godoc
// @Summary Warming jobs status
// @Tags cache-warming
// @Produce json
// @Success 200 {object} dto.WarmingStatusResponse
// @Router /api/v1/cache-warming/status [get]
func (h *WarmingHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(r.Context(), w, http.StatusOK, dto.NewWarmingStatusResponse(h.warming.Status(), h.warming.InFlight()))
}

// JobStatus godoc
// @Summary Warming job status
// @Tags cache-warming
// @Produce json
// @Param jobId path string true "Job id" Enums(currency-list, current-rates, historical-rates)
// @Success 200 {object} dto.WarmingJobData
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/cache-warming/status/{jobId} [get]
func (h *WarmingHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := mux.Vars(r)["jobId"]

	job, ok := h.warming.JobStatus(jobID)
	if !ok {
		writeDomainError(ctx, w, fmt.Errorf("%w: %s", domain.ErrUnknownJob, jobID))
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToWarmingJobData(job))
}

// RunJob godoc
// @Summary Run one warming job
// @Description Runs the job synchronously and returns its final state.
// @Tags cache-warming
// @Produce json
// @Param jobId path string true "Job id" Enums(currency-list, current-rates, historical-rates)
// @Success 200 {object} dto.WarmingJobData
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorWithJobResponse
// @Router /api/v1/cache-warming/run/{jobId} [post]
func (h *WarmingHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobID := mux.Vars(r)["jobId"]

	// El trabajo termina aunque el cliente corte la conexión
	job, err := h.warming.RunJob(context.WithoutCancel(ctx), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrJobFailed) {
			status, code := statusForError(err)
			writeJSONResponse(ctx, w, status, dto.ErrorWithJobResponse{
				ErrorResponse: dto.ErrorResponse{Error: code, Message: err.Error()},
				Job:           dto.ToWarmingJobData(job),
			})
			return
		}
		writeDomainError(ctx, w, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToWarmingJobData(job))
}

// RunAll godoc
// @Summary Run every warming job
// @Description Runs all jobs and waits for them. Returns started=false when a sweep is already in progress.
// @Tags cache-warming
// @Produce json
// @Success 200 {object} dto.RunAllResponse
// @Router /api/v1/cache-warming/run-all [post]
func (h *WarmingHandler) RunAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	started := h.warming.RunAll(context.WithoutCancel(ctx))

	writeJSONResponse(ctx, w, http.StatusOK, dto.NewRunAllResponse(started, h.warming.Status()))
}
