package handlers

import (
	"fmt"
	"net/http"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/logging"

	"github.com/gorilla/mux"
)

// CacheHandler expone la administración de las caches nombradas
type CacheHandler struct {
	store interfaces.CacheStore
}

// NewCacheHandler crea una nueva instancia del handler de caches
func NewCacheHandler(store interfaces.CacheStore) *CacheHandler {
	return &CacheHandler{store: store}
}

// Stats godoc
// @Summary Cache statistics
// @Description Hit, miss and key counters for every named cache.
// @Tags cache
// @Produce json
// @Success 200 {object} dto.CacheStatsResponse
// @Router /api/v1/cache/stats [get]
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(r.Context(), w, http.StatusOK, dto.ToCacheStatsResponse(h.store.AllStats()))
}

// ClearAll godoc
// @Summary Clear every cache
// @Tags cache
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /api/v1/cache/clear [delete]
func (h *CacheHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.store.FlushAll(ctx)
	logging.Info(ctx, "All caches cleared via API", nil)

	writeJSONResponse(ctx, w, http.StatusOK, dto.MessageResponse{Message: "All caches cleared"})
}

// ClearOne godoc
// @Summary Clear one cache
// @Tags cache
// @Produce json
// @Param name path string true "Cache name" Enums(rates, historical, metadata)
// @Success 200 {object} dto.MessageResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/cache/{name} [delete]
func (h *CacheHandler) ClearOne(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := mux.Vars(r)["name"]

	name, ok := entities.ParseCacheName(raw)
	if !ok {
		writeDomainError(ctx, w, fmt.Errorf("%w: %s", domain.ErrUnknownCache, raw))
		return
	}

	if err := h.store.Flush(ctx, name); err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	logging.Info(ctx, "Cache cleared via API", logging.Fields{
		logging.FieldCacheName: string(name),
	})

	writeJSONResponse(ctx, w, http.StatusOK, dto.MessageResponse{Message: fmt.Sprintf("Cache %s cleared", name)})
}
