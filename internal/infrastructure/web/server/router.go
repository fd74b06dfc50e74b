package server

import (
	"net/http"

	_ "fx-rates-service/internal/docs" // registra la especificación swagger
	"fx-rates-service/internal/infrastructure/metrics"
	"fx-rates-service/internal/infrastructure/web/handlers"
	"fx-rates-service/internal/infrastructure/web/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers agrupa los handlers HTTP del servicio
type Handlers struct {
	Rates   *handlers.RatesHandler
	Cache   *handlers.CacheHandler
	Warming *handlers.WarmingHandler
	Health  *handlers.HealthHandler
}

// NewRouter arma el router con todas las rutas y la cadena de middlewares.
// rateLimit puede ser nil para desactivar el rate limiting.
func NewRouter(h Handlers, rateLimit func(http.Handler) http.Handler) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.RequestTracingMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(metrics.HTTPMetricsMiddleware)
	if rateLimit != nil {
		router.Use(rateLimit)
	}

	router.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.Health.Ready).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	api := router.PathPrefix("/api/v1").Subrouter()

	// Cotizaciones; latest se registra antes que {date}
	api.HandleFunc("/rates/latest", h.Rates.GetLatest).Methods(http.MethodGet)
	api.HandleFunc("/rates/{code}/history", h.Rates.GetHistory).Methods(http.MethodGet)
	api.HandleFunc("/rates/{date}", h.Rates.GetByDate).Methods(http.MethodGet)
	api.HandleFunc("/history", h.Rates.GetBulkHistory).Methods(http.MethodGet)
	api.HandleFunc("/currencies", h.Rates.GetCurrencies).Methods(http.MethodGet)
	api.HandleFunc("/convert", h.Rates.Convert).Methods(http.MethodGet)

	// Administración de caches; clear se registra antes que {name}
	api.HandleFunc("/cache/stats", h.Cache.Stats).Methods(http.MethodGet)
	api.HandleFunc("/cache/clear", h.Cache.ClearAll).Methods(http.MethodDelete)
	api.HandleFunc("/cache/{name}", h.Cache.ClearOne).Methods(http.MethodDelete)

	api.HandleFunc("/cache-warming/status", h.Warming.Status).Methods(http.MethodGet)
	api.HandleFunc("/cache-warming/status/{jobId}", h.Warming.JobStatus).Methods(http.MethodGet)
	api.HandleFunc("/cache-warming/run-all", h.Warming.RunAll).Methods(http.MethodPost)
	api.HandleFunc("/cache-warming/run/{jobId}", h.Warming.RunJob).Methods(http.MethodPost)

	router.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/swagger/", http.StatusMovedPermanently)
	})

	return router
}
