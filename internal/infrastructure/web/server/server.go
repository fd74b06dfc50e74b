package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"fx-rates-service/internal/infrastructure/config"
	"fx-rates-service/internal/infrastructure/logging"
)

// Server encapsula la configuración del servidor HTTP
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer crea una nueva instancia del servidor
func NewServer(handler http.Handler, cfg config.ServerConfig) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  60 * time.Second,
		},
		port: cfg.Port,
	}
}

// Start inicia el servidor HTTP; bloquea hasta que se cierre
func (s *Server) Start() error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
	})

	logging.Info(ctx, "Available endpoints", logging.Fields{
		"endpoints": []string{
			fmt.Sprintf("GET    http://localhost:%d/health", s.port),
			fmt.Sprintf("GET    http://localhost:%d/ready", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/rates/latest", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/rates/{date}", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/rates/{code}/history?start=&end=", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/history?start=&end=", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/convert?from=&to=&amount=", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/cache/stats", s.port),
			fmt.Sprintf("DELETE http://localhost:%d/api/v1/cache/clear", s.port),
			fmt.Sprintf("GET    http://localhost:%d/api/v1/cache-warming/status", s.port),
			fmt.Sprintf("POST   http://localhost:%d/api/v1/cache-warming/run-all", s.port),
		},
	})

	return s.httpServer.ListenAndServe()
}

// Stop detiene el servidor de forma ordenada
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// GetPort retorna el puerto configurado
func (s *Server) GetPort() int {
	return s.port
}
