package interfaces

import (
	"context"

	"fx-rates-service/internal/domain/entities"
)

// WarmingService precarga las caches antes de que lleguen los requests.
// Lo usan el timer de fondo y los endpoints de administración.
type WarmingService interface {
	Start(ctx context.Context)
	Stop()

	// RunAll ejecuta todos los trabajos; retorna false si ya había una corrida en curso
	RunAll(ctx context.Context) bool

	RunJob(ctx context.Context, jobID string) (entities.WarmingJob, error)
	Status() []entities.WarmingJob
	JobStatus(jobID string) (entities.WarmingJob, bool)
	InFlight() bool
}
