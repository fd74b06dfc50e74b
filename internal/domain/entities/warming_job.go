package entities

import "time"

// JobKind es el tipo de trabajo de precalentamiento
type JobKind string

const (
	JobCurrencyList    JobKind = "currency-list"
	JobCurrentRates    JobKind = "current-rates"
	JobHistoricalRates JobKind = "historical-rates"
)

// JobKinds en el orden en que se reportan
var JobKinds = []JobKind{JobCurrencyList, JobCurrentRates, JobHistoricalRates}

// JobStatus es el estado de un trabajo.
// pending -> running -> completed|failed, y completed|failed -> running en la siguiente corrida.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// WarmingJob es el estado observable de un trabajo de precalentamiento
type WarmingJob struct {
	ID           string        `json:"id"`
	Kind         JobKind       `json:"kind"`
	Status       JobStatus     `json:"status"`
	LastRunAt    *time.Time    `json:"lastRunAt"`
	NextRunAt    *time.Time    `json:"nextRunAt"`
	LastError    *string       `json:"lastError"`
	LastDuration time.Duration `json:"-"`
	RunCount     int           `json:"runCount"`
}

// NewWarmingJob crea un trabajo pendiente programado para now
func NewWarmingJob(kind JobKind, now time.Time) *WarmingJob {
	next := now
	return &WarmingJob{
		ID:        string(kind),
		Kind:      kind,
		Status:    JobPending,
		NextRunAt: &next,
	}
}

// MarkRunning transiciona a running
func (j *WarmingJob) MarkRunning(now time.Time) {
	started := now
	j.Status = JobRunning
	j.LastRunAt = &started
	j.RunCount++
}

// MarkCompleted transiciona a completed y limpia el último error
func (j *WarmingJob) MarkCompleted(now time.Time, next time.Time) {
	j.Status = JobCompleted
	j.LastError = nil
	j.NextRunAt = &next
	if j.LastRunAt != nil {
		j.LastDuration = now.Sub(*j.LastRunAt)
	}
}

// MarkFailed transiciona a failed registrando el error
func (j *WarmingJob) MarkFailed(now time.Time, next time.Time, err error) {
	msg := err.Error()
	j.Status = JobFailed
	j.LastError = &msg
	j.NextRunAt = &next
	if j.LastRunAt != nil {
		j.LastDuration = now.Sub(*j.LastRunAt)
	}
}

// Snapshot retorna una copia independiente del trabajo
func (j *WarmingJob) Snapshot() WarmingJob {
	cp := *j
	if j.LastRunAt != nil {
		t := *j.LastRunAt
		cp.LastRunAt = &t
	}
	if j.NextRunAt != nil {
		t := *j.NextRunAt
		cp.NextRunAt = &t
	}
	if j.LastError != nil {
		e := *j.LastError
		cp.LastError = &e
	}
	return cp
}
