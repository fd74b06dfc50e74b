package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
	"fx-rates-service/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultWarmingInitialDelay = 5 * time.Second
	DefaultWarmingInterval     = 30 * time.Minute
	DefaultHistoricalDays      = 7
	DefaultCurrentRatesTTL     = time.Hour
	DefaultHistoricalTTL       = 7 * 24 * time.Hour
)

// Cadencia con la que se reprograma cada trabajo tras una corrida exitosa
var jobCadence = map[entities.JobKind]time.Duration{
	entities.JobCurrencyList:    24 * time.Hour,
	entities.JobCurrentRates:    time.Hour,
	entities.JobHistoricalRates: 24 * time.Hour,
}

// WarmingConfig parametriza el scheduler
type WarmingConfig struct {
	InitialDelay    time.Duration
	Interval        time.Duration
	HistoricalDays  int
	CurrencyListTTL time.Duration
	CurrentRatesTTL time.Duration
	HistoricalTTL   time.Duration
	MajorCurrencies []string
}

// DefaultWarmingConfig retorna la configuración por defecto del scheduler
func DefaultWarmingConfig() WarmingConfig {
	return WarmingConfig{
		InitialDelay:    DefaultWarmingInitialDelay,
		Interval:        DefaultWarmingInterval,
		HistoricalDays:  DefaultHistoricalDays,
		CurrencyListTTL: DefaultCurrencyListTTL,
		CurrentRatesTTL: DefaultCurrentRatesTTL,
		HistoricalTTL:   DefaultHistoricalTTL,
		MajorCurrencies: DefaultMajorCurrencies,
	}
}

// WarmingService precarga las caches en segundo plano y bajo demanda
type WarmingService struct {
	provider interfaces.RatesProvider
	store    interfaces.CacheStore
	clock    interfaces.TimeSource
	cfg      WarmingConfig
	now      func() time.Time

	mu   sync.Mutex
	jobs map[entities.JobKind]*entities.WarmingJob

	inFlight atomic.Bool

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	done        chan struct{}
}

var _ interfaces.WarmingService = (*WarmingService)(nil)

// NewWarmingService crea el scheduler con un trabajo pendiente por tipo
func NewWarmingService(provider interfaces.RatesProvider, store interfaces.CacheStore, clock interfaces.TimeSource, cfg WarmingConfig) *WarmingService {
	defaults := DefaultWarmingConfig()
	if cfg.InitialDelay < 0 {
		cfg.InitialDelay = defaults.InitialDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.HistoricalDays <= 0 {
		cfg.HistoricalDays = defaults.HistoricalDays
	}
	if cfg.CurrencyListTTL <= 0 {
		cfg.CurrencyListTTL = defaults.CurrencyListTTL
	}
	if cfg.CurrentRatesTTL <= 0 {
		cfg.CurrentRatesTTL = defaults.CurrentRatesTTL
	}
	if cfg.HistoricalTTL <= 0 {
		cfg.HistoricalTTL = defaults.HistoricalTTL
	}
	if len(cfg.MajorCurrencies) == 0 {
		cfg.MajorCurrencies = defaults.MajorCurrencies
	}

	s := &WarmingService{
		provider: provider,
		store:    store,
		clock:    clock,
		cfg:      cfg,
		now:      time.Now,
		jobs:     make(map[entities.JobKind]*entities.WarmingJob, len(entities.JobKinds)),
	}

	now := s.now()
	for _, kind := range entities.JobKinds {
		s.jobs[kind] = entities.NewWarmingJob(kind, now)
	}
	return s
}

// Start lanza el loop de fondo: una corrida tras InitialDelay y luego una cada Interval.
// Llamar Start con el loop ya activo no tiene efecto.
func (s *WarmingService) Start(ctx context.Context) {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	logging.Info(ctx, "Cache warming scheduler started", logging.Fields{
		"initial_delay": s.cfg.InitialDelay.String(),
		"interval":      s.cfg.Interval.String(),
		"jobs":          len(entities.JobKinds),
	})

	go s.loop(runCtx, s.done)
}

func (s *WarmingService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	initial := time.NewTimer(s.cfg.InitialDelay)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		s.RunAll(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunAll(ctx)
		}
	}
}

// Stop cancela el loop de fondo y espera a que termine
func (s *WarmingService) Stop() {
	s.lifecycleMu.Lock()
	defer s.lifecycleMu.Unlock()

	if s.cancel == nil {
		return
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil

	logging.Info(context.Background(), "Cache warming scheduler stopped", nil)
}

// RunAll ejecuta todos los trabajos en paralelo y espera a que terminen.
// Si ya hay una corrida en curso retorna false sin encolar nada.
func (s *WarmingService) RunAll(ctx context.Context) bool {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.RecordWarmingSweep(false)
		logging.Warming().SweepSkipped(ctx, "sweep already in flight")
		return false
	}
	defer s.inFlight.Store(false)

	metrics.RecordWarmingSweep(true)

	sweepID := uuid.NewString()
	start := time.Now()
	logging.Warming().SweepStarted(ctx, sweepID, len(entities.JobKinds))

	var (
		failed int32
		g      errgroup.Group
	)
	for _, kind := range entities.JobKinds {
		g.Go(func() error {
			if _, err := s.execute(ctx, kind); err != nil {
				atomic.AddInt32(&failed, 1)
			}
			return nil
		})
	}
	_ = g.Wait()

	logging.Warming().SweepCompleted(ctx, sweepID, int(atomic.LoadInt32(&failed)), float64(time.Since(start).Nanoseconds())/1e6)
	return true
}

// RunJob ejecuta un solo trabajo de forma sincrónica
func (s *WarmingService) RunJob(ctx context.Context, jobID string) (entities.WarmingJob, error) {
	kind := entities.JobKind(jobID)
	if _, ok := jobCadence[kind]; !ok {
		return entities.WarmingJob{}, fmt.Errorf("%w: %s", domain.ErrUnknownJob, jobID)
	}

	snapshot, err := s.execute(ctx, kind)
	if err != nil {
		return snapshot, fmt.Errorf("%w: %s: %w", domain.ErrJobFailed, jobID, err)
	}
	return snapshot, nil
}

// Status retorna una copia del estado de todos los trabajos en orden fijo
func (s *WarmingService) Status() []entities.WarmingJob {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.WarmingJob, 0, len(entities.JobKinds))
	for _, kind := range entities.JobKinds {
		out = append(out, s.jobs[kind].Snapshot())
	}
	return out
}

// JobStatus retorna una copia del estado de un trabajo
func (s *WarmingService) JobStatus(jobID string) (entities.WarmingJob, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[entities.JobKind(jobID)]
	if !ok {
		return entities.WarmingJob{}, false
	}
	return job.Snapshot(), true
}

// InFlight indica si hay una corrida completa en curso
func (s *WarmingService) InFlight() bool {
	return s.inFlight.Load()
}

// execute corre un trabajo registrando las transiciones de estado
func (s *WarmingService) execute(ctx context.Context, kind entities.JobKind) (entities.WarmingJob, error) {
	s.mu.Lock()
	job := s.jobs[kind]
	job.MarkRunning(s.now())
	s.mu.Unlock()

	logging.Warming().JobStarted(ctx, job.ID)
	start := time.Now()

	fields, err := s.safeRun(ctx, kind)
	duration := time.Since(start)

	s.mu.Lock()
	now := s.now()
	if err != nil {
		job.MarkFailed(now, now.Add(s.cfg.Interval), err)
	} else {
		job.MarkCompleted(now, now.Add(jobCadence[kind]))
	}
	snapshot := job.Snapshot()
	s.mu.Unlock()

	metrics.RecordWarmingJob(snapshot.ID, err != nil, duration.Seconds())
	durationMs := float64(duration.Nanoseconds()) / 1e6
	if err != nil {
		logging.Warming().JobFailed(ctx, snapshot.ID, err, durationMs)
	} else {
		logging.Warming().JobCompleted(ctx, snapshot.ID, durationMs, fields)
	}

	return snapshot, err
}

// safeRun convierte un panic del trabajo en un error
func (s *WarmingService) safeRun(ctx context.Context, kind entities.JobKind) (fields logging.Fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("warming job %s panicked: %v", kind, r)
		}
	}()

	switch kind {
	case entities.JobCurrencyList:
		return s.warmCurrencyList(ctx)
	case entities.JobCurrentRates:
		return s.warmCurrentRates(ctx)
	case entities.JobHistoricalRates:
		return s.warmHistoricalRates(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownJob, kind)
	}
}

func (s *WarmingService) warmCurrencyList(ctx context.Context) (logging.Fields, error) {
	currencies, err := s.provider.CurrencyList(ctx)
	if err != nil {
		return nil, err
	}

	if len(currencies) > 0 {
		meta := entities.EntryMeta{Dataset: entities.DatasetCurrencies, Date: s.clock.Today(ctx)}
		if err := s.store.Set(ctx, entities.MetadataCache, currenciesKey(s.store), entities.NewCurrenciesValue(currencies), meta, s.cfg.CurrencyListTTL); err != nil {
			return nil, err
		}
	}

	return logging.Fields{logging.FieldRecords: len(currencies)}, nil
}

func (s *WarmingService) warmCurrentRates(ctx context.Context) (logging.Fields, error) {
	today := s.clock.Today(ctx)

	records, err := s.provider.RatesForDate(ctx, today)
	if err != nil {
		return nil, err
	}

	fields := logging.Fields{
		logging.FieldDate:    utils.FormatDate(today),
		logging.FieldRecords: len(records),
	}

	if len(records) == 0 {
		logging.Info(ctx, "No rates table published today, nothing to warm", fields)
		return fields, nil
	}

	if err := s.store.Set(ctx, entities.RatesCache, ratesKey(s.store, today), entities.NewRatesValue(records), ratesMeta(today), s.cfg.CurrentRatesTTL); err != nil {
		return nil, err
	}
	return fields, nil
}

// warmHistoricalRates carga [hoy-N, hoy] de las monedas principales en paralelo.
// Las fallas por moneda solo se registran.
func (s *WarmingService) warmHistoricalRates(ctx context.Context) (logging.Fields, error) {
	end := s.clock.Today(ctx)
	start := utils.AddDays(end, -s.cfg.HistoricalDays)

	var (
		warmed int32
		failed int32
		g      errgroup.Group
	)

	for _, code := range s.cfg.MajorCurrencies {
		g.Go(func() error {
			records, err := s.provider.HistoryForCurrency(ctx, code, start, end)
			if err != nil {
				atomic.AddInt32(&failed, 1)
				logging.WarnWithError(ctx, "Historical warm-up failed for currency", err, logging.Fields{
					logging.FieldCurrency: code,
					logging.FieldJobID:    string(entities.JobHistoricalRates),
				})
				return nil
			}
			if len(records) == 0 {
				return nil
			}

			if err := s.store.Set(ctx, entities.HistoricalCache, historyKey(s.store, code, start, end), entities.NewRatesValue(records), historyMeta(code, start, end), s.cfg.HistoricalTTL); err != nil {
				atomic.AddInt32(&failed, 1)
				logging.Cache().CacheError(ctx, logging.CacheOpSet, string(entities.HistoricalCache), err)
				return nil
			}
			atomic.AddInt32(&warmed, 1)
			return nil
		})
	}
	_ = g.Wait()

	return logging.Fields{
		logging.FieldStartDate: utils.FormatDate(start),
		logging.FieldEndDate:   utils.FormatDate(end),
		"warmed":               atomic.LoadInt32(&warmed),
		"failed":               atomic.LoadInt32(&failed),
	}, nil
}
