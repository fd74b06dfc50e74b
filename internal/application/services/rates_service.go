package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
	"fx-rates-service/pkg/utils"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxLookbackDays = 7
	DefaultMaxRangeDays    = 93 // Límite de NBP por consulta
	DefaultCurrencyListTTL = 24 * time.Hour
)

// Operaciones reportadas en logs y métricas
const (
	opLatest   = "latest"
	opDate     = "date"
	opHistory  = "history"
	opBulk     = "bulk_history"
	opConvert  = "convert"
	opCurrency = "currencies"
)

// DefaultMajorCurrencies se usan cuando no hay lista de monedas disponible
var DefaultMajorCurrencies = []string{"USD", "EUR", "CHF", "GBP", "JPY"}

// RatesConfig parametriza el resolver
type RatesConfig struct {
	MaxLookbackDays int
	MaxRangeDays    int
	MajorCurrencies []string
	CurrencyListTTL time.Duration
}

// DefaultRatesConfig retorna la configuración por defecto del resolver
func DefaultRatesConfig() RatesConfig {
	return RatesConfig{
		MaxLookbackDays: DefaultMaxLookbackDays,
		MaxRangeDays:    DefaultMaxRangeDays,
		MajorCurrencies: DefaultMajorCurrencies,
		CurrencyListTTL: DefaultCurrencyListTTL,
	}
}

// RatesService resuelve cotizaciones con cache primero y retroceso de fechas
type RatesService struct {
	provider interfaces.RatesProvider
	store    interfaces.CacheStore
	clock    interfaces.TimeSource
	cfg      RatesConfig
	group    singleflight.Group
}

var _ interfaces.RatesService = (*RatesService)(nil)

// NewRatesService crea el resolver; los valores no positivos de cfg usan los defaults
func NewRatesService(provider interfaces.RatesProvider, store interfaces.CacheStore, clock interfaces.TimeSource, cfg RatesConfig) *RatesService {
	defaults := DefaultRatesConfig()
	if cfg.MaxLookbackDays <= 0 {
		cfg.MaxLookbackDays = defaults.MaxLookbackDays
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = defaults.MaxRangeDays
	}
	if len(cfg.MajorCurrencies) == 0 {
		cfg.MajorCurrencies = defaults.MajorCurrencies
	}
	if cfg.CurrencyListTTL <= 0 {
		cfg.CurrencyListTTL = defaults.CurrencyListTTL
	}

	return &RatesService{
		provider: provider,
		store:    store,
		clock:    clock,
		cfg:      cfg,
	}
}

// GetLatestRates retorna la tabla más reciente a partir de hoy
func (s *RatesService) GetLatestRates(ctx context.Context) (*entities.RatesResult, error) {
	today := s.clock.Today(ctx)
	logging.Business().RatesRequested(ctx, opLatest, utils.FormatDate(today))

	result, err := s.resolveBackward(ctx, today)
	if err != nil {
		return nil, err
	}

	s.recordServed(ctx, opLatest, result)
	return result, nil
}

// GetRatesForDate retorna la tabla de una fecha. Hoy o futuro intenta primero
// sustituir por el snapshot cacheado más reciente.
func (s *RatesService) GetRatesForDate(ctx context.Context, date time.Time) (*entities.RatesResult, error) {
	day := utils.TruncateToDay(date)
	today := s.clock.Today(ctx)
	logging.Business().RatesRequested(ctx, opDate, utils.FormatDate(day))

	if !day.Before(today) {
		if result, ok := s.substitute(ctx, day, today); ok {
			s.recordServed(ctx, opDate, result)
			return result, nil
		}

		if day.After(today) {
			logging.Business().ValidationFailed(ctx, utils.FormatDate(day), "future date")
			return nil, fmt.Errorf("%w: %s", domain.ErrFutureDate, utils.FormatDate(day))
		}
	}

	result, err := s.resolveBackward(ctx, day)
	if err != nil {
		return nil, err
	}

	s.recordServed(ctx, opDate, result)
	return result, nil
}

// substitute busca entre las tablas cacheadas vigentes la de fecha más reciente <= today.
// Ante empate gana la primera en orden de inserción.
func (s *RatesService) substitute(ctx context.Context, requested, today time.Time) (*entities.RatesResult, bool) {
	entries := s.store.Entries(entities.RatesCache, func(meta entities.EntryMeta) bool {
		return meta.Dataset == entities.DatasetRates && !meta.Date.After(today)
	})

	var best *entities.CacheEntry
	for i := range entries {
		if best == nil || entries[i].Meta.Date.After(best.Meta.Date) {
			best = &entries[i]
		}
	}
	if best == nil {
		return nil, false
	}

	rates, ok := best.Value.Rates()
	if !ok || len(rates) == 0 {
		return nil, false
	}

	logging.Debug(ctx, "Serving most recent cached table for today or future date", logging.Fields{
		logging.FieldDate:          utils.FormatDate(requested),
		logging.FieldEffectiveDate: utils.FormatDate(best.Meta.Date),
		logging.FieldCacheKey:      best.Key,
	})

	return &entities.RatesResult{
		RequestedDate:    requested,
		EffectiveDate:    best.Meta.Date,
		Rates:            rates,
		Source:           entities.SourceSubstituted,
		FromPreviousDate: best.Meta.Date.Before(requested),
	}, true
}

// shared ejecuta fn una sola vez por key entre llamadores concurrentes.
// La carga compartida corre desacoplada de la cancelación del llamador que la inicia;
// cada llamador deja de esperar cuando se cancela su propio contexto.
func (s *RatesService) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		return fn(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// resolveBackward colapsa las resoluciones concurrentes de una misma fecha raíz
func (s *RatesService) resolveBackward(ctx context.Context, root time.Time) (*entities.RatesResult, error) {
	v, err := s.shared(ctx, "rates:"+utils.FormatDate(root), func(ctx context.Context) (interface{}, error) {
		return s.walkBack(ctx, root)
	})
	if err != nil {
		return nil, err
	}

	// Copia para que los llamadores compartidos no compartan el puntero
	result := *v.(*entities.RatesResult)
	return &result, nil
}

// walkBack busca primero en cache (root y los días previos) y luego en el proveedor,
// con un máximo de MaxLookbackDays intentos upstream.
func (s *RatesService) walkBack(ctx context.Context, root time.Time) (*entities.RatesResult, error) {
	if rates, ok := s.cachedTable(ctx, root); ok {
		return &entities.RatesResult{
			RequestedDate: root,
			EffectiveDate: root,
			Rates:         rates,
			Source:        entities.SourceCache,
		}, nil
	}

	for step := 1; step <= s.cfg.MaxLookbackDays; step++ {
		day := utils.AddDays(root, -step)
		if rates, ok := s.cachedTable(ctx, day); ok {
			metrics.RecordDateFallbackSteps(step)
			return &entities.RatesResult{
				RequestedDate:    root,
				EffectiveDate:    day,
				Rates:            rates,
				Source:           entities.SourceCache,
				FromPreviousDate: true,
			}, nil
		}
	}

	for attempt := 0; attempt < s.cfg.MaxLookbackDays; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		day := utils.AddDays(root, -attempt)
		records, err := s.provider.RatesForDate(ctx, day)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.Business().UpstreamFetchFailed(ctx, opDate, utils.FormatDate(day), err)
			logging.Business().FallbackStep(ctx, utils.FormatDate(day), attempt+1, "upstream error")
			continue
		}
		if len(records) == 0 {
			logging.Business().FallbackStep(ctx, utils.FormatDate(day), attempt+1, "no table published")
			continue
		}

		if err := s.store.Set(ctx, entities.RatesCache, ratesKey(s.store, day), entities.NewRatesValue(records), ratesMeta(day), 0); err != nil {
			logging.Cache().CacheError(ctx, logging.CacheOpSet, string(entities.RatesCache), err)
		}
		metrics.RecordDateFallbackSteps(attempt)

		return &entities.RatesResult{
			RequestedDate:    root,
			EffectiveDate:    day,
			Rates:            records,
			Source:           entities.SourceUpstream,
			FromPreviousDate: attempt > 0,
		}, nil
	}

	logging.Warn(ctx, "No rates table found within lookback window", logging.Fields{
		logging.FieldDate:    utils.FormatDate(root),
		logging.FieldAttempt: s.cfg.MaxLookbackDays,
	})

	return &entities.RatesResult{
		RequestedDate: root,
		Rates:         []entities.RateRecord{},
		Source:        entities.SourceNone,
	}, nil
}

func (s *RatesService) cachedTable(ctx context.Context, day time.Time) ([]entities.RateRecord, bool) {
	value, ok := s.store.Get(ctx, entities.RatesCache, ratesKey(s.store, day))
	if !ok {
		return nil, false
	}
	rates, ok := value.Rates()
	if !ok || len(rates) == 0 {
		return nil, false
	}
	return rates, true
}

// validateRange normaliza y valida un rango cerrado [start, end]
func (s *RatesService) validateRange(ctx context.Context, start, end time.Time) (entities.DateRange, error) {
	r := entities.DateRange{Start: utils.TruncateToDay(start), End: utils.TruncateToDay(end)}
	label := utils.FormatDate(r.Start) + ".." + utils.FormatDate(r.End)

	if r.Start.After(r.End) {
		logging.Business().ValidationFailed(ctx, label, "start after end")
		return r, fmt.Errorf("%w: start %s is after end %s", domain.ErrInvalidRange, utils.FormatDate(r.Start), utils.FormatDate(r.End))
	}

	today := s.clock.Today(ctx)
	if r.End.After(today) {
		logging.Business().ValidationFailed(ctx, label, "end in the future")
		return r, fmt.Errorf("%w: end %s is after %s", domain.ErrFutureDate, utils.FormatDate(r.End), utils.FormatDate(today))
	}

	if days := utils.DaysBetween(r.Start, r.End) + 1; days > s.cfg.MaxRangeDays {
		logging.Business().ValidationFailed(ctx, label, "range too long")
		return r, fmt.Errorf("%w: %d days, maximum is %d", domain.ErrRangeTooLong, days, s.cfg.MaxRangeDays)
	}

	return r, nil
}

// GetCurrencyHistory retorna el histórico de una moneda en [start, end]
func (s *RatesService) GetCurrencyHistory(ctx context.Context, code string, start, end time.Time) (*entities.HistoryResult, error) {
	normalized, ok := entities.NormalizeCurrencyCode(code)
	if !ok {
		logging.Business().ValidationFailed(ctx, code, "invalid currency code")
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, code)
	}

	r, err := s.validateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	key := historyKey(s.store, normalized, r.Start, r.End)
	if value, ok := s.store.Get(ctx, entities.HistoricalCache, key); ok {
		if rates, ok := value.Rates(); ok {
			metrics.RecordRateRequest(opHistory, string(entities.SourceCache))
			return &entities.HistoryResult{Currency: normalized, Range: r, Rates: rates, Source: entities.SourceCache}, nil
		}
	}

	v, err := s.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		records, err := s.provider.HistoryForCurrency(ctx, normalized, r.Start, r.End)
		if err != nil {
			logging.Business().UpstreamFetchFailed(ctx, opHistory, normalized, err)
			return nil, upstreamError(err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: %s %s..%s", domain.ErrNoDataForRange, normalized, utils.FormatDate(r.Start), utils.FormatDate(r.End))
		}

		if err := s.store.Set(ctx, entities.HistoricalCache, key, entities.NewRatesValue(records), historyMeta(normalized, r.Start, r.End), 0); err != nil {
			logging.Cache().CacheError(ctx, logging.CacheOpSet, string(entities.HistoricalCache), err)
		}
		return records, nil
	})
	if err != nil {
		metrics.RecordRateRequest(opHistory, string(entities.SourceNone))
		return nil, err
	}

	metrics.RecordRateRequest(opHistory, string(entities.SourceUpstream))
	return &entities.HistoryResult{
		Currency: normalized,
		Range:    r,
		Rates:    v.([]entities.RateRecord),
		Source:   entities.SourceUpstream,
	}, nil
}

// GetBulkHistory retorna el histórico de todas las monedas conocidas.
// Si no está el rango exacto se sirve el rango bulk cacheado más reciente.
func (s *RatesService) GetBulkHistory(ctx context.Context, start, end time.Time) (*entities.BulkHistoryResult, error) {
	r, err := s.validateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	key := bulkKey(s.store, r.Start, r.End)
	if value, ok := s.store.Get(ctx, entities.HistoricalCache, key); ok {
		if bulk, ok := value.Bulk(); ok {
			metrics.RecordRateRequest(opBulk, string(entities.SourceCache))
			return &entities.BulkHistoryResult{Requested: r, Actual: r, Rates: bulk, Source: entities.SourceCache}, nil
		}
	}

	if result, ok := s.latestCachedBulk(ctx, r); ok {
		metrics.RecordRateRequest(opBulk, string(entities.SourceCache))
		return result, nil
	}

	v, err := s.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		return s.fanOutHistory(ctx, key, r)
	})
	if err != nil {
		metrics.RecordRateRequest(opBulk, string(entities.SourceNone))
		return nil, err
	}

	metrics.RecordRateRequest(opBulk, string(entities.SourceUpstream))
	return &entities.BulkHistoryResult{
		Requested: r,
		Actual:    r,
		Rates:     v.(map[string][]entities.RateRecord),
		Source:    entities.SourceUpstream,
	}, nil
}

func (s *RatesService) latestCachedBulk(ctx context.Context, requested entities.DateRange) (*entities.BulkHistoryResult, bool) {
	today := s.clock.Today(ctx)
	entries := s.store.Entries(entities.HistoricalCache, func(meta entities.EntryMeta) bool {
		return meta.Dataset == entities.DatasetBulkHistory && !meta.Date.After(today)
	})

	var best *entities.CacheEntry
	for i := range entries {
		if best == nil || entries[i].Meta.Date.After(best.Meta.Date) {
			best = &entries[i]
		}
	}
	if best == nil {
		return nil, false
	}

	bulk, ok := best.Value.Bulk()
	if !ok || len(bulk) == 0 {
		return nil, false
	}

	actual := entities.DateRange{Start: best.Meta.Start, End: best.Meta.Date}
	logging.Debug(ctx, "Serving most recent cached bulk history", logging.Fields{
		logging.FieldStartDate: utils.FormatDate(requested.Start),
		logging.FieldEndDate:   utils.FormatDate(requested.End),
		logging.FieldCacheKey:  best.Key,
		"actual_range":         utils.FormatDate(actual.Start) + ".." + utils.FormatDate(actual.End),
	})

	return &entities.BulkHistoryResult{Requested: requested, Actual: actual, Rates: bulk, Source: entities.SourceCache}, true
}

// fanOutHistory consulta el histórico de cada moneda en paralelo.
// Una falla individual cuenta como lista vacía y no cancela al resto.
func (s *RatesService) fanOutHistory(ctx context.Context, key string, r entities.DateRange) (map[string][]entities.RateRecord, error) {
	codes := s.knownCodes(ctx)

	var (
		mu      sync.Mutex
		results = make(map[string][]entities.RateRecord, len(codes))
		g       errgroup.Group
	)

	for _, code := range codes {
		g.Go(func() error {
			records, err := s.provider.HistoryForCurrency(ctx, code, r.Start, r.End)
			if err != nil {
				logging.Business().UpstreamFetchFailed(ctx, opBulk, code, err)
				return nil
			}
			if len(records) == 0 {
				return nil
			}

			mu.Lock()
			results[code] = records
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.RecordBulkFanout(len(results), len(codes)-len(results))

	if len(results) == 0 {
		return nil, fmt.Errorf("%w: no currency has data for %s..%s", domain.ErrNoDataForRange, utils.FormatDate(r.Start), utils.FormatDate(r.End))
	}

	if err := s.store.Set(ctx, entities.HistoricalCache, key, entities.NewBulkValue(results), bulkMeta(r.Start, r.End), 0); err != nil {
		logging.Cache().CacheError(ctx, logging.CacheOpSet, string(entities.HistoricalCache), err)
	}

	logging.Info(ctx, "Bulk history assembled", logging.Fields{
		logging.FieldStartDate: utils.FormatDate(r.Start),
		logging.FieldEndDate:   utils.FormatDate(r.End),
		logging.FieldRecords:   len(results),
		"requested_currencies": len(codes),
	})

	return results, nil
}

// knownCodes usa la lista de monedas (cache o upstream) y cae a las principales configuradas
func (s *RatesService) knownCodes(ctx context.Context) []string {
	currencies, err := s.GetCurrencies(ctx)
	if err != nil || len(currencies) == 0 {
		logging.Warn(ctx, "Currency list unavailable, using major currencies", logging.Fields{
			"currencies": s.cfg.MajorCurrencies,
		})
		return append([]string(nil), s.cfg.MajorCurrencies...)
	}

	codes := make([]string, 0, len(currencies))
	for _, c := range currencies {
		codes = append(codes, c.Code)
	}
	sort.Strings(codes)
	return codes
}

// GetCurrencies retorna la lista de monedas: cache metadata primero, luego el proveedor
func (s *RatesService) GetCurrencies(ctx context.Context) ([]entities.CurrencyInfo, error) {
	key := currenciesKey(s.store)
	if value, ok := s.store.Get(ctx, entities.MetadataCache, key); ok {
		if currencies, ok := value.Currencies(); ok && len(currencies) > 0 {
			metrics.RecordRateRequest(opCurrency, string(entities.SourceCache))
			return currencies, nil
		}
	}

	v, err := s.shared(ctx, key, func(ctx context.Context) (interface{}, error) {
		currencies, err := s.provider.CurrencyList(ctx)
		if err != nil {
			logging.Business().UpstreamFetchFailed(ctx, opCurrency, "currency list", err)
			return nil, upstreamError(err)
		}
		if len(currencies) > 0 {
			meta := entities.EntryMeta{Dataset: entities.DatasetCurrencies, Date: s.clock.Today(ctx)}
			if err := s.store.Set(ctx, entities.MetadataCache, key, entities.NewCurrenciesValue(currencies), meta, s.cfg.CurrencyListTTL); err != nil {
				logging.Cache().CacheError(ctx, logging.CacheOpSet, string(entities.MetadataCache), err)
			}
		}
		return currencies, nil
	})
	if err != nil {
		metrics.RecordRateRequest(opCurrency, string(entities.SourceNone))
		return nil, err
	}

	metrics.RecordRateRequest(opCurrency, string(entities.SourceUpstream))
	return v.([]entities.CurrencyInfo), nil
}

// Convert convierte amount de from a to usando el promedio de cada moneda contra PLN
func (s *RatesService) Convert(ctx context.Context, from, to string, amount decimal.Decimal, date *time.Time) (*entities.Conversion, error) {
	fromCode, ok := entities.NormalizeCurrencyCode(from)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, from)
	}
	toCode, ok := entities.NormalizeCurrencyCode(to)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, to)
	}

	var (
		table *entities.RatesResult
		err   error
	)
	if date == nil {
		table, err = s.GetLatestRates(ctx)
	} else {
		table, err = s.GetRatesForDate(ctx, *date)
	}
	if err != nil {
		return nil, err
	}
	if table.IsEmpty() {
		return nil, fmt.Errorf("%w: no rates table available for conversion", domain.ErrNoDataForRange)
	}

	fromMid, err := midAgainstBase(table.Rates, fromCode)
	if err != nil {
		return nil, err
	}
	toMid, err := midAgainstBase(table.Rates, toCode)
	if err != nil {
		return nil, err
	}

	metrics.RecordRateRequest(opConvert, string(table.Source))

	return &entities.Conversion{
		From:   fromCode,
		To:     toCode,
		Amount: amount,
		Result: amount.Mul(fromMid).Div(toMid).Round(4),
		Rate:   fromMid.Div(toMid).Round(6),
		Date:   table.EffectiveDate,
	}, nil
}

func midAgainstBase(rates []entities.RateRecord, code string) (decimal.Decimal, error) {
	if code == entities.BaseCurrency {
		return decimal.NewFromInt(1), nil
	}

	rec, ok := entities.FindRate(rates, code)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrUnknownCurrency, code)
	}

	mid := rec.Mid()
	if !mid.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s has no usable rate", domain.ErrUnknownCurrency, code)
	}
	return mid, nil
}

func (s *RatesService) recordServed(ctx context.Context, op string, result *entities.RatesResult) {
	metrics.RecordRateRequest(op, string(result.Source))

	effective := ""
	if !result.EffectiveDate.IsZero() {
		effective = utils.FormatDate(result.EffectiveDate)
	}
	logging.Business().RatesServed(ctx, op, effective, len(result.Rates), string(result.Source), result.FromPreviousDate)
}

func upstreamError(err error) error {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}
