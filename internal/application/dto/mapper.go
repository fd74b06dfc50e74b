package dto

import (
	"sort"
	"time"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/pkg/utils"
)

// Funciones de conversión entre entidades del dominio y DTOs

// ToRatesResponse convierte una tabla resuelta a DTO
func ToRatesResponse(result *entities.RatesResult) *RatesResponse {
	response := &RatesResponse{
		RequestedDate:    formatDate(result.RequestedDate),
		EffectiveDate:    formatDate(result.EffectiveDate),
		FromPreviousDate: result.FromPreviousDate,
		Source:           string(result.Source),
		Rates:            toRateData(result.Rates),
	}
	return response
}

// ToHistoryResponse convierte el histórico de una moneda a DTO
func ToHistoryResponse(result *entities.HistoryResult) *HistoryResponse {
	return &HistoryResponse{
		Currency: result.Currency,
		Range:    toRangeData(result.Range),
		Source:   string(result.Source),
		Rates:    toRateData(result.Rates),
	}
}

// ToBulkHistoryResponse convierte el histórico masivo a DTO
func ToBulkHistoryResponse(result *entities.BulkHistoryResult) *BulkHistoryResponse {
	rates := make(map[string][]RateData, len(result.Rates))
	for code, records := range result.Rates {
		rates[code] = toRateData(records)
	}

	return &BulkHistoryResponse{
		RequestedRange: toRangeData(result.Requested),
		ActualRange:    toRangeData(result.Actual),
		Source:         string(result.Source),
		Currencies:     len(rates),
		Rates:          rates,
	}
}

// ToCurrenciesResponse convierte la lista de monedas a DTO, ordenada por código
func ToCurrenciesResponse(currencies []entities.CurrencyInfo) *CurrenciesResponse {
	data := make([]CurrencyData, len(currencies))
	for i, c := range currencies {
		data[i] = CurrencyData{Code: c.Code, Name: c.Name}
	}

	sort.Slice(data, func(i, j int) bool {
		return data[i].Code < data[j].Code
	})

	return &CurrenciesResponse{Currencies: data, Count: len(data)}
}

// ToConversionResponse convierte el resultado del conversor a DTO
func ToConversionResponse(conv *entities.Conversion) *ConversionResponse {
	return &ConversionResponse{
		From:   conv.From,
		To:     conv.To,
		Amount: conv.Amount,
		Result: conv.Result,
		Rate:   conv.Rate,
		Date:   formatDate(conv.Date),
	}
}

// ToCacheStatsResponse convierte los contadores de las caches a DTO
func ToCacheStatsResponse(stats map[entities.CacheName]entities.CacheStats) CacheStatsResponse {
	response := make(CacheStatsResponse, len(stats))
	for name, s := range stats {
		response[string(name)] = CacheStatsData{
			HitCount:          s.HitCount,
			MissCount:         s.MissCount,
			KeyCount:          s.KeyCount,
			Capacity:          s.Capacity,
			DefaultTTLSeconds: s.DefaultTTLSeconds,
		}
	}
	return response
}

// ToWarmingJobData convierte el estado de un trabajo a DTO
func ToWarmingJobData(job entities.WarmingJob) WarmingJobData {
	return WarmingJobData{
		ID:         job.ID,
		Status:     string(job.Status),
		LastRunAt:  job.LastRunAt,
		NextRunAt:  job.NextRunAt,
		LastError:  job.LastError,
		RunCount:   job.RunCount,
		DurationMs: float64(job.LastDuration.Nanoseconds()) / 1e6,
	}
}

// ToWarmingJobsData convierte una lista de trabajos preservando el orden
func ToWarmingJobsData(jobs []entities.WarmingJob) []WarmingJobData {
	out := make([]WarmingJobData, len(jobs))
	for i, job := range jobs {
		out[i] = ToWarmingJobData(job)
	}
	return out
}

// NewWarmingStatusResponse arma la respuesta de estado del scheduler
func NewWarmingStatusResponse(jobs []entities.WarmingJob, inFlight bool) *WarmingStatusResponse {
	return &WarmingStatusResponse{
		Jobs:      ToWarmingJobsData(jobs),
		InFlight:  inFlight,
		Timestamp: time.Now().UTC(),
	}
}

// NewRunAllResponse arma la respuesta de run-all
func NewRunAllResponse(started bool, jobs []entities.WarmingJob) *RunAllResponse {
	message := "Cache warming completed"
	if !started {
		message = "Cache warming already in progress"
	}

	return &RunAllResponse{
		Started:   started,
		Message:   message,
		Jobs:      ToWarmingJobsData(jobs),
		Timestamp: time.Now().UTC(),
	}
}

// NewErrorResponse crea una respuesta de error estándar
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{Error: code, Message: message}
}

// NewHealthResponse crea una respuesta de health check
func NewHealthResponse(status string, services map[string]string) *HealthResponse {
	return &HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
	}
}

func toRateData(records []entities.RateRecord) []RateData {
	out := make([]RateData, len(records))
	for i, r := range records {
		out[i] = RateData{
			Code:     r.CurrencyCode,
			Currency: r.Currency,
			Date:     formatDate(r.Date),
			Buy:      r.Buy,
			Sell:     r.Sell,
		}
	}
	return out
}

func toRangeData(r entities.DateRange) DateRangeData {
	return DateRangeData{Start: formatDate(r.Start), End: formatDate(r.End)}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return utils.FormatDate(t)
}
