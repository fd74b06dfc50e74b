package handlers

import (
	"net/http"

	"fx-rates-service/internal/application/dto"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/pkg/utils"

	"github.com/gorilla/mux"
)

// RatesHandler expone las consultas de cotizaciones, histórico y conversión
type RatesHandler struct {
	rates interfaces.RatesService
}

// NewRatesHandler crea una nueva instancia del handler de cotizaciones
func NewRatesHandler(rates interfaces.RatesService) *RatesHandler {
	return &RatesHandler{rates: rates}
}

// GetLatest godoc
// @Summary Latest rates table
// @Description Returns the most recent table C, stepping back up to 7 days when today has no publication.
// @Tags rates
// @Produce json
// @Success 200 {object} dto.RatesResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/rates/latest [get]
func (h *RatesHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.rates.GetLatestRates(ctx)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToRatesResponse(result))
}

// GetByDate godoc
// @Summary Rates table for a date
// @Description Returns the table for the given date or the closest previous publication. Today or future dates are served from the most recent cached table.
// @Tags rates
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.RatesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/rates/{date} [get]
func (h *RatesHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := utils.ParseDate(mux.Vars(r)["date"])
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
		return
	}

	result, err := h.rates.GetRatesForDate(ctx, date)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToRatesResponse(result))
}

// GetHistory godoc
// @Summary Currency history
// @Description Returns buy/sell quotes of one currency between start and end (inclusive, at most 93 days).
// @Tags rates
// @Produce json
// @Param code path string true "ISO 4217 currency code"
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/rates/{code}/history [get]
func (h *RatesHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewDateRangeRequest(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
		return
	}

	code := mux.Vars(r)["code"]
	result, err := h.rates.GetCurrencyHistory(ctx, code, request.Start, request.End)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToHistoryResponse(result))
}

// GetBulkHistory godoc
// @Summary History of every currency
// @Description Returns the history of every known currency. When the exact range is not cached the most recent cached range is returned and reported in actualRange.
// @Tags rates
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.BulkHistoryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/history [get]
func (h *RatesHandler) GetBulkHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	request, err := dto.NewDateRangeRequest(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
		return
	}

	result, err := h.rates.GetBulkHistory(ctx, request.Start, request.End)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	if !result.Actual.Equal(result.Requested) {
		logging.Debug(ctx, "Bulk history served for a different range", logging.Fields{
			logging.FieldStartDate: utils.FormatDate(request.Start),
			logging.FieldEndDate:   utils.FormatDate(request.End),
		})
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToBulkHistoryResponse(result))
}

// GetCurrencies godoc
// @Summary Available currencies
// @Tags rates
// @Produce json
// @Success 200 {object} dto.CurrenciesResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/currencies [get]
func (h *RatesHandler) GetCurrencies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	currencies, err := h.rates.GetCurrencies(ctx)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToCurrenciesResponse(currencies))
}

// Convert godoc
// @Summary Convert an amount
// @Description Converts an amount between two currencies through PLN mid rates of the latest (or given) table.
// @Tags rates
// @Produce json
// @Param from query string true "Source currency"
// @Param to query string true "Target currency"
// @Param amount query string true "Amount"
// @Param date query string false "Table date (YYYY-MM-DD)"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/convert [get]
func (h *RatesHandler) Convert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	request, err := dto.NewConvertRequest(query.Get("from"), query.Get("to"), query.Get("amount"), query.Get("date"))
	if err != nil {
		writeErrorResponse(ctx, w, http.StatusBadRequest, CodeInvalidParameter, err.Error())
		return
	}

	conv, err := h.rates.Convert(ctx, request.From, request.To, request.Amount, request.Date)
	if err != nil {
		writeDomainError(ctx, w, err)
		return
	}

	writeJSONResponse(ctx, w, http.StatusOK, dto.ToConversionResponse(conv))
}
