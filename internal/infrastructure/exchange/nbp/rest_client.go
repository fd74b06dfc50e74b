package nbp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/config"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
	"fx-rates-service/pkg/utils"

	"github.com/avast/retry-go/v4"
)

const (
	serviceName    = "nbp"
	DefaultBaseURL = "https://api.nbp.pl/api"
	DefaultTable   = "C"
	DefaultTimeout = 15 * time.Second
	RequestTimeout = 10 * time.Second // Context timeout per request
	MaxRetries     = 3                // Maximum retry attempts
	BaseBackoff    = 200 * time.Millisecond
	MaxBackoff     = 3 * time.Second
	endpointTable  = "/exchangerates/tables"
	endpointSeries = "/exchangerates/rates"
	endpointLatest = "/exchangerates/tables/latest"
)

// Throttle limita la tasa de llamadas salientes
type Throttle interface {
	Wait(ctx context.Context) error
}

// RestClient implementa interfaces.RatesProvider usando la API REST de NBP
type RestClient struct {
	baseURL        string
	table          string
	httpClient     *http.Client
	requestTimeout time.Duration
	maxRetries     uint
	baseBackoff    time.Duration
	throttle       Throttle
}

var _ interfaces.RatesProvider = (*RestClient)(nil)

// NewRestClient crea el cliente con configuración; throttle puede ser nil
func NewRestClient(cfg config.NBPConfig, throttle Throttle) *RestClient {
	client := &RestClient{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		table:          cfg.Table,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		requestTimeout: cfg.RequestTimeout,
		maxRetries:     uint(cfg.MaxRetries),
		baseBackoff:    BaseBackoff,
		throttle:       throttle,
	}

	if client.baseURL == "" {
		client.baseURL = DefaultBaseURL
	}
	if client.table == "" {
		client.table = DefaultTable
	}
	if cfg.Timeout <= 0 {
		client.httpClient.Timeout = DefaultTimeout
	}
	if client.requestTimeout <= 0 {
		client.requestTimeout = RequestTimeout
	}
	if client.maxRetries == 0 {
		client.maxRetries = MaxRetries
	}

	return client
}

// RatesForDate obtiene la tabla publicada para una fecha. Sin publicación retorna lista vacía.
func (c *RestClient) RatesForDate(ctx context.Context, date time.Time) ([]entities.RateRecord, error) {
	path := fmt.Sprintf("%s/%s/%s/?format=json", endpointTable, c.table, utils.FormatDate(date))

	var tables []TableResponse
	found, err := c.getJSON(ctx, endpointTable, path, &tables)
	if err != nil {
		return nil, fmt.Errorf("%w: rates for %s: %w", domain.ErrUpstreamUnavailable, utils.FormatDate(date), err)
	}
	if !found {
		return []entities.RateRecord{}, nil
	}

	records, err := ToRecords(tables)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return records, nil
}

// HistoryForCurrency obtiene la serie de una moneda en [start, end]
func (c *RestClient) HistoryForCurrency(ctx context.Context, code string, start, end time.Time) ([]entities.RateRecord, error) {
	path := fmt.Sprintf("%s/%s/%s/%s/%s/?format=json",
		endpointSeries, c.table, strings.ToLower(code), utils.FormatDate(start), utils.FormatDate(end))

	var series SeriesResponse
	found, err := c.getJSON(ctx, endpointSeries, path, &series)
	if err != nil {
		return nil, fmt.Errorf("%w: history for %s: %w", domain.ErrUpstreamUnavailable, code, err)
	}
	if !found {
		return []entities.RateRecord{}, nil
	}

	records, err := series.ToRecords()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return records, nil
}

// CurrencyList obtiene las monedas de la tabla más reciente
func (c *RestClient) CurrencyList(ctx context.Context) ([]entities.CurrencyInfo, error) {
	path := fmt.Sprintf("%s/%s/?format=json", endpointTable, c.table)

	var tables []TableResponse
	found, err := c.getJSON(ctx, endpointLatest, path, &tables)
	if err != nil {
		return nil, fmt.Errorf("%w: currency list: %w", domain.ErrUpstreamUnavailable, err)
	}
	if !found {
		return []entities.CurrencyInfo{}, nil
	}

	return ToCurrencies(tables), nil
}

// getJSON hace GET con throttle y retry. found=false cuando NBP responde 404 (sin datos).
func (c *RestClient) getJSON(ctx context.Context, endpoint, path string, out interface{}) (bool, error) {
	found := true

	retryErr := retry.Do(
		func() error {
			if c.throttle != nil {
				if err := c.throttle.Wait(ctx); err != nil {
					return err
				}
			}

			// Create request context with timeout
			reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
			defer cancel()

			ok, reqErr := c.doRequest(reqCtx, endpoint, path, out)
			if reqErr != nil {
				return reqErr
			}
			found = ok
			return nil
		},
		retry.Attempts(c.maxRetries),
		retry.Delay(c.baseBackoff),
		retry.MaxDelay(MaxBackoff),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryableError),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			metrics.RecordExternalAPIRetry(serviceName, endpoint, int(n+1))

			logging.Warn(ctx, "NBP API retry attempt", logging.Fields{
				logging.FieldExternalService:  serviceName,
				logging.FieldExternalEndpoint: endpoint,
				logging.FieldAttempt:          n + 1,
				"max_attempts":                c.maxRetries,
				"path":                        path,
				logging.FieldError:            err.Error(),
				"is_429":                      strings.Contains(err.Error(), "HTTP 429"),
			})
		}),
	)

	if retryErr != nil {
		return false, retryErr
	}
	return found, nil
}

// doRequest performs a single HTTP request and decodes the JSON body into out
func (c *RestClient) doRequest(ctx context.Context, endpoint, path string, out interface{}) (bool, error) {
	url := c.baseURL + path

	logging.Debug(ctx, "Making request to NBP API", logging.Fields{
		"url": url,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("%w: failed to create request: %v", ErrNonRetryable, err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration := time.Since(requestStart)
	durationMs := float64(requestDuration.Nanoseconds()) / 1e6

	if err != nil {
		logging.ExternalAPI().RequestFailed(ctx, serviceName, endpoint, 0, err, durationMs)

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return false, fmt.Errorf("%w: context timeout/canceled", ErrRetryableRequest)
		}
		return false, fmt.Errorf("%w: %v", ErrRetryableRequest, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordExternalAPICall(serviceName, endpoint, resp.StatusCode, requestDuration.Seconds())

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// NBP responde 404 cuando no hay publicación para la fecha o el rango
		logging.ExternalRequest(ctx, serviceName, endpoint, durationMs, resp.StatusCode)
		return false, nil
	case resp.StatusCode >= 500:
		return false, fmt.Errorf("%w: HTTP %d (server error)", ErrRetryableRequest, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return false, fmt.Errorf("%w: HTTP %d (rate limited by nbp)", ErrRetryableRequest, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, fmt.Errorf("%w: HTTP %d (client error)", ErrNonRetryable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("%w: failed to decode response: %w", ErrNonRetryable, err)
	}

	logging.ExternalRequest(ctx, serviceName, endpoint, durationMs, resp.StatusCode)
	return true, nil
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	return errors.Is(err, ErrRetryableRequest)
}
