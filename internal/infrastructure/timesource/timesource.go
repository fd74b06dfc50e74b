package timesource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // Europe/Warsaw disponible aunque el host no tenga zoneinfo

	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/internal/infrastructure/config"
	"fx-rates-service/internal/infrastructure/logging"
	"fx-rates-service/internal/infrastructure/metrics"
	"fx-rates-service/pkg/utils"

	"github.com/tidwall/gjson"
)

const (
	serviceName            = "worldtimeapi"
	DefaultTimezone        = "Europe/Warsaw"
	DefaultRefreshInterval = time.Hour
	DefaultTimeout         = 3 * time.Second
	maxBodyBytes           = 64 << 10

	// sin desfase válido se reintenta antes que el refresh normal
	failureRetry = time.Minute
)

// LocalClock resuelve "hoy" con el reloj local en la zona del proveedor
type LocalClock struct {
	location *time.Location
	now      func() time.Time
}

var _ interfaces.TimeSource = (*LocalClock)(nil)

// NewLocalClock crea un reloj local; una zona inválida cae a UTC
func NewLocalClock(timezone string) *LocalClock {
	return &LocalClock{location: loadLocation(timezone), now: time.Now}
}

// Today retorna la fecha de hoy (medianoche UTC) según la zona del proveedor
func (c *LocalClock) Today(ctx context.Context) time.Time {
	return utils.TruncateToDay(c.now().In(c.location))
}

// HTTPTimeSource consulta una API de hora externa y cachea el desfase contra el reloj local.
// Ante cualquier falla usa el reloj local sin propagar el error.
type HTTPTimeSource struct {
	url      string
	client   *http.Client
	refresh  time.Duration
	timeout  time.Duration
	location *time.Location
	now      func() time.Time

	mu        sync.Mutex
	offset    time.Duration
	fetchedAt time.Time
	valid     bool
	inflight  chan struct{} // nil si no hay refresh en curso
}

var _ interfaces.TimeSource = (*HTTPTimeSource)(nil)

// NewHTTPTimeSource crea la fuente a partir de la configuración
func NewHTTPTimeSource(cfg config.TimeAPIConfig) *HTTPTimeSource {
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = DefaultTimezone
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &HTTPTimeSource{
		url:      strings.TrimSuffix(cfg.URL, "/") + "/" + timezone,
		client:   &http.Client{Timeout: timeout},
		refresh:  refresh,
		timeout:  timeout,
		location: loadLocation(timezone),
		now:      time.Now,
	}
}

// Today retorna la fecha efectiva de hoy en la zona del proveedor
func (s *HTTPTimeSource) Today(ctx context.Context) time.Time {
	return utils.TruncateToDay(s.Now(ctx))
}

// Now retorna el instante actual corregido con el desfase remoto.
// Solo el llamador que lanza un refresh lo espera (acotado por su contexto);
// el resto usa el último desfase conocido o el reloj local.
func (s *HTTPTimeSource) Now(ctx context.Context) time.Time {
	local := s.now()

	if done := s.startRefresh(ctx, local); done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}

	s.mu.Lock()
	offset, valid := s.offset, s.valid
	s.mu.Unlock()

	if !valid {
		return local.In(s.location)
	}
	return local.Add(offset).In(s.location)
}

// startRefresh lanza un único refresh si el desfase venció y retorna el canal
// que se cierra al terminar. Retorna nil si no hace falta o ya hay uno en curso.
func (s *HTTPTimeSource) startRefresh(ctx context.Context, local time.Time) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != nil {
		return nil
	}

	interval := s.refresh
	if !s.valid && interval > failureRetry {
		interval = failureRetry
	}
	if !s.fetchedAt.IsZero() && local.Sub(s.fetchedAt) < interval {
		return nil
	}

	done := make(chan struct{})
	s.inflight = done
	go s.sync(ctx, local, done)
	return done
}

// sync consulta la API con un contexto propio: cancelar al llamador no marca una falla
func (s *HTTPTimeSource) sync(ctx context.Context, local time.Time, done chan struct{}) {
	defer close(done)

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	remote, err := s.fetch(fetchCtx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.inflight = nil
	s.fetchedAt = local

	if err != nil {
		metrics.RecordTimeSourceFallback()
		logging.WarnWithError(ctx, "Time API unavailable, using local clock", err, logging.Fields{
			logging.FieldExternalService: serviceName,
			"url":                        s.url,
			"has_offset":                 s.valid,
		})
		// El último desfase válido se conserva
		return
	}

	s.offset = remote.Sub(local)
	s.valid = true

	logging.Debug(ctx, "Time API offset refreshed", logging.Fields{
		logging.FieldExternalService: serviceName,
		"offset_ms":                  s.offset.Milliseconds(),
	})
}

func (s *HTTPTimeSource) fetch(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return time.Time{}, fmt.Errorf("time API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	metrics.RecordExternalAPICall(serviceName, "/timezone", resp.StatusCode, duration.Seconds())

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, fmt.Errorf("time API returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read time API response: %w", err)
	}

	value := gjson.GetBytes(body, "datetime")
	if !value.Exists() {
		return time.Time{}, fmt.Errorf("time API response has no datetime field")
	}

	remote, err := time.Parse(time.RFC3339Nano, value.String())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", value.String(), err)
	}

	logging.ExternalRequest(ctx, serviceName, "/timezone", float64(duration.Nanoseconds())/1e6, resp.StatusCode)
	return remote, nil
}

func loadLocation(timezone string) *time.Location {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
