package utils

import (
	"fmt"
	"time"
)

// DateLayout es el formato ISO de fecha usado en claves de cache y en la API de NBP
const DateLayout = "2006-01-02"

// TruncateToDay normaliza un instante a la medianoche UTC de su fecha de calendario,
// respetando la zona horaria del instante recibido
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parsea una fecha YYYY-MM-DD y la devuelve normalizada a UTC
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

// FormatDate formatea una fecha como YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays suma (o resta) días de calendario
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// DaysBetween retorna la cantidad de días de calendario entre start y end (end - start)
func DaysBetween(start, end time.Time) int {
	return int(TruncateToDay(end).Sub(TruncateToDay(start)).Hours() / 24)
}

// IsWeekend indica si la fecha cae en sábado o domingo
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
