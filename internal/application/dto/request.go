package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/pkg/utils"

	"github.com/shopspring/decimal"
)

// DateRangeRequest representa los query params start/end de los endpoints de histórico
type DateRangeRequest struct {
	Start time.Time
	End   time.Time
}

// NewDateRangeRequest parsea start y end (YYYY-MM-DD); ambos son obligatorios
func NewDateRangeRequest(startParam, endParam string) (*DateRangeRequest, error) {
	startParam = strings.TrimSpace(startParam)
	endParam = strings.TrimSpace(endParam)

	if startParam == "" || endParam == "" {
		return nil, errors.New("both start and end query parameters are required (YYYY-MM-DD)")
	}

	start, err := utils.ParseDate(startParam)
	if err != nil {
		return nil, fmt.Errorf("invalid start: %w", err)
	}
	end, err := utils.ParseDate(endParam)
	if err != nil {
		return nil, fmt.Errorf("invalid end: %w", err)
	}

	return &DateRangeRequest{Start: start, End: end}, nil
}

// ConvertRequest representa los parámetros de GET /api/v1/convert
type ConvertRequest struct {
	From   string
	To     string
	Amount decimal.Decimal
	Date   *time.Time
}

// NewConvertRequest valida from, to, amount y la fecha opcional
func NewConvertRequest(fromParam, toParam, amountParam, dateParam string) (*ConvertRequest, error) {
	from, ok := entities.NormalizeCurrencyCode(fromParam)
	if !ok {
		return nil, fmt.Errorf("invalid from currency %q (expected ISO 4217 code)", fromParam)
	}
	to, ok := entities.NormalizeCurrencyCode(toParam)
	if !ok {
		return nil, fmt.Errorf("invalid to currency %q (expected ISO 4217 code)", toParam)
	}

	amountParam = strings.TrimSpace(amountParam)
	if amountParam == "" {
		return nil, errors.New("amount is required")
	}
	amount, err := decimal.NewFromString(amountParam)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amountParam)
	}
	if amount.IsNegative() {
		return nil, errors.New("amount must not be negative")
	}

	request := &ConvertRequest{From: from, To: to, Amount: amount}

	if dateParam = strings.TrimSpace(dateParam); dateParam != "" {
		date, err := utils.ParseDate(dateParam)
		if err != nil {
			return nil, err
		}
		request.Date = &date
	}

	return request, nil
}
