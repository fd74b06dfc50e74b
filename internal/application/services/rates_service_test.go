package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fx-rates-service/internal/domain"
	"fx-rates-service/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRatesService_BoundedFallback(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, mock.Anything).Return([]entities.RateRecord{}, nil)

	result, err := f.ratesService().GetRatesForDate(context.Background(), friday)

	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	assert.Equal(t, entities.SourceNone, result.Source)
	f.provider.AssertNumberOfCalls(t, "RatesForDate", DefaultMaxLookbackDays)
}

func TestRatesService_FallbackSkipsUpstreamErrors(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, friday).Return(nil, errors.New("timeout")).Once()
	f.provider.On("RatesForDate", mock.Anything, friday.AddDate(0, 0, -1)).Return(table(friday.AddDate(0, 0, -1)), nil).Once()

	result, err := f.ratesService().GetRatesForDate(context.Background(), friday)

	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, result.Source)
	assert.True(t, result.FromPreviousDate)
	assert.True(t, result.EffectiveDate.Equal(friday.AddDate(0, 0, -1)))
	f.provider.AssertNumberOfCalls(t, "RatesForDate", 2)
}

func TestRatesService_WeekendGap(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, saturday).Return([]entities.RateRecord{}, nil).Once()
	f.provider.On("RatesForDate", mock.Anything, friday).Return(table(friday), nil).Once()

	result, err := f.ratesService().GetRatesForDate(context.Background(), saturday)

	require.NoError(t, err)
	assert.LessOrEqual(t, len(f.provider.Calls), 2)
	assert.True(t, result.FromPreviousDate)
	assert.True(t, result.RequestedDate.Equal(saturday))
	assert.True(t, result.EffectiveDate.Equal(friday))
	assert.Len(t, result.Rates, 2)
}

func TestRatesService_SameDayRepeatServedFromCache(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, friday).Return(table(friday), nil).Once()
	svc := f.ratesService()

	first, err := svc.GetRatesForDate(context.Background(), friday)
	require.NoError(t, err)
	second, err := svc.GetRatesForDate(context.Background(), friday)
	require.NoError(t, err)

	assert.Equal(t, entities.SourceUpstream, first.Source)
	assert.Equal(t, entities.SourceCache, second.Source)
	assert.Equal(t, first.Rates, second.Rates)
	f.provider.AssertNumberOfCalls(t, "RatesForDate", 1)
}

func TestRatesService_CachedPreviousDayBeatsUpstream(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, entities.RatesCache, ratesKey(f.store, friday), entities.NewRatesValue(table(friday)), ratesMeta(friday), 0))

	result, err := f.ratesService().GetRatesForDate(ctx, saturday)

	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, result.Source)
	assert.True(t, result.FromPreviousDate)
	f.provider.AssertNotCalled(t, "RatesForDate", mock.Anything, mock.Anything)
}

func TestRatesService_TodayOrFutureSubstitution(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	thursday := friday.AddDate(0, 0, -1)
	require.NoError(t, f.store.Set(ctx, entities.RatesCache, ratesKey(f.store, thursday), entities.NewRatesValue(table(thursday)), ratesMeta(thursday), 0))
	require.NoError(t, f.store.Set(ctx, entities.RatesCache, ratesKey(f.store, friday), entities.NewRatesValue(table(friday)), ratesMeta(friday), 0))
	svc := f.ratesService()

	for _, date := range []time.Time{testToday, testToday.AddDate(0, 0, 3)} {
		result, err := svc.GetRatesForDate(ctx, date)

		require.NoError(t, err)
		assert.Equal(t, entities.SourceSubstituted, result.Source)
		assert.True(t, result.EffectiveDate.Equal(friday), "most recent cached table wins")
		assert.True(t, result.FromPreviousDate)
	}
	f.provider.AssertNotCalled(t, "RatesForDate", mock.Anything, mock.Anything)
}

func TestRatesService_SubstitutionIgnoresExpiredEntries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, entities.RatesCache, ratesKey(f.store, friday), entities.NewRatesValue(table(friday)), ratesMeta(friday), 0))
	f.wall.Advance(61 * time.Minute)

	f.provider.On("RatesForDate", mock.Anything, testToday).Return(table(testToday), nil).Once()
	svc := f.ratesService()

	result, err := svc.GetRatesForDate(ctx, testToday)
	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, result.Source)
	assert.True(t, result.EffectiveDate.Equal(testToday))

	f.store.FlushAll(ctx)
	_, err = svc.GetRatesForDate(ctx, testToday.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, domain.ErrFutureDate)
	f.provider.AssertNumberOfCalls(t, "RatesForDate", 1)
}

func TestRatesService_GetLatestRates(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, testToday).Return(table(testToday), nil).Once()

	result, err := f.ratesService().GetLatestRates(context.Background())

	require.NoError(t, err)
	assert.False(t, result.FromPreviousDate)
	assert.True(t, result.EffectiveDate.Equal(testToday))
}

func TestRatesService_CancelledContextStopsWalk(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ratesService().GetRatesForDate(ctx, friday)

	assert.ErrorIs(t, err, context.Canceled)
	f.provider.AssertNotCalled(t, "RatesForDate", mock.Anything, mock.Anything)
}

func TestRatesService_HistoryValidation(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{name: "future end", code: "USD", start: testToday.AddDate(0, 0, -3), end: testToday.AddDate(0, 0, 1), wantErr: domain.ErrFutureDate},
		{name: "start after end", code: "USD", start: friday, end: friday.AddDate(0, 0, -1), wantErr: domain.ErrInvalidRange},
		{name: "range too long", code: "USD", start: testToday.AddDate(0, 0, -120), end: testToday, wantErr: domain.ErrRangeTooLong},
		{name: "invalid code", code: "U$D", start: friday, end: friday, wantErr: domain.ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.ratesService().GetCurrencyHistory(context.Background(), tt.code, tt.start, tt.end)

			assert.ErrorIs(t, err, tt.wantErr)
			f.provider.AssertNotCalled(t, "HistoryForCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRatesService_HistoryCachesResult(t *testing.T) {
	f := newFixture()
	start := friday.AddDate(0, 0, -4)
	f.provider.On("HistoryForCurrency", mock.Anything, "USD", start, friday).Return(series("USD", start, 5), nil).Once()
	svc := f.ratesService()

	first, err := svc.GetCurrencyHistory(context.Background(), "usd", start, friday)
	require.NoError(t, err)
	second, err := svc.GetCurrencyHistory(context.Background(), "USD", start, friday)
	require.NoError(t, err)

	assert.Equal(t, entities.SourceUpstream, first.Source)
	assert.Equal(t, entities.SourceCache, second.Source)
	assert.Equal(t, "USD", second.Currency)
	assert.Len(t, second.Rates, 5)
	f.provider.AssertNumberOfCalls(t, "HistoryForCurrency", 1)
}

func TestRatesService_HistoryUpstreamFailures(t *testing.T) {
	f := newFixture()
	start := friday.AddDate(0, 0, -4)
	f.provider.On("HistoryForCurrency", mock.Anything, "USD", start, friday).Return(nil, errors.New("connection reset"))
	f.provider.On("HistoryForCurrency", mock.Anything, "EUR", start, friday).Return([]entities.RateRecord{}, nil)
	svc := f.ratesService()

	_, err := svc.GetCurrencyHistory(context.Background(), "USD", start, friday)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)

	_, err = svc.GetCurrencyHistory(context.Background(), "EUR", start, friday)
	assert.ErrorIs(t, err, domain.ErrNoDataForRange)
}

func TestRatesService_BulkHistoryPartialSuccess(t *testing.T) {
	f := newFixture()
	start := testToday.AddDate(0, 0, -7)
	end := testToday.AddDate(0, 0, -1)

	f.provider.On("CurrencyList", mock.Anything).Return([]entities.CurrencyInfo{
		{Code: "USD", Name: "dolar amerykański"},
		{Code: "EUR", Name: "euro"},
		{Code: "GBP", Name: "funt szterling"},
	}, nil).Once()
	f.provider.On("HistoryForCurrency", mock.Anything, "USD", start, end).Return(series("USD", start, 5), nil).Once()
	f.provider.On("HistoryForCurrency", mock.Anything, "EUR", start, end).Return(nil, errors.New("boom")).Once()
	f.provider.On("HistoryForCurrency", mock.Anything, "GBP", start, end).Return([]entities.RateRecord{}, nil).Once()
	svc := f.ratesService()

	result, err := svc.GetBulkHistory(context.Background(), start, end)

	require.NoError(t, err)
	assert.Equal(t, entities.SourceUpstream, result.Source)
	require.Len(t, result.Rates, 1)
	assert.Contains(t, result.Rates, "USD")
	assert.True(t, result.Actual.Equal(result.Requested))

	// Otro rango sin cache exacta sirve el bulk más reciente ya cacheado
	other, err := svc.GetBulkHistory(context.Background(), start.AddDate(0, 0, -3), end.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, other.Source)
	assert.True(t, other.Actual.Equal(entities.DateRange{Start: start, End: end}))
	assert.False(t, other.Actual.Equal(other.Requested))
	f.provider.AssertNumberOfCalls(t, "HistoryForCurrency", 3)
}

func TestRatesService_BulkHistoryNoData(t *testing.T) {
	f := newFixture()
	start := testToday.AddDate(0, 0, -7)
	end := testToday.AddDate(0, 0, -1)

	f.provider.On("CurrencyList", mock.Anything).Return(nil, errors.New("down"))
	f.provider.On("HistoryForCurrency", mock.Anything, mock.Anything, start, end).Return(nil, errors.New("down"))

	_, err := f.ratesService().GetBulkHistory(context.Background(), start, end)

	assert.ErrorIs(t, err, domain.ErrNoDataForRange)
	f.provider.AssertNumberOfCalls(t, "HistoryForCurrency", len(DefaultMajorCurrencies))
}

func TestRatesService_GetCurrenciesCachesList(t *testing.T) {
	f := newFixture()
	f.provider.On("CurrencyList", mock.Anything).Return([]entities.CurrencyInfo{{Code: "USD", Name: "dolar amerykański"}}, nil).Once()
	svc := f.ratesService()

	for i := 0; i < 3; i++ {
		currencies, err := svc.GetCurrencies(context.Background())
		require.NoError(t, err)
		assert.Len(t, currencies, 1)
	}
	f.provider.AssertNumberOfCalls(t, "CurrencyList", 1)
}

func TestRatesService_Convert(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, testToday).Return(table(testToday), nil).Once()
	svc := f.ratesService()
	ctx := context.Background()

	tests := []struct {
		name     string
		from     string
		to       string
		amount   string
		expected string
	}{
		{name: "foreign to base", from: "usd", to: "PLN", amount: "100", expected: "400"},
		{name: "base to foreign", from: "PLN", to: "EUR", amount: "435", expected: "100"},
		{name: "cross rate through base", from: "EUR", to: "USD", amount: "100", expected: "108.75"},
		{name: "same currency", from: "USD", to: "USD", amount: "12.5", expected: "12.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conv, err := svc.Convert(ctx, tt.from, tt.to, decimal.RequireFromString(tt.amount), nil)

			require.NoError(t, err)
			assert.True(t, conv.Result.Equal(decimal.RequireFromString(tt.expected)), "got %s", conv.Result)
			assert.True(t, conv.Date.Equal(testToday))
		})
	}

	_, err := svc.Convert(ctx, "USD", "GBP", decimal.NewFromInt(1), nil)
	assert.ErrorIs(t, err, domain.ErrUnknownCurrency)

	_, err = svc.Convert(ctx, "USDX", "PLN", decimal.NewFromInt(1), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidCurrency)
}

func TestRatesService_ConvertWithoutTable(t *testing.T) {
	f := newFixture()
	f.provider.On("RatesForDate", mock.Anything, mock.Anything).Return([]entities.RateRecord{}, nil)
	date := friday

	_, err := f.ratesService().Convert(context.Background(), "USD", "PLN", decimal.NewFromInt(1), &date)

	assert.ErrorIs(t, err, domain.ErrNoDataForRange)
}

func TestRatesService_CancelledLeaderDoesNotFailWaiters(t *testing.T) {
	f := newFixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	var upstreamCtxErr error
	f.provider.On("RatesForDate", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		close(entered)
		<-release
		upstreamCtxErr = args.Get(0).(context.Context).Err()
	}).Return(table(testToday), nil).Once()
	svc := f.ratesService()

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.GetLatestRates(leaderCtx)
		leaderErr <- err
	}()
	<-entered

	type outcome struct {
		result *entities.RatesResult
		err    error
	}
	waiter := make(chan outcome, 1)
	go func() {
		result, err := svc.GetLatestRates(context.Background())
		waiter <- outcome{result, err}
	}()

	// El líder abandona sin esperar al upstream
	cancel()
	select {
	case err := <-leaderErr:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled leader kept waiting for the shared fetch")
	}

	close(release)
	got := <-waiter
	require.NoError(t, got.err)
	assert.False(t, got.result.IsEmpty())
	assert.True(t, got.result.EffectiveDate.Equal(testToday))
	assert.NoError(t, upstreamCtxErr)
	f.provider.AssertNumberOfCalls(t, "RatesForDate", 1)
}

func TestRatesService_BulkHistoryCancelledLeader(t *testing.T) {
	f := newFixture()
	start := testToday.AddDate(0, 0, -7)
	end := testToday.AddDate(0, 0, -1)
	entered := make(chan struct{})
	release := make(chan struct{})

	f.provider.On("CurrencyList", mock.Anything).Return([]entities.CurrencyInfo{{Code: "USD", Name: "dolar amerykański"}}, nil).Once()
	f.provider.On("HistoryForCurrency", mock.Anything, "USD", start, end).Run(func(args mock.Arguments) {
		close(entered)
		<-release
	}).Return(series("USD", start, 5), nil).Once()
	svc := f.ratesService()

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := svc.GetBulkHistory(leaderCtx, start, end)
		leaderErr <- err
	}()
	<-entered

	type outcome struct {
		result *entities.BulkHistoryResult
		err    error
	}
	waiter := make(chan outcome, 1)
	go func() {
		result, err := svc.GetBulkHistory(context.Background(), start, end)
		waiter <- outcome{result, err}
	}()

	cancel()
	err := <-leaderErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrNoDataForRange)

	close(release)
	got := <-waiter
	require.NoError(t, got.err)
	assert.Contains(t, got.result.Rates, "USD")
	f.provider.AssertNumberOfCalls(t, "HistoryForCurrency", 1)
}

func TestRatesService_FanOutReportsCancellation(t *testing.T) {
	f := newFixture()
	start := testToday.AddDate(0, 0, -7)
	end := testToday.AddDate(0, 0, -1)
	f.provider.On("CurrencyList", mock.Anything).Return(nil, context.Canceled)
	f.provider.On("HistoryForCurrency", mock.Anything, mock.Anything, start, end).Return(nil, context.Canceled)
	svc := f.ratesService()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.fanOutHistory(ctx, bulkKey(f.store, start, end), entities.DateRange{Start: start, End: end})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrNoDataForRange)
	assert.Empty(t, f.store.Keys(entities.HistoricalCache))
}

func TestRatesService_BulkFallbackPrefersGreatestEndDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	put := func(start, end time.Time, code string) {
		bulk := map[string][]entities.RateRecord{code: series(code, start, 1)}
		require.NoError(t, f.store.Set(ctx, entities.HistoricalCache, bulkKey(f.store, start, end),
			entities.NewBulkValue(bulk), bulkMeta(start, end), 0))
	}

	older := testToday.AddDate(0, 0, -10)
	newest := testToday.AddDate(0, 0, -2)
	put(older.AddDate(0, 0, -5), older, "CHF")
	put(newest.AddDate(0, 0, -7), newest, "USD")
	// Mismo fin que el anterior, insertado después: pierde el empate
	put(newest.AddDate(0, 0, -3), newest, "EUR")
	put(testToday.AddDate(0, 0, -20), testToday.AddDate(0, 0, -15), "GBP")

	requested := entities.DateRange{Start: testToday.AddDate(0, 0, -30), End: testToday.AddDate(0, 0, -25)}
	result, err := f.ratesService().GetBulkHistory(ctx, requested.Start, requested.End)

	require.NoError(t, err)
	assert.Equal(t, entities.SourceCache, result.Source)
	assert.Contains(t, result.Rates, "USD")
	assert.NotContains(t, result.Rates, "EUR")
	assert.True(t, result.Actual.Equal(entities.DateRange{Start: newest.AddDate(0, 0, -7), End: newest}))
	assert.True(t, result.Requested.Equal(requested))
	f.provider.AssertNotCalled(t, "HistoryForCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
