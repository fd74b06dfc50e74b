package services

import (
	"time"

	"fx-rates-service/internal/domain/entities"
	"fx-rates-service/internal/domain/interfaces"
	"fx-rates-service/pkg/utils"
)

// Claves y metadata compartidas por el resolver y el scheduler.
// Ambos deben escribir y leer exactamente las mismas claves.

func ratesKey(store interfaces.CacheStore, date time.Time) string {
	return store.BuildKey(entities.DatasetRates, utils.FormatDate(date))
}

func ratesMeta(date time.Time) entities.EntryMeta {
	return entities.EntryMeta{
		Dataset: entities.DatasetRates,
		Date:    date,
		Params:  []string{utils.FormatDate(date)},
	}
}

func historyKey(store interfaces.CacheStore, code string, start, end time.Time) string {
	return store.BuildKey(entities.DatasetHistory, code, utils.FormatDate(start), utils.FormatDate(end))
}

func historyMeta(code string, start, end time.Time) entities.EntryMeta {
	return entities.EntryMeta{
		Dataset:  entities.DatasetHistory,
		Date:     end,
		Start:    start,
		Currency: code,
		Params:   []string{code, utils.FormatDate(start), utils.FormatDate(end)},
	}
}

func bulkKey(store interfaces.CacheStore, start, end time.Time) string {
	return store.BuildKey(entities.DatasetBulkHistory, utils.FormatDate(start), utils.FormatDate(end))
}

func bulkMeta(start, end time.Time) entities.EntryMeta {
	return entities.EntryMeta{
		Dataset: entities.DatasetBulkHistory,
		Date:    end,
		Start:   start,
		Params:  []string{utils.FormatDate(start), utils.FormatDate(end)},
	}
}

func currenciesKey(store interfaces.CacheStore) string {
	return store.BuildKey(entities.DatasetCurrencies)
}
