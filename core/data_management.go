package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
)

// TimeSeriesSource is anything that can serve daily closes for a symbol over [start, end).
// Unknown symbols are reported with models.ErrSymbolNotFound.
type TimeSeriesSource interface {
	GetDailyTimeSeries(ctx context.Context, symbol string, start, end time.Time) (*m.TimeSeriesResult, error)
}

// FetchPriceTable requests every symbol from the source and aligns the results on one
// date index. Symbols the source does not know are left out of the table, any other
// failure aborts the fetch.
func (sc *ServiceContext) FetchPriceTable(symbols []string, start, end time.Time) (*PriceTable, error) {
	var (
		mu     sync.Mutex
		series = make(map[string][]*m.TimeSeriesData, len(symbols))
	)

	g, ctx := errgroup.WithContext(sc.Context)
	g.SetLimit(max(1, sc.Settings.FetchConcurrency))

	for _, symbol := range symbols {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = NewError(KindComputation, fmt.Errorf("panic fetching %s: %v", symbol, r))
				}
			}()

			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			fetchStart := time.Now()
			tsr, err := sc.Source.GetDailyTimeSeries(ctx, symbol, start, end)
			if errors.Is(err, m.ErrSymbolNotFound) {
				sc.Logger.Warn("symbol not found, skipping", "symbol", symbol)
				return nil
			}
			if err != nil {
				return fmt.Errorf("error getting daily time series for %s: %w", symbol, err)
			}

			if tsr == nil || len(tsr.TimeSeries) == 0 {
				sc.Logger.Warn("no prices in range, skipping", "symbol", symbol)
				return nil
			}

			sc.Logger.Debug("fetched daily time series", "symbol", symbol, "rows", len(tsr.TimeSeries), "time", time.Since(fetchStart))

			// keyed by the requested symbol, providers may echo a different label
			mu.Lock()
			series[symbol] = tsr.TimeSeries
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return NewPriceTable(series), nil
}
