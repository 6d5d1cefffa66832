package core

import (
	"errors"
	"fmt"
	"time"

	sm "github.com/fongbrandon1928/Market-Dynamics/models"
)

// RunZScore fetches prices for the request and computes the relative return Z-scores.
// Every returned error is a *Error, a panic along the way is a computation error.
func (sc *ServiceContext) RunZScore(req *sm.ZScoreRequest) (res *sm.ZScoreResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			sc.Logger.Error("recovered from panic while running zscore", "panic", r)
			res, err = nil, NewError(KindComputation, fmt.Errorf("%v", r))
		}
	}()

	start := time.Now()
	symbols := req.Symbols()
	sc.Logger.Info("received request to run zscore",
		"tickers", req.Tickers,
		"normalization_ticker", req.NormalizationTicker,
		"start_date", req.StartDate,
		"end_date", req.EndDate)

	sc.Logger.Info("fetching price table", "symbols", len(symbols), "time", time.Since(start))
	table, err := sc.FetchPriceTable(symbols, req.Start, req.End)
	if err != nil {
		sc.Logger.Error("error fetching price table", "error", err)
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, NewError(KindUpstreamDataUnavailable, err)
	}

	sc.Logger.Info("calculating zscores", "dates", len(table.Dates), "resolved_symbols", len(table.Symbols), "time", time.Since(start))
	res, err = CalculateZScores(table, req.Tickers, req.NormalizationTicker, sc.Settings.RollingWindow)
	if err != nil {
		sc.Logger.Error("error calculating zscores", "error", err)
		return nil, err
	}

	sc.Logger.Info("zscore completed", "tickers", len(res.ZScores), "dates", len(res.Dates), "time", time.Since(start))
	return res, nil
}
