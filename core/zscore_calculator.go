package core

import (
	"fmt"

	ex "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
	sm "github.com/fongbrandon1928/Market-Dynamics/models"
)

// CalculateZScores turns closing prices into rolling Z-scores of each ticker's return
// relative to the normalization ticker. Requested tickers missing from the table are
// skipped. maxWindow caps the trailing window, MaxRollingWindow when not positive.
func CalculateZScores(table *PriceTable, tickers []string, normalizationTicker string, maxWindow int) (*sm.ZScoreResponse, error) {
	if table.IsEmpty() {
		return nil, NewError(KindUpstreamDataUnavailable, ErrNoData)
	}

	if maxWindow <= 0 {
		maxWindow = MaxRollingWindow
	}

	if !table.HasSymbol(normalizationTicker) {
		return nil, missingNormalizationError(normalizationTicker)
	}

	returns := table.Returns()
	if err := verifyReturnTableIntegrity(returns); err != nil {
		return nil, NewError(KindComputation, err)
	}

	normReturns := returns.Returns[normalizationTicker]

	res := sm.NewZScoreResponse()
	for _, ticker := range tickers {
		tickerReturns, ok := returns.Returns[ticker]
		if !ok {
			continue
		}

		relativeReturns, err := RelativeReturns(tickerReturns, normReturns)
		if err != nil {
			return nil, NewError(KindComputation, err)
		}

		if len(relativeReturns) == 0 {
			return nil, NewError(KindComputation, ErrInsufficientHistory)
		}

		window := ex.Min(maxWindow, len(relativeReturns))
		res.ZScores[ticker] = ZScores(relativeReturns, window)

		// dates only once, every series shares the return table index
		if len(res.Dates) == 0 {
			for _, d := range returns.Dates {
				res.Dates = append(res.Dates, ex.FmtShort(d))
			}
		}
	}

	return res, nil
}

func verifyReturnTableIntegrity(rt *ReturnTable) error {
	for symbol, r := range rt.Returns {
		if len(r) != len(rt.Dates) {
			return fmt.Errorf("data validation failed, %s has %d returns for %d dates", symbol, len(r), len(rt.Dates))
		}
	}
	return nil
}
