package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// TimeSeriesResult is what every price source returns for one symbol,
// the series is ordered by timestamp ascending
type TimeSeriesResult struct {
	Metadata   *TimeSeriesMetadata
	TimeSeries []*TimeSeriesData
}

type TimeSeriesMetadata struct {
	Id            int32       `db:"id"`
	Symbol        string      `db:"symbol"`
	LastRefreshed time.Time   `db:"last_refreshed"`
	Information   null.String `db:"-"`
	TimeZone      string      `db:"-"`
	Source        string      `db:"-"`
}

// TimeSeriesData is a single daily observation. Providers leave prices null
// when a session has no print, the price table treats those as gaps.
type TimeSeriesData struct {
	Timestamp     time.Time  `db:"timestamp"`
	Close         null.Float `db:"close"`
	AdjustedClose null.Float `db:"adjusted_close"`
}

// ClosingPrice prefers the adjusted close and falls back to the raw close
func (tsd *TimeSeriesData) ClosingPrice() null.Float {
	if tsd.AdjustedClose.Valid {
		return tsd.AdjustedClose
	}
	return tsd.Close
}
