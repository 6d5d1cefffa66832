package alpha_vantage

// TimeSeries picks between the raw and the split/dividend adjusted daily endpoint
type TimeSeries uint8

const (
	TimeSeriesDaily TimeSeries = iota
	TimeSeriesDailyAdjusted
)

// dailySeriesKey is shared by both functions
const dailySeriesKey = "Time Series (Daily)"

func (t TimeSeries) Function() string {
	if t == TimeSeriesDailyAdjusted {
		return "TIME_SERIES_DAILY_ADJUSTED"
	}
	return "TIME_SERIES_DAILY"
}

func (t TimeSeries) TimeSeriesKey() string {
	return dailySeriesKey
}
