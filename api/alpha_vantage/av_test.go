package alpha_vantage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	c "github.com/fongbrandon1928/Market-Dynamics/api"
	ex "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
)

const dailyResponse = `{
    "Meta Data": {
        "1. Information": "Daily Prices (open, high, low, close) and Volumes",
        "2. Symbol": "IBM",
        "3. Last Refreshed": "2024-01-09",
        "4. Output Size": "Compact",
        "5. Time Zone": "US/Eastern"
    },
    "Time Series (Daily)": {
        "2024-01-09": {"1. open": "160.0", "2. high": "161.0", "3. low": "159.0", "4. close": "160.5", "5. volume": "100"},
        "2024-01-05": {"1. open": "158.0", "2. high": "159.0", "3. low": "157.0", "4. close": "158.5", "5. volume": "100"},
        "2024-01-02": {"1. open": "161.0", "2. high": "162.0", "3. low": "160.0", "4. close": "161.5", "5. volume": "100"},
        "2024-01-03": {"1. open": "160.0", "2. high": "161.0", "3. low": "159.0", "4. close": "", "5. volume": "100"},
        "2023-12-29": {"1. open": "162.0", "2. high": "163.0", "3. low": "161.0", "4. close": "162.5", "5. volume": "100"}
    }
}`

const adjustedResponse = `{
    "Meta Data": {
        "1. Information": "Daily Time Series with Splits and Dividend Events",
        "2. Symbol": "IBM",
        "3. Last Refreshed": "2024-01-03",
        "4. Output Size": "Compact",
        "5. Time Zone": "US/Eastern"
    },
    "Time Series (Daily)": {
        "2024-01-02": {"4. close": "161.5", "5. adjusted close": "159.1", "6. volume": "100"},
        "2024-01-03": {"4. close": "160.0", "5. adjusted close": "157.6", "6. volume": "100"}
    }
}`

// fakeConnection returns a canned body and records the last endpoint requested
type fakeConnection struct {
	status   int
	body     string
	err      error
	endpoint *url.URL
}

func (f *fakeConnection) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	f.endpoint = endpoint
	if f.err != nil {
		return nil, f.err
	}

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func getTestClient(conn *fakeConnection, adjusted bool) *AlphaVantageClient {
	avc := GetClient(c.NewClient(conn, "av-test-api-key"), adjusted)
	avc.now = func() time.Time { return time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC) }
	return avc
}

func Test_AlphaVantage_DailyTimeSeries(t *testing.T) {
	conn := &fakeConnection{body: dailyResponse}
	avc := getTestClient(conn, false)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 9, 0, 0, 0, 0, time.UTC)
	res, err := avc.GetDailyTimeSeries(context.Background(), "IBM", start, end)
	if err != nil {
		t.Fatalf("error getting daily time series: %s", err)
	}

	// request
	q := conn.endpoint.Query()
	ex.AssertAreEqual(t, "function", "TIME_SERIES_DAILY", q.Get("function"))
	ex.AssertAreEqual(t, "symbol", "IBM", q.Get("symbol"))
	ex.AssertAreEqual(t, "apikey", "av-test-api-key", q.Get("apikey"))
	ex.AssertAreEqual(t, "outputsize", outputSizeCompact, q.Get("outputsize"))

	// meta data
	ex.AssertAreEqual(t, "symbol", "IBM", res.Metadata.Symbol)
	ex.AssertAreEqual(t, "source", Source, res.Metadata.Source)
	ex.AssertAreEqual(t, "time zone", "US/Eastern", res.Metadata.TimeZone)
	ex.AssertAreEqual(t, "information", "Daily Prices (open, high, low, close) and Volumes", res.Metadata.Information.String)

	// 2023-12-29 is before start and 2024-01-09 is the exclusive end
	ex.AssertAreEqual(t, "rows", 3, len(res.TimeSeries))
	ex.AssertAreEqual(t, "first date", "2024-01-02", ex.FmtShort(res.TimeSeries[0].Timestamp))
	ex.AssertAreEqual(t, "second date", "2024-01-03", ex.FmtShort(res.TimeSeries[1].Timestamp))
	ex.AssertAreEqual(t, "last date", "2024-01-05", ex.FmtShort(res.TimeSeries[2].Timestamp))

	ex.AssertAreEqual(t, "close", 161.5, res.TimeSeries[0].ClosingPrice().Float64)
	ex.AssertNillability(t, "blank close", true, res.TimeSeries[1].Close.Ptr())
	ex.AssertNillability(t, "adjusted close", true, res.TimeSeries[0].AdjustedClose.Ptr())
	ex.AssertAreEqual(t, "location", "America/New_York", res.TimeSeries[0].Timestamp.Location().String())
}

func Test_AlphaVantage_AdjustedPrefersAdjustedClose(t *testing.T) {
	conn := &fakeConnection{body: adjustedResponse}
	avc := getTestClient(conn, true)

	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	res, err := avc.GetDailyTimeSeries(context.Background(), "IBM", start, end)
	if err != nil {
		t.Fatalf("error getting adjusted time series: %s", err)
	}

	ex.AssertAreEqual(t, "function", "TIME_SERIES_DAILY_ADJUSTED", conn.endpoint.Query().Get("function"))
	ex.AssertAreEqual(t, "rows", 2, len(res.TimeSeries))
	ex.AssertAreEqual(t, "close", 161.5, res.TimeSeries[0].Close.Float64)
	ex.AssertAreEqual(t, "closing price", 159.1, res.TimeSeries[0].ClosingPrice().Float64)
}

func Test_AlphaVantage_FullOutputForLongRanges(t *testing.T) {
	conn := &fakeConnection{body: dailyResponse}
	avc := getTestClient(conn, false)

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	if _, err := avc.GetDailyTimeSeries(context.Background(), "IBM", start, end); err != nil {
		t.Fatalf("error getting daily time series: %s", err)
	}

	ex.AssertAreEqual(t, "outputsize", outputSizeFull, conn.endpoint.Query().Get("outputsize"))
}

func Test_AlphaVantage_InvalidSymbolIsNotFound(t *testing.T) {
	conn := &fakeConnection{body: `{"Error Message": "Invalid API call. Please retry or visit the documentation (https://www.alphavantage.co/documentation/) for TIME_SERIES_DAILY."}`}
	avc := getTestClient(conn, false)

	_, err := avc.GetDailyTimeSeries(context.Background(), "ZZZZ", time.Now().AddDate(0, 0, -10), time.Now())
	if !errors.Is(err, m.ErrSymbolNotFound) {
		t.Fatalf("expected ErrSymbolNotFound, got %v", err)
	}
}

func Test_AlphaVantage_RateLimitNoteIsAnError(t *testing.T) {
	conn := &fakeConnection{body: `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute."}`}
	avc := getTestClient(conn, false)

	_, err := avc.GetDailyTimeSeries(context.Background(), "IBM", time.Now().AddDate(0, 0, -10), time.Now())
	if err == nil {
		t.Fatalf("expected an error for a throttled request")
	}
	if errors.Is(err, m.ErrSymbolNotFound) {
		t.Fatalf("throttling must not be reported as a missing symbol")
	}
	if !strings.Contains(err.Error(), "5 calls per minute") {
		t.Fatalf("expected the provider note in the error, got %v", err)
	}
}

func Test_AlphaVantage_BadStatus(t *testing.T) {
	conn := &fakeConnection{status: http.StatusBadGateway, body: "bad gateway"}
	avc := getTestClient(conn, false)

	_, err := avc.GetDailyTimeSeries(context.Background(), "IBM", time.Now().AddDate(0, 0, -10), time.Now())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected a bad status error, got %v", err)
	}
}

func Test_AlphaVantage_TimeSeriesKeys(t *testing.T) {
	ex.AssertAreEqual(t, "daily function", "TIME_SERIES_DAILY", TimeSeriesDaily.Function())
	ex.AssertAreEqual(t, "daily adjusted function", "TIME_SERIES_DAILY_ADJUSTED", TimeSeriesDailyAdjusted.Function())
	ex.AssertAreEqual(t, "daily key", "Time Series (Daily)", TimeSeriesDaily.TimeSeriesKey())
	ex.AssertAreEqual(t, "daily adjusted key", "Time Series (Daily)", TimeSeriesDailyAdjusted.TimeSeriesKey())
}
