package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/guregu/null/v6"

	c "github.com/fongbrandon1928/Market-Dynamics/api"
	e "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
)

const (
	HostDefault = "query1.finance.yahoo.com"
	Source      = "yahoo"

	chartPath     = "/v8/finance/chart/"
	intervalDaily = "1d"
	notFoundCode  = "Not Found"
)

type YahooClient struct {
	*c.Client
}

func GetClient(client *c.Client) *YahooClient {
	return &YahooClient{client}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol               string `json:"symbol"`
	Currency             string `json:"currency"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	RegularMarketTime    int64  `json:"regularMarketTime"`
}

type indicators struct {
	Quote []struct {
		Close []null.Float `json:"close"`
	} `json:"quote"`
	AdjClose []struct {
		AdjClose []null.Float `json:"adjclose"`
	} `json:"adjclose"`
}

// GetDailyTimeSeries returns the daily closes for ticker within [start, end), ascending.
// Closes are split and dividend adjusted when yahoo sends adjclose.
func (yc *YahooClient) GetDailyTimeSeries(ctx context.Context, ticker string, start, end time.Time) (*m.TimeSeriesResult, error) {
	if yc == nil || yc.Client == nil {
		panic("yahoo client has not been set.")
	}

	endpoint := buildRequestPath(ticker, start, end)

	response, err := yc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error requesting chart for %s: %w", ticker, err)
	}

	defer response.Body.Close()

	var body chartResponse
	decodeErr := json.NewDecoder(response.Body).Decode(&body)

	if isNotFound(response.StatusCode, body.Chart.Error) {
		return nil, fmt.Errorf("yahoo has no chart for %s: %w", ticker, m.ErrSymbolNotFound)
	}

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error requesting chart for %s: bad status code %d", ticker, response.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("error unmarshaling chart response for %s: %w", ticker, decodeErr)
	}

	if body.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo chart error for %s: %s: %s", ticker, body.Chart.Error.Code, body.Chart.Error.Description)
	}

	if len(body.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo returned no chart result for %s: %w", ticker, m.ErrSymbolNotFound)
	}

	return parseChartResult(body.Chart.Result[0], start, end)
}

func buildRequestPath(ticker string, start, end time.Time) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = chartPath + ticker
	endpoint.RawPath = chartPath + url.PathEscape(ticker)

	query := endpoint.Query()
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("interval", intervalDaily)
	query.Set("events", "div,split")
	query.Set("includeAdjustedClose", "true")

	endpoint.RawQuery = query.Encode()

	return endpoint
}

func isNotFound(status int, chartErr *chartError) bool {
	if chartErr != nil && e.AreEqual(chartErr.Code, notFoundCode) {
		return true
	}
	return status == http.StatusNotFound
}

func parseChartResult(result chartResult, start, end time.Time) (*m.TimeSeriesResult, error) {
	location := time.UTC
	if result.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(result.Meta.ExchangeTimezoneName); err == nil {
			location = l
		}
	}

	var closes, adjCloses []null.Float
	if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	timeSeries := make([]*m.TimeSeriesData, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		tsd := &m.TimeSeriesData{
			Timestamp: time.Unix(ts, 0).In(location),
		}
		if i < len(closes) {
			tsd.Close = closes[i]
		}
		if i < len(adjCloses) {
			tsd.AdjustedClose = adjCloses[i]
		}
		timeSeries = append(timeSeries, tsd)
	}

	inRange := func(t *m.TimeSeriesData) bool {
		d := e.DateOf(t.Timestamp)
		return !d.Before(start) && d.Before(end)
	}
	timeSeries = e.FilterMultiplePtr(timeSeries, inRange)
	slices.SortFunc(timeSeries, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })

	metaData := &m.TimeSeriesMetadata{
		Symbol:   result.Meta.Symbol,
		TimeZone: location.String(),
		Source:   Source,
	}
	if result.Meta.RegularMarketTime != 0 {
		metaData.LastRefreshed = time.Unix(result.Meta.RegularMarketTime, 0).In(location)
	}
	if result.Meta.Currency != "" {
		metaData.Information = null.StringFrom("prices in " + result.Meta.Currency)
	}

	return &m.TimeSeriesResult{
		Metadata:   metaData,
		TimeSeries: timeSeries,
	}, nil
}
