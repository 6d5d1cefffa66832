package alpha_vantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	c "github.com/fongbrandon1928/Market-Dynamics/api"
	e "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
	m "github.com/fongbrandon1928/Market-Dynamics/data/models"
)

// public
const (
	HostDefault = "www.alphavantage.co"
	Source      = "alphavantage"
)

// private
const (
	// default query parameters
	outputSizeCompact = "compact"
	outputSizeFull    = "full"
	defaultDataType   = "json"

	// compact returns the latest 100 data points, anything older needs full
	compactTradingDays = 100

	// api request elements
	query    = "query"
	symbol   = "symbol"
	function = "function"

	// response keys
	metaDataKey     = "Meta Data"
	errorMessageKey = "Error Message"
	noteKey         = "Note"
	informationKey  = "Information"
)

var (
	timeSeriesDateFormats = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
	}
)

type AlphaVantageClient struct {
	*c.Client
	timeSeries TimeSeries
	now        func() time.Time
}

func GetClient(client *c.Client, adjusted bool) *AlphaVantageClient {
	ts := TimeSeriesDaily
	if adjusted {
		ts = TimeSeriesDailyAdjusted
	}

	return &AlphaVantageClient{
		Client:     client,
		timeSeries: ts,
		now:        time.Now,
	}
}

// GetDailyTimeSeries returns the daily closes for ticker within [start, end), ascending.
// https://www.alphavantage.co/documentation/#daily
func (avc *AlphaVantageClient) GetDailyTimeSeries(ctx context.Context, ticker string, start, end time.Time) (*m.TimeSeriesResult, error) {
	if avc == nil || avc.Client == nil {
		panic("alpha vantage client has not been set.")
	}

	endpoint := avc.buildRequestPath(map[string]string{
		function:     avc.timeSeries.Function(),
		symbol:       ticker,
		"outputsize": avc.outputSize(start),
	})

	response, err := avc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("error requesting %s for %s: %w", avc.timeSeries.Function(), ticker, err)
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error requesting %s for %s: bad status code %d", avc.timeSeries.Function(), ticker, response.StatusCode)
	}

	raw, err := parseRawJson(response.Body)
	if err != nil {
		return nil, err
	}

	if err := checkResponseMessages(raw, ticker); err != nil {
		return nil, err
	}

	metaData, timeZone, err := parseMetaData(raw)
	if err != nil {
		return nil, err
	}

	timeSeriesData, err := parseTimeSeriesDataResult(raw, avc.timeSeries.TimeSeriesKey(), timeZone)
	if err != nil {
		return nil, err
	}

	inRange := func(t *m.TimeSeriesData) bool {
		d := e.DateOf(t.Timestamp)
		return !d.Before(start) && d.Before(end)
	}
	timeSeriesData = e.FilterMultiplePtr(timeSeriesData, inRange)
	slices.SortFunc(timeSeriesData, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })

	metaData.Source = Source

	return &m.TimeSeriesResult{
		Metadata:   metaData,
		TimeSeries: timeSeriesData,
	}, nil
}

func (avc *AlphaVantageClient) buildRequestPath(params map[string]string) *url.URL {
	// build our URL
	endpoint := &url.URL{}
	endpoint.Path = query

	// base parameters
	query := endpoint.Query()
	query.Set("apikey", avc.Client.ApiKey)
	query.Set("datatype", defaultDataType)
	query.Set("outputsize", outputSizeCompact)

	// additional parameters
	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

// outputSize picks full when start is older than what compact covers, weekends make this generous
func (avc *AlphaVantageClient) outputSize(start time.Time) string {
	if avc.now().Sub(start) > time.Duration(compactTradingDays)*24*time.Hour {
		return outputSizeFull
	}
	return outputSizeCompact
}

// checkResponseMessages turns the plain text messages alpha vantage sends with a 200 into errors
func checkResponseMessages(raw map[string]json.RawMessage, ticker string) error {
	if msg, ok := raw[errorMessageKey]; ok {
		slog.Debug("alpha vantage rejected symbol", slog.String("symbol", ticker), slog.String("message", string(msg)))
		return fmt.Errorf("alpha vantage has no series for %s: %w", ticker, m.ErrSymbolNotFound)
	}

	for _, key := range []string{noteKey, informationKey} {
		if msg, ok := raw[key]; ok {
			var text string
			if err := json.Unmarshal(msg, &text); err != nil {
				text = string(msg)
			}
			return fmt.Errorf("alpha vantage refused request for %s: %s", ticker, text)
		}
	}

	return nil
}

func parseRawJson(reader io.Reader) (raw map[string]json.RawMessage, err error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	// converting to a <string, raw message> map
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	return
}

func parseMetaData(raw map[string]json.RawMessage) (*m.TimeSeriesMetadata, *time.Location, error) {
	var metadataElements map[string]string
	if err := json.Unmarshal(raw[metaDataKey], &metadataElements); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling meta data: %w", err)
	}

	metaDataKeys := slices.Collect(maps.Keys(metadataElements))

	// parse information, optional
	var information null.String
	inf := func(s string) bool { return strings.HasSuffix(s, ". Information") }
	if informationKey, err := e.FilterSingle(metaDataKeys, inf); err == nil {
		information = null.StringFrom(metadataElements[informationKey])
	}

	// parse symbol
	sf := func(s string) bool { return strings.HasSuffix(s, ". Symbol") }
	symbolKey, err := e.FilterSingle(metaDataKeys, sf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting symbol for meta data")
	}

	// parse time zone
	tzf := func(s string) bool { return strings.HasSuffix(s, ". Time Zone") }
	timeZoneKey, err := e.FilterSingle(metaDataKeys, tzf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting time zone for meta data")
	}

	timeZone, err := getTimeZone(metadataElements[timeZoneKey])
	if err != nil {
		return nil, nil, fmt.Errorf("error converting time zone key %s, to time.Location: %w", metadataElements[timeZoneKey], err)
	}

	// parse last refreshed
	lrf := func(s string) bool { return strings.HasSuffix(s, ". Last Refreshed") }
	lastRefreshedKey, err := e.FilterSingle(metaDataKeys, lrf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting last refreshed date")
	}

	lastRefreshed, err := parseDate(metadataElements[lastRefreshedKey], timeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing last refreshed date")
	}

	res := m.TimeSeriesMetadata{
		Symbol:        metadataElements[symbolKey],
		LastRefreshed: lastRefreshed,
		Information:   information,
		TimeZone:      metadataElements[timeZoneKey],
	}

	return &res, timeZone, nil
}

func parseTimeSeriesDataResult(raw map[string]json.RawMessage, key string, location *time.Location) ([]*m.TimeSeriesData, error) {
	rawSeries, ok := raw[key]
	if !ok {
		return nil, fmt.Errorf("error finding %q in alpha vantage response", key)
	}

	var timeSeriesElements map[string]map[string]string
	if err := json.Unmarshal(rawSeries, &timeSeriesElements); err != nil {
		return nil, fmt.Errorf("error unmarshaling time series: %w", err)
	}

	timeSeries := make([]*m.TimeSeriesData, 0, len(timeSeriesElements))
	if len(timeSeriesElements) == 0 {
		return timeSeries, nil
	}

	// populate the lookups
	var firstValue map[string]string
	for _, v := range timeSeriesElements {
		firstValue = v
		break
	}
	valueKeys := slices.Collect(maps.Keys(firstValue))

	// parse close key in raw json lookup
	cf := func(s string) bool { return strings.HasSuffix(strings.ToLower(s), ". close") }
	closeKey, err := e.FilterSingle(valueKeys, cf)
	if err != nil {
		return nil, fmt.Errorf("error extracting close key for time series. Available headers: %v", valueKeys)
	}

	// adjusted close only exists on the adjusted functions
	acf := func(s string) bool { return strings.HasSuffix(strings.ToLower(s), ". adjusted close") }
	adjustedCloseKey, _ := e.FilterSingle(valueKeys, acf)

	for timeSeriesKey, timeSeriesValue := range timeSeriesElements {
		// get timestamp
		timestamp, err := parseDate(timeSeriesKey, location)
		if err != nil {
			return nil, fmt.Errorf("error converting TIMESTAMP from string to time.Time: %w", err)
		}

		tsd := &m.TimeSeriesData{
			Timestamp: timestamp,
			Close:     parseFloat(timeSeriesValue[closeKey]),
		}

		if adjustedCloseKey != "" {
			tsd.AdjustedClose = parseFloat(timeSeriesValue[adjustedCloseKey])
		}

		timeSeries = append(timeSeries, tsd)
	}

	return timeSeries, nil
}

func getTimeZone(location string) (*time.Location, error) {
	var loc string
	switch strings.ToUpper(location) {
	case "US/EASTERN":
		loc = "America/New_York"
	case "UTC", "":
		return time.UTC, nil
	default:
		if l, err := time.LoadLocation(location); err == nil {
			return l, nil
		}
		slog.Warn("time zone is not recognized, using UTC", slog.String("time_zone", location))
		return time.UTC, nil
	}

	res, err := time.LoadLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("error parsing time zone %s in time.LoadLocation", loc)
	}

	return res, nil
}

func parseDate(dateString string, location *time.Location) (time.Time, error) {
	for _, format := range timeSeriesDateFormats {
		t, err := time.ParseInLocation(format, dateString, location)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", dateString)
}

func parseFloat(val string) null.Float {
	if val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.NewFloat(0, false)
}
