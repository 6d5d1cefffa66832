package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestHost(t *testing.T, handler http.HandlerFunc, limiter *rate.Limiter) *ClientHost {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	return &ClientHost{
		client:    srv.Client(),
		host:      u.Host,
		scheme:    u.Scheme,
		userAgent: defaultUserAgent,
		limiter:   limiter,
	}
}

func TestClientHostRequestSetsHostAndHeaders(t *testing.T) {
	var gotPath, gotQuery, gotAgent string
	conn := newTestHost(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("symbol")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `{"ok":true}`)
	}, nil)

	endpoint := &url.URL{Path: "/query", RawQuery: url.Values{"symbol": {"SPY"}}.Encode()}
	res, err := conn.Request(context.Background(), endpoint)
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, "/query", gotPath)
	assert.Equal(t, "SPY", gotQuery)
	assert.Equal(t, defaultUserAgent, gotAgent)
}

func TestClientHostRequestHonoursCancelledContext(t *testing.T) {
	// one token, already spent, next token is an hour away
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	limiter.Allow()

	conn := newTestHost(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not reach the server")
	}, limiter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Request(ctx, &url.URL{Path: "/query"})
	require.Error(t, err)
}

func TestClientFactoryDefaults(t *testing.T) {
	c := ClientFactory("www.alphavantage.co", "key", 5*time.Second, nil)

	host, ok := c.Connection.(*ClientHost)
	require.True(t, ok)
	assert.Equal(t, "key", c.ApiKey)
	assert.Equal(t, schemeHttps, host.scheme)
	assert.Equal(t, 5*time.Second, host.client.Timeout)
	assert.Nil(t, host.limiter)
}

func TestLimiters(t *testing.T) {
	assert.Nil(t, LimiterPerMinute(0))
	assert.Nil(t, LimiterPerSecond(-1))

	perMinute := LimiterPerMinute(5)
	require.NotNil(t, perMinute)
	assert.Equal(t, 5, perMinute.Burst())
	assert.InDelta(t, 5.0/60.0, float64(perMinute.Limit()), 1e-9)

	perSecond := LimiterPerSecond(2)
	require.NotNil(t, perSecond)
	assert.Equal(t, rate.Limit(2), perSecond.Limit())
}
