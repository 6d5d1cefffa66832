package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	schemeHttps      = "https"
	defaultUserAgent = "Mozilla/5.0 (compatible; market-dynamics/1.0)"
)

// Connection is the transport a provider client talks through, tests swap it out
type Connection interface {
	Request(ctx context.Context, endpoint *url.URL) (*http.Response, error)
}

type ClientHost struct {
	client    *http.Client
	host      string
	scheme    string
	userAgent string
	limiter   *rate.Limiter
}

type Client struct {
	Connection Connection
	ApiKey     string
}

// Request fills in scheme and host, waits on the rate limiter and issues a GET
func (conn *ClientHost) Request(ctx context.Context, endpoint *url.URL) (*http.Response, error) {
	if conn.limiter != nil {
		if err := conn.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("error waiting on rate limiter for %s: %w", conn.host, err)
		}
	}

	endpoint.Scheme = conn.scheme
	if endpoint.Scheme == "" {
		endpoint.Scheme = schemeHttps
	}
	endpoint.Host = conn.host

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building request for %s: %w", conn.host, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", conn.userAgent)

	return conn.client.Do(req)
}

// ClientFactory builds a client against host. A nil limiter disables throttling.
func ClientFactory(host string, apiKey string, timeout time.Duration, limiter *rate.Limiter) *Client {
	client := &http.Client{
		Timeout: timeout,
	}

	clientHost := &ClientHost{
		client:    client,
		host:      host,
		scheme:    schemeHttps,
		userAgent: defaultUserAgent,
		limiter:   limiter,
	}

	return NewClient(clientHost, apiKey)
}

// NewClient pairs a connection with the api key the provider expects
func NewClient(conn Connection, apiKey string) *Client {
	return &Client{
		Connection: conn,
		ApiKey:     apiKey,
	}
}

// LimiterPerMinute allows n requests a minute with a burst of n
func LimiterPerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), n)
}

// LimiterPerSecond allows n requests a second with a burst of n
func LimiterPerSecond(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(n), n)
}
