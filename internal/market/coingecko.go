package market

import (
	"context"       // Request-scoped cancellation for outbound calls
	"encoding/json" // JSON decoding of upstream bodies
	"fmt"           // Error formatting
	"io"            // Reading response bodies
	"net/http"      // Outbound HTTP client
	"strings"       // String manipulation
	"time"          // Client timeout
)

// Fixed upstream queries. The service only ever issues these three.
const (
	topCoinsQuery = "/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=50&page=1&sparkline=true&price_change_percentage=24h,7d"
	marketsQuery  = "/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=50&page=1"
	trendingQuery = "/search/trending"
)

// Coin is the simplified record returned by AvailableCoins. All other
// upstream fields are discarded.
type Coin struct {
	ID     string  `json:"id"`     // CoinGecko coin identifier
	Name   string  `json:"name"`   // Display name
	Symbol string  `json:"symbol"` // Ticker symbol
	Price  float64 `json:"price"`  // Current price in USD
	Image  string  `json:"image"`  // Icon URL
}

// upstreamCoin covers just the fields of the CoinGecko markets schema
// that survive simplification
type upstreamCoin struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	CurrentPrice float64 `json:"current_price"`
	Image        string  `json:"image"`
}

// APIError is the upstream error envelope (e.g. rate limiting), carrying
// the numeric code and message from the body's status object.
type APIError struct {
	Code    int    // Upstream error code, relayed as the response status
	Message string // Upstream error message
}

func (e *APIError) Error() string {
	return fmt.Sprintf("market API error %d: %s", e.Code, e.Message)
}

// FormatError reports an upstream body that is neither an error envelope
// nor the expected JSON array. It keeps the raw body for the caller.
type FormatError struct {
	Body []byte // Raw upstream body
}

func (e *FormatError) Error() string {
	return "unexpected response format from market API"
}

// Client is a stateless gateway to the CoinGecko REST API. Each call is a
// single GET with a bounded timeout; there is no retry or backoff, and
// upstream rate-limit envelopes are surfaced to the caller.
type Client struct {
	BaseURL    string       // API base URL, e.g. https://api.coingecko.com/api/v3
	HTTPClient *http.Client // Underlying HTTP client
}

// NewClient creates a market client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),          // Normalize trailing slash
		HTTPClient: &http.Client{Timeout: 10 * time.Second}, // Bounded outbound timeout
	}
}

// fetch issues one GET and returns the upstream status code and raw body
func (c *Client) fetch(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.HTTPClient.Do(req) // Blocking outbound call
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// TopCoins fetches the top-50-by-market-cap query, sparkline included.
// The body is returned unmodified, upstream error bodies included.
func (c *Client) TopCoins(ctx context.Context) (int, []byte, error) {
	return c.fetch(ctx, topCoinsQuery)
}

// Trending fetches the trending-search query. Pass-through like TopCoins.
func (c *Client) Trending(ctx context.Context) (int, []byte, error) {
	return c.fetch(ctx, trendingQuery)
}

// AvailableCoins fetches the markets query and reduces each entry to the
// simplified Coin record. An upstream error envelope comes back as
// *APIError, a non-array body as *FormatError.
func (c *Client) AvailableCoins(ctx context.Context) ([]Coin, error) {
	_, body, err := c.fetch(ctx, marketsQuery)
	if err != nil {
		return nil, err
	}
	// Rate limits and other upstream faults arrive as an object with a
	// status.error_code field instead of the usual array
	var envelope struct {
		Status *struct {
			ErrorCode    int    `json:"error_code"`
			ErrorMessage string `json:"error_message"`
		} `json:"status"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Status != nil && envelope.Status.ErrorCode != 0 {
		return nil, &APIError{Code: envelope.Status.ErrorCode, Message: envelope.Status.ErrorMessage}
	}
	var upstream []upstreamCoin
	if err := json.Unmarshal(body, &upstream); err != nil {
		return nil, &FormatError{Body: body} // Not the array we expected
	}
	coins := make([]Coin, 0, len(upstream))
	for _, u := range upstream {
		coins = append(coins, Coin{
			ID:     u.ID,
			Name:   u.Name,
			Symbol: u.Symbol,
			Price:  u.CurrentPrice,
			Image:  u.Image,
		})
	}
	return coins, nil
}
