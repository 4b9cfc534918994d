package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstream serves a fixed status and body and records the request
func fakeUpstream(t *testing.T, status int, body string, gotPath *string, gotQuery *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotPath != nil {
			*gotPath = r.URL.Path
		}
		if gotQuery != nil {
			*gotQuery = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTopCoinsPassesBodyThrough(t *testing.T) {
	var path, query string
	srv := fakeUpstream(t, http.StatusOK, `[{"id":"bitcoin"}]`, &path, &query)
	client := NewClient(srv.URL)

	status, body, err := client.TopCoins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `[{"id":"bitcoin"}]`, string(body))

	// The fixed top-coins query, sparkline and change windows included
	assert.Equal(t, "/coins/markets", path)
	assert.Contains(t, query, "vs_currency=usd")
	assert.Contains(t, query, "order=market_cap_desc")
	assert.Contains(t, query, "per_page=50")
	assert.Contains(t, query, "sparkline=true")
	assert.Contains(t, query, "price_change_percentage=24h,7d")
}

func TestTopCoinsRelaysUpstreamErrors(t *testing.T) {
	srv := fakeUpstream(t, http.StatusTooManyRequests, `{"status":{"error_code":429,"error_message":"rate limited"}}`, nil, nil)
	client := NewClient(srv.URL)

	status, body, err := client.TopCoins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Contains(t, string(body), "rate limited")
}

func TestTrendingHitsTrendingEndpoint(t *testing.T) {
	var path string
	srv := fakeUpstream(t, http.StatusOK, `{"coins":[]}`, &path, nil)
	client := NewClient(srv.URL)

	status, body, err := client.Trending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, `{"coins":[]}`, string(body))
	assert.Equal(t, "/search/trending", path)
}

func TestAvailableCoinsSimplifies(t *testing.T) {
	upstream := `[
		{"id":"bitcoin","name":"Bitcoin","symbol":"btc","current_price":43000.5,"image":"https://img/btc.png","market_cap":1,"ath":69000},
		{"id":"ethereum","name":"Ethereum","symbol":"eth","current_price":2200.25,"image":"https://img/eth.png","total_volume":2}
	]`
	srv := fakeUpstream(t, http.StatusOK, upstream, nil, nil)
	client := NewClient(srv.URL)

	coins, err := client.AvailableCoins(context.Background())
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, Coin{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: 43000.5, Image: "https://img/btc.png"}, coins[0])
	assert.Equal(t, Coin{ID: "ethereum", Name: "Ethereum", Symbol: "eth", Price: 2200.25, Image: "https://img/eth.png"}, coins[1])
}

func TestAvailableCoinsErrorEnvelope(t *testing.T) {
	srv := fakeUpstream(t, http.StatusTooManyRequests, `{"status":{"error_code":429,"error_message":"rate limited"}}`, nil, nil)
	client := NewClient(srv.URL)

	coins, err := client.AvailableCoins(context.Background())
	assert.Nil(t, coins)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Code)
	assert.Equal(t, "rate limited", apiErr.Message)
}

func TestAvailableCoinsNonArrayBody(t *testing.T) {
	srv := fakeUpstream(t, http.StatusOK, `{"unexpected":"object"}`, nil, nil)
	client := NewClient(srv.URL)

	coins, err := client.AvailableCoins(context.Background())
	assert.Nil(t, coins)

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Contains(t, string(formatErr.Body), "unexpected")
}

func TestAvailableCoinsNetworkFailure(t *testing.T) {
	srv := fakeUpstream(t, http.StatusOK, `[]`, nil, nil)
	srv.Close() // Connection refused from here on
	client := NewClient(srv.URL)

	_, err := client.AvailableCoins(context.Background())
	require.Error(t, err)

	// Neither typed error applies to a transport fault
	var apiErr *APIError
	var formatErr *FormatError
	assert.False(t, errors.As(err, &apiErr))
	assert.False(t, errors.As(err, &formatErr))
}

func TestAvailableCoinsEmptyArray(t *testing.T) {
	srv := fakeUpstream(t, http.StatusOK, `[]`, nil, nil)
	client := NewClient(srv.URL)

	coins, err := client.AvailableCoins(context.Background())
	require.NoError(t, err)
	assert.Empty(t, coins)
}
