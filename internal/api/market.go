package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"crypto_portfolio/internal/market" // Market data gateway
	"crypto_portfolio/internal/utils"  // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// marketCacheTTL bounds how stale a cached upstream payload may be.
// Short on purpose: it exists to absorb bursts against the upstream
// rate limit, not to serve old prices.
const marketCacheTTL = 60 * time.Second

// TopCoinsHandler proxies the top-50-by-market-cap query and relays the
// upstream status and body unmodified, error bodies included
func TopCoinsHandler(client *market.Client, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()    // Request-scoped context
		cacheKey := "market:topcoins" // Single fixed query, single key
		var cached string
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
		status, body, err := client.TopCoins(ctx) // Single outbound GET
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(), // Error message
			}).Error("Failed to fetch top coins") // Log failure
			// Return internal server error with an opaque message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top coins"})
			return
		}
		// Only successful upstream bodies are worth caching
		if status == http.StatusOK {
			_ = utils.SetCache(ctx, rdb, cacheKey, string(body), marketCacheTTL)
		}
		c.Data(status, "application/json", body) // Relay status and body as-is
	}
}

// TrendingHandler proxies the trending-search query; same relay rules as
// TopCoinsHandler
func TrendingHandler(client *market.Client, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()    // Request-scoped context
		cacheKey := "market:trending" // Single fixed query, single key
		var cached string
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
		status, body, err := client.Trending(ctx) // Single outbound GET
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"error": err.Error(), // Error message
			}).Error("Failed to fetch trending coins") // Log failure
			// Return internal server error with an opaque message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trending coins"})
			return
		}
		// Only successful upstream bodies are worth caching
		if status == http.StatusOK {
			_ = utils.SetCache(ctx, rdb, cacheKey, string(body), marketCacheTTL)
		}
		c.Data(status, "application/json", body) // Relay status and body as-is
	}
}

// AvailableCoinsHandler returns the simplified top-50 coin list. Upstream
// error envelopes are relayed with their own code, non-array bodies come
// back as 502, and anything else that fails is an opaque 500.
func AvailableCoinsHandler(client *market.Client, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context() // Request-scoped context
		cacheKey := "market:coins" // Single fixed query, single key
		var coins []market.Coin
		found, err := utils.GetCache(ctx, rdb, cacheKey, &coins)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, coins)
			return
		}
		coins, err = client.AvailableCoins(ctx) // Fetch and simplify
		if err != nil {
			var apiErr *market.APIError
			var formatErr *market.FormatError
			switch {
			case errors.As(err, &apiErr):
				// Relay the upstream error code and message (e.g. rate limits)
				code := apiErr.Code
				if code < 100 || code > 599 {
					code = http.StatusBadGateway // Upstream codes outside the HTTP range
				}
				c.JSON(code, gin.H{"error": "API error: " + apiErr.Message})
			case errors.As(err, &formatErr):
				// Upstream body was neither an envelope nor an array
				c.JSON(http.StatusBadGateway, gin.H{
					"error":    "Unexpected response format", // What went wrong
					"response": string(formatErr.Body),      // Raw upstream body
				})
			default:
				logrus.WithFields(logrus.Fields{
					"error": err.Error(), // Error message
				}).Error("Failed to fetch coins") // Log failure
				// Return internal server error with an opaque message
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch coins"})
			}
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, coins, marketCacheTTL) // Cache the simplified list
		c.JSON(http.StatusOK, coins)                                  // Return the simplified list
	}
}
