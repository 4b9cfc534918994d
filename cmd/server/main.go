package main

import (
	"context"                              // context package is needed for Redis operations
	"crypto_portfolio/internal/api"        // Custom package for API handlers
	"crypto_portfolio/internal/config"     // Custom package for configuration
	"crypto_portfolio/internal/market"     // Custom package for the market gateway
	"crypto_portfolio/internal/middleware" // Custom package for middleware
	"log"                                  // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Setup the market data gateway
	marketClient := market.NewClient(cfg.CoinGeckoURL)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Market routes (read-only proxies to the price API)
	marketGroup := r.Group("/api/market")
	marketGroup.GET("/top-coins", api.TopCoinsHandler(marketClient, redisClient))   // Raw top-coins proxy
	marketGroup.GET("/trending", api.TrendingHandler(marketClient, redisClient))    // Raw trending proxy
	marketGroup.GET("/coins", api.AvailableCoinsHandler(marketClient, redisClient)) // Simplified coin list

	// User sync route (identity middleware supplies the Clerk ID when the
	// body omits it)
	r.POST("/api/users", middleware.IdentityMiddleware(), api.SyncUserHandler(db))

	// Portfolio routes; the write handlers pull the Redis client from the
	// context to invalidate the cached listings
	portfolioGroup := r.Group("/api/portfolios")
	portfolioGroup.Use(middleware.IdentityMiddleware(), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	portfolioGroup.POST("", api.CreatePortfolioHandler(db))                          // Create portfolio endpoint
	portfolioGroup.GET("/user/:clerkId", api.ListPortfoliosHandler(db, redisClient)) // List portfolios endpoint
	portfolioGroup.DELETE("/delete", api.DeletePortfolioHandler(db))                 // Delete portfolio endpoint
	portfolioGroup.PUT("/update", api.UpdatePortfolioHandler(db))                    // Update portfolio endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
