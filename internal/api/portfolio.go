package api

import (
	"context"  // Context for Redis operations
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"crypto_portfolio/internal/domain"     // Importing domain models
	"crypto_portfolio/internal/middleware" // Identity context key
	"crypto_portfolio/internal/utils"      // Cache utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// portfolioCacheTTL bounds how stale a cached portfolio listing may be
const portfolioCacheTTL = 60 * time.Second

// portfolioCacheKey builds the per-user listing cache key
func portfolioCacheKey(clerkID string) string {
	return "portfolios:user:" + clerkID
}

// resolveClerkID prefers the explicit identifier and falls back to the
// token-derived identity stored by the middleware
func resolveClerkID(c *gin.Context, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v, ok := c.Get(middleware.ClerkIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// invalidatePortfolioCache drops the user's cached listing after a write
func invalidatePortfolioCache(c *gin.Context, clerkID string) {
	if v, ok := c.Get("redisClient"); ok {
		if rdb, ok := v.(*redis.Client); ok {
			_ = utils.DeleteCache(context.Background(), rdb, portfolioCacheKey(clerkID))
		}
	}
}

// PortfolioCoinRequest is one coin entry of a create request
type PortfolioCoinRequest struct {
	CoinID    string  `json:"coinId" binding:"required"` // External coin identifier
	Name      string  `json:"name"`                      // Display name
	Symbol    string  `json:"symbol"`                    // Ticker symbol
	Amount    float64 `json:"amount"`                    // Held amount
	Value     float64 `json:"value"`                     // Client-computed value
	Change24h float64 `json:"change24h"`                 // 24h change percentage
}

// CreatePortfolioRequest represents a create-portfolio request
type CreatePortfolioRequest struct {
	UserID     string                 `json:"userId"`                  // Owning user (may come from the token)
	Name       string                 `json:"name" binding:"required"` // Portfolio name
	Locked     bool                   `json:"locked"`                  // Read-only flag
	TotalValue float64                `json:"totalValue"`              // Client-computed total value
	Change24h  float64                `json:"change24h"`               // Client-computed 24h change
	Coins      []PortfolioCoinRequest `json:"coins"`                   // Full coin list
}

// CreatePortfolioHandler creates a portfolio together with its entire
// coin list in one transactional save
func CreatePortfolioHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePortfolioRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		clerkID := resolveClerkID(c, req.UserID) // Explicit ID or token fallback
		var user domain.User                     // Verify the owning user exists
		if err := db.First(&user, "id = ?", clerkID).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Build the portfolio with its coins attached so GORM persists
		// parent and children in a single transaction
		portfolio := domain.Portfolio{
			Name:       req.Name,       // Portfolio name
			Locked:     req.Locked,     // Read-only flag
			TotalValue: req.TotalValue, // Stored as given
			Change24h:  req.Change24h,  // Stored as given
			UserID:     user.ClerkID,   // Foreign key to the owner
		}
		for _, coin := range req.Coins {
			portfolio.Coins = append(portfolio.Coins, domain.PortfolioCoin{
				CoinID:    coin.CoinID,    // External coin identifier
				Name:      coin.Name,      // Display name
				Symbol:    coin.Symbol,    // Ticker symbol
				Amount:    coin.Amount,    // Held amount
				Value:     coin.Value,     // Client-computed value
				Change24h: coin.Change24h, // 24h change percentage
			})
		}
		// Save the portfolio and all coins
		if err := db.Create(&portfolio).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"clerk_id": clerkID,     // Owning user
				"name":     req.Name,    // Portfolio name
				"error":    err.Error(), // Error message
			}).Error("Failed to create portfolio") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create portfolio"})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"clerk_id":     clerkID,        // Owning user
			"portfolio_id": portfolio.ID,   // Generated portfolio ID
			"coins":        len(req.Coins), // Number of coin entries
			"name":         portfolio.Name, // Portfolio name
		}).Info("Portfolio created")
		invalidatePortfolioCache(c, clerkID) // Drop the stale listing
		// The generated ID is deliberately not echoed back; callers
		// re-list to discover it
		c.JSON(http.StatusOK, gin.H{"message": "Portfolio created successfully"})
	}
}

// ListPortfoliosHandler returns all portfolios owned by a user, each with
// its nested coin list
func ListPortfoliosHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		clerkID := c.Param("clerkId") // Owning user from the path
		var user domain.User          // Verify the user exists
		if err := db.First(&user, "id = ?", clerkID).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		ctx := c.Request.Context()             // Request-scoped context
		cacheKey := portfolioCacheKey(clerkID) // Per-user cache key
		portfolios := []domain.Portfolio{}     // Listing to return
		found, err := utils.GetCache(ctx, rdb, cacheKey, &portfolios)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, portfolios)
			return
		}
		// If not in cache, fetch from DB with coins eagerly loaded
		if err := db.Preload("Coins").Where("user_id = ?", clerkID).Find(&portfolios).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"clerk_id": clerkID,     // Owning user
				"error":    err.Error(), // Error message
			}).Error("Failed to list portfolios") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch portfolios"})
			return
		}
		// Serialize empty coin lists as [] rather than null
		for i := range portfolios {
			if portfolios[i].Coins == nil {
				portfolios[i].Coins = []domain.PortfolioCoin{}
			}
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, portfolios, portfolioCacheTTL) // Cache the listing
		c.JSON(http.StatusOK, portfolios)                                     // Return the listing
	}
}

// DeletePortfolioHandler deletes a user's portfolio by name, cascading to
// its coin rows inside one transaction
func DeletePortfolioHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clerkID := resolveClerkID(c, c.Query("clerkId")) // Explicit ID or token fallback
		portfolioName := c.Query("portfolioName")        // Name to delete
		if portfolioName == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "portfolioName is required"})
			return
		}
		var user domain.User // Verify the user exists
		if err := db.First(&user, "id = ?", clerkID).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var portfolio domain.Portfolio // First exact name match, lowest ID wins
		if err := db.Where("user_id = ? AND name = ?", clerkID, portfolioName).First(&portfolio).Error; err != nil {
			// A name miss is a client error, not a server fault
			c.JSON(http.StatusBadRequest, gin.H{"error": "Portfolio not found for this user"})
			return
		}
		// Delete coin rows first, then the portfolio, atomically
		err := db.Transaction(func(tx *gorm.DB) error {
			// Remove the owned coin rows
			if err := tx.Where("portfolio_id = ?", portfolio.ID).Delete(&domain.PortfolioCoin{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the portfolio itself
			if err := tx.Delete(&portfolio).Error; err != nil {
				return err // Return error to rollback
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"clerk_id":     clerkID,      // Owning user
				"portfolio_id": portfolio.ID, // Portfolio being deleted
				"error":        err.Error(),  // Error message
			}).Error("Failed to delete portfolio") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete portfolio"})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"clerk_id":     clerkID,       // Owning user
			"portfolio_id": portfolio.ID,  // Deleted portfolio ID
			"name":         portfolioName, // Deleted portfolio name
		}).Info("Portfolio deleted")
		invalidatePortfolioCache(c, clerkID) // Drop the stale listing
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Portfolio deleted successfully"})
	}
}

// UpdateCoinRequest is one coin entry of an update request. The client
// contract identifies a coin by "id" here, unlike the create path.
// Numeric fields are pointers: a missing field must fail binding without
// rejecting a legitimate 0.
type UpdateCoinRequest struct {
	CoinID    string   `json:"id"`                           // External coin identifier
	Name      string   `json:"name"`                         // Display name
	Symbol    string   `json:"symbol"`                       // Ticker symbol
	Amount    *float64 `json:"amount" binding:"required"`    // Held amount
	Value     *float64 `json:"value" binding:"required"`     // Client-computed value
	Change24h *float64 `json:"change24h" binding:"required"` // 24h change percentage
}

// UpdatePortfolioRequest represents an update-portfolio request. The
// update path never fills in defaults: a payload that omits a numeric
// field is rejected outright rather than zeroing the stored value.
type UpdatePortfolioRequest struct {
	UserID       string              `json:"userId"`                          // Owning user (may come from the token)
	OriginalName string              `json:"originalName" binding:"required"` // Name identifying the portfolio
	Name         string              `json:"name" binding:"required"`         // New portfolio name
	TotalValue   *float64            `json:"totalValue" binding:"required"`   // New total value
	Change24h    *float64            `json:"change24h" binding:"required"`    // New 24h change
	Coins        []UpdateCoinRequest `json:"coins" binding:"dive"`            // Replacement coin list
}

// UpdatePortfolioHandler overwrites a portfolio's scalar fields and
// replaces its entire coin list. Locked portfolios reject every mutation.
// The replacement is all-or-nothing: old rows are deleted and new rows
// inserted in one transaction, never merged.
func UpdatePortfolioHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdatePortfolioRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		clerkID := resolveClerkID(c, req.UserID) // Explicit ID or token fallback
		var user domain.User                     // Verify the user exists
		if err := db.First(&user, "id = ?", clerkID).Error; err != nil {
			// If user not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		var portfolio domain.Portfolio // Locate by original name, lowest ID wins
		err := db.Where("user_id = ? AND name = ?", clerkID, req.OriginalName).First(&portfolio).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// A name miss is a client error, not a server fault
			c.JSON(http.StatusBadRequest, gin.H{"error": "Portfolio not found"})
			return
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio"})
			return
		}
		// A locked portfolio is frozen: name, values and coins all reject mutation
		if portfolio.Locked {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot edit a locked portfolio"})
			return
		}
		// Build the replacement coin rows linked to this portfolio
		coins := make([]domain.PortfolioCoin, 0, len(req.Coins))
		for _, coin := range req.Coins {
			coins = append(coins, domain.PortfolioCoin{
				CoinID:      coin.CoinID,     // External coin identifier
				Name:        coin.Name,       // Display name
				Symbol:      coin.Symbol,     // Ticker symbol
				Amount:      *coin.Amount,    // Held amount
				Value:       *coin.Value,     // Client-computed value
				Change24h:   *coin.Change24h, // 24h change percentage
				PortfolioID: portfolio.ID,    // Foreign key to this portfolio
			})
		}
		// Overwrite scalars and swap the full coin list atomically
		err = db.Transaction(func(tx *gorm.DB) error {
			// Overwrite name and client-computed values
			updates := map[string]any{
				"name":        req.Name,        // New portfolio name
				"total_value": *req.TotalValue, // New total value
				"change24h":   *req.Change24h,  // New 24h change
			}
			if err := tx.Model(&portfolio).Updates(updates).Error; err != nil {
				return err // Return error to rollback
			}
			// Delete the old coin rows
			if err := tx.Where("portfolio_id = ?", portfolio.ID).Delete(&domain.PortfolioCoin{}).Error; err != nil {
				return err // Return error to rollback
			}
			// Insert the freshly built replacement rows
			if len(coins) > 0 {
				if err := tx.Create(&coins).Error; err != nil {
					return err // Return error to rollback
				}
			}
			return nil // Commit transaction
		})
		// Handle transaction result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"clerk_id":     clerkID,      // Owning user
				"portfolio_id": portfolio.ID, // Portfolio being updated
				"error":        err.Error(),  // Error message
			}).Error("Failed to update portfolio") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update portfolio"})
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"clerk_id":     clerkID,      // Owning user
			"portfolio_id": portfolio.ID, // Updated portfolio ID
			"coins":        len(coins),   // Size of the replacement list
		}).Info("Portfolio updated")
		invalidatePortfolioCache(c, clerkID) // Drop the stale listing
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Portfolio updated successfully"})
	}
}
