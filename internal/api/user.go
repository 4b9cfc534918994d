package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"crypto_portfolio/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// SyncUserRequest represents a user sync request
type SyncUserRequest struct {
	ClerkID  string `json:"clerkId"`  // External identity (may come from the token instead)
	Email    string `json:"email"`    // User email
	Name     string `json:"name"`     // Display name
	ImageURL string `json:"imageUrl"` // Avatar URL
}

// SyncUserHandler upserts a user by their external identity. Matching on
// the Clerk ID, it overwrites the mutable profile fields in place or
// inserts a new row with an empty portfolio set. Idempotent.
func SyncUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SyncUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		clerkID := resolveClerkID(c, req.ClerkID) // Explicit ID or token fallback
		if clerkID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "clerkId is required"})
			return
		}
		var user domain.User // Fetch existing user if any
		err := db.First(&user, "id = ?", clerkID).Error
		switch {
		case err == nil:
			// Overwrite mutable profile fields, keep the portfolio set
			user.Email = req.Email
			user.Name = req.Name
			user.ImageURL = req.ImageURL
			err = db.Save(&user).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			// Insert a new user
			user = domain.User{ClerkID: clerkID, Email: req.Email, Name: req.Name, ImageURL: req.ImageURL}
			err = db.Create(&user).Error
		}
		// Handle storage result
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"clerk_id": clerkID,     // External identity
				"error":    err.Error(), // Error message
			}).Error("User sync failed") // Log sync failure
			// Return internal server error with an opaque message
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error syncing user"})
			return
		}
		// Log successful sync
		logrus.WithFields(logrus.Fields{
			"clerk_id": clerkID, // External identity
		}).Info("User synced")
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "User synced successfully"})
	}
}
