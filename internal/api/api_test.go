package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"crypto_portfolio/internal/domain"
	"crypto_portfolio/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// setupTestDB opens a fresh in-memory database migrated with the three
// models. The DSN is namespaced by test name so parallel tests never
// share state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Portfolio{}, &domain.PortfolioCoin{}))
	return db
}

// newTestRouter wires the user and portfolio routes the way cmd/server
// does, without Redis (handlers degrade to cacheless operation).
func newTestRouter(db *gorm.DB) *gin.Engine {
	r := gin.New()
	r.POST("/api/users", middleware.IdentityMiddleware(), SyncUserHandler(db))
	portfolioGroup := r.Group("/api/portfolios")
	portfolioGroup.Use(middleware.IdentityMiddleware())
	portfolioGroup.POST("", CreatePortfolioHandler(db))
	portfolioGroup.GET("/user/:clerkId", ListPortfoliosHandler(db, nil))
	portfolioGroup.DELETE("/delete", DeletePortfolioHandler(db))
	portfolioGroup.PUT("/update", UpdatePortfolioHandler(db))
	return r
}

// doJSON performs a request with an optional JSON body and returns the recorder
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// seedUser inserts a user row directly
func seedUser(t *testing.T, db *gorm.DB, clerkID string) domain.User {
	t.Helper()
	user := domain.User{ClerkID: clerkID, Email: clerkID + "@example.com", Name: "Test User"}
	require.NoError(t, db.Create(&user).Error)
	return user
}
