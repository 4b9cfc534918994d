package api

import (
	"net/http"
	"testing"

	"crypto_portfolio/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncUserCreatesNewUser(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/users", map[string]any{
		"clerkId":  "user_1",
		"email":    "alice@example.com",
		"name":     "Alice",
		"imageUrl": "https://img.example.com/alice.png",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "User synced successfully")

	var user domain.User
	require.NoError(t, db.First(&user, "id = ?", "user_1").Error)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "Alice", user.Name)
	assert.Equal(t, "https://img.example.com/alice.png", user.ImageURL)
}

func TestSyncUserIsIdempotentUpsert(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	first := map[string]any{"clerkId": "user_1", "email": "old@example.com", "name": "Old Name"}
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/users", first).Code)

	// A portfolio created between syncs must survive the re-sync
	portfolio := domain.Portfolio{Name: "Main", UserID: "user_1"}
	require.NoError(t, db.Create(&portfolio).Error)

	second := map[string]any{"clerkId": "user_1", "email": "new@example.com", "name": "New Name", "imageUrl": "https://img.example.com/new.png"}
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPost, "/api/users", second).Code)

	// Never a duplicate row
	var count int64
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", "user_1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Mutable fields overwritten
	var user domain.User
	require.NoError(t, db.First(&user, "id = ?", "user_1").Error)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "https://img.example.com/new.png", user.ImageURL)

	// Portfolio set preserved
	var portfolios int64
	require.NoError(t, db.Model(&domain.Portfolio{}).Where("user_id = ?", "user_1").Count(&portfolios).Error)
	assert.Equal(t, int64(1), portfolios)
}

func TestSyncUserRequiresIdentity(t *testing.T) {
	db := setupTestDB(t)
	r := newTestRouter(db)

	// No clerkId in the body and no bearer token
	w := doJSON(t, r, http.MethodPost, "/api/users", map[string]any{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "clerkId is required")
}
