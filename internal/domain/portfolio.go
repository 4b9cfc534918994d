package domain

// Portfolio Model
// The user foreign key is one-directional and never serialized; the
// owning user is always known from the request context.
type Portfolio struct {
	ID         uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	Name       string          `gorm:"not null" json:"name"`                         // Portfolio name (unique per user by convention only)
	Locked     bool            `gorm:"default:false" json:"locked"`                  // Read-only flag: update path must reject mutation
	TotalValue float64         `json:"totalValue"`                                   // Client-computed total value, stored as given
	Change24h  float64         `gorm:"column:change24h" json:"change24h"`            // Client-computed 24h change percentage
	UserID     string          `gorm:"index;not null" json:"-"`                      // Foreign key to User
	Coins      []PortfolioCoin `gorm:"foreignKey:PortfolioID" json:"portfolioCoins"` // Owned coin holdings, removed with the portfolio
}
