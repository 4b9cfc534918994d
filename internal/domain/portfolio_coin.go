package domain

// PortfolioCoin Model
type PortfolioCoin struct {
	ID          uint    `gorm:"primaryKey" json:"id"`              // Primary key
	CoinID      string  `gorm:"not null" json:"coinId"`            // External coin identifier (e.g. "bitcoin")
	Name        string  `json:"name"`                              // Display name
	Symbol      string  `json:"symbol"`                            // Ticker symbol
	Amount      float64 `json:"amount"`                            // Held amount
	Value       float64 `json:"value"`                             // Client-computed value of the holding
	Change24h   float64 `gorm:"column:change24h" json:"change24h"` // 24h change percentage
	PortfolioID uint    `gorm:"index;not null" json:"-"`           // Foreign key to Portfolio
}
