package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Card conditions accepted for a collection entry, best to worst.
const (
	QualityMint          = "M"
	QualityNearMint      = "NM"
	QualityLightlyPlayed = "LP"
	QualityModerately    = "MP"
	QualityHeavilyPlayed = "HP"
	QualityDamaged       = "DMG"
)

// Qualities lists the accepted conditions in grading order.
func Qualities() []string {
	return []string{QualityMint, QualityNearMint, QualityLightlyPlayed, QualityModerately, QualityHeavilyPlayed, QualityDamaged}
}

// NormalizeQuality accepts "nm" or " Nm " as NM.
func NormalizeQuality(q string) string {
	return strings.ToUpper(strings.TrimSpace(q))
}

func IsQuality(q string) bool {
	return slices.Contains(Qualities(), q)
}

// UserCard is a card owned by a user.
// Card and SellerName are filled by listing queries.
type UserCard struct {
	ID         string           `json:"id"`
	UserID     string           `json:"user_id"`
	CardID     string           `json:"card_id"`
	Quality    string           `json:"quality"`
	ForSale    bool             `json:"for_sale"`
	Price      *decimal.Decimal `json:"price"`
	Notes      string           `json:"notes"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Card       *Card            `json:"card,omitempty"`
	SellerName string           `json:"seller_name,omitempty"`
}
