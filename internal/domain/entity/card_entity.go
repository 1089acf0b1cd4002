package entity

import "time"

// Set is a card-set catalog entry mirrored from the card-data API.
type Set struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Series      string    `json:"series"`
	ReleaseDate time.Time `json:"release_date"`
	Total       int       `json:"total"`
	SymbolImage string    `json:"symbol_image"`
	LogoImage   string    `json:"logo_image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PriceBand is one variant's price row. Nil fields mean the source had no quote.
type PriceBand struct {
	Low    *float64 `json:"low"`
	Mid    *float64 `json:"mid"`
	High   *float64 `json:"high"`
	Market *float64 `json:"market"`
}

// CardPrices groups the variant price bands overwritten on every sync.
type CardPrices struct {
	Normal          PriceBand `json:"normal"`
	Holofoil        PriceBand `json:"holofoil"`
	ReverseHolofoil PriceBand `json:"reverse_holofoil"`
}

// Card is a catalog entry. Set is populated only by queries that join it.
type Card struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Supertype   string     `json:"supertype"`
	Subtype     string     `json:"subtype"`
	HP          string     `json:"hp"`
	Types       []string   `json:"types"`
	EvolvesFrom *string    `json:"evolves_from"`
	EvolvesTo   *string    `json:"evolves_to"`
	SetID       string     `json:"set_id"`
	SetName     string     `json:"set_name,omitempty"`
	Number      string     `json:"number"`
	Artist      string     `json:"artist"`
	Rarity      string     `json:"rarity"`
	Image       string     `json:"image"`
	Prices      CardPrices `json:"prices"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Set         *Set       `json:"set,omitempty"`
}
