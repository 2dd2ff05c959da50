package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Coin — запись монеты из листинга провайдера
type Coin struct {
	ID                string          `json:"id"`
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	CurrentPrice      decimal.Decimal `json:"current_price"`
	PriceChangePct24h decimal.Decimal `json:"price_change_percentage_24h"`
	MarketCapRank     *int            `json:"market_cap_rank"` // nil — ранг неизвестен
}

// CoinDetail — расширенная карточка монеты (/coins/{id})
type CoinDetail struct {
	Coin
	LastUpdated   time.Time                  `json:"last_updated"`
	Description   string                     `json:"description"`
	CurrentPrices map[string]decimal.Decimal `json:"current_prices"` // валюта -> цена
}

// PriceIn - цена в указанной валюте, если провайдер её прислал
func (d CoinDetail) PriceIn(currency string) (decimal.Decimal, bool) {
	p, ok := d.CurrentPrices[currency]
	return p, ok
}

// Exchange — биржа из листинга провайдера
type Exchange struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	TrustScoreRank    *int            `json:"trust_score_rank"` // nil — ранг неизвестен
	TradeVolume24hBTC decimal.Decimal `json:"trade_volume_24h_btc"`
}

// PricePoint — точка исторического ряда цен
type PricePoint struct {
	Timestamp int64           `json:"timestamp"` // epoch ms
	Price     decimal.Decimal `json:"price"`
}

// Time - момент точки в UTC
func (p PricePoint) Time() time.Time {
	return time.UnixMilli(p.Timestamp).UTC()
}

// Rank - удобный конструктор для *int рангов
func Rank(v int) *int {
	return &v
}
