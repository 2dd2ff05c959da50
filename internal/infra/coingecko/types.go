package coingecko

import (
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// marketResponse — элемент ответа /coins/markets
type marketResponse struct {
	ID                       string          `json:"id"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	Image                    string          `json:"image"`
	CurrentPrice             decimal.Decimal `json:"current_price"`
	PriceChangePercentage24h decimal.Decimal `json:"price_change_percentage_24h"`
	MarketCapRank            *int            `json:"market_cap_rank"`
}

func (r marketResponse) toDomain() domain.Coin {
	return domain.Coin{
		ID:                r.ID,
		Symbol:            strings.ToUpper(r.Symbol),
		Name:              r.Name,
		Image:             r.Image,
		CurrentPrice:      r.CurrentPrice,
		PriceChangePct24h: r.PriceChangePercentage24h,
		MarketCapRank:     r.MarketCapRank,
	}
}

// exchangeResponse — элемент ответа /exchanges
type exchangeResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Image             string          `json:"image"`
	TrustScoreRank    *int            `json:"trust_score_rank"`
	TradeVolume24hBTC decimal.Decimal `json:"trade_volume_24h_btc"`
}

func (r exchangeResponse) toDomain() domain.Exchange {
	return domain.Exchange{
		ID:                r.ID,
		Name:              r.Name,
		Image:             r.Image,
		TrustScoreRank:    r.TrustScoreRank,
		TradeVolume24hBTC: r.TradeVolume24hBTC,
	}
}

// detailResponse — ответ /coins/{id}
type detailResponse struct {
	ID          string            `json:"id"`
	Symbol      string            `json:"symbol"`
	Name        string            `json:"name"`
	Description map[string]string `json:"description"`
	Image       struct {
		Thumb string `json:"thumb"`
		Small string `json:"small"`
		Large string `json:"large"`
	} `json:"image"`
	MarketCapRank *int      `json:"market_cap_rank"`
	LastUpdated   time.Time `json:"last_updated"`
	MarketData    struct {
		CurrentPrice             map[string]decimal.Decimal `json:"current_price"`
		PriceChangePercentage24h decimal.Decimal            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

func (r detailResponse) toDomain() domain.CoinDetail {
	prices := r.MarketData.CurrentPrice
	if prices == nil {
		prices = map[string]decimal.Decimal{}
	}
	return domain.CoinDetail{
		Coin: domain.Coin{
			ID:                r.ID,
			Symbol:            strings.ToUpper(r.Symbol),
			Name:              r.Name,
			Image:             r.Image.Large,
			CurrentPrice:      prices["usd"],
			PriceChangePct24h: r.MarketData.PriceChangePercentage24h,
			MarketCapRank:     r.MarketCapRank,
		},
		LastUpdated:   r.LastUpdated,
		Description:   r.Description["en"],
		CurrentPrices: prices,
	}
}

// chartResponse — ответ /coins/{id}/market_chart: пары [ms, price]
type chartResponse struct {
	Prices [][2]decimal.Decimal `json:"prices"`
}

func (r chartResponse) toDomain() []domain.PricePoint {
	out := make([]domain.PricePoint, 0, len(r.Prices))
	for _, p := range r.Prices {
		out = append(out, domain.PricePoint{
			Timestamp: p[0].IntPart(),
			Price:     p[1],
		})
	}
	return out
}
