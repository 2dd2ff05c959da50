package bot

import (
	"fmt"
	"strings"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/pkg/pricefmt"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
)

// formatCoinLine — "#1 Bitcoin (BTC) | $50,000.00 | +2.50%"
func formatCoinLine(c domain.Coin, currency string) string {
	return fmt.Sprintf("%s %s (%s) | %s | %s",
		rankLabel(c.MarketCapRank),
		c.Name,
		strings.ToUpper(c.Symbol),
		pricefmt.Price(c.CurrentPrice, currency),
		pricefmt.Percent(c.PriceChangePct24h),
	)
}

// formatExchangeLine — "★ #1 Binance (binance) | 123.45 BTC за 24ч"
func formatExchangeLine(e dashboard.ExchangeItem) string {
	star := "☆"
	if e.Favorite {
		star = "★"
	}
	return fmt.Sprintf("%s %s %s (%s) | %s BTC за 24ч",
		star,
		rankLabel(e.TrustScoreRank),
		e.Name,
		e.ID,
		e.TradeVolume24hBTC.StringFixed(2),
	)
}

func formatCoins(coins []domain.Coin, currency string, limit int) string {
	var bld strings.Builder
	for i, c := range coins {
		if i == limit {
			fmt.Fprintf(&bld, "… и ещё %d", len(coins)-limit)
			break
		}
		bld.WriteString(formatCoinLine(c, currency))
		bld.WriteByte('\n')
	}
	return strings.TrimRight(bld.String(), "\n")
}

func formatExchanges(items []dashboard.ExchangeItem, limit int) string {
	var bld strings.Builder
	for i, e := range items {
		if i == limit {
			fmt.Fprintf(&bld, "… и ещё %d", len(items)-limit)
			break
		}
		bld.WriteString(formatExchangeLine(e))
		bld.WriteByte('\n')
	}
	return strings.TrimRight(bld.String(), "\n")
}

func rankLabel(rank *int) string {
	if rank == nil {
		return "#—"
	}
	return fmt.Sprintf("#%d", *rank)
}
