package dashboard

import (
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Stats — сводка по ряду цен за окно
type Stats struct {
	Low       decimal.Decimal `json:"low"`
	High      decimal.Decimal `json:"high"`
	ChangePct decimal.Decimal `json:"change_pct"` // от первой точки к последней
}

// ComputeStats — мин/макс и изменение в процентах; пустой ряд даёт нули.
func ComputeStats(points []domain.PricePoint) Stats {
	if len(points) == 0 {
		return Stats{}
	}

	// Мин/Макс за окно
	low, high := points[0].Price, points[0].Price
	for _, p := range points[1:] {
		if p.Price.LessThan(low) {
			low = p.Price
		}
		if p.Price.GreaterThan(high) {
			high = p.Price
		}
	}

	first, last := points[0].Price, points[len(points)-1].Price
	var pct decimal.Decimal
	if !first.IsZero() {
		pct = last.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return Stats{Low: low, High: high, ChangePct: pct}
}
