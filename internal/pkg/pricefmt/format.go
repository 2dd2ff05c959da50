package pricefmt

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Price — цена в формате валюты ("$50,000.50", "₹1,200.00").
// Копеечные цены (< 1) печатаем с 6 знаками, иначе go-money округлит их до нуля.
func Price(amount decimal.Decimal, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	cur := money.GetCurrency(code)
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	if !amount.IsZero() && amount.Abs().LessThan(decimal.NewFromInt(1)) {
		return cur.Grapheme + amount.Round(6).String()
	}

	factor := decimal.New(1, int32(cur.Fraction))
	minor := amount.Mul(factor).Round(0)
	return money.New(minor.IntPart(), code).Display()
}

// Percent — изменение со знаком: "+2.50%", "-0.31%"
func Percent(pct decimal.Decimal) string {
	s := pct.StringFixed(2)
	if pct.IsPositive() {
		s = "+" + s
	}
	return s + "%"
}
