package listing

import (
	"cmp"
	"slices"
	"strings"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CoinSort — ключ сортировки монет
type CoinSort string

const (
	CoinSortMarketCapAsc CoinSort = "market_cap_asc"
	CoinSortPriceAsc     CoinSort = "price_asc"
	CoinSortPriceDesc    CoinSort = "price_desc"
	CoinSortChangeAsc    CoinSort = "change_asc"
	CoinSortChangeDesc   CoinSort = "change_desc"
)

// ExchangeSort — ключ сортировки бирж
type ExchangeSort string

const (
	ExchangeSortRankAsc  ExchangeSort = "rank_asc"
	ExchangeSortRankDesc ExchangeSort = "rank_desc"
	ExchangeSortNameAsc  ExchangeSort = "name_asc"
	ExchangeSortNameDesc ExchangeSort = "name_desc"
)

// ParseCoinSort - неизвестный или пустой ключ даёт сортировку по умолчанию.
// "market_cap_desc" — старое значение из UI, сортировало по рангу по возрастанию.
func ParseCoinSort(s string) CoinSort {
	switch k := CoinSort(strings.ToLower(strings.TrimSpace(s))); k {
	case CoinSortPriceAsc, CoinSortPriceDesc, CoinSortChangeAsc, CoinSortChangeDesc:
		return k
	default:
		return CoinSortMarketCapAsc
	}
}

// ParseExchangeSort - неизвестный или пустой ключ даёт rank_asc.
func ParseExchangeSort(s string) ExchangeSort {
	switch k := ExchangeSort(strings.ToLower(strings.TrimSpace(s))); k {
	case ExchangeSortRankDesc, ExchangeSortNameAsc, ExchangeSortNameDesc:
		return k
	default:
		return ExchangeSortRankAsc
	}
}

// compareRank — трёхзначное сравнение рангов, nil всегда в конце независимо от направления.
func compareRank(a, b *int, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	if desc {
		return cmp.Compare(*b, *a)
	}
	return cmp.Compare(*a, *b)
}

// SortCoins возвращает отсортированную копию. Сортировка стабильная.
func SortCoins(items []domain.Coin, key CoinSort) []domain.Coin {
	out := make([]domain.Coin, len(items))
	copy(out, items)

	var less func(a, b domain.Coin) int
	switch key {
	case CoinSortPriceAsc:
		less = func(a, b domain.Coin) int { return a.CurrentPrice.Cmp(b.CurrentPrice) }
	case CoinSortPriceDesc:
		less = func(a, b domain.Coin) int { return b.CurrentPrice.Cmp(a.CurrentPrice) }
	case CoinSortChangeAsc:
		less = func(a, b domain.Coin) int { return a.PriceChangePct24h.Cmp(b.PriceChangePct24h) }
	case CoinSortChangeDesc:
		less = func(a, b domain.Coin) int { return b.PriceChangePct24h.Cmp(a.PriceChangePct24h) }
	default:
		less = func(a, b domain.Coin) int { return compareRank(a.MarketCapRank, b.MarketCapRank, false) }
	}
	slices.SortStableFunc(out, less)
	return out
}

// SortExchanges возвращает отсортированную копию. Сортировка стабильная,
// имена сравниваются с учётом локали.
func SortExchanges(items []domain.Exchange, key ExchangeSort) []domain.Exchange {
	out := make([]domain.Exchange, len(items))
	copy(out, items)

	var less func(a, b domain.Exchange) int
	switch key {
	case ExchangeSortRankDesc:
		less = func(a, b domain.Exchange) int { return compareRank(a.TrustScoreRank, b.TrustScoreRank, true) }
	case ExchangeSortNameAsc, ExchangeSortNameDesc:
		// Collator не потокобезопасен — создаём на каждый вызов
		col := collate.New(language.English)
		if key == ExchangeSortNameAsc {
			less = func(a, b domain.Exchange) int { return col.CompareString(a.Name, b.Name) }
		} else {
			less = func(a, b domain.Exchange) int { return col.CompareString(b.Name, a.Name) }
		}
	default:
		less = func(a, b domain.Exchange) int { return compareRank(a.TrustScoreRank, b.TrustScoreRank, false) }
	}
	slices.SortStableFunc(out, less)
	return out
}
