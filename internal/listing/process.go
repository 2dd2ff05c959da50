package listing

import "github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"

// CoinQuery — состояние поиска/сортировки списка монет
type CoinQuery struct {
	Search string
	Sort   CoinSort
}

// ExchangeQuery — состояние поиска/сортировки/фильтра списка бирж
type ExchangeQuery struct {
	Search        string
	Sort          ExchangeSort
	FavoritesOnly bool
}

func coinName(c domain.Coin) string         { return c.Name }
func exchangeName(e domain.Exchange) string { return e.Name }
func exchangeID(e domain.Exchange) string   { return e.ID }

// ProcessCoins — фильтр по имени, затем сортировка.
func ProcessCoins(items []domain.Coin, q CoinQuery) []domain.Coin {
	return SortCoins(FilterByName(items, q.Search, coinName), q.Sort)
}

// ProcessExchanges — фильтр по избранному (если включён) и по имени, затем сортировка.
func ProcessExchanges(items []domain.Exchange, favorites map[string]struct{}, q ExchangeQuery) []domain.Exchange {
	filtered := items
	if q.FavoritesOnly {
		filtered = FilterByFavorites(filtered, favorites, exchangeID)
	}
	return SortExchanges(FilterByName(filtered, q.Search, exchangeName), q.Sort)
}
