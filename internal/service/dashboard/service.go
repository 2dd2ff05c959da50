package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/shopspring/decimal"
)

// Сборка представлений: рыночные данные + поиск/сортировка + избранное

var ErrUnsupportedCurrency = errors.New("unsupported currency")

const DefaultCurrency = "usd"

// MarketData — источник сырых листингов (market.Service)
type MarketData interface {
	Coins(ctx context.Context, currency string) ([]domain.Coin, error)
	Exchanges(ctx context.Context) ([]domain.Exchange, error)
	CoinDetail(ctx context.Context, id string) (domain.CoinDetail, error)
	PriceHistory(ctx context.Context, id, currency string, days domain.Window) ([]domain.PricePoint, error)
}

// ExchangeItem — биржа с отметкой избранного
type ExchangeItem struct {
	domain.Exchange
	Favorite bool `json:"favorite"`
}

// CoinDetailView — карточка монеты в выбранной валюте
type CoinDetailView struct {
	Detail   domain.CoinDetail
	Currency string
	Price    decimal.Decimal
	Summary  string // первое предложение описания
}

// Chart — ряд цен с подписями для оси X
type Chart struct {
	CoinID   string
	Currency string
	Days     domain.Window
	Points   []domain.PricePoint
	Labels   []string
	Stats    Stats
}

type Service struct {
	market     MarketData
	currencies []string
	loc        *time.Location
	logger     *slog.Logger
}

// NewService — currencies: допустимые vs_currency; loc — часовой пояс подписей графика.
func NewService(market MarketData, currencies []string, loc *time.Location, logger *slog.Logger) *Service {
	norm := make([]string, 0, len(currencies))
	for _, c := range currencies {
		norm = append(norm, strings.ToLower(strings.TrimSpace(c)))
	}
	if len(norm) == 0 {
		norm = []string{DefaultCurrency}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{market: market, currencies: norm, loc: loc, logger: logger}
}

// Currency — нормализует и проверяет валюту; пустая -> usd
func (s *Service) Currency(currency string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(currency))
	if c == "" {
		c = DefaultCurrency
	}
	if !slices.Contains(s.currencies, c) {
		return "", ErrUnsupportedCurrency
	}
	return c, nil
}

// Currencies - список поддерживаемых валют
func (s *Service) Currencies() []string {
	return slices.Clone(s.currencies)
}

// Coins — листинг монет после поиска и сортировки
func (s *Service) Coins(ctx context.Context, currency string, q listing.CoinQuery) ([]domain.Coin, error) {
	cur, err := s.Currency(currency)
	if err != nil {
		return nil, err
	}
	raw, err := s.market.Coins(ctx, cur)
	if err != nil {
		return nil, err
	}
	out := listing.ProcessCoins(raw, q)
	s.logger.Debug("coins view built",
		slog.String("currency", cur),
		slog.String("search", q.Search),
		slog.String("sort", string(q.Sort)),
		slog.Int("total", len(raw)),
		slog.Int("shown", len(out)),
	)
	return out, nil
}

// Exchanges — листинг бирж после фильтров и сортировки; favorites — избранное пользователя
func (s *Service) Exchanges(ctx context.Context, favorites []string, q listing.ExchangeQuery) ([]ExchangeItem, error) {
	raw, err := s.market.Exchanges(ctx)
	if err != nil {
		return nil, err
	}
	set := domain.Preferences{Favorites: favorites}.FavoriteSet()
	processed := listing.ProcessExchanges(raw, set, q)

	out := make([]ExchangeItem, 0, len(processed))
	for _, e := range processed {
		_, fav := set[e.ID]
		out = append(out, ExchangeItem{Exchange: e, Favorite: fav})
	}
	s.logger.Debug("exchanges view built",
		slog.String("search", q.Search),
		slog.String("sort", string(q.Sort)),
		slog.Bool("favorites_only", q.FavoritesOnly),
		slog.Int("total", len(raw)),
		slog.Int("shown", len(out)),
	)
	return out, nil
}

// CoinDetail — карточка монеты с ценой в выбранной валюте
func (s *Service) CoinDetail(ctx context.Context, id, currency string) (CoinDetailView, error) {
	cur, err := s.Currency(currency)
	if err != nil {
		return CoinDetailView{}, err
	}
	d, err := s.market.CoinDetail(ctx, id)
	if err != nil {
		return CoinDetailView{}, err
	}
	price, ok := d.PriceIn(cur)
	if !ok {
		s.logger.Debug("no price in currency", slog.String("coin", id), slog.String("currency", cur))
	}
	return CoinDetailView{
		Detail:   d,
		Currency: cur,
		Price:    price,
		Summary:  FirstSentence(d.Description),
	}, nil
}

// Chart — история цены и подписи: для суток время, иначе дата
func (s *Service) Chart(ctx context.Context, id, currency string, days domain.Window) (Chart, error) {
	cur, err := s.Currency(currency)
	if err != nil {
		return Chart{}, err
	}
	if !days.Valid() {
		return Chart{}, domain.ErrInvalidWindow
	}
	points, err := s.market.PriceHistory(ctx, id, cur, days)
	if err != nil {
		return Chart{}, err
	}

	labels := make([]string, 0, len(points))
	for _, p := range points {
		labels = append(labels, s.label(p, days))
	}
	return Chart{
		CoinID:   id,
		Currency: cur,
		Days:     days,
		Points:   points,
		Labels:   labels,
		Stats:    ComputeStats(points),
	}, nil
}

func (s *Service) label(p domain.PricePoint, days domain.Window) string {
	t := p.Time().In(s.loc)
	if days == domain.Window1d {
		return t.Format("3:04 PM")
	}
	return t.Format("2006-01-02")
}

// FirstSentence — текст до первой ". " включительно с точкой
func FirstSentence(desc string) string {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return ""
	}
	if i := strings.Index(desc, ". "); i >= 0 {
		return desc[:i+1]
	}
	if strings.HasSuffix(desc, ".") {
		return desc
	}
	return desc + "."
}
