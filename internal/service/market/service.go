package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/cache"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/infra/coingecko"
	"golang.org/x/sync/singleflight"
)

// Доступ к рыночным данным: провайдер + кеш + склейка одинаковых запросов

type Service interface {
	Coins(ctx context.Context, currency string) ([]domain.Coin, error)
	Exchanges(ctx context.Context) ([]domain.Exchange, error)
	CoinDetail(ctx context.Context, id string) (domain.CoinDetail, error)
	PriceHistory(ctx context.Context, id, currency string, days domain.Window) ([]domain.PricePoint, error)
	// Warm — принудительно обновить листинги в кеше
	Warm(ctx context.Context) error
}

// Provider — внешний источник (CoinGecko API)
type Provider interface {
	ListExchanges(ctx context.Context) ([]domain.Exchange, error)
	ListCoins(ctx context.Context, currency string) ([]domain.Coin, error)
	GetCoinDetail(ctx context.Context, id string) (domain.CoinDetail, error)
	GetPriceHistory(ctx context.Context, id, currency string, days domain.Window) ([]domain.PricePoint, error)
}

// TTLs — сроки свежести по видам ресурсов
type TTLs struct {
	Coins     time.Duration
	Exchanges time.Duration
	Detail    time.Duration
	Chart     time.Duration
}

type service struct {
	provider       Provider
	cache          cache.Cache
	ttl            TTLs
	warmCurrencies []string
	group          singleflight.Group
	logger         *slog.Logger
}

// NewService — конструктор; warmCurrencies — валюты, чьи листинги прогревает Warm.
func NewService(provider Provider, c cache.Cache, ttl TTLs, warmCurrencies []string, logger *slog.Logger) Service {
	return &service{
		provider:       provider,
		cache:          c,
		ttl:            ttl,
		warmCurrencies: warmCurrencies,
		logger:         logger,
	}
}

func (s *service) Coins(ctx context.Context, currency string) ([]domain.Coin, error) {
	currency = strings.ToLower(currency)
	return cached(ctx, s, cache.Key("coins", currency), s.ttl.Coins, false, func(ctx context.Context) ([]domain.Coin, error) {
		return s.provider.ListCoins(ctx, currency)
	})
}

func (s *service) Exchanges(ctx context.Context) ([]domain.Exchange, error) {
	return cached(ctx, s, cache.Key("exchanges"), s.ttl.Exchanges, false, s.provider.ListExchanges)
}

func (s *service) CoinDetail(ctx context.Context, id string) (domain.CoinDetail, error) {
	return cached(ctx, s, cache.Key("coin", id), s.ttl.Detail, false, func(ctx context.Context) (domain.CoinDetail, error) {
		return s.provider.GetCoinDetail(ctx, id)
	})
}

func (s *service) PriceHistory(ctx context.Context, id, currency string, days domain.Window) ([]domain.PricePoint, error) {
	if !days.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	currency = strings.ToLower(currency)
	key := cache.Key("chart", id, currency, strconv.Itoa(int(days)))
	return cached(ctx, s, key, s.ttl.Chart, false, func(ctx context.Context) ([]domain.PricePoint, error) {
		return s.provider.GetPriceHistory(ctx, id, currency, days)
	})
}

// Warm — обновляет листинги монет (по валютам) и бирж мимо кеша.
// Ошибки не прерывают прогрев остальных ресурсов, возвращается первая.
func (s *service) Warm(ctx context.Context) error {
	var firstErr error
	for _, cur := range s.warmCurrencies {
		cur = strings.ToLower(cur)
		_, err := cached(ctx, s, cache.Key("coins", cur), s.ttl.Coins, true, func(ctx context.Context) ([]domain.Coin, error) {
			return s.provider.ListCoins(ctx, cur)
		})
		if err != nil {
			s.logger.Warn("warm coins failed", slog.String("currency", cur), slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if _, err := cached(ctx, s, cache.Key("exchanges"), s.ttl.Exchanges, true, s.provider.ListExchanges); err != nil {
		s.logger.Warn("warm exchanges failed", slog.String("error", err.Error()))
		if firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// cached — кеш -> singleflight -> провайдер -> кеш.
// Ошибки кеша не роняют запрос: логируем и идём к провайдеру.
func cached[T any](ctx context.Context, s *service, key string, ttl time.Duration, force bool, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if !force {
		raw, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.logger.Warn("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		case ok:
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				s.logger.Debug("cache hit", slog.String("key", key))
				return v, nil
			}
			s.logger.Warn("cache entry corrupted", slog.String("key", key))
		}
	}

	v, err, shared := s.group.Do(key, func() (any, error) {
		// запрос общий для всех ждущих, поэтому отмена одного вызывающего его не обрывает
		fctx := context.WithoutCancel(ctx)
		started := time.Now()
		val, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("provider fetch done", slog.String("key", key), slog.Duration("duration", time.Since(started)))

		if raw, err := json.Marshal(val); err != nil {
			s.logger.Warn("cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		} else if err := s.cache.Set(fctx, key, raw, ttl); err != nil {
			s.logger.Warn("cache set failed", slog.String("key", key), slog.String("error", err.Error()))
		}
		return val, nil
	})
	if err != nil {
		s.logger.Error("provider fetch failed", slog.String("key", key), slog.Bool("shared", shared), slog.String("error", err.Error()))
		return zero, translate(err)
	}
	return v.(T), nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, coingecko.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, domain.ErrInvalidWindow):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
