package market_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/cache"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/infra/coingecko"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market"
	marketmocks "github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
)

var ttls = market.TTLs{Coins: time.Minute, Exchanges: time.Minute, Detail: time.Minute, Chart: 5 * time.Minute}

func setupSvc(t *testing.T, c cache.Cache) (*marketmocks.MockProvider, market.Service) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	provider := marketmocks.NewMockProvider(ctrl)
	if c == nil {
		c = cache.NewMemory()
	}
	return provider, market.NewService(provider, c, ttls, []string{"usd", "inr"}, slog.Default())
}

// failingCache — кеш, который всегда падает
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("redis down")
}
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("redis down")
}

// Второй запрос в пределах TTL обслуживается из кеша
func TestCoins_CacheHit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	coins := []domain.Coin{{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: decimal.NewFromInt(65000), MarketCapRank: domain.Rank(1)}}
	provider.EXPECT().ListCoins(gomock.Any(), "usd").Return(coins, nil).Times(1)

	for i := 0; i < 3; i++ {
		got, err := svc.Coins(ctx, "USD")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].ID != "bitcoin" || *got[0].MarketCapRank != 1 || !got[0].CurrentPrice.Equal(decimal.NewFromInt(65000)) {
			t.Fatalf("unexpected coins: %+v", got)
		}
	}
}

// Разные валюты — разные ключи кеша
func TestCoins_KeyedByCurrency(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	provider.EXPECT().ListCoins(gomock.Any(), "usd").Return([]domain.Coin{{ID: "usd-list"}}, nil).Times(1)
	provider.EXPECT().ListCoins(gomock.Any(), "inr").Return([]domain.Coin{{ID: "inr-list"}}, nil).Times(1)

	usd, _ := svc.Coins(ctx, "usd")
	inr, _ := svc.Coins(ctx, "inr")
	if usd[0].ID != "usd-list" || inr[0].ID != "inr-list" {
		t.Fatalf("unexpected lists: %v %v", usd, inr)
	}
}

// Одновременные одинаковые запросы склеиваются в один вызов провайдера
func TestExchanges_ConcurrentCallsDeduplicated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	release := make(chan struct{})
	provider.EXPECT().ListExchanges(gomock.Any()).
		DoAndReturn(func(context.Context) ([]domain.Exchange, error) {
			<-release
			return []domain.Exchange{{ID: "binance"}}, nil
		}).
		Times(1)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Exchanges(ctx)
			if err == nil && (len(got) != 1 || got[0].ID != "binance") {
				err = fmt.Errorf("unexpected exchanges %+v", got)
			}
			errs <- err
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}
}

// Ошибка провайдера -> ErrUnavailable, 404 -> ErrNotFound
func TestErrorsTranslated(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	provider.EXPECT().ListExchanges(gomock.Any()).Return(nil, errors.New("timeout"))
	if _, err := svc.Exchanges(ctx); !errors.Is(err, market.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	provider.EXPECT().GetCoinDetail(gomock.Any(), "nope").Return(domain.CoinDetail{}, fmt.Errorf("x: %w", coingecko.ErrNotFound))
	if _, err := svc.CoinDetail(ctx, "nope"); !errors.Is(err, market.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// Неудачи не кешируются: следующий запрос снова идёт к провайдеру
func TestFailureNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	gomock.InOrder(
		provider.EXPECT().ListCoins(gomock.Any(), "usd").Return(nil, errors.New("boom")),
		provider.EXPECT().ListCoins(gomock.Any(), "usd").Return([]domain.Coin{{ID: "bitcoin"}}, nil),
	)

	if _, err := svc.Coins(ctx, "usd"); err == nil {
		t.Fatal("expected error")
	}
	if got, err := svc.Coins(ctx, "usd"); err != nil || len(got) != 1 {
		t.Fatalf("expected recovery, got %v %v", got, err)
	}
}

// Сломанный кеш не мешает отдавать данные
func TestBrokenCacheFallsThrough(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, failingCache{})

	provider.EXPECT().GetPriceHistory(gomock.Any(), "bitcoin", "usd", domain.Window1d).
		Return([]domain.PricePoint{{Timestamp: 1, Price: decimal.NewFromInt(10)}}, nil).
		Times(2)

	for i := 0; i < 2; i++ {
		pts, err := svc.PriceHistory(ctx, "bitcoin", "usd", domain.Window1d)
		if err != nil || len(pts) != 1 {
			t.Fatalf("unexpected result: %v %v", pts, err)
		}
	}
}

func TestPriceHistory_InvalidWindow(t *testing.T) {
	t.Parallel()
	provider, svc := setupSvc(t, nil)
	provider.EXPECT().GetPriceHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	if _, err := svc.PriceHistory(context.Background(), "bitcoin", "usd", 7); !errors.Is(err, domain.ErrInvalidWindow) {
		t.Fatalf("expected ErrInvalidWindow, got %v", err)
	}
}

// Warm обновляет листинги мимо кеша и продолжает после ошибки
func TestWarm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	provider.EXPECT().ListCoins(gomock.Any(), "usd").Return([]domain.Coin{{ID: "bitcoin"}}, nil).Times(1)
	provider.EXPECT().ListCoins(gomock.Any(), "inr").Return(nil, errors.New("boom")).Times(1)
	provider.EXPECT().ListExchanges(gomock.Any()).Return([]domain.Exchange{{ID: "binance"}}, nil).Times(1)

	if err := svc.Warm(ctx); !errors.Is(err, market.ErrUnavailable) {
		t.Fatalf("expected first error to surface, got %v", err)
	}

	// прогретые ресурсы отдаются из кеша без новых вызовов
	if got, err := svc.Coins(ctx, "usd"); err != nil || got[0].ID != "bitcoin" {
		t.Fatalf("expected warmed coins, got %v %v", got, err)
	}
	if got, err := svc.Exchanges(ctx); err != nil || got[0].ID != "binance" {
		t.Fatalf("expected warmed exchanges, got %v %v", got, err)
	}
}

// Кеш хранит JSON: точность decimal не теряется при любом формате кодирования
func TestCoins_CachedPricesKeepPrecision(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	provider, svc := setupSvc(t, nil)

	price := decimal.RequireFromString("0.000012345678901234567")
	change := decimal.RequireFromString("-3.14159265358979")
	provider.EXPECT().ListCoins(gomock.Any(), "usd").
		Return([]domain.Coin{{ID: "shib", CurrentPrice: price, PriceChangePct24h: change}}, nil).
		Times(1)

	first, err := svc.Coins(ctx, "usd")
	if err != nil {
		t.Fatal(err)
	}
	cached, err := svc.Coins(ctx, "usd")
	if err != nil {
		t.Fatal(err)
	}
	for _, got := range [][]domain.Coin{first, cached} {
		if !got[0].CurrentPrice.Equal(price) || !got[0].PriceChangePct24h.Equal(change) {
			t.Fatalf("precision lost: %+v", got[0])
		}
	}
}
