package httptransport_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/preferences"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository/memory"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	dashmocks "github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard/mocks"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/transport/httptransport"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type fixture struct {
	e      *echo.Echo
	market *dashmocks.MockMarketData
	prefs  *preferences.Store
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	md := dashmocks.NewMockMarketData(ctrl)
	svc := dashboard.NewService(md, []string{"usd", "inr"}, time.UTC, logger)
	store := preferences.Open(context.Background(), memory.NewPreferencesRepo(), preferences.DefaultRecord, logger)

	e := echo.New()
	httptransport.NewHandler(logger, svc, store, time.Second).RegisterRoutes(e)
	return fixture{e: e, market: md, prefs: store}
}

func (f fixture) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestGetCoins_SearchAndSort(t *testing.T) {
	f := setup(t)
	f.market.EXPECT().Coins(gomock.Any(), "inr").Return([]domain.Coin{
		{ID: "bitcoin", Name: "Bitcoin", CurrentPrice: decimal.NewFromInt(50000), MarketCapRank: domain.Rank(1)},
		{ID: "ethereum", Name: "Ethereum", CurrentPrice: decimal.NewFromInt(3000), MarketCapRank: domain.Rank(2)},
		{ID: "dogecoin", Name: "Dogecoin", CurrentPrice: decimal.RequireFromString("0.1"), MarketCapRank: domain.Rank(9)},
	}, nil)

	rec := f.do(t, http.MethodGet, "/coins?currency=inr&search=coin&sort=price_desc")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[[]domain.Coin](t, rec)
	if len(got) != 2 || got[0].ID != "bitcoin" || got[1].ID != "dogecoin" {
		t.Fatalf("unexpected coins: %+v", got)
	}
}

func TestGetCoins_UnsupportedCurrency(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodGet, "/coins?currency=eur")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetCoins_Unavailable(t *testing.T) {
	f := setup(t)
	f.market.EXPECT().Coins(gomock.Any(), "usd").Return(nil, market.ErrUnavailable)

	rec := f.do(t, http.MethodGet, "/coins")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["error"] != "market_data_unavailable" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetCoinDetail(t *testing.T) {
	f := setup(t)
	f.market.EXPECT().CoinDetail(gomock.Any(), "bitcoin").Return(domain.CoinDetail{
		Coin:          domain.Coin{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc"},
		Description:   "Bitcoin is the first. It was created in 2009.",
		CurrentPrices: map[string]decimal.Decimal{"usd": decimal.NewFromInt(50000)},
	}, nil)

	rec := f.do(t, http.MethodGet, "/coins/bitcoin")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[httptransport.CoinDetail](t, rec)
	if got.ID != "bitcoin" || got.Currency != "usd" || !got.Price.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("unexpected detail: %+v", got)
	}
	if got.Summary != "Bitcoin is the first." {
		t.Fatalf("summary = %q", got.Summary)
	}
}

func TestGetCoinDetail_NotFound(t *testing.T) {
	f := setup(t)
	f.market.EXPECT().CoinDetail(gomock.Any(), "nope").Return(domain.CoinDetail{}, market.ErrNotFound)

	rec := f.do(t, http.MethodGet, "/coins/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetChart(t *testing.T) {
	f := setup(t)
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	f.market.EXPECT().PriceHistory(gomock.Any(), "bitcoin", "usd", domain.Window30d).Return([]domain.PricePoint{
		{Timestamp: ts, Price: decimal.NewFromInt(61000)},
	}, nil)

	rec := f.do(t, http.MethodGet, "/coins/bitcoin/chart?days=30")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[httptransport.Chart](t, rec)
	if got.Days != 30 || len(got.Prices) != 1 || got.Prices[0][0].IntPart() != ts {
		t.Fatalf("unexpected chart: %+v", got)
	}
	if len(got.Labels) != 1 || got.Labels[0] != "2024-03-01" {
		t.Fatalf("unexpected labels: %v", got.Labels)
	}
}

func TestGetChart_InvalidWindow(t *testing.T) {
	f := setup(t)
	f.market.EXPECT().PriceHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	rec := f.do(t, http.MethodGet, "/coins/bitcoin/chart?days=7")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExchanges_FavoritesFlow(t *testing.T) {
	f := setup(t)
	f.market.EXPECT().Exchanges(gomock.Any()).Return([]domain.Exchange{
		{ID: "binance", Name: "Binance", TrustScoreRank: domain.Rank(1)},
		{ID: "kraken", Name: "Kraken", TrustScoreRank: domain.Rank(3)},
		{ID: "gdax", Name: "Coinbase", TrustScoreRank: domain.Rank(2)},
	}, nil).Times(2)

	if rec := f.do(t, http.MethodPut, "/preferences/favorites/kraken"); rec.Code != http.StatusOK {
		t.Fatalf("add favorite status = %d", rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/exchanges?favorites=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	got := decode[[]dashboard.ExchangeItem](t, rec)
	if len(got) != 1 || got[0].ID != "kraken" || !got[0].Favorite {
		t.Fatalf("unexpected favorites view: %+v", got)
	}

	rec = f.do(t, http.MethodGet, "/exchanges?sort=rank_desc")
	all := decode[[]dashboard.ExchangeItem](t, rec)
	if len(all) != 3 || all[0].ID != "kraken" || all[2].ID != "binance" {
		t.Fatalf("unexpected order: %+v", all)
	}
}

func TestExchanges_BadFavoritesFlag(t *testing.T) {
	f := setup(t)
	rec := f.do(t, http.MethodGet, "/exchanges?favorites=maybe")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPreferences_ToggleAndRemove(t *testing.T) {
	f := setup(t)

	got := decode[domain.Preferences](t, f.do(t, http.MethodGet, "/preferences"))
	if got.Theme != domain.ThemeDark || len(got.Favorites) != 0 {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	got = decode[domain.Preferences](t, f.do(t, http.MethodPost, "/preferences/theme/toggle"))
	if got.Theme != domain.ThemeLight {
		t.Fatalf("theme = %q, want light", got.Theme)
	}

	f.do(t, http.MethodPut, "/preferences/favorites/binance")
	f.do(t, http.MethodPut, "/preferences/favorites/binance")
	got = decode[domain.Preferences](t, f.do(t, http.MethodDelete, "/preferences/favorites/kraken"))
	if len(got.Favorites) != 1 || got.Favorites[0] != "binance" {
		t.Fatalf("unexpected favorites: %v", got.Favorites)
	}

	f.do(t, http.MethodDelete, "/preferences/favorites/binance")
	if f.prefs.IsFavorite("binance") {
		t.Fatal("binance still favorite")
	}
}

func TestFromServiceError(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{market.ErrNotFound, "NOT_FOUND"},
		{dashboard.ErrUnsupportedCurrency, "BAD_REQUEST"},
		{domain.ErrInvalidWindow, "BAD_REQUEST"},
		{market.ErrUnavailable, "MARKET_DATA_UNAVAILABLE"},
		{errors.New("boom"), "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		if got := httptransport.FromServiceError(tc.err); string(got) != tc.want {
			t.Errorf("FromServiceError(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
