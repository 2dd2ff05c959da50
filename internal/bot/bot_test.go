package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/ports/errcode"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/preferences"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository/memory"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	dashmocks "github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard/mocks"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/subscription"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"gopkg.in/telebot.v4"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) Send(to telebot.Recipient, what interface{}, _ ...interface{}) (*telebot.Message, error) {
	chat := to.(*telebot.Chat)
	f.sent = append(f.sent, sentMessage{chatID: chat.ID, text: what.(string)})
	return &telebot.Message{}, nil
}

var testExchanges = []domain.Exchange{
	{ID: "binance", Name: "Binance", TrustScoreRank: domain.Rank(1), TradeVolume24hBTC: decimal.NewFromInt(1000)},
	{ID: "kraken", Name: "Kraken", TrustScoreRank: domain.Rank(3), TradeVolume24hBTC: decimal.NewFromInt(200)},
	{ID: "gdax", Name: "Coinbase", TrustScoreRank: domain.Rank(2), TradeVolume24hBTC: decimal.NewFromInt(500)},
}

var testCoins = []domain.Coin{
	{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", MarketCapRank: domain.Rank(1),
		CurrentPrice: decimal.NewFromInt(50000), PriceChangePct24h: decimal.RequireFromString("2.5")},
	{ID: "ethereum", Symbol: "eth", Name: "Ethereum", MarketCapRank: domain.Rank(2),
		CurrentPrice: decimal.NewFromInt(3000), PriceChangePct24h: decimal.RequireFromString("-1.2")},
}

func setupBot(t *testing.T) (*Bot, *dashmocks.MockMarketData) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	md := dashmocks.NewMockMarketData(ctrl)
	dash := dashboard.NewService(md, []string{"usd", "inr"}, time.UTC, logger)
	reg := preferences.NewRegistry(memory.NewPreferencesRepo(), logger)
	subs := subscription.New(memory.NewSubscriptionRepo(), logger)
	return newBot(nil, dash, reg, subs, 10, logger), md
}

func TestCoinsReply(t *testing.T) {
	b, md := setupBot(t)
	md.EXPECT().Coins(gomock.Any(), "usd").Return(testCoins, nil)

	got := b.coinsReply(context.Background(), nil)
	want := "#1 Bitcoin (BTC) | $50,000.00 | +2.50%\n#2 Ethereum (ETH) | $3,000.00 | -1.20%"
	if got != want {
		t.Fatalf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestCoinsReply_SearchNoMatch(t *testing.T) {
	b, md := setupBot(t)
	md.EXPECT().Coins(gomock.Any(), "usd").Return(testCoins, nil)

	if got := b.coinsReply(context.Background(), []string{"doge"}); got != "Монеты не найдены" {
		t.Fatalf("got %q", got)
	}
}

func TestCoinsReply_Unavailable(t *testing.T) {
	b, md := setupBot(t)
	md.EXPECT().Coins(gomock.Any(), "usd").Return(nil, market.ErrUnavailable)

	if got := b.coinsReply(context.Background(), nil); got != translateBotError(errcode.Unavailable) {
		t.Fatalf("got %q", got)
	}
}

func TestFavoritesArePerChat(t *testing.T) {
	b, md := setupBot(t)
	ctx := context.Background()
	md.EXPECT().Exchanges(gomock.Any()).Return(testExchanges, nil).AnyTimes()

	b.favReply(ctx, 1, []string{"Kraken"})
	b.favReply(ctx, 1, []string{"binance"})

	got := b.exchangesReply(ctx, 1, nil, true)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "★ #1 Binance") || !strings.HasPrefix(lines[1], "★ #3 Kraken") {
		t.Fatalf("unexpected favorites:\n%s", got)
	}

	if got := b.exchangesReply(ctx, 2, nil, true); !strings.HasPrefix(got, "В избранном пока пусто") {
		t.Fatalf("chat 2 should have no favorites, got %q", got)
	}

	b.unfavReply(ctx, 1, []string{"kraken"})
	all := b.exchangesReply(ctx, 1, nil, false)
	want := "★ #1 Binance (binance) | 1000.00 BTC за 24ч\n" +
		"☆ #2 Coinbase (gdax) | 500.00 BTC за 24ч\n" +
		"☆ #3 Kraken (kraken) | 200.00 BTC за 24ч"
	if all != want {
		t.Fatalf("got:\n%s\nwant:\n%s", all, want)
	}
}

func TestFavReply_Usage(t *testing.T) {
	b, _ := setupBot(t)
	if got := b.favReply(context.Background(), 1, nil); !strings.HasPrefix(got, "Укажи id") {
		t.Fatalf("got %q", got)
	}
}

func TestThemeReply_Toggles(t *testing.T) {
	b, _ := setupBot(t)
	ctx := context.Background()
	if got := b.themeReply(ctx, 7); got != "Тема: светлая" {
		t.Fatalf("first toggle: %q", got)
	}
	if got := b.themeReply(ctx, 7); got != "Тема: тёмная" {
		t.Fatalf("second toggle: %q", got)
	}
}

func TestStartAutoReply(t *testing.T) {
	b, _ := setupBot(t)
	ctx := context.Background()

	if got := b.startAutoReply(ctx, 1, []string{"x"}); !strings.HasPrefix(got, "Некорректный интервал") {
		t.Fatalf("got %q", got)
	}
	if got := b.startAutoReply(ctx, 1, nil); !strings.HasPrefix(got, "Укажи интервал") {
		t.Fatalf("got %q", got)
	}
	if got := b.startAutoReply(ctx, 1, []string{"15"}); got != "Дайджест включён! (каждые 15 мин., USD)" {
		t.Fatalf("got %q", got)
	}
	if got := b.startAutoReply(ctx, 1, []string{"15", "INR"}); got != "Дайджест включён! (каждые 15 мин., INR)" {
		t.Fatalf("got %q", got)
	}
	if got := b.startAutoReply(ctx, 1, []string{"15", "eur"}); !strings.HasPrefix(got, "Валюта не поддерживается") {
		t.Fatalf("got %q", got)
	}
	if got := b.startAutoReply(ctx, 1, []string{"15", "usd", "x"}); !strings.HasPrefix(got, "Укажи интервал") {
		t.Fatalf("got %q", got)
	}
}

func TestSchedulerTick_SendsDigest(t *testing.T) {
	b, md := setupBot(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	md.EXPECT().Coins(gomock.Any(), "usd").Return(testCoins, nil).Times(2)
	md.EXPECT().Exchanges(gomock.Any()).Return(testExchanges, nil).Times(2)

	b.startAutoReply(ctx, 1, []string{"10"})
	b.startAutoReply(ctx, 2, []string{"10"})
	b.favReply(ctx, 2, []string{"kraken"})

	out := &fakeSender{}
	s := newScheduler(b, out, time.Minute, b.logger)

	if sent := s.tick(ctx, now); sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if strings.Contains(out.sent[0].text, "Избранные биржи") {
		t.Fatalf("chat 1 has no favorites, got:\n%s", out.sent[0].text)
	}
	if !strings.Contains(out.sent[1].text, "Избранные биржи:\n★ #3 Kraken") {
		t.Fatalf("chat 2 digest missing favorites:\n%s", out.sent[1].text)
	}

	// интервал ещё не истёк — никому не шлём
	if sent := s.tick(ctx, now.Add(5*time.Minute)); sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
	if sent := s.tick(ctx, now.Add(10*time.Minute)); sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
}

// Монеты грузятся один раз на валюту; каждый чат получает цены в своей валюте
func TestSchedulerTick_DigestCurrencyPerChat(t *testing.T) {
	b, md := setupBot(t)
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	md.EXPECT().Coins(gomock.Any(), "usd").Return(testCoins, nil).Times(1)
	md.EXPECT().Coins(gomock.Any(), "inr").Return(testCoins, nil).Times(1)

	b.startAutoReply(ctx, 1, []string{"10"})
	b.startAutoReply(ctx, 2, []string{"10", "inr"})
	b.startAutoReply(ctx, 3, []string{"10", "usd"})

	out := &fakeSender{}
	s := newScheduler(b, out, time.Minute, b.logger)
	if sent := s.tick(ctx, now); sent != 3 {
		t.Fatalf("sent = %d, want 3", sent)
	}
	if !strings.Contains(out.sent[0].text, "$50,000.00") || !strings.Contains(out.sent[2].text, "$50,000.00") {
		t.Fatalf("usd digests:\n%s\n%s", out.sent[0].text, out.sent[2].text)
	}
	if !strings.Contains(out.sent[1].text, "₹50,000.00") {
		t.Fatalf("inr digest:\n%s", out.sent[1].text)
	}
}

// Выгруженные настройки перечитываются из хранилища без потерь
func TestSchedulerPruneIdle(t *testing.T) {
	b, _ := setupBot(t)
	ctx := context.Background()
	reg := b.prefs.(*preferences.Registry)

	b.favReply(ctx, 1, []string{"kraken"})
	s := newScheduler(b, &fakeSender{}, time.Minute, b.logger)
	if got := s.pruneIdle(); got != 0 {
		t.Fatalf("eviction disabled by default, evicted %d", got)
	}

	s.prefsMaxIdle = time.Nanosecond
	time.Sleep(time.Millisecond)
	if got := s.pruneIdle(); got != 1 || reg.Len() != 0 {
		t.Fatalf("evicted %d, open %d", got, reg.Len())
	}
	if !b.store(ctx, 1).IsFavorite("kraken") {
		t.Fatal("favorites lost after eviction")
	}
}

func TestFormatCoins_Limit(t *testing.T) {
	got := formatCoins(testCoins, "usd", 1)
	if got != "#1 Bitcoin (BTC) | $50,000.00 | +2.50%\n… и ещё 1" {
		t.Fatalf("got %q", got)
	}
}

func TestRecordName(t *testing.T) {
	if got := recordName(-100123); got != "chat--100123" {
		t.Fatalf("got %q", got)
	}
}
