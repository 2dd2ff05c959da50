package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/preferences"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"gopkg.in/telebot.v4"
)

// Config — конфигурация бота
type Config struct {
	Token           string
	LongPollTimeout time.Duration
	TopN            int           // строк в листинге монет
	DigestPeriod    time.Duration // период проверки подписок
	PrefsMaxIdle    time.Duration // через сколько простоя выгружать настройки чата
}

// Dashboard — представления рынка (dashboard.Service)
type Dashboard interface {
	Currency(currency string) (string, error)
	Coins(ctx context.Context, currency string, q listing.CoinQuery) ([]domain.Coin, error)
	Exchanges(ctx context.Context, favorites []string, q listing.ExchangeQuery) ([]dashboard.ExchangeItem, error)
}

// PreferenceRegistry — настройки по имени записи (preferences.Registry)
type PreferenceRegistry interface {
	Get(ctx context.Context, name string) *preferences.Store
	PruneIdle(maxIdle time.Duration) int
}

// SubscriptionStore — интерфейс для управления подписками на дайджест
type SubscriptionStore interface {
	Enable(ctx context.Context, chatID int64, intervalMinutes int, currency string) error
	Disable(ctx context.Context, chatID int64) error
	Due(ctx context.Context, now time.Time) ([]domain.DigestSubscription, error)
	MarkSent(ctx context.Context, chatID int64, at time.Time) error
}

// Bot — Telegram-клиент дашборда
type Bot struct {
	bot       *telebot.Bot
	dash      Dashboard
	prefs     PreferenceRegistry
	subs      SubscriptionStore
	topN      int
	scheduler *scheduler
	logger    *slog.Logger
}

// New создаёт бота и регистрирует команды
func New(cfg Config, dash Dashboard, prefs PreferenceRegistry, subs SubscriptionStore, logger *slog.Logger) (*Bot, error) {
	if cfg.LongPollTimeout <= 0 {
		cfg.LongPollTimeout = 10 * time.Second
	}

	b, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.LongPollTimeout},
	})
	if err != nil {
		return nil, err
	}

	bot := newBot(b, dash, prefs, subs, cfg.TopN, logger)

	// маршруты команд
	b.Handle("/start", bot.handleStart)
	b.Handle("/coins", bot.handleCoins)
	b.Handle("/exchanges", bot.handleExchanges)
	b.Handle("/favs", bot.handleFavs)
	b.Handle("/fav", bot.handleFav)
	b.Handle("/unfav", bot.handleUnfav)
	b.Handle("/theme", bot.handleTheme)
	b.Handle("/startauto", bot.handleStartAuto)
	b.Handle("/stopauto", bot.handleStopAuto)

	bot.scheduler = newScheduler(bot, b, cfg.DigestPeriod, logger)
	bot.scheduler.prefsMaxIdle = cfg.PrefsMaxIdle
	return bot, nil
}

func newBot(tb *telebot.Bot, dash Dashboard, prefs PreferenceRegistry, subs SubscriptionStore, topN int, logger *slog.Logger) *Bot {
	if topN <= 0 {
		topN = 10
	}
	return &Bot{
		bot:    tb,
		dash:   dash,
		prefs:  prefs,
		subs:   subs,
		topN:   topN,
		logger: logger,
	}
}

// Start запускает бота и планировщик дайджестов
func (b *Bot) Start(ctx context.Context) {
	if b.scheduler != nil {
		go b.scheduler.run(ctx)
	}
	go b.bot.Start()
}

// Stop останавливает бота
func (b *Bot) Stop() {
	b.bot.Stop()
}

// recordName — отдельная запись настроек на каждый чат
func recordName(chatID int64) string {
	return fmt.Sprintf("chat-%d", chatID)
}

func (b *Bot) store(ctx context.Context, chatID int64) *preferences.Store {
	return b.prefs.Get(ctx, recordName(chatID))
}
