package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"gopkg.in/telebot.v4"
)

var ErrInvalidInterval = errors.New("invalid interval")

const requestTimeout = 5 * time.Second

// handleStart — отправляет справку по доступным командам бота
func (b *Bot) handleStart(c telebot.Context) error {
	return c.Send(helpText)
}

const helpText = "Привет! Доступные команды:\n" +
	"/coins - топ монет по капитализации\n" +
	"/coins {поиск} - поиск монет по названию\n" +
	"/exchanges [поиск] - биржи по рейтингу доверия\n" +
	"/favs - избранные биржи\n" +
	"/fav {id} - добавить биржу в избранное\n" +
	"/unfav {id} - убрать биржу из избранного\n" +
	"/theme - переключить тему\n" +
	"/startauto {минуты} [валюта] - включить дайджест (usd по умолчанию)\n" +
	"/stopauto - отключить дайджест"

func (b *Bot) handleCoins(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.Send(b.coinsReply(ctx, c.Args()))
}

func (b *Bot) handleExchanges(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.Send(b.exchangesReply(ctx, c.Chat().ID, c.Args(), false))
}

func (b *Bot) handleFavs(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return c.Send(b.exchangesReply(ctx, c.Chat().ID, nil, true))
}

func (b *Bot) handleFav(c telebot.Context) error {
	return c.Send(b.favReply(context.Background(), c.Chat().ID, c.Args()))
}

func (b *Bot) handleUnfav(c telebot.Context) error {
	return c.Send(b.unfavReply(context.Background(), c.Chat().ID, c.Args()))
}

func (b *Bot) handleTheme(c telebot.Context) error {
	return c.Send(b.themeReply(context.Background(), c.Chat().ID))
}

func (b *Bot) handleStartAuto(c telebot.Context) error {
	b.logger.Debug("bot: /startauto received",
		slog.Int64("chat_id", c.Chat().ID),
		slog.String("text", c.Text()),
		slog.Int("args_len", len(c.Args())),
	)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.Send(b.startAutoReply(ctx, c.Chat().ID, c.Args()))
}

func (b *Bot) handleStopAuto(c telebot.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := b.subs.Disable(ctx, c.Chat().ID); err != nil {
		return c.Send(errorText(err))
	}
	return c.Send("Дайджест отключён!")
}

// coinsReply — топ монет в USD, аргументы склеиваются в строку поиска
func (b *Bot) coinsReply(ctx context.Context, args []string) string {
	q := listing.CoinQuery{Search: strings.Join(args, " ")}
	coins, err := b.dash.Coins(ctx, dashboard.DefaultCurrency, q)
	if err != nil {
		b.logger.Warn("bot: coins failed", slog.String("error", err.Error()))
		return errorText(err)
	}
	if len(coins) == 0 {
		return "Монеты не найдены"
	}
	return formatCoins(coins, dashboard.DefaultCurrency, b.topN)
}

// exchangesReply — биржи с отметкой избранного этого чата
func (b *Bot) exchangesReply(ctx context.Context, chatID int64, args []string, favoritesOnly bool) string {
	st := b.store(ctx, chatID)
	q := listing.ExchangeQuery{
		Search:        strings.Join(args, " "),
		FavoritesOnly: favoritesOnly,
	}
	items, err := b.dash.Exchanges(ctx, st.Favorites(), q)
	if err != nil {
		b.logger.Warn("bot: exchanges failed",
			slog.Int64("chat_id", chatID),
			slog.String("error", err.Error()),
		)
		return errorText(err)
	}
	if len(items) == 0 {
		if favoritesOnly {
			return "В избранном пока пусто. Добавьте биржу: /fav binance"
		}
		return "Биржи не найдены"
	}
	return formatExchanges(items, b.topN)
}

func (b *Bot) favReply(ctx context.Context, chatID int64, args []string) string {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "Укажи id биржи: /fav binance"
	}
	id := strings.ToLower(strings.TrimSpace(args[0]))
	b.store(ctx, chatID).AddFavorite(ctx, id)
	return fmt.Sprintf("Биржа %s в избранном", id)
}

func (b *Bot) unfavReply(ctx context.Context, chatID int64, args []string) string {
	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return "Укажи id биржи: /unfav binance"
	}
	id := strings.ToLower(strings.TrimSpace(args[0]))
	b.store(ctx, chatID).RemoveFavorite(ctx, id)
	return fmt.Sprintf("Биржа %s убрана из избранного", id)
}

func (b *Bot) themeReply(ctx context.Context, chatID int64) string {
	theme := b.store(ctx, chatID).ToggleTheme(ctx)
	if theme == domain.ThemeLight {
		return "Тема: светлая"
	}
	return "Тема: тёмная"
}

// startAutoReply — включает дайджест для чата с интервалом в минутах и необязательной валютой
func (b *Bot) startAutoReply(ctx context.Context, chatID int64, args []string) string {
	if len(args) < 1 || len(args) > 2 {
		b.logger.Warn("bot: /startauto wrong args",
			slog.Int64("chat_id", chatID),
			slog.Int("args_len", len(args)),
		)
		return "Укажи интервал в минутах: /startauto 10"
	}
	mins, err := parseMinutes(args[0])
	if err != nil {
		b.logger.Warn("bot: /startauto invalid interval",
			slog.Int64("chat_id", chatID),
			slog.String("arg", args[0]),
		)
		return "Некорректный интервал. Пример: /startauto 10"
	}
	var currency string
	if len(args) == 2 {
		currency = args[1]
	}
	cur, err := b.dash.Currency(currency)
	if err != nil {
		b.logger.Warn("bot: /startauto unsupported currency",
			slog.Int64("chat_id", chatID),
			slog.String("arg", currency),
		)
		return "Валюта не поддерживается. Пример: /startauto 10 usd"
	}
	if err := b.subs.Enable(ctx, chatID, mins, cur); err != nil {
		return errorText(err)
	}
	b.logger.Debug("bot: startauto enabled",
		slog.Int64("chat_id", chatID),
		slog.Int("interval_min", mins),
		slog.String("currency", cur),
	)
	return fmt.Sprintf("Дайджест включён! (каждые %d мин., %s)", mins, strings.ToUpper(cur))
}

// parseMinutes — парсит строку с минутами и валидирует значение (> 0)
func parseMinutes(s string) (int, error) {
	s = strings.TrimSpace(s)
	m, err := strconv.Atoi(s)
	if err != nil || m <= 0 {
		return 0, ErrInvalidInterval
	}
	return m, nil
}
