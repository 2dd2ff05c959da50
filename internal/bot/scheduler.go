package bot

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"gopkg.in/telebot.v4"
)

// sender — отправка сообщений (telebot.Bot)
type sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// scheduler - рассылка дайджестов подписанным чатам.
type scheduler struct {
	bot          *Bot
	out          sender
	checkPeriod  time.Duration
	prefsMaxIdle time.Duration // настройки чатов, простаивающих дольше, выгружаются после тика; 0 — никогда
	logger       *slog.Logger
}

func newScheduler(bot *Bot, out sender, period time.Duration, logger *slog.Logger) *scheduler {
	if period <= 0 {
		period = time.Minute
	}
	logger.Debug("bot scheduler configured", slog.Duration("period", period))
	return &scheduler{bot: bot, out: out, checkPeriod: period, logger: logger}
}

// run - основной цикл: раз в checkPeriod проверяем, кому пора отправить дайджест.
func (s *scheduler) run(ctx context.Context) {
	s.logger.Info("bot scheduler started", slog.Duration("period", s.checkPeriod))
	t := time.NewTicker(s.checkPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("bot scheduler stopped")
			return
		case now := <-t.C:
			started := time.Now()
			sent := s.tick(ctx, now)
			evicted := s.pruneIdle()
			s.logger.Debug("scheduler tick completed",
				slog.Int("sent", sent),
				slog.Int("prefs_evicted", evicted),
				slog.Duration("duration", time.Since(started)),
			)
		}
	}
}

func (s *scheduler) pruneIdle() int {
	if s.prefsMaxIdle <= 0 {
		return 0
	}
	return s.bot.prefs.PruneIdle(s.prefsMaxIdle)
}

// tick - одна итерация: монеты грузим один раз на валюту, биржи — по избранному каждого чата.
func (s *scheduler) tick(ctx context.Context, now time.Time) int {
	due, err := s.bot.subs.Due(ctx, now)
	if err != nil {
		s.logger.Error("failed to fetch due subscriptions", slog.Any("err", err))
		return 0
	}
	if len(due) == 0 {
		return 0
	}

	rCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	byCurrency := make(map[string][]domain.Coin)
	failed := make(map[string]bool) // валюты, не загрузившиеся на этом тике
	sent := 0
	for _, sub := range due {
		id := sub.ChatID
		if failed[sub.Currency] {
			continue
		}
		coins, ok := byCurrency[sub.Currency]
		if !ok {
			coins, err = s.bot.dash.Coins(rCtx, sub.Currency, listing.CoinQuery{})
			if err != nil {
				failed[sub.Currency] = true
				s.logger.Error("tick: failed to fetch coins",
					slog.Int64("chat_id", id),
					slog.String("currency", sub.Currency),
					slog.Any("err", err),
				)
				continue
			}
			byCurrency[sub.Currency] = coins
		}
		msg := s.digest(rCtx, id, sub.Currency, coins)
		if _, err := s.out.Send(&telebot.Chat{ID: id}, msg); err != nil {
			s.logger.Error("tick: send failed", slog.Int64("chat_id", id), slog.Any("err", err))
			continue
		}
		if err := s.bot.subs.MarkSent(ctx, id, now); err != nil {
			s.logger.Error("tick: mark sent failed", slog.Int64("chat_id", id), slog.Any("err", err))
			continue
		}
		sent++
	}
	return sent
}

// digest - топ монет плюс избранные биржи чата; без избранного только монеты.
func (s *scheduler) digest(ctx context.Context, chatID int64, currency string, coins []domain.Coin) string {
	var b strings.Builder
	b.WriteString("Топ монет:\n")
	b.WriteString(formatCoins(coins, currency, s.bot.topN))

	favs := s.bot.store(ctx, chatID).Favorites()
	if len(favs) == 0 {
		return b.String()
	}
	items, err := s.bot.dash.Exchanges(ctx, favs, listing.ExchangeQuery{FavoritesOnly: true})
	if err != nil {
		s.logger.Warn("tick: favorites digest failed", slog.Int64("chat_id", chatID), slog.Any("err", err))
		return b.String()
	}
	if len(items) > 0 {
		b.WriteString("\n\nИзбранные биржи:\n")
		b.WriteString(formatExchanges(items, s.bot.topN))
	}
	return b.String()
}
