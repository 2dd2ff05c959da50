package subscription

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
)

var ErrInvalidInterval = errors.New("interval must be > 0")

// DefaultCurrency — валюта дайджеста, если чат её не указал
const DefaultCurrency = "usd"

// Repository — хранилище подписок на дайджест
type Repository interface {
	FindDue(ctx context.Context, now time.Time) ([]domain.DigestSubscription, error)
	MarkSent(ctx context.Context, chatID int64, at time.Time) error
	MarkEnabled(ctx context.Context, chatID int64, intervalMinutes int, currency string) error
	MarkDisabled(ctx context.Context, chatID int64) error
}

type Service struct {
	repo Repository
	log  *slog.Logger
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Enable включает дайджест для чата; пустая валюта — usd.
// Идемпотентна: повторный вызов с теми же параметрами безопасен.
func (s *Service) Enable(ctx context.Context, chatID int64, intervalMinutes int, currency string) error {
	if intervalMinutes <= 0 {
		return ErrInvalidInterval
	}
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if err := s.repo.MarkEnabled(ctx, chatID, intervalMinutes, currency); err != nil {
		s.log.Error("subscriptions.enable failed",
			slog.Int64("chat_id", chatID),
			slog.Int("interval_min", intervalMinutes),
			slog.String("currency", currency),
			slog.String("err", err.Error()))
		return err
	}
	s.log.Info("subscriptions.enable ok",
		slog.Int64("chat_id", chatID),
		slog.Int("interval_min", intervalMinutes),
		slog.String("currency", currency))
	return nil
}

// Disable отключает дайджест; если уже выключен — ошибки нет.
func (s *Service) Disable(ctx context.Context, chatID int64) error {
	if err := s.repo.MarkDisabled(ctx, chatID); err != nil {
		s.log.Error("subscriptions.disable failed",
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()))
		return err
	}
	s.log.Info("subscriptions.disable ok", slog.Int64("chat_id", chatID))
	return nil
}

// Due — подписки, у которых истёк интервал на момент now.
func (s *Service) Due(ctx context.Context, now time.Time) ([]domain.DigestSubscription, error) {
	due, err := s.repo.FindDue(ctx, now)
	if err != nil {
		s.log.Error("subscriptions.find_due failed", slog.String("err", err.Error()))
		return nil, err
	}
	return due, nil
}

func (s *Service) MarkSent(ctx context.Context, chatID int64, at time.Time) error {
	return s.repo.MarkSent(ctx, chatID, at)
}
