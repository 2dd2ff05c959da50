package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Warmer — то, что планировщик дёргает на каждом тике (market.Service)
type Warmer interface {
	Warm(ctx context.Context) error
}

type Scheduler struct {
	warmer   Warmer
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler — конструктор планировщика фонового прогрева кеша
func NewScheduler(warmer Warmer, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		warmer:   warmer,
		interval: interval,
		logger:   logger,
	}
}

// Start — запускает периодическое выполнение задачи до остановки контекста
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// первый запуск сразу
	s.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		}
	}
}

// runOnce — одна итерация: обновить листинги в кеше
func (s *Scheduler) runOnce(ctx context.Context) {
	started := time.Now()
	if err := s.warmer.Warm(ctx); err != nil {
		s.logger.Error("tick: warm failed", slog.Any("err", err))
		return
	}
	s.logger.Debug("tick: warm completed", slog.Duration("duration", time.Since(started)))
}
