package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
)

type subscription struct {
	interval time.Duration
	currency string
	enabled  bool
	lastSent time.Time // zero — ещё не отправляли
}

// SubscriptionRepo — подписки на дайджест в памяти процесса
type SubscriptionRepo struct {
	mu   sync.Mutex
	subs map[int64]*subscription
}

func NewSubscriptionRepo() *SubscriptionRepo {
	return &SubscriptionRepo{subs: make(map[int64]*subscription)}
}

func (r *SubscriptionRepo) MarkEnabled(_ context.Context, chatID int64, intervalMinutes int, currency string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[chatID] = &subscription{
		interval: time.Duration(intervalMinutes) * time.Minute,
		currency: currency,
		enabled:  true,
	}
	return nil
}

func (r *SubscriptionRepo) MarkDisabled(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[chatID]; ok {
		s.enabled = false
	}
	return nil
}

func (r *SubscriptionRepo) FindDue(_ context.Context, now time.Time) ([]domain.DigestSubscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DigestSubscription
	for id, s := range r.subs {
		if !s.enabled {
			continue
		}
		if s.lastSent.IsZero() || now.Sub(s.lastSent) >= s.interval {
			out = append(out, domain.DigestSubscription{ChatID: id, Currency: s.currency})
		}
	}
	slices.SortFunc(out, func(a, b domain.DigestSubscription) int { return cmp.Compare(a.ChatID, b.ChatID) })
	return out, nil
}

func (r *SubscriptionRepo) MarkSent(_ context.Context, chatID int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.subs[chatID]; ok {
		s.lastSent = at
	}
	return nil
}
