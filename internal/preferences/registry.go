package preferences

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry — лениво открытые Store по имени записи (например, отдельная запись на каждый чат бота).
type Registry struct {
	mu      sync.Mutex
	storage Storage
	logger  *slog.Logger
	stores  map[string]*entry
	now     func() time.Time
}

type entry struct {
	store    *Store
	lastUsed time.Time
}

func NewRegistry(storage Storage, logger *slog.Logger) *Registry {
	return &Registry{
		storage: storage,
		logger:  logger,
		stores:  make(map[string]*entry),
		now:     time.Now,
	}
}

// Get возвращает Store для записи name, открывая её при первом обращении.
func (r *Registry) Get(ctx context.Context, name string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.stores[name]; ok {
		e.lastUsed = r.now()
		return e.store
	}
	s := Open(ctx, r.storage, name, r.logger)
	r.stores[name] = &entry{store: s, lastUsed: r.now()}
	return s
}

// PruneIdle выгружает Store, к которым не обращались дольше maxIdle.
// Каждая мутация уже сохранена, поэтому следующий Get просто перечитает запись.
func (r *Registry) PruneIdle(maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-maxIdle)
	n := 0
	for name, e := range r.stores {
		if e.lastUsed.Before(cutoff) {
			delete(r.stores, name)
			n++
		}
	}
	if n > 0 {
		r.logger.Debug("preference stores evicted", slog.Int("count", n), slog.Int("open", len(r.stores)))
	}
	return n
}

// Len — число открытых Store.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
