package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository"
)

// PreferencesRepo — хранилище настроек в памяти процесса (живёт до рестарта)
type PreferencesRepo struct {
	mu      sync.RWMutex
	records map[string]domain.Preferences
}

func NewPreferencesRepo() *PreferencesRepo {
	return &PreferencesRepo{records: make(map[string]domain.Preferences)}
}

func (r *PreferencesRepo) Load(_ context.Context, name string) (domain.Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.records[name]
	if !ok {
		return domain.Preferences{}, repository.ErrNotFound
	}
	return domain.Preferences{Theme: p.Theme, Favorites: slices.Clone(p.Favorites)}, nil
}

func (r *PreferencesRepo) Save(_ context.Context, name string, prefs domain.Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = domain.Preferences{Theme: prefs.Theme, Favorites: slices.Clone(prefs.Favorites)}
	return nil
}
