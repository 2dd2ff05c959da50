package preferences

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository"
)

// DefaultRecord — имя записи настроек по умолчанию
const DefaultRecord = "crypto-app-storage"

// Storage — долговременное хранилище записи настроек.
// Load возвращает repository.ErrNotFound, если запись ещё не создавалась.
type Storage interface {
	Load(ctx context.Context, name string) (domain.Preferences, error)
	Save(ctx context.Context, name string, prefs domain.Preferences) error
}

// Store — настройки пользователя (тема + избранные биржи).
// Память — источник истины, запись в Storage best-effort: ошибки только логируются.
type Store struct {
	mu      sync.RWMutex
	name    string
	state   domain.Preferences
	storage Storage
	logger  *slog.Logger
}

// Open загружает запись name. Нет записи или хранилище недоступно — стартуем с настроек по умолчанию.
func Open(ctx context.Context, storage Storage, name string, logger *slog.Logger) *Store {
	s := &Store{
		name:    name,
		state:   domain.DefaultPreferences(),
		storage: storage,
		logger:  logger,
	}

	prefs, err := storage.Load(ctx, name)
	switch {
	case err == nil:
		s.state = prefs.Normalized()
		logger.Debug("preferences loaded",
			slog.String("record", name),
			slog.String("theme", string(s.state.Theme)),
			slog.Int("favorites", len(s.state.Favorites)),
		)
	case errors.Is(err, repository.ErrNotFound):
		logger.Debug("preferences record absent, using defaults", slog.String("record", name))
	default:
		logger.Warn("preferences load failed, using defaults",
			slog.String("record", name),
			slog.String("error", err.Error()),
		)
	}
	return s
}

// Name - имя записи
func (s *Store) Name() string { return s.name }

func (s *Store) Theme() domain.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Theme
}

// ToggleTheme переключает dark <-> light и возвращает новую тему.
func (s *Store) ToggleTheme(ctx context.Context) domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Theme = s.state.Theme.Toggled()
	s.persist(ctx)
	return s.state.Theme
}

// Favorites - копия списка избранного в порядке добавления
func (s *Store) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.state.Favorites)
}

func (s *Store) IsFavorite(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.state.Favorites, strings.TrimSpace(id))
}

// AddFavorite идемпотентна: повторное добавление ничего не меняет.
func (s *Store) AddFavorite(ctx context.Context, id string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.state.Favorites, id) {
		return
	}
	s.state.Favorites = append(s.state.Favorites, id)
	s.persist(ctx)
}

// RemoveFavorite идемпотентна: удаление отсутствующего id — no-op.
func (s *Store) RemoveFavorite(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.Index(s.state.Favorites, strings.TrimSpace(id))
	if idx < 0 {
		return
	}
	s.state.Favorites = slices.Delete(s.state.Favorites, idx, idx+1)
	s.persist(ctx)
}

// Snapshot - копия всего состояния
func (s *Store) Snapshot() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Preferences{
		Theme:     s.state.Theme,
		Favorites: slices.Clone(s.state.Favorites),
	}
}

// Reset возвращает настройки по умолчанию.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.DefaultPreferences()
	s.persist(ctx)
}

// persist вызывается под s.mu, поэтому записи идут в порядке изменений.
func (s *Store) persist(ctx context.Context) {
	snapshot := domain.Preferences{
		Theme:     s.state.Theme,
		Favorites: slices.Clone(s.state.Favorites),
	}
	if err := s.storage.Save(ctx, s.name, snapshot); err != nil {
		s.logger.Warn("preferences save failed",
			slog.String("record", s.name),
			slog.String("error", err.Error()),
		)
	}
}
