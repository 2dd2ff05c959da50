package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepo — записи настроек в таблице preferences (data jsonb)
type PreferencesRepo struct {
	db *pgxpool.Pool
}

func NewPreferencesRepo(db *pgxpool.Pool) *PreferencesRepo {
	return &PreferencesRepo{db: db}
}

// Load — прочитать запись по имени; нет строки — repository.ErrNotFound.
func (r *PreferencesRepo) Load(ctx context.Context, name string) (domain.Preferences, error) {
	const query = `SELECT data FROM preferences WHERE name = $1`

	var raw []byte
	if err := r.db.QueryRow(ctx, query, name).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Preferences{}, repository.ErrNotFound
		}
		return domain.Preferences{}, err
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode preferences %q: %w", name, err)
	}
	return prefs, nil
}

// Save — upsert записи целиком.
func (r *PreferencesRepo) Save(ctx context.Context, name string, prefs domain.Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	const query = `
		INSERT INTO preferences (name, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`
	_, err = r.db.Exec(ctx, query, name, data)
	return err
}
