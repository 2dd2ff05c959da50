package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository"
)

var ErrInvalidName = errors.New("invalid record name")

// PreferencesRepo хранит каждую запись настроек JSON-файлом <dir>/<name>.json
type PreferencesRepo struct {
	dir string
}

func NewPreferencesRepo(dir string) *PreferencesRepo {
	return &PreferencesRepo{dir: dir}
}

func (r *PreferencesRepo) path(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", ErrInvalidName
	}
	return filepath.Join(r.dir, name+".json"), nil
}

// Load — прочитать запись; нет файла — repository.ErrNotFound.
func (r *PreferencesRepo) Load(_ context.Context, name string) (domain.Preferences, error) {
	p, err := r.path(name)
	if err != nil {
		return domain.Preferences{}, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Preferences{}, repository.ErrNotFound
	}
	if err != nil {
		return domain.Preferences{}, fmt.Errorf("read preferences: %w", err)
	}

	var prefs domain.Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return domain.Preferences{}, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}

// Save — записать запись целиком через временный файл и rename.
func (r *PreferencesRepo) Save(_ context.Context, name string, prefs domain.Preferences) error {
	p, err := r.path(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}

	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
