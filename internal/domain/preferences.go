package domain

import "strings"

// Theme — тема оформления
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Toggled возвращает противоположную тему
func (t Theme) Toggled() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ParseTheme - всё, кроме "light", трактуем как тему по умолчанию (dark)
func ParseTheme(s string) Theme {
	if strings.EqualFold(strings.TrimSpace(s), string(ThemeLight)) {
		return ThemeLight
	}
	return ThemeDark
}

// Preferences — сохраняемые настройки пользователя
type Preferences struct {
	Theme     Theme    `json:"theme"`
	Favorites []string `json:"favorites"`
}

// DefaultPreferences - состояние при первом запуске
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeDark, Favorites: []string{}}
}

// Normalized приводит запись к инвариантам: тема одна из двух, избранное без дублей и пустых id.
func (p Preferences) Normalized() Preferences {
	out := Preferences{
		Theme:     ParseTheme(string(p.Theme)),
		Favorites: make([]string, 0, len(p.Favorites)),
	}
	seen := make(map[string]struct{}, len(p.Favorites))
	for _, id := range p.Favorites {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out.Favorites = append(out.Favorites, id)
	}
	return out
}

// FavoriteSet - избранное в виде множества для фильтрации
func (p Preferences) FavoriteSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Favorites))
	for _, id := range p.Favorites {
		set[id] = struct{}{}
	}
	return set
}
