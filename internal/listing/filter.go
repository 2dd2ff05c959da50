package listing

import "strings"

// FilterByName оставляет элементы, в имени которых есть term (без учёта регистра).
// Пустой term — копия входа целиком. Порядок сохраняется, вход не меняется.
func FilterByName[T any](items []T, term string, name func(T) string) []T {
	out := make([]T, 0, len(items))
	needle := strings.ToLower(term)
	for _, it := range items {
		if needle == "" || strings.Contains(strings.ToLower(name(it)), needle) {
			out = append(out, it)
		}
	}
	return out
}

// FilterByFavorites оставляет элементы, чей id есть в множестве favorites.
func FilterByFavorites[T any](items []T, favorites map[string]struct{}, id func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := favorites[id(it)]; ok {
			out = append(out, it)
		}
	}
	return out
}
