package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"github.com/google/subcommands"
)

// Dashboard — представления рынка (dashboard.Service)
type Dashboard interface {
	Coins(ctx context.Context, currency string, q listing.CoinQuery) ([]domain.Coin, error)
	Exchanges(ctx context.Context, favorites []string, q listing.ExchangeQuery) ([]dashboard.ExchangeItem, error)
	Chart(ctx context.Context, id, currency string, days domain.Window) (dashboard.Chart, error)
}

// Preferences — локальные настройки (preferences.Store)
type Preferences interface {
	Snapshot() domain.Preferences
	Favorites() []string
	ToggleTheme(ctx context.Context) domain.Theme
	AddFavorite(ctx context.Context, id string)
	RemoveFavorite(ctx context.Context, id string)
}

// Env — зависимости команд
type Env struct {
	Dash  Dashboard
	Prefs Preferences
	Out   io.Writer
	Err   io.Writer
}

// Register регистрирует все команды coinctl.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(&coinsCmd{env: env}, "market")
	c.Register(&exchangesCmd{env: env}, "market")
	c.Register(&chartCmd{env: env}, "market")

	c.Register(&prefsCmd{env: env}, "preferences")
	c.Register(&themeCmd{env: env}, "preferences")
	c.Register(&favCmd{env: env}, "preferences")
	c.Register(&unfavCmd{env: env}, "preferences")
}

func (e *Env) failf(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, format+"\n", args...)
	return subcommands.ExitFailure
}
