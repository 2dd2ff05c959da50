package main

import (
	"context"
	"flag"
	"os"
	"path"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/cache"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/cli"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/config"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/infra/coingecko"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/preferences"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository/file"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market"
	"github.com/NastyaGoryachaya/crypto-dashboard/pkg/logger"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

var (
	prefsDir = flag.String("prefs-dir", ".dashboard", "directory with preference records")
	record   = flag.String("record", preferences.DefaultRecord, "preference record name")
	baseURL  = flag.String("base-url", "https://api.coingecko.com/api/v3", "CoinGecko API base URL")
	timeout  = flag.Duration("timeout", 8*time.Second, "request timeout")
	logLevel = flag.String("log-level", "warn", "log level: debug|info|warn|error")
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &cli.Env{Out: os.Stdout, Err: os.Stderr}
	cli.Register(commander, env)

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 2*(*timeout))
	defer cancel()

	lg := logger.NewWithWriter(&config.LoggerConfig{Level: *logLevel, Format: "text"}, os.Stderr)
	provider := coingecko.NewClient(coingecko.Config{
		BaseURL: *baseURL,
		APIKey:  os.Getenv("COINGECKO_API_KEY"),
		Timeout: *timeout,
	})
	currencies := []string{"usd", "inr"}
	mkt := market.NewService(provider, cache.NewMemory(), market.TTLs{}, currencies, lg)

	env.Dash = dashboard.NewService(mkt, currencies, time.Local, lg)
	env.Prefs = preferences.Open(ctx, file.NewPreferencesRepo(*prefsDir), *record, lg)

	os.Exit(int(commander.Execute(ctx)))
}
