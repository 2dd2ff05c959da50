package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	botpkg "github.com/NastyaGoryachaya/crypto-dashboard/internal/bot"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/cache"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/config"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/infra/coingecko"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/infra/db"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/preferences"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository/file"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/repository/memory"
	repopg "github.com/NastyaGoryachaya/crypto-dashboard/internal/repository/postgres"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/scheduler"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/market"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/subscription"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/transport/httptransport"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/transport/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db    *pgxpool.Pool
	redis *redis.Client
	e     *echo.Echo
	serv  *http.Server

	market market.Service
	dash   *dashboard.Service
	prefs  *preferences.Store

	updater *scheduler.Scheduler
	stream  *ws.Handler

	bot *botpkg.Bot
}

func NewApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	app := &App{cfg: cfg, log: log}

	c, err := app.newCache(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	storage, err := app.newPreferencesStorage(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	provider := coingecko.NewClient(coingecko.Config{
		BaseURL:   cfg.CoinGecko.BaseURL,
		APIKey:    cfg.CoinGecko.APIKey,
		PerPage:   cfg.CoinGecko.PerPage,
		Timeout:   cfg.CoinGecko.Timeout,
		UserAgent: cfg.CoinGecko.UserAgent,
	})

	app.market = market.NewService(provider, c, market.TTLs{
		Coins:     cfg.Cache.CoinsTTL,
		Exchanges: cfg.Cache.ExchangesTTL,
		Detail:    cfg.Cache.DetailTTL,
		Chart:     cfg.Cache.ChartTTL,
	}, cfg.CoinGecko.Currencies, log)
	app.dash = dashboard.NewService(app.market, cfg.CoinGecko.Currencies, time.Local, log)
	app.prefs = preferences.Open(ctx, storage, cfg.Preferences.Record, log)

	e := echo.New()
	e.HideBanner = true
	app.e = e

	h := httptransport.NewHandler(log, app.dash, app.prefs, cfg.CoinGecko.Timeout)
	h.RegisterRoutes(e)

	app.stream = ws.NewHandler(log, app.dash, cfg.Stream.Interval, cfg.CoinGecko.Timeout)
	app.stream.RegisterRoutes(e)

	app.serv = &http.Server{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		Handler:      e,
	}

	if cfg.Scheduler.Enabled {
		var w scheduler.Warmer = app.market
		if mem, ok := c.(*cache.Memory); ok {
			w = pruningWarmer{Warmer: app.market, cache: mem, log: log}
		}
		app.updater = scheduler.NewScheduler(w, cfg.Scheduler.Interval, log)
	}

	if cfg.Telegram.Enabled {
		// Если бот включён, отсутствие токена — ошибка конфигурации
		token := strings.TrimSpace(cfg.Telegram.Token)
		if token == "" {
			log.Error("telegram enabled but TELEGRAM_BOT_TOKEN is empty")
			app.close()
			return nil, errors.New("telegram token is empty")
		}

		var subsRepo subscription.Repository = memory.NewSubscriptionRepo()
		if app.db != nil {
			subsRepo = repopg.NewSubscriptionRepo(app.db)
		}

		botApp, err := botpkg.New(
			botpkg.Config{
				Token:           token,
				LongPollTimeout: cfg.Telegram.LongPollTimeout,
				TopN:            cfg.Telegram.TopN,
				DigestPeriod:    cfg.Telegram.DigestPeriod,
				PrefsMaxIdle:    cfg.Telegram.PrefsMaxIdle,
			},
			app.dash,
			preferences.NewRegistry(storage, log),
			subscription.New(subsRepo, log),
			log,
		)
		if err != nil {
			log.Error("telegram init failed", slog.String("error", err.Error()))
			app.close()
			return nil, err
		}
		app.bot = botApp
	}
	log.Info("app initialized",
		slog.String("cache_backend", cfg.Cache.Backend),
		slog.String("preferences_backend", cfg.Preferences.Backend),
		slog.Bool("telegram_enabled", cfg.Telegram.Enabled),
		slog.String("http_addr", cfg.Server.Addr),
	)
	return app, nil
}

func (a *App) newCache(ctx context.Context) (cache.Cache, error) {
	switch a.cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemory(), nil
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		rc := cache.NewRedis(a.redis, a.cfg.Redis.Prefix)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return rc, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", a.cfg.Cache.Backend)
	}
}

func (a *App) newPreferencesStorage(ctx context.Context) (preferences.Storage, error) {
	switch a.cfg.Preferences.Backend {
	case "", "file":
		return file.NewPreferencesRepo(a.cfg.Preferences.Dir), nil
	case "memory":
		return memory.NewPreferencesRepo(), nil
	case "postgres":
		pool, err := db.NewPool(&a.cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.db = pool
		if err := db.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		return repopg.NewPreferencesRepo(pool), nil
	default:
		return nil, fmt.Errorf("unknown preferences backend %q", a.cfg.Preferences.Backend)
	}
}

func (a *App) Run(ctx context.Context) error {
	if a.updater != nil {
		a.log.Info("starting updater")
		go a.updater.Start(ctx)
	}

	if a.bot != nil {
		a.log.Info("starting bot")
		a.bot.Start(ctx)
	}

	a.log.Info("starting server", slog.String("addr", a.cfg.Server.Addr))
	errCh := make(chan error, 1)
	go func() {
		if err := a.e.StartServer(a.serv); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", slog.String("error", err.Error()))
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	if err := a.Shutdown(context.Background()); err != nil {
		return err
	}
	return runErr
}

func (a *App) Shutdown(ctx context.Context) error {
	shCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.stream != nil {
		a.stream.Stop()
	}

	if a.e != nil {
		if err := a.e.Shutdown(shCtx); err != nil {
			a.log.Error("http shutdown error", slog.String("error", err.Error()))
		}
	}

	if a.bot != nil {
		a.bot.Stop()
	}

	a.close()
	a.log.Info("application stopped")
	return nil
}

func (a *App) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("redis close error", slog.String("error", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}

// pruningWarmer — перед прогревом выбрасывает протухшие записи in-memory кеша
type pruningWarmer struct {
	scheduler.Warmer
	cache *cache.Memory
	log   *slog.Logger
}

func (w pruningWarmer) Warm(ctx context.Context) error {
	if n := w.cache.Prune(); n > 0 {
		w.log.Debug("cache pruned", slog.Int("entries", n))
	}
	return w.Warmer.Warm(ctx)
}
