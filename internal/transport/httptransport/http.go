package httptransport

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/ports/errcode"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/service/dashboard"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DashboardService — абстракция для представлений рынка.
type DashboardService interface {
	Coins(ctx context.Context, currency string, q listing.CoinQuery) ([]domain.Coin, error)
	Exchanges(ctx context.Context, favorites []string, q listing.ExchangeQuery) ([]dashboard.ExchangeItem, error)
	CoinDetail(ctx context.Context, id, currency string) (dashboard.CoinDetailView, error)
	Chart(ctx context.Context, id, currency string, days domain.Window) (dashboard.Chart, error)
}

// PreferencesStore — настройки пользователя (preferences.Store)
type PreferencesStore interface {
	Snapshot() domain.Preferences
	Favorites() []string
	ToggleTheme(ctx context.Context) domain.Theme
	AddFavorite(ctx context.Context, id string)
	RemoveFavorite(ctx context.Context, id string)
}

// Router — то, на чём регистрируем маршруты (echo.Echo или echo.Group)
type Router interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// CoinDetail — DTO карточки монеты
type CoinDetail struct {
	domain.Coin
	Currency    string          `json:"currency"`
	Price       decimal.Decimal `json:"price"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	LastUpdated time.Time       `json:"last_updated"`
}

// Chart — DTO графика: prices в формате провайдера [[ms, price], ...]
type Chart struct {
	CoinID   string               `json:"coin_id"`
	Currency string               `json:"currency"`
	Days     int                  `json:"days"`
	Prices   [][2]decimal.Decimal `json:"prices"`
	Labels   []string             `json:"labels"`
	Stats    dashboard.Stats      `json:"stats"`
}

func makeChart(ch dashboard.Chart) Chart {
	out := Chart{
		CoinID:   ch.CoinID,
		Currency: ch.Currency,
		Days:     int(ch.Days),
		Prices:   make([][2]decimal.Decimal, 0, len(ch.Points)),
		Labels:   ch.Labels,
		Stats:    ch.Stats,
	}
	for _, p := range ch.Points {
		out.Prices = append(out.Prices, [2]decimal.Decimal{decimal.NewFromInt(p.Timestamp), p.Price})
	}
	return out
}

// Handler — HTTP-handler дашборда.
type Handler struct {
	logger  *slog.Logger
	svc     DashboardService
	prefs   PreferencesStore
	timeout time.Duration
}

func NewHandler(logger *slog.Logger, svc DashboardService, prefs PreferencesStore, timeout time.Duration) *Handler {
	if logger == nil {
		log.Fatal("nil logger")
	}
	if svc == nil || prefs == nil {
		log.Fatal("nil dependency")
	}
	// Задаём таймаут по умолчанию, если он не задан
	if timeout <= 0 {
		timeout = time.Second * 3
	}
	return &Handler{
		logger:  logger,
		svc:     svc,
		prefs:   prefs,
		timeout: timeout,
	}
}

func (h *Handler) RegisterRoutes(r Router) {
	r.GET("/healthz", h.Health)

	r.GET("/coins", h.GetCoins)
	r.GET("/coins/:id", h.GetCoinDetail)
	r.GET("/coins/:id/chart", h.GetChart)
	r.GET("/exchanges", h.GetExchanges)

	r.GET("/preferences", h.GetPreferences)
	r.POST("/preferences/theme/toggle", h.ToggleTheme)
	r.PUT("/preferences/favorites/:id", h.AddFavorite)
	r.DELETE("/preferences/favorites/:id", h.RemoveFavorite)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func (h *Handler) GetCoins(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	q := listing.CoinQuery{
		Search: c.QueryParam("search"),
		Sort:   listing.ParseCoinSort(c.QueryParam("sort")),
	}
	items, err := h.svc.Coins(ctx, c.QueryParam("currency"), q)
	if err != nil {
		return h.fail(c, "GetCoins", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetCoinDetail(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	v, err := h.svc.CoinDetail(ctx, id, c.QueryParam("currency"))
	if err != nil {
		return h.fail(c, "GetCoinDetail", err)
	}
	return c.JSON(http.StatusOK, CoinDetail{
		Coin:        v.Detail.Coin,
		Currency:    v.Currency,
		Price:       v.Price,
		Summary:     v.Summary,
		Description: v.Detail.Description,
		LastUpdated: v.Detail.LastUpdated,
	})
}

func (h *Handler) GetChart(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	days, err := domain.ParseWindow(c.QueryParam("days"))
	if err != nil {
		return h.fail(c, "GetChart", err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	ch, err := h.svc.Chart(ctx, id, c.QueryParam("currency"), days)
	if err != nil {
		return h.fail(c, "GetChart", err)
	}
	return c.JSON(http.StatusOK, makeChart(ch))
}

func (h *Handler) GetExchanges(c echo.Context) error {
	favOnly := false
	if raw := c.QueryParam("favorites"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_favorites_flag"})
		}
		favOnly = v
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	q := listing.ExchangeQuery{
		Search:        c.QueryParam("search"),
		Sort:          listing.ParseExchangeSort(c.QueryParam("sort")),
		FavoritesOnly: favOnly,
	}
	items, err := h.svc.Exchanges(ctx, h.prefs.Favorites(), q)
	if err != nil {
		return h.fail(c, "GetExchanges", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetPreferences(c echo.Context) error {
	return c.JSON(http.StatusOK, h.prefs.Snapshot())
}

func (h *Handler) ToggleTheme(c echo.Context) error {
	theme := h.prefs.ToggleTheme(c.Request().Context())
	h.logger.Debug("theme toggled", slog.String("theme", string(theme)))
	return c.JSON(http.StatusOK, h.prefs.Snapshot())
}

func (h *Handler) AddFavorite(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id_required"})
	}
	h.prefs.AddFavorite(c.Request().Context(), id)
	return c.JSON(http.StatusOK, h.prefs.Snapshot())
}

func (h *Handler) RemoveFavorite(c echo.Context) error {
	h.prefs.RemoveFavorite(c.Request().Context(), strings.TrimSpace(c.Param("id")))
	return c.JSON(http.StatusOK, h.prefs.Snapshot())
}

// fail — перевод ошибки сервиса в HTTP-ответ
func (h *Handler) fail(c echo.Context, op string, err error) error {
	switch FromServiceError(err) {
	case errcode.NotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	case errcode.BadRequest:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bad_request", "detail": err.Error()})
	case errcode.Unavailable:
		h.logger.Warn("market data unavailable", slog.String("op", op), slog.String("error", err.Error()))
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "market_data_unavailable"})
	default:
		h.logger.Error("request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_server_error"})
	}
}
