package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/listing"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/ports/errcode"
	"github.com/NastyaGoryachaya/crypto-dashboard/internal/transport/httptransport"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const writeWait = 5 * time.Second

// CoinsView — источник листинга монет (dashboard.Service)
type CoinsView interface {
	Coins(ctx context.Context, currency string, q listing.CoinQuery) ([]domain.Coin, error)
}

// Frame — сообщение потока: {"type":"coins","coins":[...]} или {"type":"error","error":"..."}
type Frame struct {
	Type  string        `json:"type"`
	Coins []domain.Coin `json:"coins"`
	Error errcode.Code  `json:"error,omitempty"`
}

// MarshalJSON — у кадра ошибки нет ключа coins, у листинга он есть всегда (пустой — []).
func (f Frame) MarshalJSON() ([]byte, error) {
	if f.Type == frameError {
		return json.Marshal(struct {
			Type  string       `json:"type"`
			Error errcode.Code `json:"error"`
		}{f.Type, f.Error})
	}
	coins := f.Coins
	if coins == nil {
		coins = []domain.Coin{}
	}
	return json.Marshal(struct {
		Type  string        `json:"type"`
		Coins []domain.Coin `json:"coins"`
	}{f.Type, coins})
}

const (
	frameCoins = "coins"
	frameError = "error"
)

// Handler — поток листинга монет по websocket.
type Handler struct {
	logger   *slog.Logger
	svc      CoinsView
	interval time.Duration
	timeout  time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func NewHandler(logger *slog.Logger, svc CoinsView, interval, timeout time.Duration) *Handler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Handler{
		logger:   logger,
		svc:      svc,
		interval: interval,
		timeout:  timeout,
		done:     make(chan struct{}),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/coins", h.Coins)
}

// Stop закрывает все открытые потоки.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Coins — GET /ws/coins?currency=&search=&sort=
// Первый кадр уходит сразу после подключения, дальше раз в interval.
func (h *Handler) Coins(c echo.Context) error {
	currency := c.QueryParam("currency")
	q := listing.CoinQuery{
		Search: c.QueryParam("search"),
		Sort:   listing.ParseCoinSort(c.QueryParam("sort")),
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return nil
	}
	defer conn.Close()

	h.logger.Info("stream client connected", slog.String("remote", c.RealIP()))
	defer h.logger.Info("stream client disconnected", slog.String("remote", c.RealIP()))

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	// Читаем входящие только ради close/ping от клиента
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.push(ctx, conn, currency, q); err != nil {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
				time.Now().Add(writeWait))
			return nil
		case <-ticker.C:
			if err := h.push(ctx, conn, currency, q); err != nil {
				return nil
			}
		}
	}
}

// push строит листинг и пишет кадр; ошибка — только если упала запись.
func (h *Handler) push(ctx context.Context, conn *websocket.Conn, currency string, q listing.CoinQuery) error {
	reqCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	frame := Frame{Type: frameCoins}
	coins, err := h.svc.Coins(reqCtx, currency, q)
	if err != nil {
		frame = Frame{Type: frameError, Error: httptransport.FromServiceError(err)}
		h.logger.Warn("stream frame failed", slog.String("error", err.Error()))
	} else {
		frame.Coins = coins
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(frame); err != nil {
		h.logger.Debug("stream write failed", slog.String("error", err.Error()))
		return err
	}
	return nil
}
