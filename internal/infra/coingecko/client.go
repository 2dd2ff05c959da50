package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NastyaGoryachaya/crypto-dashboard/internal/domain"
)

const defaultUserAgent = "crypto-dashboard/1.0 (+https://github.com/NastyaGoryachaya/crypto-dashboard)"

// Config — параметры клиента CoinGecko
type Config struct {
	BaseURL   string
	APIKey    string
	PerPage   int
	Timeout   time.Duration
	UserAgent string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient - Создаёт нового клиента для работы с API CoinGecko.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// ListExchanges — список бирж
func (c *Client) ListExchanges(ctx context.Context) ([]domain.Exchange, error) {
	q := url.Values{}
	c.setPerPage(q)

	var data []exchangeResponse
	if err := c.get(ctx, []string{"exchanges"}, q, &data); err != nil {
		return nil, err
	}
	out := make([]domain.Exchange, 0, len(data))
	for _, d := range data {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// ListCoins — листинг монет с ценами в валюте currency
func (c *Client) ListCoins(ctx context.Context, currency string) ([]domain.Coin, error) {
	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(currency))
	q.Set("order", "market_cap_desc")
	c.setPerPage(q)

	var data []marketResponse
	if err := c.get(ctx, []string{"coins", "markets"}, q, &data); err != nil {
		return nil, err
	}
	out := make([]domain.Coin, 0, len(data))
	for _, d := range data {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// GetCoinDetail — карточка монеты по id
func (c *Client) GetCoinDetail(ctx context.Context, id string) (domain.CoinDetail, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")

	if err := validateID(id); err != nil {
		return domain.CoinDetail{}, err
	}

	var data detailResponse
	if err := c.get(ctx, []string{"coins", id}, q, &data); err != nil {
		return domain.CoinDetail{}, err
	}
	return data.toDomain(), nil
}

// GetPriceHistory — история цены за 1, 30 или 365 дней, по возрастанию времени
func (c *Client) GetPriceHistory(ctx context.Context, id, currency string, days domain.Window) ([]domain.PricePoint, error) {
	if !days.Valid() {
		return nil, domain.ErrInvalidWindow
	}
	if err := validateID(id); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("vs_currency", strings.ToLower(currency))
	q.Set("days", strconv.Itoa(int(days)))

	var data chartResponse
	if err := c.get(ctx, []string{"coins", id, "market_chart"}, q, &data); err != nil {
		return nil, err
	}
	return data.toDomain(), nil
}

// validateID — id идёт сегментом пути, поэтому ".." и разделители запрещены.
// Ошибка оборачивает ErrNotFound: такой монеты у провайдера быть не может.
func validateID(id string) error {
	if id == "" || id == "." || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %w %q", ErrNotFound, ErrInvalidID, id)
	}
	return nil
}

func (c *Client) setPerPage(q url.Values) {
	if c.cfg.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	}
}

// get — GET base/path...?query и декодирование JSON в out
func (c *Client) get(ctx context.Context, path []string, query url.Values, out any) error {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	u = u.JoinPath(path...)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if c.cfg.APIKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", u.Path, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("request failed: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
