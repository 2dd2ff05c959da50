package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Загрузка конфигурации из config.yaml через cleanenv

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	CoinGecko   CoinGeckoConfig   `yaml:"coingecko"`
	Cache       CacheConfig       `yaml:"cache"`
	Redis       RedisConfig       `yaml:"redis"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Scheduler   SchedulerConfig   `yaml:"schedulers"`
	Stream      StreamConfig      `yaml:"stream"`
	Telegram    TelegramConfig    `yaml:"telegram"`
	Logger      LoggerConfig      `yaml:"logger"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

type CoinGeckoConfig struct {
	BaseURL    string        `yaml:"base_url" env:"COINGECKO_BASE_URL" env-default:"https://api.coingecko.com/api/v3"`
	APIKey     string        `yaml:"api_key" env:"COINGECKO_API_KEY"` // demo-ключ, необязателен
	Currencies []string      `yaml:"currencies" env-default:"usd,inr"`
	PerPage    int           `yaml:"per_page" env-default:"100"`
	Timeout    time.Duration `yaml:"timeout" env-default:"8s"`
	UserAgent  string        `yaml:"user_agent" env-default:"crypto-dashboard/1.0"`
}

// CacheConfig — сроки свежести ответов провайдера
type CacheConfig struct {
	Backend      string        `yaml:"backend" env:"CACHE_BACKEND" env-default:"memory"` // memory|redis
	CoinsTTL     time.Duration `yaml:"coins_ttl" env-default:"1m"`
	ExchangesTTL time.Duration `yaml:"exchanges_ttl" env-default:"1m"`
	DetailTTL    time.Duration `yaml:"detail_ttl" env-default:"1m"`
	ChartTTL     time.Duration `yaml:"chart_ttl" env-default:"5m"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env-default:"dashboard:"`
}

// PreferencesConfig — где хранить тему и избранное
type PreferencesConfig struct {
	Backend string `yaml:"backend" env:"PREFERENCES_BACKEND" env-default:"file"` // file|postgres|memory
	Dir     string `yaml:"dir" env:"PREFERENCES_DIR" env-default:".dashboard"`
	Record  string `yaml:"record" env-default:"crypto-app-storage"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host" env-default:"localhost"`
	Port            int           `yaml:"port" env-default:"5432"`
	User            string        `yaml:"user" env-default:"postgres"`
	Password        string        `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"postgres"`
	DBName          string        `yaml:"dbname" env-default:"crypto"`
	SSLMode         string        `yaml:"sslmode" env-default:"disable"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
	MaxConns        int32         `yaml:"max_conns" env-default:"10"`
	MinConns        int32         `yaml:"min_conns" env-default:"1"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"30m"`
}

// SchedulerConfig — фоновый прогрев кеша листингов
type SchedulerConfig struct {
	Enabled  bool          `yaml:"enabled" env-default:"true"`
	Interval time.Duration `yaml:"interval" env-default:"1m"`
}

// StreamConfig — websocket-рассылка списка монет
type StreamConfig struct {
	Interval time.Duration `yaml:"interval" env-default:"30s"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled" env:"TELEGRAM_ENABLED" env-default:"false"`
	Token   string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	TopN    int    `yaml:"top_n" env-default:"10"` // сколько строк в ответе бота

	LongPollTimeout time.Duration `yaml:"long_poll_timeout" env-default:"10s"`
	DigestPeriod    time.Duration `yaml:"digest_period" env-default:"1m"` // как часто проверять подписки на дайджест
	PrefsMaxIdle    time.Duration `yaml:"prefs_max_idle" env-default:"24h"` // выгружать из памяти настройки неактивных чатов
}

type LoggerConfig struct {
	Level  string `yaml:"level"  env-default:"info"` // debug|info|warn|error
	Format string `yaml:"format" env-default:"text"` // text|json
}

func LoadConfig() (*Config, error) {
	return LoadConfigFrom(fetchConfigPath())
}

// LoadConfigFrom — файл (если задан), затем переменные окружения
func LoadConfigFrom(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	// Read from environment variables
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fetchConfigPath() string {
	var res string
	flag.StringVar(&res, "c", "", "config file path")
	flag.Parse()
	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}
