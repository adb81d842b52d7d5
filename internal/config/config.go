package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	validator "gopkg.in/go-playground/validator.v9"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in Providers.Order.
const (
	Metalprice = "metalprice"
	GoldAPI    = "goldapi"
	MetalsLive = "metals.live"
	Forex      = "forex"
)

type Server struct {
	Port              string `json:"port" yaml:"port" validate:"required,numeric"`
	RequestTimeoutSec int    `json:"request_timeout_sec" yaml:"request_timeout_sec" validate:"gte=1"`
	MaxCandles        int    `json:"max_candles" yaml:"max_candles" validate:"gte=1,lte=5000"`
}

type Cache struct {
	SpotTTLSec int  `json:"spot_ttl_sec" yaml:"spot_ttl_sec" validate:"gte=0"`
	ServeStale bool `json:"serve_stale" yaml:"serve_stale"`
}

type Log struct {
	Level string `json:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Dev   bool   `json:"dev" yaml:"dev"`
}

// Breaker configures the circuit placed around every credential.
type Breaker struct {
	Enabled                bool `json:"enabled" yaml:"enabled"`
	TimeoutMs              int  `json:"timeout_ms" yaml:"timeout_ms" validate:"gte=0"`
	MaxConcurrentRequests  int  `json:"max_concurrent_requests" yaml:"max_concurrent_requests" validate:"gte=0"`
	RequestVolumeThreshold int  `json:"request_volume_threshold" yaml:"request_volume_threshold" validate:"gte=0"`
	SleepWindowMs          int  `json:"sleep_window_ms" yaml:"sleep_window_ms" validate:"gte=0"`
	ErrorPercentThreshold  int  `json:"error_percent_threshold" yaml:"error_percent_threshold" validate:"gte=0,lte=100"`
}

type MetalpriceConfig struct {
	Enabled              bool     `json:"enabled" yaml:"enabled"`
	APIKeys              []string `json:"api_keys" yaml:"api_keys"`
	Endpoint             string   `json:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	TimeoutSec           int      `json:"timeout_sec" yaml:"timeout_sec" validate:"gte=0"`
	MaxRequestsPerMinute int      `json:"max_requests_per_minute" yaml:"max_requests_per_minute" validate:"gte=0"`
	Burst                int      `json:"burst" yaml:"burst" validate:"gte=0"`
}

type GoldAPIConfig struct {
	Enabled              bool     `json:"enabled" yaml:"enabled"`
	Tokens               []string `json:"tokens" yaml:"tokens"`
	Endpoint             string   `json:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	TimeoutSec           int      `json:"timeout_sec" yaml:"timeout_sec" validate:"gte=0"`
	MaxRequestsPerMinute int      `json:"max_requests_per_minute" yaml:"max_requests_per_minute" validate:"gte=0"`
	Burst                int      `json:"burst" yaml:"burst" validate:"gte=0"`
}

type MetalsLiveConfig struct {
	Enabled          bool   `json:"enabled" yaml:"enabled"`
	Endpoint         string `json:"endpoint" yaml:"endpoint" validate:"omitempty,url"`
	TimeoutSec       int    `json:"timeout_sec" yaml:"timeout_sec" validate:"gte=0"`
	TicksCacheTTLSec int    `json:"ticks_cache_ttl_sec" yaml:"ticks_cache_ttl_sec" validate:"gte=0"`
}

type ForexConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	XAUURL     string `json:"xau_url" yaml:"xau_url" validate:"omitempty,url"`
	XAGURL     string `json:"xag_url" yaml:"xag_url" validate:"omitempty,url"`
	APIKey     string `json:"api_key" yaml:"api_key"`
	TimeoutSec int    `json:"timeout_sec" yaml:"timeout_sec" validate:"gte=0"`
}

type Providers struct {
	// Order is the fallback priority. Disabled providers are skipped.
	Order      []string         `json:"order" yaml:"order" validate:"min=1,dive,oneof=metalprice goldapi metals.live forex"`
	Metalprice MetalpriceConfig `json:"metalprice" yaml:"metalprice"`
	GoldAPI    GoldAPIConfig    `json:"goldapi" yaml:"goldapi"`
	MetalsLive MetalsLiveConfig `json:"metalslive" yaml:"metalslive"`
	Forex      ForexConfig      `json:"forex" yaml:"forex"`
	Breaker    Breaker          `json:"breaker" yaml:"breaker"`
}

type Config struct {
	Server    Server    `json:"server" yaml:"server"`
	Cache     Cache     `json:"cache" yaml:"cache"`
	Log       Log       `json:"log" yaml:"log"`
	Providers Providers `json:"providers" yaml:"providers"`
}

func Default() Config {
	return Config{
		Server: Server{Port: "8080", RequestTimeoutSec: 15, MaxCandles: 300},
		Cache:  Cache{SpotTTLSec: 5},
		Log:    Log{Level: "info"},
		Providers: Providers{
			Order:      []string{Metalprice, GoldAPI, MetalsLive},
			Metalprice: MetalpriceConfig{Enabled: true, TimeoutSec: 6, MaxRequestsPerMinute: 30, Burst: 2},
			GoldAPI:    GoldAPIConfig{Enabled: true, TimeoutSec: 6, MaxRequestsPerMinute: 30, Burst: 2},
			MetalsLive: MetalsLiveConfig{Enabled: true, TimeoutSec: 6, TicksCacheTTLSec: 10},
			Forex:      ForexConfig{TimeoutSec: 5},
			Breaker: Breaker{
				Enabled:                true,
				TimeoutMs:              8000,
				MaxConcurrentRequests:  20,
				RequestVolumeThreshold: 5,
				SleepWindowMs:          30000,
				ErrorPercentThreshold:  50,
			},
		},
	}
}

// Load reads config from path (JSON, or YAML for .yaml/.yml). If path is
// empty, config.json then config.yaml in the working directory are tried; a
// missing file yields defaults. Environment variables override credentials
// and select fields, then the result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		for _, candidate := range []string{"config.json", "config.yaml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err == nil {
			if err := decode(path, b, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

// Validate checks field ranges and cross-field consistency.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	seen := map[string]bool{}
	for _, name := range c.Providers.Order {
		if seen[name] {
			return fmt.Errorf("invalid config: provider %q listed twice in providers.order", name)
		}
		seen[name] = true
	}
	if c.Providers.Forex.Enabled && c.Providers.Forex.XAUURL == "" && c.Providers.Forex.XAGURL == "" {
		return errors.New("invalid config: providers.forex enabled without xau_url or xag_url")
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	envInt(getenv, "REQUEST_TIMEOUT_SEC", 1, &cfg.Server.RequestTimeoutSec)
	envInt(getenv, "MAX_CANDLES", 1, &cfg.Server.MaxCandles)
	envInt(getenv, "SPOT_CACHE_TTL_SEC", 0, &cfg.Cache.SpotTTLSec)
	envBool(getenv, "SERVE_STALE", &cfg.Cache.ServeStale)
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := getenv("PROVIDER_ORDER"); v != "" {
		cfg.Providers.Order = splitCSV(v)
	}

	// Metalprice keys: a CSV list, plus the numbered single-key variables.
	mp := &cfg.Providers.Metalprice
	for _, name := range []string{"METALPRICE_API_KEYS", "METALPRICE_KEYS"} {
		if v := getenv(name); v != "" {
			mp.APIKeys = splitCSV(v)
			break
		}
	}
	for _, name := range []string{"METALPRICE_KEY_1", "METALPRICE_KEY_2"} {
		if v := strings.TrimSpace(getenv(name)); v != "" && !contains(mp.APIKeys, v) {
			mp.APIKeys = append(mp.APIKeys, v)
		}
	}
	if v := getenv("METALPRICE_ENDPOINT"); v != "" {
		mp.Endpoint = v
	}
	envInt(getenv, "METALPRICE_MAX_RPM", 0, &mp.MaxRequestsPerMinute)

	if v := getenv("GOLDAPI_KEY"); v != "" {
		cfg.Providers.GoldAPI.Tokens = splitCSV(v)
	}
	if v := getenv("GOLDAPI_ENDPOINT"); v != "" {
		cfg.Providers.GoldAPI.Endpoint = v
	}
	envInt(getenv, "GOLDAPI_MAX_RPM", 0, &cfg.Providers.GoldAPI.MaxRequestsPerMinute)

	if v := getenv("METALSLIVE_ENDPOINT"); v != "" {
		cfg.Providers.MetalsLive.Endpoint = v
	}
	envBool(getenv, "METALSLIVE_ENABLED", &cfg.Providers.MetalsLive.Enabled)

	fx := &cfg.Providers.Forex
	if v := getenv("FOREX_XAU_URL"); v != "" {
		fx.XAUURL = v
		fx.Enabled = true
	}
	if v := getenv("FOREX_XAG_URL"); v != "" {
		fx.XAGURL = v
		fx.Enabled = true
	}
	if v := getenv("FOREX_API_KEY"); v != "" {
		fx.APIKey = v
	}
	if fx.Enabled && !contains(cfg.Providers.Order, Forex) {
		// a configured bid/ask feed leads the chain
		cfg.Providers.Order = append([]string{Forex}, cfg.Providers.Order...)
	}

	envBool(getenv, "BREAKER_ENABLED", &cfg.Providers.Breaker.Enabled)
}

func envInt(getenv func(string) string, name string, min int, dst *int) {
	v := getenv(name)
	if v == "" {
		return
	}
	if x, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && x >= min {
		*dst = x
	}
}

func envBool(getenv func(string) string, name string, dst *bool) {
	switch strings.ToLower(strings.TrimSpace(getenv(name))) {
	case "1", "true", "yes", "y":
		*dst = true
	case "0", "false", "no", "n":
		*dst = false
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
