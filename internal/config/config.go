// Package config はウィジェットの設定（YAMLファイル + 環境変数）を扱います。
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/infrastructure/pac12"
)

// ページサイズの上限・下限（CMSの設定フォームと同じ範囲）
const (
	MinPageSize     = 1
	MaxPageSize     = 256
	DefaultPageSize = 10
)

// Config はアプリケーション全体の設定です
type Config struct {
	API       APIConfig       `yaml:"api"`
	List      ListSettings    `yaml:"list"`
	Block     BlockSettings   `yaml:"block"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// APIConfig はPac-12 APIへの接続設定です
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout が 0 の場合は http.Client の既定（無制限）のままです
	Timeout time.Duration `yaml:"timeout"`
}

// ListSettings はページ一覧の設定です
type ListSettings struct {
	PageSize       int    `yaml:"page_size"`
	Sport          string `yaml:"sport"`
	InfiniteScroll bool   `yaml:"infinite_scroll"`
}

// BlockSettings はブロック一覧の設定です
type BlockSettings struct {
	PageSize int    `yaml:"page_size"`
	Sport    string `yaml:"sport"`
}

// ServerConfig はRPCサーバーの設定です
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	RateLimit      int           `yaml:"rate_limit"`
	RateWindow     time.Duration `yaml:"rate_window"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// Default は既定値の設定を返します
func Default() Config {
	return Config{
		API:   APIConfig{BaseURL: pac12.DefaultBaseURL},
		List:  ListSettings{PageSize: DefaultPageSize},
		Block: BlockSettings{PageSize: DefaultPageSize},
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimit:      100,
			RateWindow:     time.Minute,
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{
			Endpoint:     "localhost:4318",
			SamplingRate: 1.0,
		},
	}
}

// PageList はページ一覧の ListConfig を返します
func (c Config) PageList() model.ListConfig {
	return model.ListConfig{PageSize: c.List.PageSize, SportFilter: c.List.Sport}
}

// BlockList はブロック一覧の ListConfig を返します
func (c Config) BlockList() model.ListConfig {
	return model.ListConfig{PageSize: c.Block.PageSize, SportFilter: c.Block.Sport}
}

// Load は path のYAMLを既定値に重ね、さらに環境変数で上書きして検証します
// path が空の場合は環境変数のみを使います
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := decode(bytes.NewReader(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v, ok := lookupEnv("PORT"); ok {
		cfg.Server.Addr = ":" + v
	}
	if v, ok := lookupEnv("PAC12_API_BASE_URL"); ok {
		cfg.API.BaseURL = v
	}
	if v, ok := lookupEnv("LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT"); ok {
		cfg.Telemetry.Endpoint = v
		cfg.Telemetry.Enabled = true
	}
	if v, ok := lookupEnv("VOD_LIST_SPORT"); ok {
		cfg.List.Sport = v
	}
	if v, ok := lookupEnv("VOD_BLOCK_LIST_SPORT"); ok {
		cfg.Block.Sport = v
	}

	var err error
	if cfg.List.PageSize, err = envInt("VOD_LIST_LIMIT", cfg.List.PageSize); err != nil {
		return err
	}
	if cfg.Block.PageSize, err = envInt("VOD_BLOCK_LIST_LIMIT", cfg.Block.PageSize); err != nil {
		return err
	}
	if v, ok := lookupEnv("VOD_INFINITE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VOD_INFINITE: %w", err)
		}
		cfg.List.InfiniteScroll = b
	}
	return nil
}

// lookupEnv は空文字の環境変数を未設定として扱います
func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func envInt(key string, fallback int) (int, error) {
	v, ok := lookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// Validate は設定値を検証します
func Validate(cfg Config) error {
	var errs []error

	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL, got %q", cfg.API.BaseURL))
	}
	if cfg.API.Timeout < 0 {
		errs = append(errs, fmt.Errorf("api.timeout must not be negative"))
	}
	if err := validatePageSize("list.page_size", cfg.List.PageSize); err != nil {
		errs = append(errs, err)
	}
	if err := validatePageSize("block.page_size", cfg.Block.PageSize); err != nil {
		errs = append(errs, err)
	}
	if cfg.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit must not be negative"))
	}
	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		errs = append(errs, fmt.Errorf("telemetry.sampling_rate must be within 0..1, got %v", cfg.Telemetry.SamplingRate))
	}
	return errors.Join(errs...)
}

func validatePageSize(field string, n int) error {
	if n < MinPageSize || n > MaxPageSize {
		return fmt.Errorf("%s must be within %d..%d, got %d", field, MinPageSize, MaxPageSize, n)
	}
	return nil
}
