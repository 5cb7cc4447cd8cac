// Package log はzerologによる構造化ログを提供します。
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config はグローバルロガーの設定です
type Config struct {
	Level   string    // "debug", "info" など。空なら LOG_LEVEL を参照します
	Output  io.Writer // 省略時は os.Stdout
	Service string    // すべてのログに付与するサービス名
}

var (
	once sync.Once
	base zerolog.Logger
)

// Configure はグローバルロガーを一度だけ初期化します
func Configure(cfg Config) {
	once.Do(func() {
		level := zerolog.InfoLevel
		lv := cfg.Level
		if lv == "" {
			lv = os.Getenv("LOG_LEVEL")
		}
		if lv != "" {
			if parsed, err := zerolog.ParseLevel(lv); err == nil {
				level = parsed
			}
		}
		zerolog.SetGlobalLevel(level)
		zerolog.TimeFieldFormat = time.RFC3339

		writer := cfg.Output
		if writer == nil {
			writer = os.Stdout
		}

		service := cfg.Service
		if service == "" {
			service = "pac12-vod"
		}

		base = zerolog.New(writer).With().
			Timestamp().
			Str("service", service).
			Logger()
	})
}

// Base は設定済みのベースロガーを返します
func Base() zerolog.Logger {
	Configure(Config{})
	return base
}

// WithComponent はコンポーネント名を付与した子ロガーを返します
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}
