package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	xlog "jo3qma.com/pac12_vod/internal/log"
)

const defaultDebounce = 500 * time.Millisecond

// Holder は現在の設定を保持し、ファイルの変更を監視して再読み込みします
// 再読み込みに成功するとリスナーに新しい設定を通知します
type Holder struct {
	mu      sync.RWMutex
	current Config
	path    string
	logger  zerolog.Logger

	debounce time.Duration
	watcher  *fsnotify.Watcher
	done     chan struct{}

	listenersMu sync.RWMutex
	listeners   []chan<- Config
}

// NewHolder は新しいHolderを作成します
func NewHolder(initial Config, path string) *Holder {
	return &Holder{
		current:  initial,
		path:     path,
		logger:   xlog.WithComponent("config"),
		debounce: defaultDebounce,
	}
}

// Get は現在の設定を返します
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Reload はファイルから設定を読み直します
// 読み込みか検証に失敗した場合は古い設定のままエラーを返します
func (h *Holder) Reload() error {
	cfg, err := Load(h.path)
	if err != nil {
		h.logger.Error().Err(err).Str(xlog.FieldEvent, "config.reload_failed").Msg("failed to reload configuration")
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	old := h.current
	h.current = cfg
	h.mu.Unlock()

	h.logChanges(old, cfg)
	h.notify(cfg)

	h.logger.Info().Str(xlog.FieldEvent, "config.reload_success").Msg("configuration reloaded")
	return nil
}

// StartWatcher は設定ファイルの監視を開始します
// path が空（環境変数のみ）の場合は何もしません
func (h *Holder) StartWatcher(ctx context.Context) error {
	if h.path == "" {
		h.logger.Info().Str(xlog.FieldEvent, "config.watcher_disabled").Msg("no config file, watcher disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(h.path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config file: %w", err)
	}

	h.watcher = watcher
	h.done = make(chan struct{})
	h.logger.Info().Str(xlog.FieldEvent, "config.watcher_started").Str("path", h.path).Msg("watching config file")

	go h.watchLoop(ctx)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context) {
	defer close(h.done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
		_ = h.watcher.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Str(xlog.FieldEvent, "config.watcher_stopped").Msg("config watcher stopped")
			return

		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			h.logger.Debug().Str(xlog.FieldEvent, "config.file_changed").Str("op", event.Op.String()).Msg("config file changed")

			// 連続した書き込みは最後の1回だけ反映します
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(h.debounce, func() {
				_ = h.Reload()
			})

		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str(xlog.FieldEvent, "config.watcher_error").Msg("config watcher error")
		}
	}
}

// Stop は監視を止め、監視ゴルーチンの終了を待ちます
func (h *Holder) Stop() {
	if h.watcher == nil {
		return
	}
	_ = h.watcher.Close()
	<-h.done
}

// RegisterListener は再読み込み成功時に新しい設定を受け取るチャネルを登録します
// 送信はブロックしないので、受信側はバッファ付きチャネルを渡してください
func (h *Holder) RegisterListener(ch chan<- Config) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.listeners = append(h.listeners, ch)
}

func (h *Holder) notify(cfg Config) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, ch := range h.listeners {
		select {
		case ch <- cfg:
		default:
			h.logger.Warn().Str(xlog.FieldEvent, "config.listener_skip").Msg("listener channel full, skipped")
		}
	}
}

func (h *Holder) logChanges(old, cfg Config) {
	if old.List != cfg.List {
		h.logger.Info().
			Int("old_page_size", old.List.PageSize).
			Int("new_page_size", cfg.List.PageSize).
			Str("old_sport", old.List.Sport).
			Str("new_sport", cfg.List.Sport).
			Bool("infinite_scroll", cfg.List.InfiniteScroll).
			Msg("config changed: list")
	}
	if old.Block != cfg.Block {
		h.logger.Info().
			Int("old_page_size", old.Block.PageSize).
			Int("new_page_size", cfg.Block.PageSize).
			Str("old_sport", old.Block.Sport).
			Str("new_sport", cfg.Block.Sport).
			Msg("config changed: block")
	}
	if old.API.BaseURL != cfg.API.BaseURL {
		h.logger.Info().Str("old", old.API.BaseURL).Str("new", cfg.API.BaseURL).Msg("config changed: api.base_url")
	}
}
