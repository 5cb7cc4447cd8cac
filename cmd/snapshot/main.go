// Command snapshot はウィジェットを1回描画し、ページのHTMLをファイルに書き出します。
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"jo3qma.com/pac12_vod/internal/app"
	"jo3qma.com/pac12_vod/internal/config"
	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/infrastructure/pac12"
	xlog "jo3qma.com/pac12_vod/internal/log"
	"jo3qma.com/pac12_vod/internal/render"
	"jo3qma.com/pac12_vod/internal/scroll"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to the settings file (YAML)")
		out        = flag.String("out", "vod.html", "output file")
		host       = flag.String("host", "", "host page HTML containing the mount points (optional)")
		pages      = flag.Int("pages", 0, "additional page-list pages to load through the scroll trigger")
		watch      = flag.Bool("watch", false, "re-render whenever the settings file changes")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		base := xlog.Base()
		base.Fatal().Err(err).Msg("failed to load configuration")
	}
	xlog.Configure(xlog.Config{Level: cfg.Log.Level, Output: os.Stderr, Service: "pac12-vod-snapshot"})
	logger := xlog.WithComponent("snapshot")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	page, err := newPage(*host)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load host page")
	}

	// 追加ページはスクロールトリガー経由で読み込むため、間引き間隔は最小にします
	settings := app.SettingsFrom(cfg)
	if *pages > 0 {
		settings.InfiniteScroll = true
	}
	widget := app.New(pac12.NewClient(cfg.API.BaseURL, cfg.API.Timeout), page, settings, app.WithScrollInterval(time.Nanosecond))
	defer widget.Close()

	if err := widget.Boot(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial render interrupted")
	}
	if err := snapshot(ctx, widget, *pages, *out, logger); err != nil {
		logger.Fatal().Err(err).Msg("snapshot failed")
	}
	if !*watch {
		return
	}

	holder := config.NewHolder(cfg, *configPath)
	reloads := make(chan config.Config, 1)
	holder.RegisterListener(reloads)
	if err := holder.StartWatcher(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to watch settings file")
	}
	defer holder.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case next := <-reloads:
			s := app.SettingsFrom(next)
			if *pages > 0 {
				s.InfiniteScroll = true
			}
			if err := widget.ApplySettings(ctx, s); err != nil {
				logger.Error().Err(err).Msg("re-render interrupted")
				continue
			}
			if err := snapshot(ctx, widget, *pages, *out, logger); err != nil {
				logger.Error().Err(err).Msg("snapshot failed")
			}
		}
	}
}

func newPage(hostPath string) (*render.Page, error) {
	if hostPath == "" {
		return render.NewPage(), nil
	}
	f, err := os.Open(hostPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return render.NewPageFromReader(f)
}

// snapshot はスクロールトリガー経由で追加ページを読み込み、ページ全体を out に書き出します
func snapshot(ctx context.Context, widget *app.Widget, pages int, out string, logger zerolog.Logger) error {
	bottom := scroll.Viewport{}
	for i := 0; i < pages; i++ {
		if widget.Session(model.MountPage).Exhausted() {
			logger.Info().Int("loaded", i).Msg("reached the end of the list")
			break
		}
		programs, fired := widget.OnScroll(ctx, bottom)
		if !fired {
			break
		}
		logger.Debug().Int(xlog.FieldCount, len(programs)).Msg("loaded additional page")
	}

	tmp, err := os.CreateTemp(filepath.Dir(out), ".snapshot-*.html")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := widget.Page().WriteTo(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Info().
		Str("out", out).
		Int("page_items", widget.Page().Count(render.PageMountID)).
		Int("block_items", widget.Page().Count(render.BlockMountID)).
		Msg("snapshot written")
	return nil
}
