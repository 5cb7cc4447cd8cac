// Package app はVODウィジェットのページセッションを組み立てます。
//
// 起動時に競技カタログを読み込み、ページ一覧とブロック一覧を並行して取得・描画します。
// スクロールイベントはページ一覧の次ページを読み込み、設定変更は両方の一覧を最初から描き直します。
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"jo3qma.com/pac12_vod/internal/config"
	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/domain/repository"
	xlog "jo3qma.com/pac12_vod/internal/log"
	"jo3qma.com/pac12_vod/internal/refcache"
	"jo3qma.com/pac12_vod/internal/render"
	"jo3qma.com/pac12_vod/internal/scroll"
	"jo3qma.com/pac12_vod/internal/usecase"
)

// API はウィジェットが使うPac-12 APIの操作です
type API interface {
	repository.VodRepository
	repository.SportRepository
	repository.SchoolRepository
}

// Settings はCMSから渡される一覧の設定です
type Settings struct {
	Page           model.ListConfig
	Block          model.ListConfig
	InfiniteScroll bool
}

// SettingsFrom は設定ファイルの内容からウィジェットの設定を作ります
func SettingsFrom(cfg config.Config) Settings {
	return Settings{
		Page:           cfg.PageList(),
		Block:          cfg.BlockList(),
		InfiniteScroll: cfg.List.InfiniteScroll,
	}
}

// Option はWidgetの任意設定です
type Option func(*Widget)

// WithScrollInterval はスクロールイベントを間引く間隔を変更します
func WithScrollInterval(d time.Duration) Option {
	return func(w *Widget) { w.scrollInterval = d }
}

// Widget は1ページ分のウィジェットの状態です
type Widget struct {
	sports         *refcache.SportCache
	uc             *usecase.VodUsecase
	page           *render.Page
	scrollInterval time.Duration
	logger         zerolog.Logger

	mu        sync.RWMutex
	gen       uint64
	settings  Settings
	pageList  *usecase.ListSession
	blockList *usecase.ListSession
	trigger   *scroll.Trigger
}

// New は新しいWidgetを作成します
// 参照データのキャッシュはWidgetの寿命（ページセッション）の間だけ保持されます
func New(api API, page *render.Page, settings Settings, opts ...Option) *Widget {
	sports := refcache.NewSportCache(api)
	schools := refcache.NewSchoolCache(api)

	w := &Widget{
		sports:         sports,
		uc:             usecase.NewVodUsecase(api, sports, schools),
		page:           page,
		scrollInterval: scroll.DefaultInterval,
		logger:         xlog.WithComponent("app"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.reset(settings)
	return w
}

// reset は新しいカーソルで一覧セッションを作り直します。呼び出し側でロックを取ってください
// 世代が進むので、古いセッションで取得中だった結果は描画されません
func (w *Widget) reset(settings Settings) {
	if w.trigger != nil {
		w.trigger.Stop()
	}
	w.gen++
	w.settings = settings
	w.pageList = usecase.NewListSession(model.MountPage, settings.Page, w.uc)
	w.blockList = usecase.NewListSession(model.MountBlock, settings.Block, w.uc)
	w.trigger = scroll.NewTrigger(settings.InfiniteScroll, w.pageList, generationRenderer{w: w, gen: w.gen}, render.PageMountID, w.scrollInterval)
}

// generationRenderer は作成時の世代がまだ現在のものである場合だけ描画します
type generationRenderer struct {
	w   *Widget
	gen uint64
}

func (r generationRenderer) Render(mountID string, programs []*model.VodProgram) {
	r.w.renderIfCurrent(r.gen, mountID, programs)
}

// renderIfCurrent は gen が現在の世代なら描画して true を返します
// 描画中はロックを保持するので、ApplySettings によるクリアと交差しません
func (w *Widget) renderIfCurrent(gen uint64, mountID string, programs []*model.VodProgram) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if gen != w.gen {
		w.logger.Debug().
			Str(xlog.FieldEvent, "widget.stale_result_discarded").
			Str(xlog.FieldMount, mountID).
			Int(xlog.FieldCount, len(programs)).
			Msg("discarding result of a superseded session")
		return false
	}
	w.page.Render(mountID, programs)
	return true
}

// Boot は競技カタログを読み込んだ後、ページ一覧とブロック一覧を並行して取得し描画します
// 取得の失敗はログに残るだけで、該当する一覧が空のまま残ります
func (w *Widget) Boot(ctx context.Context) error {
	w.sports.Load(ctx)

	w.mu.RLock()
	gen, pageList, blockList := w.gen, w.pageList, w.blockList
	w.mu.RUnlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range []*usecase.ListSession{pageList, blockList} {
		g.Go(func() error {
			programs := s.Next(gctx)
			if !w.renderIfCurrent(gen, render.MountID(s.Mount()), programs) {
				return nil
			}
			w.logger.Info().
				Str(xlog.FieldEvent, "widget.list_rendered").
				Str(xlog.FieldMount, string(s.Mount())).
				Int(xlog.FieldCount, len(programs)).
				Msg("list rendered")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// OnScroll はスクロールイベントをページ一覧のトリガーに渡します
// 読み込み中に設定が変わった場合、その結果は描画されず fired も false になります
func (w *Widget) OnScroll(ctx context.Context, v scroll.Viewport) ([]*model.VodProgram, bool) {
	w.mu.RLock()
	gen, trigger := w.gen, w.trigger
	w.mu.RUnlock()

	programs, fired := trigger.OnScroll(ctx, v)
	if !fired {
		return nil, false
	}

	w.mu.RLock()
	current := gen == w.gen
	w.mu.RUnlock()
	if !current {
		return nil, false
	}
	return programs, true
}

// Close は保留中のスクロールイベントを破棄します
func (w *Widget) Close() {
	w.mu.RLock()
	defer w.mu.RUnlock()
	w.trigger.Stop()
}

// ApplySettings は設定変更を反映します
// 両方のマウントポイントを空にして新しいカーソルで最初から描き直します（競技カタログは再取得しません）
func (w *Widget) ApplySettings(ctx context.Context, settings Settings) error {
	w.mu.Lock()
	w.page.Clear(render.PageMountID)
	w.page.Clear(render.BlockMountID)
	w.reset(settings)
	w.mu.Unlock()

	w.logger.Info().
		Str(xlog.FieldEvent, "widget.settings_applied").
		Int("page_size", settings.Page.PageSize).
		Int("block_page_size", settings.Block.PageSize).
		Bool("infinite_scroll", settings.InfiniteScroll).
		Msg("settings changed, re-rendering")
	return w.Boot(ctx)
}

// LoadPage はセッションの状態を変えずに mount の設定で1ページ取得します
func (w *Widget) LoadPage(ctx context.Context, mount model.Mount, cursor model.Cursor) *model.VodPage {
	w.mu.RLock()
	cfg := w.settings.Page
	if mount == model.MountBlock {
		cfg = w.settings.Block
	}
	w.mu.RUnlock()
	return w.uc.LoadVods(ctx, cfg, cursor)
}

// Settings は現在の設定を返します
func (w *Widget) Settings() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// Session は mount の一覧セッションを返します
func (w *Widget) Session(mount model.Mount) *usecase.ListSession {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if mount == model.MountBlock {
		return w.blockList
	}
	return w.pageList
}

// Page は描画先のページを返します
func (w *Widget) Page() *render.Page { return w.page }
