// Package scroll は無限スクロールのトリガーを提供します。
package scroll

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"jo3qma.com/pac12_vod/internal/domain/model"
	xlog "jo3qma.com/pac12_vod/internal/log"
)

// DefaultInterval はスクロールイベントを間引く間隔です
const DefaultInterval = 100 * time.Millisecond

// Viewport はスクロールイベント時点のドキュメントとウィンドウの寸法です
type Viewport struct {
	DocumentHeight float64
	WindowHeight   float64
	ScrollTop      float64
}

// AtBottom はドキュメントの末尾まで到達したかどうかを返します
func (v Viewport) AtBottom() bool {
	return v.DocumentHeight-v.WindowHeight <= v.ScrollTop
}

// PageLoader は次のページを取得します（ページ一覧のセッション）
type PageLoader interface {
	Next(ctx context.Context) []*model.VodProgram
}

// Renderer はページ一覧のマウントポイントに追記します
type Renderer interface {
	Render(mountID string, programs []*model.VodProgram)
}

// Trigger はスクロールが末尾に達したときにページ一覧の次ページを読み込みます
// ブロック一覧には作用しません
//
// イベントは interval ごとに間引かれます。間隔内に届いたイベントは捨てずに最後の1件を保持し、
// 間隔が明けた時点でもう一度末尾判定を行います（先頭と末尾の両方で発火するスロットル）
type Trigger struct {
	enabled  bool
	loader   PageLoader
	renderer Renderer
	mountID  string
	logger   zerolog.Logger

	mu      sync.Mutex
	limiter *rate.Limiter
	pending *Viewport
	ctx     context.Context
	timer   *time.Timer
	stopped bool
}

// NewTrigger は新しいTriggerを作成します
// enabled が false の場合、OnScroll は常に何もしません
func NewTrigger(enabled bool, loader PageLoader, renderer Renderer, mountID string, interval time.Duration) *Trigger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Trigger{
		enabled:  enabled,
		loader:   loader,
		renderer: renderer,
		mountID:  mountID,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		logger:   xlog.WithComponent("scroll"),
	}
}

// Enabled は無限スクロールが有効かどうかを返します
func (t *Trigger) Enabled() bool { return t.enabled }

// OnScroll はスクロールイベントを受け取ります
// 間隔が空いていればその場で末尾判定を行い、末尾なら次ページを読み込んで追記します
// 間隔内のイベントは保留され、間隔が明けたときに最後の1件で判定されます。この場合は fired が false です
func (t *Trigger) OnScroll(ctx context.Context, v Viewport) (programs []*model.VodProgram, fired bool) {
	if !t.enabled {
		return nil, false
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil, false
	}
	if t.timer == nil && t.limiter.Allow() {
		t.mu.Unlock()
		return t.fire(ctx, v)
	}

	t.pending = &v
	t.ctx = context.WithoutCancel(ctx)
	if t.timer == nil {
		r := t.limiter.Reserve()
		t.timer = time.AfterFunc(r.Delay(), t.flush)
	}
	t.mu.Unlock()
	return nil, false
}

// flush は保留していた最後のイベントで末尾判定を行います
func (t *Trigger) flush() {
	t.mu.Lock()
	v, ctx := t.pending, t.ctx
	t.pending, t.ctx, t.timer = nil, nil, nil
	stopped := t.stopped
	t.mu.Unlock()

	if v == nil || stopped {
		return
	}
	t.fire(ctx, *v)
}

func (t *Trigger) fire(ctx context.Context, v Viewport) ([]*model.VodProgram, bool) {
	if !v.AtBottom() {
		return nil, false
	}

	t.logger.Debug().Str(xlog.FieldEvent, "scroll.bottom_reached").Msg("loading next page")
	programs := t.loader.Next(ctx)
	t.renderer.Render(t.mountID, programs)
	return programs, true
}

// Stop は保留中のイベントを破棄し、以降のイベントを無視します
func (t *Trigger) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
