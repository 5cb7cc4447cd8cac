// Package render はエンリッチ済みのVOD一覧をページのDOMに追記します。
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"jo3qma.com/pac12_vod/internal/domain/model"
	xlog "jo3qma.com/pac12_vod/internal/log"
)

// マウントポイントのHTML ID
const (
	PageMountID  = "list-container"
	BlockMountID = "list-block-container"
)

// MountID はマウントポイントに対応するHTML IDを返します
func MountID(m model.Mount) string {
	if m == model.MountBlock {
		return BlockMountID
	}
	return PageMountID
}

const defaultDocument = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Pac-12 VOD</title></head>
<body>
<ul id="` + PageMountID + `" class="vod-list"></ul>
<ul id="` + BlockMountID + `" class="vod-list vod-list-block"></ul>
</body>
</html>`

var itemTemplate = template.Must(template.New("vod-item").Parse(`<li class="vod-item-wrapper">
  <div class="vod-item">
    <a class="vod-image-a" href="{{.URL}}"><img class="vod-thumb" src="{{.Thumb}}" /></a>
    <a class="vod-title-a" href="{{.URL}}">{{.Title}}</a>
    <div class="vod-item-schools">{{.Schools}}</div>
    <div class="vod-details-wrapper"><span class="vod-item-duration">Duration: {{.Duration}}</span>
    <span class="vod-item-sports">{{.Sports}}</span></div>
  </div>
</li>`))

type itemView struct {
	URL      string
	Thumb    string
	Title    string
	Schools  string
	Duration string
	Sports   string
}

var renderedItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pac12_vod_rendered_items_total",
	Help: "VOD items appended to a mount point",
}, []string{"mount"})

// Page はウィジェットが描画するページのDOMです
// 並行して呼ばれる Render はロックで直列化されます
type Page struct {
	mu     sync.Mutex
	doc    *goquery.Document
	logger zerolog.Logger
}

// NewPage は2つのマウントポイントを持つ既定のページを作成します
func NewPage() *Page {
	p, err := NewPageFromReader(strings.NewReader(defaultDocument))
	if err != nil {
		// defaultDocument は固定なので失敗しません
		panic(err)
	}
	return p
}

// NewPageFromReader はホストが用意したHTMLからページを作成します
func NewPageFromReader(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return &Page{
		doc:    doc,
		logger: xlog.WithComponent("render"),
	}, nil
}

// Render は programs を1件ずつリスト項目としてマウントポイントに追記します
// 既存の内容は消さないので、呼び出すたびに項目が積み上がります
// マウントポイントが存在しない場合は何もしません
func (p *Page) Render(mountID string, programs []*model.VodProgram) {
	if len(programs) == 0 {
		return
	}

	var html strings.Builder
	rendered := 0
	for _, prog := range programs {
		if prog == nil {
			continue
		}
		// 失敗した項目の書きかけを混ぜないよう、1件ずつ別のバッファに描画します
		var item bytes.Buffer
		if err := itemTemplate.Execute(&item, newItemView(prog)); err != nil {
			p.logger.Error().Err(err).Str("program_id", string(prog.ID)).Msg("failed to render vod item")
			continue
		}
		html.Write(item.Bytes())
		rendered++
	}
	if rendered == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	mount := p.doc.Find("#" + mountID)
	if mount.Length() == 0 {
		p.logger.Warn().Str(xlog.FieldMount, mountID).Msg("mount point not found")
		return
	}
	mount.AppendHtml(html.String())
	renderedItemsTotal.WithLabelValues(mountID).Add(float64(rendered))
}

func newItemView(prog *model.VodProgram) itemView {
	return itemView{
		URL:      prog.URL,
		Thumb:    prog.Images.Small,
		Title:    prog.Title,
		Schools:  prog.SchoolsList.String(),
		Duration: DisplayDuration(FormatDuration(prog.DurationMs)),
		Sports:   prog.SportsList,
	}
}

// Clear はマウントポイントの内容を空にします（設定変更時の再描画用）
func (p *Page) Clear(mountID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc.Find("#" + mountID).Empty()
}

// Count はマウントポイントに描画済みの項目数を返します
func (p *Page) Count(mountID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find("#" + mountID + " li.vod-item-wrapper").Length()
}

// Fragment はマウントポイント内のHTMLを返します
func (p *Page) Fragment(mountID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Find("#" + mountID).Html()
}

// WriteTo はページ全体のHTMLを w に書き出します
func (p *Page) WriteTo(w io.Writer) (int64, error) {
	p.mu.Lock()
	html, err := goquery.OuterHtml(p.doc.Selection)
	p.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to serialize page: %w", err)
	}
	n, err := io.WriteString(w, html)
	return int64(n), err
}
