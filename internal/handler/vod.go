package handler

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/render"
	"jo3qma.com/pac12_vod/internal/scroll"
)

// VodServiceName はサービスの完全修飾名です
const VodServiceName = "pac12vod.v1.VodService"

// 各RPCのパス
const (
	ListVodsProcedure     = "/" + VodServiceName + "/ListVods"
	ReportScrollProcedure = "/" + VodServiceName + "/ReportScroll"
)

// Widget はハンドラーが使うウィジェットの操作です
type Widget interface {
	LoadPage(ctx context.Context, mount model.Mount, cursor model.Cursor) *model.VodPage
	OnScroll(ctx context.Context, v scroll.Viewport) ([]*model.VodProgram, bool)
}

// VodHandler はConnectのハンドラー実装です
// プロトコル層のメッセージとドメイン層（ウィジェット）を橋渡しします
type VodHandler struct {
	widget Widget
}

// NewVodHandler は新しいVodHandlerインスタンスを作成します
func NewVodHandler(widget Widget) *VodHandler {
	return &VodHandler{widget: widget}
}

// NewVodServiceHandler は VodService のHTTPハンドラーとマウントするパスを返します
func NewVodServiceHandler(h *VodHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ListVodsProcedure, connect.NewUnaryHandler(ListVodsProcedure, h.ListVods, opts...))
	mux.Handle(ReportScrollProcedure, connect.NewUnaryHandler(ReportScrollProcedure, h.ReportScroll, opts...))
	return "/" + VodServiceName + "/", mux
}

// ListVods は指定したマウントポイントの設定で1ページ取得するRPCハンドラーです
// next_page があればそのURLをそのまま使い、無ければ新規クエリを発行します
func (h *VodHandler) ListVods(
	ctx context.Context,
	req *connect.Request[ListVodsRequest],
) (*connect.Response[ListVodsResponse], error) {
	mount, err := model.ParseMount(req.Msg.Mount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	cursor := model.FreshCursor()
	if req.Msg.NextPage != "" {
		cursor = model.NextPageCursor(req.Msg.NextPage)
	}

	page := h.widget.LoadPage(ctx, mount, cursor)
	resp := &ListVodsResponse{Programs: toPrograms(page.Programs)}
	if page.Next != nil {
		resp.NextPage = page.Next.NextPageURL
	}
	return connect.NewResponse(resp), nil
}

// ReportScroll はスクロール位置を受け取り、無限スクロールのトリガーを動かすRPCハンドラーです
func (h *VodHandler) ReportScroll(
	ctx context.Context,
	req *connect.Request[ReportScrollRequest],
) (*connect.Response[ReportScrollResponse], error) {
	programs, triggered := h.widget.OnScroll(ctx, scroll.Viewport{
		DocumentHeight: req.Msg.DocumentHeight,
		WindowHeight:   req.Msg.WindowHeight,
		ScrollTop:      req.Msg.ScrollTop,
	})
	return connect.NewResponse(&ReportScrollResponse{
		Triggered: triggered,
		Programs:  toPrograms(programs),
	}), nil
}

// ドメインモデルをレスポンスに変換
func toPrograms(programs []*model.VodProgram) []*Program {
	out := make([]*Program, 0, len(programs))
	for _, p := range programs {
		if p == nil {
			continue
		}
		out = append(out, &Program{
			ID:          string(p.ID),
			Title:       p.Title,
			URL:         p.URL,
			DurationMs:  p.DurationMs,
			Duration:    render.DisplayDuration(render.FormatDuration(p.DurationMs)),
			Thumbnail:   p.Images.Small,
			SchoolsList: p.SchoolsList,
			SportsList:  p.SportsList,
		})
	}
	return out
}
