package model

import "fmt"

// Mount は描画先のマウントポイントです（ページ一覧 / ブロック一覧）
type Mount string

const (
	MountPage  Mount = "page"
	MountBlock Mount = "block"
)

// ParseMount は文字列からマウントポイントを解釈します
func ParseMount(s string) (Mount, error) {
	switch Mount(s) {
	case MountPage, MountBlock:
		return Mount(s), nil
	default:
		return "", fmt.Errorf("unknown mount %q", s)
	}
}

// ListConfig はマウントポイントごとの一覧設定です
// page と block はそれぞれ独立した設定とカーソルを持ちます
type ListConfig struct {
	PageSize    int
	SportFilter string
}

// VodQuery は新規クエリのパラメータです
type VodQuery struct {
	Page     string
	PageSize int
	Sort     string
	Sports   string
}

// SortDesc はVOD一覧の並び順です
const SortDesc = "DESC"

// NewVodQuery は一覧設定から新規クエリを組み立てます
func NewVodQuery(cfg ListConfig) VodQuery {
	return VodQuery{
		Page:     "",
		PageSize: cfg.PageSize,
		Sort:     SortDesc,
		Sports:   cfg.SportFilter,
	}
}

// Cursor はページネーションカーソルです
// NextPageURL が空なら新規クエリ、そうでなければAPIが返した次ページURLをそのまま使います
// 次ページURLを得た後はフィルタを付け直しません
type Cursor struct {
	NextPageURL string
}

// FreshCursor は新規クエリを表すカーソルです
func FreshCursor() Cursor { return Cursor{} }

// NextPageCursor はAPIが返した次ページURLのカーソルです
func NextPageCursor(u string) Cursor { return Cursor{NextPageURL: u} }

// IsFresh は新規クエリかどうかを返します
func (c Cursor) IsFresh() bool { return c.NextPageURL == "" }

// VodListing はVOD一覧APIのレスポンス1ページ分です
type VodListing struct {
	Programs []*VodProgram `json:"programs"`
	NextPage string        `json:"next_page,omitempty"`
}

// VodPage はエンリッチ済みのVOD一覧と次のカーソルです
// Next が nil ならストリームの終端です
type VodPage struct {
	Programs []*VodProgram
	Next     *Cursor
}
