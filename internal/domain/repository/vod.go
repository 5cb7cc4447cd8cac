package repository

import (
	"context"

	"jo3qma.com/pac12_vod/internal/domain/model"
)

// VodRepository はVOD一覧の取得方法を抽象化します。
// 実装が外部APIなのかテスト用のフェイクなのかはドメイン層は知りません。
type VodRepository interface {
	// FetchVods は新規クエリでVOD一覧の1ページ目を取得します
	FetchVods(ctx context.Context, q model.VodQuery) (*model.VodListing, error)
	// FetchVodsPage はAPIが返した次ページURLをそのまま使って取得します
	FetchVodsPage(ctx context.Context, nextPageURL string) (*model.VodListing, error)
}
