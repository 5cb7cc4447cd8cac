package repository

import (
	"context"

	"jo3qma.com/pac12_vod/internal/domain/model"
)

// SportRepository は競技カタログの取得方法を抽象化します。
type SportRepository interface {
	FetchSports(ctx context.Context) ([]model.Sport, error)
}

// SchoolRepository は学校レコードの取得方法を抽象化します。
type SchoolRepository interface {
	// FetchSchools は ids の学校を1回のリクエストでまとめて取得します
	// 該当するレコードが無いIDは結果に含まれません
	FetchSchools(ctx context.Context, ids []int) ([]model.School, error)
}
