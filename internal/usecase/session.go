package usecase

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"jo3qma.com/pac12_vod/internal/domain/model"
	xlog "jo3qma.com/pac12_vod/internal/log"
)

// VodLoader はVOD一覧を1ページ取得します
type VodLoader interface {
	LoadVods(ctx context.Context, cfg model.ListConfig, cursor model.Cursor) *model.VodPage
}

// ListSession はマウントポイント1つ分の一覧状態です
// カーソルはセッションごとに独立しており、他のマウントのカーソルを書き換えることはありません
type ListSession struct {
	id     string
	mount  model.Mount
	cfg    model.ListConfig
	loader VodLoader
	logger zerolog.Logger

	mu        sync.Mutex
	cursor    model.Cursor
	exhausted bool
}

// NewListSession は新規クエリから始まるセッションを作成します
func NewListSession(mount model.Mount, cfg model.ListConfig, loader VodLoader) *ListSession {
	id := uuid.NewString()
	return &ListSession{
		id:     id,
		mount:  mount,
		cfg:    cfg,
		loader: loader,
		logger: xlog.WithComponent("usecase.session").With().
			Str(xlog.FieldSessionID, id).
			Str(xlog.FieldMount, string(mount)).
			Logger(),
		cursor: model.FreshCursor(),
	}
}

// Next は次の1ページを取得し、カーソルを進めます
// 呼び出しは直列化されるため、重なったトリガーでも同じページを二重に取得しません
// 次ページURLの無いページを受け取った後は何も取得しません
func (s *ListSession) Next(ctx context.Context) []*model.VodProgram {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exhausted {
		s.logger.Debug().Msg("list exhausted, skipping load")
		return nil
	}

	page := s.loader.LoadVods(ctx, s.cfg, s.cursor)
	switch {
	case page.Next != nil:
		s.cursor = *page.Next
	case len(page.Programs) > 0:
		s.exhausted = true
	}
	// 失敗などで空だった場合はカーソルを据え置き、次のトリガーで同じリクエストをやり直します

	s.logger.Debug().
		Int(xlog.FieldCount, len(page.Programs)).
		Bool("exhausted", s.exhausted).
		Msg("list page loaded")
	return page.Programs
}

// ID はセッションIDを返します
func (s *ListSession) ID() string { return s.id }

// Mount はマウントポイントを返します
func (s *ListSession) Mount() model.Mount { return s.mount }

// Config は一覧設定を返します
func (s *ListSession) Config() model.ListConfig { return s.cfg }

// Cursor は現在のカーソルを返します
func (s *ListSession) Cursor() model.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Exhausted はストリームの終端に達したかどうかを返します
func (s *ListSession) Exhausted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhausted
}
