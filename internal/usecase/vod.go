package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/domain/repository"
	xlog "jo3qma.com/pac12_vod/internal/log"
)

// SportCatalog は競技名の参照先です
type SportCatalog interface {
	Load(ctx context.Context)
	Name(id int) *string
}

// SchoolCatalog は学校レコードの参照先です
type SchoolCatalog interface {
	Load(ctx context.Context, ids []int)
	Get(id int) *model.School
}

// VodUsecase はVOD一覧の取得と、学校名・競技名によるエンリッチを担当します
// DOMには触れない純粋なデータ変換で、描画は render パッケージが行います
type VodUsecase struct {
	repo    repository.VodRepository
	sports  SportCatalog
	schools SchoolCatalog
	logger  zerolog.Logger
}

// NewVodUsecase は新しいVodUsecaseインスタンスを作成します
func NewVodUsecase(repo repository.VodRepository, sports SportCatalog, schools SchoolCatalog) *VodUsecase {
	return &VodUsecase{
		repo:    repo,
		sports:  sports,
		schools: schools,
		logger:  xlog.WithComponent("usecase.vod"),
	}
}

// LoadVods はVOD一覧を1ページ取得してエンリッチします
// 取得に失敗した場合はログを出して空の結果を返します。エラーは返しません
func (u *VodUsecase) LoadVods(ctx context.Context, cfg model.ListConfig, cursor model.Cursor) *model.VodPage {
	listing, err := u.fetch(ctx, cfg, cursor)
	if err != nil {
		u.logger.Error().Err(err).Str(xlog.FieldEvent, "vods.load_failed").Msg("failed to load vods")
		return &model.VodPage{}
	}
	if listing == nil || len(listing.Programs) == 0 {
		return &model.VodPage{}
	}

	// 競技カタログはセッション中に一度だけ取得されます（取得済みなら何もしません）
	u.sports.Load(ctx)

	ids := collectSchoolIDs(listing.Programs)
	if len(ids) > 0 {
		u.schools.Load(ctx, ids)
		for _, p := range listing.Programs {
			u.enrich(p)
		}
	}

	page := &model.VodPage{Programs: listing.Programs}
	if listing.NextPage != "" {
		next := model.NextPageCursor(listing.NextPage)
		page.Next = &next
	}
	return page
}

// fetch は新規クエリなら設定からURLを組み立て、次ページカーソルならURLをそのまま使います
func (u *VodUsecase) fetch(ctx context.Context, cfg model.ListConfig, cursor model.Cursor) (*model.VodListing, error) {
	if cursor.IsFresh() {
		return u.repo.FetchVods(ctx, model.NewVodQuery(cfg))
	}
	return u.repo.FetchVodsPage(ctx, cursor.NextPageURL)
}

// collectSchoolIDs は全番組が参照する学校IDを重複なしで集めます
func collectSchoolIDs(programs []*model.VodProgram) []int {
	var ids []int
	seen := make(map[int]bool)
	for _, p := range programs {
		for _, ref := range p.SchoolRefs {
			if seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		}
	}
	return ids
}

// enrich は参照をキャッシュのレコード・表示名に置き換え、一覧用の文字列を作ります
func (u *VodUsecase) enrich(p *model.VodProgram) {
	p.SchoolsList = model.JoinedNames(nil)
	p.SportsList = ""

	if p.SchoolRefs != nil {
		p.Schools = make([]*model.School, len(p.SchoolRefs))
		names := make([]*string, len(p.SchoolRefs))
		for i, ref := range p.SchoolRefs {
			if ref.ID == 0 {
				continue
			}
			s := u.schools.Get(ref.ID)
			p.Schools[i] = s
			if s != nil && s.Name != "" {
				name := s.Name
				names[i] = &name
			}
		}
		// 2件以上のときだけ結合します
		p.SchoolsList = model.NameList{Names: names, Joined: len(names) > 1}
	}

	if p.SportRefs != nil {
		names := make([]*string, len(p.SportRefs))
		for i, ref := range p.SportRefs {
			if ref.ID == 0 {
				continue
			}
			names[i] = u.sports.Name(ref.ID)
		}
		p.SportNames = names
		p.SportsList = model.JoinSportNames(names)
	}

	p.Enriched = true
}
