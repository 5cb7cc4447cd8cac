package refcache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"jo3qma.com/pac12_vod/internal/domain/model"
	"jo3qma.com/pac12_vod/internal/domain/repository"
	xlog "jo3qma.com/pac12_vod/internal/log"
)

// SchoolCache は学校ID→レコードのマップです
// 必要になったIDだけを追加で取得し、一度入った値は書き換えません
type SchoolCache struct {
	repo   repository.SchoolRepository
	logger zerolog.Logger

	mu       sync.Mutex
	schools  map[int]model.School
	inflight map[int]chan struct{}
}

// NewSchoolCache は新しいSchoolCacheを作成します
func NewSchoolCache(repo repository.SchoolRepository) *SchoolCache {
	return &SchoolCache{
		repo:     repo,
		logger:   xlog.WithComponent("refcache.schools"),
		schools:  make(map[int]model.School),
		inflight: make(map[int]chan struct{}),
	}
}

// Load は ids のうち未取得のものを1回のリクエストでまとめて取得します
// 別の呼び出しが取得中のIDはその完了を待ち、重複して取得しません
// レスポンスに含まれなかったIDはキャッシュされず、参照時は見つからない扱いになります
func (c *SchoolCache) Load(ctx context.Context, ids []int) {
	missing, waits, done := c.claim(ids)

	if len(missing) > 0 {
		schools, err := c.repo.FetchSchools(ctx, missing)
		if err != nil {
			c.logger.Error().Err(err).Ints("ids", missing).Str(xlog.FieldEvent, "schools.load_failed").Msg("failed to load schools")
		}

		c.mu.Lock()
		for _, s := range schools {
			if _, ok := c.schools[s.ID]; !ok {
				c.schools[s.ID] = s
			}
		}
		for _, id := range missing {
			delete(c.inflight, id)
		}
		c.mu.Unlock()
		close(done)
	}

	for _, ch := range waits {
		select {
		case <-ch:
		case <-ctx.Done():
			return
		}
	}
}

// claim は未取得かつ取得中でないIDを自分の担当として登録します
func (c *SchoolCache) claim(ids []int) (missing []int, waits []chan struct{}, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	done = make(chan struct{})
	seen := make(map[int]bool, len(ids))
	waiting := make(map[chan struct{}]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, ok := c.schools[id]; ok {
			continue
		}
		if ch, ok := c.inflight[id]; ok {
			if !waiting[ch] {
				waiting[ch] = true
				waits = append(waits, ch)
			}
			continue
		}
		c.inflight[id] = done
		missing = append(missing, id)
	}
	return missing, waits, done
}

// Get は学校レコードを返します。見つからなければ nil です（LookupMiss）
func (c *SchoolCache) Get(id int) *model.School {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.schools[id]
	if !ok {
		return nil
	}
	return &s
}

// Has はIDがキャッシュ済みかどうかを返します
func (c *SchoolCache) Has(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.schools[id]
	return ok
}
