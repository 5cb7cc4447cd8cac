// Package refcache は競技・学校の参照データをページセッション中だけ保持します。
package refcache

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"jo3qma.com/pac12_vod/internal/domain/repository"
	xlog "jo3qma.com/pac12_vod/internal/log"
)

// SportCache は競技ID→表示名のマップです
// カタログの取得はセッション中に一度だけ行い、失敗しても再試行しません
type SportCache struct {
	repo   repository.SportRepository
	logger zerolog.Logger

	sf     singleflight.Group
	mu     sync.RWMutex
	names  map[int]string
	loaded bool
}

// NewSportCache は新しいSportCacheを作成します
func NewSportCache(repo repository.SportRepository) *SportCache {
	return &SportCache{
		repo:   repo,
		logger: xlog.WithComponent("refcache.sports"),
		names:  make(map[int]string),
	}
}

// Load は競技カタログを取得してキャッシュに格納します
// 同時に呼ばれても取得は1回だけで、2回目以降の呼び出しは何もしません
// 取得に失敗した場合はログを出して空のまま続行します
func (c *SportCache) Load(ctx context.Context) {
	c.mu.RLock()
	done := c.loaded
	c.mu.RUnlock()
	if done {
		return
	}

	_, _, _ = c.sf.Do("sports", func() (any, error) {
		c.mu.RLock()
		done := c.loaded
		c.mu.RUnlock()
		if done {
			return nil, nil
		}

		sports, err := c.repo.FetchSports(ctx)
		if err != nil {
			c.logger.Error().Err(err).Str(xlog.FieldEvent, "sports.load_failed").Msg("failed to load sports catalog")
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		for _, s := range sports {
			if _, ok := c.names[s.ID]; !ok {
				c.names[s.ID] = s.Name
			}
		}
		c.loaded = true
		c.logger.Debug().Int(xlog.FieldCount, len(c.names)).Msg("sports catalog loaded")
		return nil, nil
	})
}

// Name は競技の表示名を返します。見つからなければ nil です（LookupMiss）
func (c *SportCache) Name(id int) *string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[id]
	if !ok {
		return nil
	}
	return &name
}

// Len はキャッシュ済みの競技数を返します
func (c *SportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}
