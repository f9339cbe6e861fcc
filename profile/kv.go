package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/rushteam/edurec/core"
)

// KVStore 是基于 core.KeyValueStore 的 ProfileStore，画像以 JSON 持久化，
// 热度排行维护在有序集合里（Redis 后端时 TopN 兜底召回为 O(topN)）。
//
// key 约定：
//   用户画像：profile:user:{userID}
//   内容画像：profile:content:{contentID}
//   用户索引：profiles:users
//   内容索引：profiles:contents
//   热度排行：popular:content
//
// 并发说明：写路径使用进程内分片锁满足同用户串行；多实例部署时
// 需由上游将同一用户的交互路由到同一实例（单写者），或换用带
// 事务的后端实现。
type KVStore struct {
	kv core.KeyValueStore

	userLocks    [lockStripes]sync.Mutex
	contentLocks [lockStripes]sync.Mutex

	// HistoryLimit 是单用户交互历史上限，0 用默认 1000。
	HistoryLimit int
}

func NewKVStore(kv core.KeyValueStore) *KVStore {
	return &KVStore{kv: kv}
}

var _ core.ProfileStore = (*KVStore)(nil)

const (
	userKeyPrefix    = "profile:user:"
	contentKeyPrefix = "profile:content:"
	usersIndexKey    = "profiles:users"
	contentsIndexKey = "profiles:contents"
	popularityKey    = "popular:content"
)

func (s *KVStore) historyLimit() int {
	if s.HistoryLimit > 0 {
		return s.HistoryLimit
	}
	return 1000
}

func (s *KVStore) GetUserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	data, err := s.kv.Get(ctx, userKeyPrefix+userID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotFound,
				"profile: user not found: "+userID)
		}
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	var p core.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode user profile: %w", err)
	}
	return &p, nil
}

func (s *KVStore) GetContentProfile(ctx context.Context, contentID string) (*core.ContentProfile, error) {
	data, err := s.kv.Get(ctx, contentKeyPrefix+contentID)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotFound,
				"profile: content not found: "+contentID)
		}
		return nil, fmt.Errorf("get content profile: %w", err)
	}
	var c core.ContentProfile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode content profile: %w", err)
	}
	return &c, nil
}

func (s *KVStore) UpsertUserProfile(ctx context.Context, p *core.UserProfile) error {
	lock := &s.userLocks[stripe(p.UserID)]
	lock.Lock()
	defer lock.Unlock()
	return s.saveUser(ctx, p)
}

func (s *KVStore) UpsertContentProfile(ctx context.Context, c *core.ContentProfile) error {
	lock := &s.contentLocks[stripe(c.ContentID)]
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.GetContentProfile(ctx, c.ContentID)
	if err != nil && !core.IsNotFound(err) {
		return err
	}
	next := c.Clone()
	if existing != nil {
		// 目录回填不清零引擎侧统计
		next.Popularity = existing.Popularity
		next.AverageRating = existing.AverageRating
		next.TotalInteractions = existing.TotalInteractions
		next.InteractionBreakdown = existing.InteractionBreakdown
	}
	return s.saveContent(ctx, next)
}

func (s *KVStore) ApplyInteraction(ctx context.Context, rec *core.InteractionRecord) error {
	userLock := &s.userLocks[stripe(rec.UserID)]
	contentLock := &s.contentLocks[stripe(rec.ContentID)]
	userLock.Lock()
	defer userLock.Unlock()
	contentLock.Lock()
	defer contentLock.Unlock()

	user, err := s.GetUserProfile(ctx, rec.UserID)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		user = core.NewUserProfile(rec.UserID)
	}
	content, err := s.GetContentProfile(ctx, rec.ContentID)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		content = core.NewContentProfile(rec.ContentID)
	}

	user.ContentAffinity[rec.ContentID] += rec.Weight
	for tag, tagWeight := range content.Tags {
		user.Preferences[tag] += rec.Weight * tagWeight
	}
	user.AppendHistory(rec, s.historyLimit())
	content.Apply(rec)

	if err := s.saveUser(ctx, user); err != nil {
		return err
	}
	if err := s.saveContent(ctx, content); err != nil {
		return err
	}
	// 热度排行增量维护；失败只降级（TopN 兜底退回全量扫描语义）
	if _, err := s.kv.ZIncrBy(ctx, popularityKey, rec.Weight, rec.ContentID); err != nil {
		log.Printf("[profile] popularity zincrby failed for %s: %v", rec.ContentID, err)
	}
	return nil
}

func (s *KVStore) saveUser(ctx context.Context, p *core.UserProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode user profile: %w", err)
	}
	if err := s.kv.Set(ctx, userKeyPrefix+p.UserID, data); err != nil {
		return fmt.Errorf("save user profile: %w", err)
	}
	return s.kv.SAdd(ctx, usersIndexKey, p.UserID)
}

func (s *KVStore) saveContent(ctx context.Context, c *core.ContentProfile) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode content profile: %w", err)
	}
	if err := s.kv.Set(ctx, contentKeyPrefix+c.ContentID, data); err != nil {
		return fmt.Errorf("save content profile: %w", err)
	}
	return s.kv.SAdd(ctx, contentsIndexKey, c.ContentID)
}

func (s *KVStore) UserIDs(ctx context.Context) ([]string, error) {
	return s.kv.SMembers(ctx, usersIndexKey)
}

func (s *KVStore) ContentIDs(ctx context.Context) ([]string, error) {
	return s.kv.SMembers(ctx, contentsIndexKey)
}

func (s *KVStore) TopContentByPopularity(ctx context.Context, n int) ([]*core.ContentProfile, error) {
	if n <= 0 {
		return nil, nil
	}
	ids, err := s.kv.ZRevRange(ctx, popularityKey, 0, int64(n)-1)
	if err != nil {
		return nil, fmt.Errorf("popularity range: %w", err)
	}
	out := make([]*core.ContentProfile, 0, len(ids))
	for _, id := range ids {
		c, err := s.GetContentProfile(ctx, id)
		if err != nil {
			// 排行里的脏成员跳过，不让单条失败拖垮兜底列表
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
