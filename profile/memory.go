// Package profile 提供画像存储（core.ProfileStore）的实现与交互记录入口。
package profile

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/rushteam/edurec/core"
)

// 写锁分片数。同一用户/内容的写落在同一分片上串行，
// 不同分片的写可并发。
const lockStripes = 64

// MemoryStore 是内存实现的 ProfileStore，单进程部署与测试用。
//
// 并发模型（copy-on-write）：
//   - 画像以不可变快照发布：写操作克隆 -> 变更 -> 指针替换
//   - 读只持全局 RLock 取指针，永远不会看到半应用的写
//   - 同一用户的写由分片锁串行；不同用户的写并发
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*core.UserProfile
	contents map[string]*core.ContentProfile

	userLocks    [lockStripes]sync.Mutex
	contentLocks [lockStripes]sync.Mutex

	// HistoryLimit 是单用户交互历史上限（旧的先淘汰），0 用默认 1000。
	HistoryLimit int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*core.UserProfile),
		contents: make(map[string]*core.ContentProfile),
	}
}

var _ core.ProfileStore = (*MemoryStore)(nil)

func stripe(id string) int {
	h := fnv.New32a()
	h.Write([]byte(id))
	return int(h.Sum32() % lockStripes)
}

func (m *MemoryStore) historyLimit() int {
	if m.HistoryLimit > 0 {
		return m.HistoryLimit
	}
	return 1000
}

func (m *MemoryStore) GetUserProfile(ctx context.Context, userID string) (*core.UserProfile, error) {
	m.mu.RLock()
	p, ok := m.users[userID]
	m.mu.RUnlock()
	if !ok {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotFound,
			"profile: user not found: "+userID)
	}
	return p, nil
}

func (m *MemoryStore) GetContentProfile(ctx context.Context, contentID string) (*core.ContentProfile, error) {
	m.mu.RLock()
	c, ok := m.contents[contentID]
	m.mu.RUnlock()
	if !ok {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotFound,
			"profile: content not found: "+contentID)
	}
	return c, nil
}

func (m *MemoryStore) UpsertUserProfile(ctx context.Context, p *core.UserProfile) error {
	lock := &m.userLocks[stripe(p.UserID)]
	lock.Lock()
	defer lock.Unlock()

	m.publishUser(p.Clone())
	return nil
}

// UpsertContentProfile 创建或更新内容画像。
// 已存在时只覆盖目录侧字段（Tags / ContentType），引擎侧计数
//（Popularity / TotalInteractions / ...）保留，避免目录回填清零统计。
func (m *MemoryStore) UpsertContentProfile(ctx context.Context, c *core.ContentProfile) error {
	lock := &m.contentLocks[stripe(c.ContentID)]
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	existing := m.contents[c.ContentID]
	m.mu.RUnlock()

	next := c.Clone()
	if existing != nil {
		next.Popularity = existing.Popularity
		next.AverageRating = existing.AverageRating
		next.TotalInteractions = existing.TotalInteractions
		next.InteractionBreakdown = existing.Clone().InteractionBreakdown
	}
	m.publishContent(next)
	return nil
}

func (m *MemoryStore) ApplyInteraction(ctx context.Context, rec *core.InteractionRecord) error {
	userLock := &m.userLocks[stripe(rec.UserID)]
	contentLock := &m.contentLocks[stripe(rec.ContentID)]
	userLock.Lock()
	defer userLock.Unlock()
	contentLock.Lock()
	defer contentLock.Unlock()

	m.mu.RLock()
	curUser := m.users[rec.UserID]
	curContent := m.contents[rec.ContentID]
	m.mu.RUnlock()

	var user *core.UserProfile
	if curUser != nil {
		user = curUser.Clone()
	} else {
		user = core.NewUserProfile(rec.UserID)
	}
	var content *core.ContentProfile
	if curContent != nil {
		content = curContent.Clone()
	} else {
		content = core.NewContentProfile(rec.ContentID)
	}

	user.ContentAffinity[rec.ContentID] += rec.Weight
	for tag, tagWeight := range content.Tags {
		user.Preferences[tag] += rec.Weight * tagWeight
	}
	user.AppendHistory(rec, m.historyLimit())
	content.Apply(rec)

	// 两个新快照一次性发布：并发读要么全旧、要么全新
	m.mu.Lock()
	m.users[rec.UserID] = user
	m.contents[rec.ContentID] = content
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) publishUser(p *core.UserProfile) {
	m.mu.Lock()
	m.users[p.UserID] = p
	m.mu.Unlock()
}

func (m *MemoryStore) publishContent(c *core.ContentProfile) {
	m.mu.Lock()
	m.contents[c.ContentID] = c
	m.mu.Unlock()
}

func (m *MemoryStore) UserIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) ContentIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.contents))
	for id := range m.contents {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) TopContentByPopularity(ctx context.Context, n int) ([]*core.ContentProfile, error) {
	m.mu.RLock()
	all := make([]*core.ContentProfile, 0, len(m.contents))
	for _, c := range m.contents {
		all = append(all, c)
	}
	m.mu.RUnlock()

	// 热度相同按 ID 升序，保证冷启动兜底列表可复现
	sort.Slice(all, func(i, j int) bool {
		if all[i].Popularity != all[j].Popularity {
			return all[i].Popularity > all[j].Popularity
		}
		return all[i].ContentID < all[j].ContentID
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}
