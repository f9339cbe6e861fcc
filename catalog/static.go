// Package catalog 提供外部内容目录（core.Catalog）的实现。
package catalog

import (
	"context"
	"sync"

	"github.com/rushteam/edurec/core"
)

// Static 是内存实现的内容目录，用于测试/原型，或目录数据
// 随部署静态下发的场景。
type Static struct {
	mu       sync.RWMutex
	contents map[string]*core.ContentInfo
}

func NewStatic() *Static {
	return &Static{contents: make(map[string]*core.ContentInfo)}
}

var _ core.Catalog = (*Static)(nil)

// Add 登记一条内容元数据（覆盖同 ID 旧值）。
func (s *Static) Add(info *core.ContentInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contents[info.ContentID] = info
}

func (s *Static) GetContent(ctx context.Context, contentID string) (*core.ContentInfo, error) {
	s.mu.RLock()
	info, ok := s.contents[contentID]
	s.mu.RUnlock()
	if !ok {
		return nil, core.ErrCatalogNotFound
	}

	out := &core.ContentInfo{
		ContentID:   info.ContentID,
		ContentType: info.ContentType,
		Tags:        make(map[string]float64, len(info.Tags)),
	}
	for k, v := range info.Tags {
		out.Tags[k] = v
	}
	return out, nil
}
