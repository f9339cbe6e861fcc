package filter

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Viewed 过滤用户已经交互过的内容（excludeViewed）。
// Seen 由引擎在请求开始时从画像快照的完整交互历史构建——
// 任意类型的交互都算"看过"，不限于正反馈。
type Viewed struct {
	Seen map[string]bool
}

// NewViewed 从画像快照构建已读过滤器；profile 为 nil 时过滤器不生效。
func NewViewed(profile *core.UserProfile) *Viewed {
	if profile == nil {
		return &Viewed{}
	}
	return &Viewed{Seen: profile.InteractedContent()}
}

func (f *Viewed) Name() string {
	return "filter.viewed"
}

func (f *Viewed) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || !rctx.ExcludeViewed {
		return false, nil
	}
	return f.Seen[item.ID], nil
}
