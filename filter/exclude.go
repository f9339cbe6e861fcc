package filter

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Exclude 过滤调用方显式排除的内容（excludeContentIds）。
// 召回源已经各自跳过排除集，这里兜住合并后的结果。
type Exclude struct{}

func (f *Exclude) Name() string {
	return "filter.exclude"
}

func (f *Exclude) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil {
		return false, nil
	}
	return rctx.Exclude[item.ID], nil
}
