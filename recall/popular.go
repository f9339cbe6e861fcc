package recall

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// Popular 是热门召回源：按 Popularity 降序取 TopN。
// 它是冷启动（用户无画像）时的兜底，永远不会返回错误让请求失败；
// 底层读不到数据时返回空列表。
type Popular struct {
	Profiles core.ProfileStore
}

func (r *Popular) Name() string { return "recall.popular" }

func (r *Popular) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) ([]*core.Item, error) {
	if r.Profiles == nil {
		return nil, nil
	}

	// 排除集占掉的名额用多取补回
	extra := 0
	if rctx != nil {
		extra = len(rctx.Exclude)
	}
	top, err := r.Profiles.TopContentByPopularity(ctx, limit+extra)
	if err != nil {
		return nil, nil
	}

	out := make([]*core.Item, 0, limit)
	for _, c := range top {
		if rctx != nil && rctx.Exclude[c.ContentID] {
			continue
		}
		it := core.NewItem(c.ContentID)
		it.Score = c.Popularity
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "popular content", Source: "recall"})
		out = append(out, it)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
