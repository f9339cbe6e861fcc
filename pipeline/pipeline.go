package pipeline

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Pipeline 把推荐后处理逻辑拆成可组合的 Node 链。
// 引擎用它串联过滤（排除已读 / 类型过滤）与重排（TopN 截断）阶段。
type Pipeline struct {
	Nodes []Node
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
