package filter

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pipeline"
	"github.com/rushteam/edurec/pkg/utils"
)

// Node 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该候选就会被移除。
type Node struct {
	Filters []Filter
}

func (n *Node) Name() string {
	return "filter.node"
}

func (n *Node) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *Node) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		filterName := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				// 过滤器错误时保留该候选，不中断请求
				continue
			}
			if ok {
				shouldFilter = true
				filterName = f.Name()
				break
			}
		}

		if shouldFilter {
			// 记录过滤原因（调试/观测）
			item.PutLabel("filtered", utils.Label{Value: "true", Source: filterName})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
