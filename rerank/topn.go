package rerank

import (
	"context"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在排序后截取前 N 个候选。
// 通常跟在 SortNode 之后，控制最终返回数量。
type TopNNode struct {
	// N 要保留的数量；N <= 0 或候选不足 N 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
