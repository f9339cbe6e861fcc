package rerank

import (
	"context"
	"sort"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pipeline"
)

// SortNode 按分数降序稳定排序；同分按内容 ID 升序。
// 给定相同的画像快照与输入，输出顺序完全确定（可测试性要求）。
type SortNode struct{}

func (n *SortNode) Name() string {
	return "rerank.sort"
}

func (n *SortNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *SortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].ID < items[j].ID
	})
	return items, nil
}
