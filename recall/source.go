package recall

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// Source 表示一个可复用的召回源（协同 / 内容 / 热门）。
// 你可以把它理解为"可并发 fan-out 的策略单元"。
// limit 是本次召回的候选上限；引擎在混合模式下会请求 2x 最终数量。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext, limit int) ([]*core.Item, error)
}
