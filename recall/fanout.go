package recall

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/edurec/core"
)

// Fanout 并发执行多个召回源，按源名返回各自的候选列表。
// 单个源的失败被隔离（记日志、该源记空），不中断其余召回源——
// 混合推荐的合并逻辑在引擎侧，这里只负责并发取数。
type Fanout struct {
	Sources []Source

	// Timeout 是每个召回源的超时时间，0 表示不限制。
	Timeout time.Duration
}

// RecallAll 并发调用全部召回源，返回 源名 -> 候选列表。
func (f *Fanout) RecallAll(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) (map[string][]*core.Item, error) {
	if len(f.Sources) == 0 {
		return nil, nil
	}

	var mu sync.Mutex
	results := make(map[string][]*core.Item, len(f.Sources))
	eg, egCtx := errgroup.WithContext(ctx)

	for _, src := range f.Sources {
		s := src
		eg.Go(func() error {
			recallCtx := egCtx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				recallCtx, cancel = context.WithTimeout(egCtx, f.Timeout)
				defer cancel()
			}

			items, err := s.Recall(recallCtx, rctx, limit)
			if err != nil {
				// 单源失败降级为空结果
				log.Printf("[recall] source %s failed: %v", s.Name(), err)
				items = nil
			}

			mu.Lock()
			results[s.Name()] = items
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
