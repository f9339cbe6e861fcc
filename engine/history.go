package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/rushteam/edurec/core"
)

const (
	userHistoryKeyPrefix = "rec:history:user:"
	globalHistoryKey     = "rec:history:global"

	// 全局日志上限：分析用，按条数滚动
	globalHistoryLimit = 10000
)

// History 是推荐历史日志：每用户一条有界列表（默认最近 100 次），
// 外加一条全局有界列表供 GetRecommendationAnalytics 聚合。
// 日志写失败只降级（记日志），从不影响推荐请求本身。
type History struct {
	kv      core.KeyValueStore
	perUser int
}

func NewHistory(kv core.KeyValueStore, perUser int) *History {
	if perUser <= 0 {
		perUser = 100
	}
	return &History{kv: kv, perUser: perUser}
}

// Append 把一次推荐输出追加到该用户与全局的历史日志。
func (h *History) Append(ctx context.Context, set *core.RecommendationSet) {
	data, err := json.Marshal(set)
	if err != nil {
		log.Printf("[engine] encode recommendation set: %v", err)
		return
	}

	userKey := userHistoryKeyPrefix + set.UserID
	if err := h.kv.LPush(ctx, userKey, data); err != nil {
		log.Printf("[engine] history push failed for %s: %v", set.UserID, err)
		return
	}
	if err := h.kv.LTrim(ctx, userKey, 0, int64(h.perUser)-1); err != nil {
		log.Printf("[engine] history trim failed for %s: %v", set.UserID, err)
	}

	if err := h.kv.LPush(ctx, globalHistoryKey, data); err != nil {
		log.Printf("[engine] global history push failed: %v", err)
		return
	}
	if err := h.kv.LTrim(ctx, globalHistoryKey, 0, globalHistoryLimit-1); err != nil {
		log.Printf("[engine] global history trim failed: %v", err)
	}
}

// UserHistory 返回该用户最近 n 次推荐输出（新的在前）。
func (h *History) UserHistory(ctx context.Context, userID string, n int) ([]*core.RecommendationSet, error) {
	if n <= 0 {
		n = h.perUser
	}
	return h.decode(h.kv.LRange(ctx, userHistoryKeyPrefix+userID, 0, int64(n)-1))
}

// Recent 返回全局最近 n 次推荐输出（新的在前），分析聚合用。
func (h *History) Recent(ctx context.Context, n int) ([]*core.RecommendationSet, error) {
	if n <= 0 {
		n = globalHistoryLimit
	}
	return h.decode(h.kv.LRange(ctx, globalHistoryKey, 0, int64(n)-1))
}

func (h *History) decode(rows [][]byte, err error) ([]*core.RecommendationSet, error) {
	if err != nil {
		return nil, fmt.Errorf("history range: %w", err)
	}
	out := make([]*core.RecommendationSet, 0, len(rows))
	for _, row := range rows {
		var set core.RecommendationSet
		if err := json.Unmarshal(row, &set); err != nil {
			// 单条脏数据跳过
			continue
		}
		out = append(out, &set)
	}
	return out, nil
}
