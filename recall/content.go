package recall

import (
	"context"
	"sort"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// ContentBased 是基于内容的召回源（Content-Based Recommendation）。
//
// 核心思想："用户喜欢具有某些标签的内容，推荐标签相似的其他内容"
//
// 算法流程：
//  1. 种子 = 用户正反馈过（like / complete）的内容
//  2. 每个种子对全量内容算标签向量余弦相似度，
//     取相似度 > SimilarityThreshold 的 TopK（每种子默认 5 个）并入候选
//  3. 候选分数 = Σ(tagWeight * userPreference) / Σ(tagWeight)，
//     标签总权重为 0 的候选记 0 分
//  4. 按分数降序截断
//
// 冷启动：无种子（用户无正反馈）时返回空。
type ContentBased struct {
	Profiles core.ProfileStore

	// SimilarityThreshold 种子-候选的最低标签相似度，默认 0.3
	SimilarityThreshold float64

	// SimilarPerSeed 每个种子保留的相似内容数，默认 5
	SimilarPerSeed int
}

func (r *ContentBased) Name() string { return "recall.content" }

// seedTypes 是内容召回的种子判定：明确的喜欢与完成。
var seedTypes = []core.InteractionType{
	core.InteractionLike,
	core.InteractionComplete,
}

func (r *ContentBased) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) ([]*core.Item, error) {
	if r.Profiles == nil || rctx == nil || rctx.User == nil {
		return nil, nil
	}

	seeds := rctx.User.PositiveCounts(seedTypes...)
	if len(seeds) == 0 {
		return nil, nil
	}

	candidates, err := r.collectCandidates(ctx, rctx, seeds)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(candidates))
	for contentID := range candidates {
		c, err := r.Profiles.GetContentProfile(ctx, contentID)
		if err != nil {
			continue
		}
		it := core.NewItem(contentID)
		it.Score = preferenceScore(rctx.User.Preferences, c.Tags)
		it.PutLabel("recall_source", utils.Label{Value: "content_based", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "content preferences", Source: "recall"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// collectCandidates 对每个种子做一遍相似内容扫描，取每种子 TopK 并入候选集。
func (r *ContentBased) collectCandidates(
	ctx context.Context,
	rctx *core.RecommendContext,
	seeds map[string]int,
) (map[string]bool, error) {
	threshold := r.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.3
	}
	perSeed := r.SimilarPerSeed
	if perSeed <= 0 {
		perSeed = 5
	}

	contentIDs, err := r.Profiles.ContentIDs(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		contentID  string
		similarity float64
	}

	candidates := make(map[string]bool)
	for seedID := range seeds {
		seed, err := r.Profiles.GetContentProfile(ctx, seedID)
		if err != nil || len(seed.Tags) == 0 {
			continue
		}

		similar := make([]scored, 0)
		for _, contentID := range contentIDs {
			if contentID == seedID || seeds[contentID] > 0 || rctx.Exclude[contentID] {
				continue
			}
			c, err := r.Profiles.GetContentProfile(ctx, contentID)
			if err != nil {
				continue
			}
			sim := core.CosineSimilarity(seed.Tags, c.Tags)
			if sim > threshold {
				similar = append(similar, scored{contentID: contentID, similarity: sim})
			}
		}

		sort.SliceStable(similar, func(i, j int) bool {
			if similar[i].similarity != similar[j].similarity {
				return similar[i].similarity > similar[j].similarity
			}
			return similar[i].contentID < similar[j].contentID
		})
		if len(similar) > perSeed {
			similar = similar[:perSeed]
		}
		for _, s := range similar {
			candidates[s.contentID] = true
		}
	}
	return candidates, nil
}

// preferenceScore 用用户偏好向量对候选标签做归一化加权点积。
func preferenceScore(prefs, tags map[string]float64) float64 {
	var weighted, total float64
	for tag, w := range tags {
		weighted += w * prefs[tag]
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
