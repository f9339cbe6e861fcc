package recall

import (
	"context"
	"sort"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// Collaborative 是基于用户的协同过滤召回源（User-CF）。
//
// 核心思想："兴趣相似的用户，喜欢相似的内容"
//
// 算法流程：
//  1. 对全体用户计算与目标用户偏好向量的余弦相似度，
//     保留 > SimilarUserThreshold 的，按相似度降序取 TopK
//    （同分按 userID 升序，保证结果可复现）
//  2. 候选集 = 相似用户正反馈过（like / complete / share）的内容去掉排除集
//  3. 候选分数 = Σ(sim_i * posCount_i) / Σ(sim_i)，
//     只累计对该候选有正反馈的相似用户 i
//  4. 按分数降序截断
//
// 冷启动：目标用户无画像时返回空，兜底由引擎的热门召回负责。
//
// 工程注意：相似用户扫描是 O(用户数)，这是参照语义；生产规模应替换为
// 近似最近邻索引，但正确性测试以本实现为准。
type Collaborative struct {
	Profiles core.ProfileStore

	// SimilarUserThreshold 相似用户的最低相似度，默认 0.3
	SimilarUserThreshold float64

	// TopKSimilarUsers 参与打分的相似用户数，默认 10
	TopKSimilarUsers int
}

func (r *Collaborative) Name() string { return "recall.collaborative" }

// positiveTypes 是协同召回认定的正反馈集合。
var positiveTypes = []core.InteractionType{
	core.InteractionLike,
	core.InteractionComplete,
	core.InteractionShare,
}

type similarUser struct {
	profile    *core.UserProfile
	similarity float64
}

func (r *Collaborative) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) ([]*core.Item, error) {
	if r.Profiles == nil || rctx == nil || rctx.User == nil {
		return nil, nil
	}

	similar, err := r.findSimilarUsers(ctx, rctx.User)
	if err != nil {
		return nil, err
	}
	if len(similar) == 0 {
		return nil, nil
	}

	// 相似度加权的正反馈次数平均
	num := make(map[string]float64)
	den := make(map[string]float64)
	for _, su := range similar {
		for contentID, count := range su.profile.PositiveCounts(positiveTypes...) {
			if rctx.Exclude[contentID] {
				continue
			}
			num[contentID] += su.similarity * float64(count)
			den[contentID] += su.similarity
		}
	}

	out := make([]*core.Item, 0, len(num))
	for contentID, n := range num {
		it := core.NewItem(contentID)
		it.Score = n / den[contentID]
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
		it.PutLabel("reason", utils.Label{Value: "similar users' preferences", Source: "recall"})
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

// findSimilarUsers 对全体用户做一遍相似度扫描，返回 TopK 相似用户。
func (r *Collaborative) findSimilarUsers(ctx context.Context, target *core.UserProfile) ([]similarUser, error) {
	threshold := r.SimilarUserThreshold
	if threshold <= 0 {
		threshold = 0.3
	}
	topK := r.TopKSimilarUsers
	if topK <= 0 {
		topK = 10
	}

	userIDs, err := r.Profiles.UserIDs(ctx)
	if err != nil {
		return nil, err
	}

	similar := make([]similarUser, 0)
	for _, userID := range userIDs {
		if userID == target.UserID {
			continue
		}
		p, err := r.Profiles.GetUserProfile(ctx, userID)
		if err != nil {
			// 索引与画像短暂不一致时跳过该用户
			continue
		}
		sim := core.CosineSimilarity(target.Preferences, p.Preferences)
		if sim > threshold {
			similar = append(similar, similarUser{profile: p, similarity: sim})
		}
	}

	// 相似度降序；同分按 userID 升序保证确定性
	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].similarity != similar[j].similarity {
			return similar[i].similarity > similar[j].similarity
		}
		return similar[i].profile.UserID < similar[j].profile.UserID
	})
	if len(similar) > topK {
		similar = similar[:topK]
	}
	return similar, nil
}
