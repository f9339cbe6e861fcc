package core

import "time"

// Recommendation 是单条推荐结果：内容 + 分数 + 可解释原因。
// 按请求临时生成；可选地写入推荐历史日志用于分析。
type Recommendation struct {
	ContentID string   `json:"content_id"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons"`
}

// RecommendationSet 是一次推荐请求的完整输出。
type RecommendationSet struct {
	UserID          string            `json:"user_id"`
	Recommendations []*Recommendation `json:"recommendations"`
	Algorithm       string            `json:"algorithm"`
	GeneratedAt     time.Time         `json:"generated_at"`
}

// SimilarityResult 是 GetContentSimilarity 的单条输出。
type SimilarityResult struct {
	ContentID  string  `json:"content_id"`
	Similarity float64 `json:"similarity"`
}

// 推荐算法标识。实验（experiment 包）在这些策略之间做 A/B 选择。
const (
	AlgorithmHybrid        = "hybrid"
	AlgorithmCollaborative = "collaborative"
	AlgorithmContentBased  = "content_based"
	AlgorithmPopular       = "popular"
)
