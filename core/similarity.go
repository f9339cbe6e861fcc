package core

import "math"

// CosineSimilarity 计算两个稀疏向量（tag -> weight）的余弦相似度。
//
// 语义约定：
//   - 在两个向量 key 的并集上计算，缺失 key 视为 0
//   - 任一向量 L2 范数为 0 时返回 0（除零保护；词表不相交同样得 0）
//   - 对称：CosineSimilarity(a, b) == CosineSimilarity(b, a)
//   - 纯函数，无副作用，可按 pair 并行计算
//
// 返回值恒在 [0, 1]：偏好向量可能带负权重（如 skip 累积），原始余弦
// 为负时截断到 0；CosineSimilarity(a, a) == 1（a 非零）。
func CosineSimilarity(a, b map[string]float64) float64 {
	allKeys := make(map[string]bool, len(a)+len(b))
	for k := range a {
		allKeys[k] = true
	}
	for k := range b {
		allKeys[k] = true
	}

	var dot, normA, normB float64
	for k := range allKeys {
		valA := a[k]
		valB := b[k]
		dot += valA * valB
		normA += valA * valA
		normB += valB * valB
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return math.Max(0, dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}

// JaccardSimilarity 计算两个稀疏向量的加权 Jaccard 相似度。
// 用于 GetContentSimilarity 的备选度量；主链路默认使用 cosine。
func JaccardSimilarity(a, b map[string]float64) float64 {
	var intersection, union float64
	for k, va := range a {
		if vb, ok := b[k]; ok {
			intersection += math.Min(va, vb)
			union += math.Max(va, vb)
		} else {
			union += va
		}
	}
	for k, vb := range b {
		if _, ok := a[k]; !ok {
			union += vb
		}
	}

	if union == 0 {
		return 0
	}
	return intersection / union
}
