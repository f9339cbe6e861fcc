// Package config 提供引擎配置的加载与默认值（YAML）。
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/edurec/core"
)

// Config 是引擎的完整配置。所有字段都有默认值，零值配置可直接使用。
type Config struct {
	Engine     EngineConfig     `yaml:"engine"`
	Experiment ExperimentConfig `yaml:"experiment"`
}

// EngineConfig 是推荐主链路的可调参数。
type EngineConfig struct {
	// InteractionWeights 交互类型 -> 权重（偏好信号强度）
	InteractionWeights map[string]float64 `yaml:"interaction_weights"`

	// HistoryLimit 单用户交互历史上限（旧的先淘汰）
	HistoryLimit int `yaml:"history_limit"`

	// RecommendationHistoryLimit 单用户推荐历史日志上限
	RecommendationHistoryLimit int `yaml:"recommendation_history_limit"`

	// SimilarUserThreshold 协同召回的相似用户最低相似度
	SimilarUserThreshold float64 `yaml:"similar_user_threshold"`

	// SimilarUserTopK 协同召回参与打分的相似用户数
	SimilarUserTopK int `yaml:"similar_user_topk"`

	// ContentSimilarityThreshold 内容召回的种子-候选最低相似度
	ContentSimilarityThreshold float64 `yaml:"content_similarity_threshold"`

	// ContentSimilarPerSeed 内容召回每个种子保留的相似内容数
	ContentSimilarPerSeed int `yaml:"content_similar_per_seed"`

	// DefaultMaxResults 未指定 maxRecommendations 时的默认返回数量
	DefaultMaxResults int `yaml:"default_max_results"`
}

// ExperimentConfig 是策略实验的可调参数。
type ExperimentConfig struct {
	// MinObservations 每个实验组宣告获胜者所需的最少观测数；
	// 任一组不足时实验以 insufficient_data 结束，不切换算法。
	MinObservations int `yaml:"min_observations"`
}

// Default 返回全默认配置。
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			InteractionWeights:         weightsToMap(core.DefaultWeights()),
			HistoryLimit:               1000,
			RecommendationHistoryLimit: 100,
			SimilarUserThreshold:       0.3,
			SimilarUserTopK:            10,
			ContentSimilarityThreshold: 0.3,
			ContentSimilarPerSeed:      5,
			DefaultMaxResults:          10,
		},
		Experiment: ExperimentConfig{
			MinObservations: 10,
		},
	}
}

// Load 从 YAML 文件加载配置；缺省字段回落到默认值。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if len(c.Engine.InteractionWeights) == 0 {
		c.Engine.InteractionWeights = def.Engine.InteractionWeights
	}
	if c.Engine.HistoryLimit <= 0 {
		c.Engine.HistoryLimit = def.Engine.HistoryLimit
	}
	if c.Engine.RecommendationHistoryLimit <= 0 {
		c.Engine.RecommendationHistoryLimit = def.Engine.RecommendationHistoryLimit
	}
	if c.Engine.SimilarUserThreshold <= 0 {
		c.Engine.SimilarUserThreshold = def.Engine.SimilarUserThreshold
	}
	if c.Engine.SimilarUserTopK <= 0 {
		c.Engine.SimilarUserTopK = def.Engine.SimilarUserTopK
	}
	if c.Engine.ContentSimilarityThreshold <= 0 {
		c.Engine.ContentSimilarityThreshold = def.Engine.ContentSimilarityThreshold
	}
	if c.Engine.ContentSimilarPerSeed <= 0 {
		c.Engine.ContentSimilarPerSeed = def.Engine.ContentSimilarPerSeed
	}
	if c.Engine.DefaultMaxResults <= 0 {
		c.Engine.DefaultMaxResults = def.Engine.DefaultMaxResults
	}
	if c.Experiment.MinObservations <= 0 {
		c.Experiment.MinObservations = def.Experiment.MinObservations
	}
}

// Weights 把配置的权重表转成领域层的 WeightTable。
func (c *Config) Weights() core.WeightTable {
	w := make(core.WeightTable, len(c.Engine.InteractionWeights))
	for k, v := range c.Engine.InteractionWeights {
		w[core.InteractionType(k)] = v
	}
	return w
}

func weightsToMap(w core.WeightTable) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[string(k)] = v
	}
	return out
}
