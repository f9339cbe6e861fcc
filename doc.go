// Package edurec 是一个学习内容混合推荐引擎（Educational Recommender）。
//
// 设计要点：
// - Pipeline-first: 推荐后处理通过 Node 串联（Recall → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，推荐原因由此渲染
// - 存储可替换: ProfileStore / KeyValueStore 定义在 core，内存与 Redis 实现可整体互换
// - 实验驱动: StrategyOptimizer 用限时 A/B 实验在策略间选择获胜者
package edurec

import (
	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/engine"
	"github.com/rushteam/edurec/pipeline"
)

// 轻量 facade：便于用户直接 import "edurec" 使用核心抽象。
type Engine = engine.Engine
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

type Item = core.Item
type UserProfile = core.UserProfile
type ContentProfile = core.ContentProfile
type Recommendation = core.Recommendation
type RecommendationSet = core.RecommendationSet

const (
	KindRecall = pipeline.KindRecall
	KindFilter = pipeline.KindFilter
	KindMerge  = pipeline.KindMerge
	KindReRank = pipeline.KindReRank
)

const (
	AlgorithmHybrid        = core.AlgorithmHybrid
	AlgorithmCollaborative = core.AlgorithmCollaborative
	AlgorithmContentBased  = core.AlgorithmContentBased
	AlgorithmPopular       = core.AlgorithmPopular
)

// NewEngine 等价于 engine.New。
var NewEngine = engine.New
