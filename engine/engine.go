package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/edurec/config"
	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/experiment"
	"github.com/rushteam/edurec/filter"
	"github.com/rushteam/edurec/pipeline"
	"github.com/rushteam/edurec/pkg/utils"
	"github.com/rushteam/edurec/profile"
	"github.com/rushteam/edurec/recall"
	"github.com/rushteam/edurec/rerank"
	"github.com/rushteam/edurec/store"
)

// Engine 是推荐引擎的统一入口：上报交互、生成推荐、内容相似度查询、
// 策略实验与数据分析都从这里出发。
//
// 内部结构是一条可组合的链路：
//
//	召回（协同 / 内容 / 热门，并发 fan-out）
//	-> 合并（同一内容取均值、原因累积）
//	-> 过滤（显式排除 / 排除已读 / 类型过滤）
//	-> 重排（分数降序 + TopN 截断）
//
// Engine 自身持有的唯一可变状态是活跃算法（SetAlgorithm），
// 所有画像数据都在 ProfileStore 里，推荐历史在 KeyValueStore 里。
type Engine struct {
	cfg      *config.Config
	profiles core.ProfileStore
	recorder *profile.Recorder

	collaborative *recall.Collaborative
	contentBased  *recall.ContentBased
	popular       *recall.Popular

	history   *History
	optimizer *experiment.Optimizer

	log     core.KeyValueStore
	ownsLog bool

	mu        sync.RWMutex
	algorithm string

	// now 可注入，测试用
	now func() time.Time
}

// New 创建 Engine。
//   - cfg 为 nil 时使用全默认配置
//   - cat 为 nil 时内容画像不带目录标签（纯引擎内数据）
//   - logKV 为 nil 时推荐历史落在引擎私有的内存 KV 里
func New(cfg *config.Config, profiles core.ProfileStore, cat core.Catalog, logKV core.KeyValueStore) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	ownsLog := false
	if logKV == nil {
		logKV = store.NewMemoryStore()
		ownsLog = true
	}

	// 配置的单用户交互历史上限下发给内置存储实现；
	// 存储自身已设上限时以存储为准
	switch ps := profiles.(type) {
	case *profile.MemoryStore:
		if ps.HistoryLimit == 0 {
			ps.HistoryLimit = cfg.Engine.HistoryLimit
		}
	case *profile.KVStore:
		if ps.HistoryLimit == 0 {
			ps.HistoryLimit = cfg.Engine.HistoryLimit
		}
	}

	e := &Engine{
		cfg:      cfg,
		profiles: profiles,
		recorder: profile.NewRecorder(profiles, cat, cfg.Weights()),
		collaborative: &recall.Collaborative{
			Profiles:             profiles,
			SimilarUserThreshold: cfg.Engine.SimilarUserThreshold,
			TopKSimilarUsers:     cfg.Engine.SimilarUserTopK,
		},
		contentBased: &recall.ContentBased{
			Profiles:            profiles,
			SimilarityThreshold: cfg.Engine.ContentSimilarityThreshold,
			SimilarPerSeed:      cfg.Engine.ContentSimilarPerSeed,
		},
		popular:   &recall.Popular{Profiles: profiles},
		history:   NewHistory(logKV, cfg.Engine.RecommendationHistoryLimit),
		log:       logKV,
		ownsLog:   ownsLog,
		algorithm: core.AlgorithmHybrid,
		now:       time.Now,
	}
	e.optimizer = experiment.NewOptimizer(e, cfg.Experiment.MinObservations)
	return e
}

// SetAlgorithm 切换活跃推荐算法（experiment.AlgorithmSwitcher）。
func (e *Engine) SetAlgorithm(algorithm string) {
	e.mu.Lock()
	e.algorithm = algorithm
	e.mu.Unlock()
}

// Algorithm 返回当前活跃的推荐算法。
func (e *Engine) Algorithm() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.algorithm
}

// Close 释放引擎私有资源。外部注入的存储由调用方负责关闭。
func (e *Engine) Close() error {
	if e.ownsLog {
		return e.log.Close()
	}
	return nil
}

// RecordInteraction 上报一条交互：校验、落画像，并把观测事件喂给
// 运行中的策略实验（若有）。
func (e *Engine) RecordInteraction(ctx context.Context, req profile.RecordRequest) (*core.InteractionRecord, error) {
	rec, err := e.recorder.Record(ctx, req)
	if err != nil {
		return nil, err
	}

	rating := -1.0
	if rec.Rating != nil {
		rating = *rec.Rating
	}
	e.optimizer.Observe(rec.UserID, map[string]any{
		"type":     string(rec.Type),
		"weight":   rec.Weight,
		"rating":   rating,
		"positive": rec.Type.IsPositive(),
	})
	return rec, nil
}

// RecommendOptions 是单次推荐请求的选项，零值即默认行为。
type RecommendOptions struct {
	// MaxResults 返回数量上限，<=0 用配置默认值
	MaxResults int

	// ContentType 非空时只返回该类型的内容
	ContentType string

	// IncludeViewed 为 true 时不过滤用户已交互过的内容
	IncludeViewed bool

	// SkipExplanation 为 true 时不附加自然语言解释（reasons 仍保留）
	SkipExplanation bool

	// Exclude 调用方显式排除的内容 ID
	Exclude []string
}

// GenerateRecommendations 为用户生成一组推荐。
//
// 行为约定：
//   - 无画像的新用户直接走热门兜底，绝不报错
//   - 有画像时按活跃算法（或实验分配的算法）生成
//   - hybrid 模式下协同 / 内容召回各取 2x 数量，同一内容分数取均值、
//     推荐原因拼接
//   - 个性化召回为空时回退热门兜底（过滤规则照常生效）
func (e *Engine) GenerateRecommendations(ctx context.Context, userID string, opts *RecommendOptions) (*core.RecommendationSet, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: user id is required")
	}
	if opts == nil {
		opts = &RecommendOptions{}
	}
	max := opts.MaxResults
	if max <= 0 {
		max = e.cfg.Engine.DefaultMaxResults
	}

	exclude := make(map[string]bool, len(opts.Exclude))
	for _, id := range opts.Exclude {
		exclude[id] = true
	}

	user, err := e.profiles.GetUserProfile(ctx, userID)
	if err != nil && !core.IsNotFound(err) {
		return nil, err
	}

	rctx := &core.RecommendContext{
		UserID:        userID,
		User:          user,
		Exclude:       exclude,
		ContentType:   opts.ContentType,
		ExcludeViewed: !opts.IncludeViewed,
	}

	algorithm := core.AlgorithmPopular
	var items []*core.Item
	if user != nil {
		algorithm = e.algorithmFor(userID)
		items = e.recallPersonalized(ctx, rctx, algorithm, max)
	}
	if len(items) == 0 {
		// 冷启动 / 个性化召回为空：热门兜底
		items, _ = e.popular.Recall(ctx, rctx, max+len(exclude))
	}

	items, err = e.postProcess(ctx, rctx, items, max)
	if err != nil {
		return nil, err
	}

	set := &core.RecommendationSet{
		UserID:          userID,
		Recommendations: make([]*core.Recommendation, 0, len(items)),
		Algorithm:       algorithm,
		GeneratedAt:     e.now(),
	}
	for _, it := range items {
		rec := &core.Recommendation{ContentID: it.ID, Score: it.Score, Reasons: reasonsOf(it)}
		if !opts.SkipExplanation {
			if text := explain(it); text != "" {
				rec.Reasons = append(rec.Reasons, text)
			}
		}
		set.Recommendations = append(set.Recommendations, rec)
	}

	e.history.Append(ctx, set)
	return set, nil
}

// algorithmFor 返回该用户本次请求应使用的算法：
// 运行中实验的分组优先，否则是引擎的活跃算法。
func (e *Engine) algorithmFor(userID string) string {
	if alg, ok := e.optimizer.AlgorithmFor(userID); ok {
		return alg
	}
	return e.Algorithm()
}

// recallPersonalized 按算法执行个性化召回并合并。
// 召回源的失败已在 Fanout 内部被隔离为空结果，这里不再处理。
func (e *Engine) recallPersonalized(ctx context.Context, rctx *core.RecommendContext, algorithm string, max int) []*core.Item {
	var sources []recall.Source
	switch algorithm {
	case core.AlgorithmCollaborative:
		sources = []recall.Source{e.collaborative}
	case core.AlgorithmContentBased:
		sources = []recall.Source{e.contentBased}
	case core.AlgorithmPopular:
		return nil
	default:
		sources = []recall.Source{e.collaborative, e.contentBased}
	}

	fanout := &recall.Fanout{Sources: sources}
	results, err := fanout.RecallAll(ctx, rctx, 2*max)
	if err != nil {
		return nil
	}
	return mergeCandidates(results)
}

// mergeCandidates 合并多路召回的候选：同一内容的分数取算术均值，
// 标签（recall_source / reason）按 Label 合并规则累积。
func mergeCandidates(results map[string][]*core.Item) []*core.Item {
	type slot struct {
		item  *core.Item
		sum   float64
		count int
	}
	merged := make(map[string]*slot)
	order := make([]string, 0)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, it := range results[name] {
			s, ok := merged[it.ID]
			if !ok {
				s = &slot{item: core.NewItem(it.ID)}
				merged[it.ID] = s
				order = append(order, it.ID)
			}
			s.sum += it.Score
			s.count++
			for key, lbl := range it.Labels {
				s.item.PutLabel(key, lbl)
			}
		}
	}

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		s := merged[id]
		s.item.Score = s.sum / float64(s.count)
		out = append(out, s.item)
	}
	return out
}

// postProcess 过滤 + 重排：显式排除、排除已读、类型过滤，
// 之后分数降序（同分按内容 ID 升序）并截断到 max。
func (e *Engine) postProcess(ctx context.Context, rctx *core.RecommendContext, items []*core.Item, max int) ([]*core.Item, error) {
	filters := []filter.Filter{
		&filter.Exclude{},
		&filter.ContentType{Profiles: e.profiles},
	}
	if rctx.User != nil {
		filters = append(filters, filter.NewViewed(rctx.User))
	}

	p := &pipeline.Pipeline{Nodes: []pipeline.Node{
		&filter.Node{Filters: filters},
		&rerank.SortNode{},
		&rerank.TopNNode{N: max},
	}}
	return p.Run(ctx, rctx, items)
}

// reasonsOf 把候选上的 reason 标签渲染成推荐原因列表。
func reasonsOf(it *core.Item) []string {
	lbl, ok := it.Labels["reason"]
	if !ok {
		return nil
	}
	return utils.SplitLabelValues(lbl)
}

// GetContentSimilarity 计算一个内容与一组候选内容的余弦相似度，
// 按相似度降序（同分按内容 ID 升序）返回。
// 未知的 contentID 不报错：所有候选的相似度按 0 处理。
func (e *Engine) GetContentSimilarity(ctx context.Context, contentID string, candidateIDs []string) ([]*core.SimilarityResult, error) {
	if contentID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput,
			"engine: content id is required")
	}

	var tags map[string]float64
	if cp, err := e.profiles.GetContentProfile(ctx, contentID); err == nil {
		tags = cp.Tags
	}

	out := make([]*core.SimilarityResult, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		sim := 0.0
		if tags != nil && id != contentID {
			if cp, err := e.profiles.GetContentProfile(ctx, id); err == nil {
				sim = core.CosineSimilarity(tags, cp.Tags)
			}
		}
		out = append(out, &core.SimilarityResult{ContentID: id, Similarity: sim})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ContentID < out[j].ContentID
	})
	return out, nil
}

// SimilarContent 在全部已知内容中找出与 contentID 最相似的 topK 个
//（i2i 查询）。未知内容返回空列表。
func (e *Engine) SimilarContent(ctx context.Context, contentID string, topK int) ([]*core.SimilarityResult, error) {
	if topK <= 0 {
		topK = e.cfg.Engine.DefaultMaxResults
	}
	cp, err := e.profiles.GetContentProfile(ctx, contentID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	ids, err := e.profiles.ContentIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*core.SimilarityResult, 0, len(ids))
	for _, id := range ids {
		if id == contentID {
			continue
		}
		cand, err := e.profiles.GetContentProfile(ctx, id)
		if err != nil {
			continue
		}
		sim := core.CosineSimilarity(cp.Tags, cand.Tags)
		if sim <= 0 {
			continue
		}
		out = append(out, &core.SimilarityResult{ContentID: id, Similarity: sim})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].ContentID < out[j].ContentID
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

// MetricSpec 是策略实验中一个观测指标的定义：
// 名称 + CEL 表达式，表达式在交互事件 `event` 上求值。
type MetricSpec struct {
	Name string
	Expr string
}

// OptimizeOptions 是 OptimizeRecommendationAlgorithm 的选项。
type OptimizeOptions struct {
	// TestDurationDays 实验时长（天）。0 表示立即结算（没有观测就报
	// insufficient_data）；负数按默认 7 天处理
	TestDurationDays float64

	// Algorithms 参与对比的策略，省略时对比 hybrid / collaborative / content_based
	Algorithms []string

	// Metrics 观测指标，第一个为主指标；省略时用 engagement = event.weight
	Metrics []MetricSpec
}

// OptimizeHandle 是实验启动后的回执。
type OptimizeHandle struct {
	TestID              string    `json:"test_id"`
	EstimatedCompletion time.Time `json:"estimated_completion"`
}

// OptimizeRecommendationAlgorithm 启动一次策略实验：把用户确定性地
// 分组到候选算法上，按交互事件累积指标，到期后切换到获胜算法。
// 同一时刻最多一个实验；ctx 取消即回滚（不切换）。
func (e *Engine) OptimizeRecommendationAlgorithm(ctx context.Context, opts OptimizeOptions) (*OptimizeHandle, error) {
	algorithms := opts.Algorithms
	if len(algorithms) == 0 {
		algorithms = []string{core.AlgorithmHybrid, core.AlgorithmCollaborative, core.AlgorithmContentBased}
	}

	specs := opts.Metrics
	if len(specs) == 0 {
		specs = []MetricSpec{{Name: "engagement", Expr: "event.weight"}}
	}
	metrics := make([]*experiment.Metric, 0, len(specs))
	for _, ms := range specs {
		m, err := experiment.NewMetric(ms.Name, ms.Expr)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}

	days := opts.TestDurationDays
	if days < 0 {
		days = 7
	}
	duration := time.Duration(days * float64(24*time.Hour))

	exp, err := e.optimizer.Run(ctx, experiment.Spec{
		Algorithms: algorithms,
		Metrics:    metrics,
		Duration:   duration,
	})
	if err != nil {
		return nil, err
	}
	return &OptimizeHandle{TestID: exp.ID, EstimatedCompletion: exp.EstimatedCompletion}, nil
}

// ExperimentResult 返回实验结论（运行中返回当前进度）。
func (e *Engine) ExperimentResult(testID string) (*experiment.Result, error) {
	return e.optimizer.Result(testID)
}

// CancelExperiment 取消运行中的实验；活跃算法保持不变。
func (e *Engine) CancelExperiment() {
	e.optimizer.Cancel()
}

// RecommendationHistory 返回用户最近的推荐输出（新的在前）。
func (e *Engine) RecommendationHistory(ctx context.Context, userID string, n int) ([]*core.RecommendationSet, error) {
	return e.history.UserHistory(ctx, userID, n)
}
