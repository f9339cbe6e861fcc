package experiment

import (
	"context"
	"fmt"
	"hash/fnv"
	"log"
	"sync"
	"time"

	"github.com/rushteam/edurec/core"
)

// 实验状态。
const (
	StatusRunning          = "running"
	StatusCompleted        = "completed"
	StatusCancelled        = "cancelled"
	StatusInsufficientData = "insufficient_data"
)

// AlgorithmSwitcher 是实验获胜后的切换出口，由引擎实现。
type AlgorithmSwitcher interface {
	SetAlgorithm(algorithm string)
}

// Spec 描述一次策略实验。
type Spec struct {
	// Algorithms 参与对比的策略（至少 2 个），用户按 ID 哈希
	// 分成不相交的组，一组一个策略。
	Algorithms []string

	// Metrics 观测指标，第一个为主指标（决定获胜者）。
	Metrics []*Metric

	// Duration 实验时长。
	Duration time.Duration
}

// Result 是实验结束后的结论。
type Result struct {
	TestID              string                        `json:"test_id"`
	Status              string                        `json:"status"`
	Winner              string                        `json:"winner,omitempty"`
	Means               map[string]map[string]float64 `json:"means"`  // algorithm -> metric -> 均值
	Counts              map[string]int                `json:"counts"` // algorithm -> 主指标观测数
	StartedAt           time.Time                     `json:"started_at"`
	EndedAt             time.Time                     `json:"ended_at"`
	EstimatedCompletion time.Time                     `json:"estimated_completion"`
}

// group 是一个实验组的观测累积。
type group struct {
	sums   map[string]float64
	counts map[string]int
}

// Experiment 是一次运行中（或已结束）的实验。
type Experiment struct {
	ID                  string
	Spec                Spec
	StartedAt           time.Time
	EstimatedCompletion time.Time

	mu      sync.Mutex
	status  string
	winner  string
	endedAt time.Time
	groups  map[string]*group

	cancel context.CancelFunc
	done   chan struct{}
}

// Done 在实验结束（完成/取消/数据不足）后关闭。
func (e *Experiment) Done() <-chan struct{} { return e.done }

// Status 返回当前状态。
func (e *Experiment) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// Optimizer 运行限时实验对比推荐策略并选出获胜者（StrategyOptimizer）。
//
// 约定：
//   - 同一时刻最多一个运行中的实验
//   - 分组是确定性的：fnv32(userID) % len(algorithms)，无须存储分配表
//   - 任一组主指标观测数 < MinObservations 时，实验以 insufficient_data
//     结束且不切换算法——绝不用默认值/随机值充当观测结论
//   - 取消时回滚：算法保持实验前的值（切换只发生在成功结论时），
//     画像存储不受实验影响
type Optimizer struct {
	switcher AlgorithmSwitcher

	// MinObservations 每组宣告获胜所需的最少主指标观测数，0 用默认 10。
	MinObservations int

	mu      sync.Mutex
	current *Experiment
	history map[string]*Experiment

	// now 可注入，测试用
	now func() time.Time
}

func NewOptimizer(switcher AlgorithmSwitcher, minObservations int) *Optimizer {
	return &Optimizer{
		switcher:        switcher,
		MinObservations: minObservations,
		history:         make(map[string]*Experiment),
		now:             time.Now,
	}
}

func (o *Optimizer) minObservations() int {
	if o.MinObservations > 0 {
		return o.MinObservations
	}
	return 10
}

// Run 启动一次实验。实验是长生命周期的（可达数天），在独立 goroutine
// 中计时并结论；通过 ctx 或 Cancel 可取消。
func (o *Optimizer) Run(ctx context.Context, spec Spec) (*Experiment, error) {
	if len(spec.Algorithms) < 2 {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidInput,
			"experiment: at least two algorithms required")
	}
	if len(spec.Metrics) == 0 {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidInput,
			"experiment: at least one metric required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.current != nil {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeInvalidInput,
			"experiment: another experiment is running: "+o.current.ID)
	}

	start := o.now()
	runCtx, cancel := context.WithCancel(ctx)
	exp := &Experiment{
		ID:                  fmt.Sprintf("exp_%d", start.UnixNano()),
		Spec:                spec,
		StartedAt:           start,
		EstimatedCompletion: start.Add(spec.Duration),
		status:              StatusRunning,
		groups:              make(map[string]*group, len(spec.Algorithms)),
		cancel:              cancel,
		done:                make(chan struct{}),
	}
	for _, alg := range spec.Algorithms {
		exp.groups[alg] = &group{
			sums:   make(map[string]float64),
			counts: make(map[string]int),
		}
	}
	o.current = exp
	o.history[exp.ID] = exp

	go o.watch(runCtx, exp)
	return exp, nil
}

func (o *Optimizer) watch(ctx context.Context, exp *Experiment) {
	timer := time.NewTimer(exp.Spec.Duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		o.finish(exp, true)
	case <-timer.C:
		o.finish(exp, false)
	}
}

// Cancel 取消运行中的实验；无运行中实验时为空操作。
func (o *Optimizer) Cancel() {
	o.mu.Lock()
	cur := o.current
	o.mu.Unlock()
	if cur != nil {
		cur.cancel()
	}
}

// AlgorithmFor 返回运行中实验给该用户分配的策略；无实验时 ok 为 false。
func (o *Optimizer) AlgorithmFor(userID string) (string, bool) {
	o.mu.Lock()
	cur := o.current
	o.mu.Unlock()
	if cur == nil {
		return "", false
	}
	algs := cur.Spec.Algorithms
	h := fnv.New32a()
	h.Write([]byte(userID))
	return algs[int(h.Sum32())%len(algs)], true
}

// Observe 记录一条观测事件：按用户分组，对每个指标求值并累积。
// 无运行中实验时为空操作；单条指标求值失败只记日志，不影响其余指标。
func (o *Optimizer) Observe(userID string, event map[string]any) {
	alg, ok := o.AlgorithmFor(userID)
	if !ok {
		return
	}
	o.mu.Lock()
	cur := o.current
	o.mu.Unlock()
	if cur == nil {
		return
	}

	cur.mu.Lock()
	defer cur.mu.Unlock()
	if cur.status != StatusRunning {
		return
	}
	g := cur.groups[alg]
	for _, m := range cur.Spec.Metrics {
		v, err := m.Value(event)
		if err != nil {
			log.Printf("[experiment] metric %s failed: %v", m.Name, err)
			continue
		}
		g.sums[m.Name] += v
		g.counts[m.Name]++
	}
}

// finish 结论实验：取消则回滚；正常到期则校验观测量并选出获胜者。
// 只有成功结论才切换引擎的活跃算法。
func (o *Optimizer) finish(exp *Experiment, cancelled bool) {
	exp.mu.Lock()
	if exp.status != StatusRunning {
		exp.mu.Unlock()
		return
	}
	exp.endedAt = o.now()

	switch {
	case cancelled:
		exp.status = StatusCancelled
	case !o.enoughObservations(exp):
		exp.status = StatusInsufficientData
	default:
		exp.winner = o.pickWinner(exp)
		exp.status = StatusCompleted
	}
	winner := exp.winner
	status := exp.status
	exp.mu.Unlock()

	if status == StatusCompleted && o.switcher != nil {
		o.switcher.SetAlgorithm(winner)
	}

	o.mu.Lock()
	if o.current == exp {
		o.current = nil
	}
	o.mu.Unlock()
	close(exp.done)
}

func (o *Optimizer) enoughObservations(exp *Experiment) bool {
	primary := exp.Spec.Metrics[0].Name
	for _, g := range exp.groups {
		if g.counts[primary] < o.minObservations() {
			return false
		}
	}
	return true
}

// pickWinner 取主指标均值最高的策略；同均值按 Spec.Algorithms 里
// 先出现者胜出。
func (o *Optimizer) pickWinner(exp *Experiment) string {
	primary := exp.Spec.Metrics[0].Name
	winner := ""
	best := 0.0
	for _, alg := range exp.Spec.Algorithms {
		g := exp.groups[alg]
		mean := g.sums[primary] / float64(g.counts[primary])
		if winner == "" || mean > best {
			winner = alg
			best = mean
		}
	}
	return winner
}

// Result 返回实验结论；运行中返回当前进度，数据不足时 Status 为
// insufficient_data 且 Winner 为空。
func (o *Optimizer) Result(testID string) (*Result, error) {
	o.mu.Lock()
	exp, ok := o.history[testID]
	o.mu.Unlock()
	if !ok {
		return nil, core.NewDomainError(core.ModuleExperiment, core.ErrorCodeNotFound,
			"experiment: not found: "+testID)
	}

	exp.mu.Lock()
	defer exp.mu.Unlock()

	res := &Result{
		TestID:              exp.ID,
		Status:              exp.status,
		Winner:              exp.winner,
		Means:               make(map[string]map[string]float64, len(exp.groups)),
		Counts:              make(map[string]int, len(exp.groups)),
		StartedAt:           exp.StartedAt,
		EndedAt:             exp.endedAt,
		EstimatedCompletion: exp.EstimatedCompletion,
	}
	primary := exp.Spec.Metrics[0].Name
	for alg, g := range exp.groups {
		means := make(map[string]float64, len(g.sums))
		for name, sum := range g.sums {
			if g.counts[name] > 0 {
				means[name] = sum / float64(g.counts[name])
			}
		}
		res.Means[alg] = means
		res.Counts[alg] = g.counts[primary]
	}
	return res, nil
}
