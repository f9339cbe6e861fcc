// Package experiment 实现推荐策略的在线实验（A/B）与获胜策略切换。
package experiment

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/edurec/pkg/conv"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvOnce sync.Once
	celEnvErr  error
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("event", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Metric 是用 CEL (Common Expression Language) 表达式定义的实验指标。
// 表达式在观测事件 event 上求值，结果转为 float64 计入实验组。
//
// event 的字段由引擎在交互上报时填充：
//   - event.type     交互类型字符串（"like" / "skip" / ...）
//   - event.weight   交互权重
//   - event.rating   评分（无评分时为 -1）
//   - event.positive 是否正反馈
//
// 示例：
//   - `event.weight`                      → 平均交互权重（参与度）
//   - `event.positive ? 1.0 : 0.0`        → 正反馈率
//   - `event.type == "complete" ? 1.0 : 0.0` → 完成率
type Metric struct {
	Name string
	Expr string
	prg  cel.Program
}

// NewMetric 编译一个指标表达式。表达式只编译一次，Value 可多次并发调用。
func NewMetric(name, expr string) (*Metric, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile metric %s: %w", name, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program metric %s: %w", name, err)
	}
	return &Metric{Name: name, Expr: expr, prg: prg}, nil
}

// Value 在一条观测事件上求值。
func (m *Metric) Value(event map[string]any) (float64, error) {
	out, _, err := m.prg.Eval(map[string]any{"event": event})
	if err != nil {
		return 0, fmt.Errorf("eval metric %s: %w", m.Name, err)
	}
	v, ok := conv.ToFloat64(out.Value())
	if !ok {
		return 0, fmt.Errorf("metric %s: non-numeric result %T", m.Name, out.Value())
	}
	return v, nil
}
