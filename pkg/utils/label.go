package utils

// Label 是推荐链路中的可解释标记：记录一个候选从哪个召回源来、
// 被哪个过滤器处理过，最终由引擎渲染成人类可读的推荐原因。
// Value 与 Source 的语义由业务自定义；这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall / filter / merge ...
}

// MergeLabel 用于合并同名 Label，遵循"保留历史、可追踪"的默认策略。
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
//
// 混合合并时（同一内容同时来自协同与内容召回），推荐原因正是
// 通过这里的 Value 累积得到的拼接结果。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// SplitLabelValues 按合并规则反向拆出 Value 列表。
func SplitLabelValues(lbl Label) []string {
	if lbl.Value == "" {
		return nil
	}
	out := make([]string, 0, 2)
	start := 0
	for i := 0; i < len(lbl.Value); i++ {
		if lbl.Value[i] == '|' {
			out = append(out, lbl.Value[start:i])
			start = i + 1
		}
	}
	return append(out, lbl.Value[start:])
}
