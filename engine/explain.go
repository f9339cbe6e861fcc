package engine

import (
	"strings"

	"github.com/rushteam/edurec/core"
	"github.com/rushteam/edurec/pkg/utils"
)

// 各召回源对应的解释片段。来源标识见 recall 包的 recall_source 标签。
var explanationClauses = map[string]string{
	"collaborative": "learners with similar interests engaged with it",
	"content_based": "it matches topics you have enjoyed before",
	"popular":       "it is trending among all learners",
}

// explain 把候选的召回来源渲染成一句自然语言解释。
// 混合来源时片段按 Label 合并顺序拼接。
func explain(it *core.Item) string {
	lbl, ok := it.Labels["recall_source"]
	if !ok {
		return ""
	}
	clauses := make([]string, 0, 2)
	seen := make(map[string]bool)
	for _, source := range utils.SplitLabelValues(lbl) {
		clause, ok := explanationClauses[source]
		if !ok || seen[source] {
			continue
		}
		seen[source] = true
		clauses = append(clauses, clause)
	}
	if len(clauses) == 0 {
		return ""
	}
	return "Recommended because " + strings.Join(clauses, " and ") + "."
}
