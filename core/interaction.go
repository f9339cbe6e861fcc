package core

import "time"

// InteractionType 是交互类型枚举。
// 交互类型决定了该行为对用户偏好的信号强度（见 WeightTable）。
type InteractionType string

const (
	InteractionView     InteractionType = "view"     // 浏览
	InteractionLike     InteractionType = "like"     // 点赞
	InteractionShare    InteractionType = "share"    // 分享
	InteractionComplete InteractionType = "complete" // 完成（学完）
	InteractionSkip     InteractionType = "skip"     // 跳过（负反馈）
)

// ParseInteractionType 校验并解析交互类型字符串。
// 未知类型返回 INVALID_INTERACTION 错误，调用方决定是否修正后重试；
// 校验失败前不会发生任何画像写入（all-or-nothing）。
func ParseInteractionType(s string) (InteractionType, error) {
	switch t := InteractionType(s); t {
	case InteractionView, InteractionLike, InteractionShare, InteractionComplete, InteractionSkip:
		return t, nil
	}
	return "", NewDomainError(ModuleProfile, ErrorCodeInvalidInteraction, "unknown interaction type: "+s)
}

// IsPositive 判断交互是否为正反馈。
// like / complete / share 视为正反馈；view 只是弱信号，skip 是负反馈。
func (t InteractionType) IsPositive() bool {
	switch t {
	case InteractionLike, InteractionComplete, InteractionShare:
		return true
	}
	return false
}

// WeightTable 是交互类型到权重的查找表。
// 权重表达该行为的偏好信号强度，可通过配置覆盖（config.Config.InteractionWeights）。
type WeightTable map[InteractionType]float64

// DefaultWeights 返回默认权重表。
func DefaultWeights() WeightTable {
	return WeightTable{
		InteractionView:     0.1,
		InteractionLike:     0.5,
		InteractionShare:    0.7,
		InteractionComplete: 1.0,
		InteractionSkip:     -0.2,
	}
}

// Weight 返回交互类型的权重；未知类型返回 0。
func (w WeightTable) Weight(t InteractionType) float64 {
	return w[t]
}

// InteractionRecord 是一条交互事件记录。
// 创建后不可变、仅追加；Weight 由 WeightTable 派生后固化在记录里，
// 保证权重表调整不影响历史记录。
type InteractionRecord struct {
	UserID    string          `json:"user_id"`
	ContentID string          `json:"content_id"`
	Type      InteractionType `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Rating    *float64        `json:"rating,omitempty"`   // 可选评分，0-5
	Duration  float64         `json:"duration,omitempty"` // 可选时长（秒）
	Context   map[string]any  `json:"context,omitempty"`  // 透传上下文（来源页面、设备等）
	Weight    float64         `json:"weight"`
}
