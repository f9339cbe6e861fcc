package core

import "time"

// ContentProfile 是内容画像：标签向量 + 聚合统计。
//
// 不变式：
//   - TotalInteractions 单调不减
//   - Popularity 只有在记录负权重交互（skip）时才会下降
//   - Tags 的 key 与 UserProfile.Preferences 的 key 来自同一外部标签词表
//
// 生命周期：首次交互时若目录无此内容则懒创建（零标签）；仅由
// InteractionRecorder 写入统计字段；标签本身属于外部内容目录。
type ContentProfile struct {
	ContentID            string                    `json:"content_id"`
	ContentType          string                    `json:"content_type,omitempty"`
	Tags                 map[string]float64        `json:"tags"`
	Popularity           float64                   `json:"popularity"`
	AverageRating        float64                   `json:"average_rating"` // [0, 5]
	TotalInteractions    int64                     `json:"total_interactions"`
	InteractionBreakdown map[InteractionType]int64 `json:"interaction_breakdown"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

// NewContentProfile 创建一个空的内容画像（零标签）。
func NewContentProfile(contentID string) *ContentProfile {
	return &ContentProfile{
		ContentID:            contentID,
		Tags:                 make(map[string]float64),
		InteractionBreakdown: make(map[InteractionType]int64),
		UpdatedAt:            time.Now(),
	}
}

// Clone 深拷贝内容画像。
func (c *ContentProfile) Clone() *ContentProfile {
	cp := &ContentProfile{
		ContentID:         c.ContentID,
		ContentType:       c.ContentType,
		Tags:              make(map[string]float64, len(c.Tags)),
		Popularity:        c.Popularity,
		AverageRating:     c.AverageRating,
		TotalInteractions: c.TotalInteractions,
		InteractionBreakdown: make(map[InteractionType]int64,
			len(c.InteractionBreakdown)),
		UpdatedAt: c.UpdatedAt,
	}
	for k, v := range c.Tags {
		cp.Tags[k] = v
	}
	for k, v := range c.InteractionBreakdown {
		cp.InteractionBreakdown[k] = v
	}
	return cp
}

// Apply 将一条交互记录的统计更新应用到内容画像：
//   - TotalInteractions 自增
//   - Popularity 累加权重
//   - 有评分时更新滑动平均 AverageRating
//   - InteractionBreakdown 对应类型计数自增
func (c *ContentProfile) Apply(rec *InteractionRecord) {
	if c.InteractionBreakdown == nil {
		c.InteractionBreakdown = make(map[InteractionType]int64)
	}
	c.TotalInteractions++
	c.Popularity += rec.Weight
	if rec.Rating != nil {
		n := float64(c.TotalInteractions)
		c.AverageRating = (c.AverageRating*(n-1) + *rec.Rating) / n
	}
	c.InteractionBreakdown[rec.Type]++
	c.UpdatedAt = rec.Timestamp
}
