package core

// RecommendContext 承载单次推荐请求的用户与选项信息，贯穿召回/过滤/重排透传。
type RecommendContext struct {
	UserID string

	// User 是本次请求开始时取到的画像快照；冷启动时为 nil。
	User *UserProfile

	// Exclude 是调用方显式排除的内容集合（excludeContentIds）。
	Exclude map[string]bool

	// ContentType 非空时只保留该类型的内容。
	ContentType string

	// ExcludeViewed 为 true 时过滤用户有任意交互记录的内容（基于完整历史）。
	ExcludeViewed bool

	// Params 请求级上下文参数（场景、设备等），按需透传。
	Params map[string]any
}
