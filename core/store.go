package core

import "context"

// ProfileStore 是画像存储的领域接口。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（profile）实现
//   - 算法层（recall / engine）只依赖此接口，存储后端可整体替换
//
// 并发契约（实现方必须满足）：
//   - 读（GetXxx / TopContentByPopularity）可完全并行
//   - 同一用户的 ApplyInteraction 必须串行（按用户加锁或单写队列），
//     不同用户的写可并发
//   - 与写并发的读可见旧态或新态，但绝不可见半应用状态（无撕裂读）
type ProfileStore interface {
	// GetUserProfile 读取用户画像；不存在时返回 NOT_FOUND。
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)

	// GetContentProfile 读取内容画像；不存在时返回 NOT_FOUND。
	GetContentProfile(ctx context.Context, contentID string) (*ContentProfile, error)

	// UpsertUserProfile 幂等地创建或整体覆盖用户画像。
	UpsertUserProfile(ctx context.Context, p *UserProfile) error

	// UpsertContentProfile 幂等地创建或整体覆盖内容画像。
	UpsertContentProfile(ctx context.Context, c *ContentProfile) error

	// ApplyInteraction 原子地应用一条交互记录：
	//   1. 取或创建 UserProfile / ContentProfile
	//   2. ContentAffinity[contentID] += weight
	//   3. 每个内容标签：Preferences[tag] += weight * tagWeight
	//   4. 追加有界交互历史
	//   5. 更新内容侧统计（TotalInteractions / Popularity / AverageRating / Breakdown）
	ApplyInteraction(ctx context.Context, rec *InteractionRecord) error

	// UserIDs 返回全部已知用户 ID（协同过滤的相似用户扫描）。
	UserIDs(ctx context.Context) ([]string, error)

	// ContentIDs 返回全部已知内容 ID（内容召回的候选扫描）。
	ContentIDs(ctx context.Context) ([]string, error)

	// TopContentByPopularity 按 Popularity 降序返回前 n 个内容画像
	//（冷启动兜底召回）。
	TopContentByPopularity(ctx context.Context, n int) ([]*ContentProfile, error)
}

// Store 是通用 KV 存储的领域接口，用于推荐历史日志与画像持久化等
// 非算法数据。实现见 store.MemoryStore / store.RedisStore。
type Store interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	// Get 读取单个 key 的值；不存在时返回 ErrStoreNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 单位秒（可选）
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	// Delete 删除单个 key
	Delete(ctx context.Context, key string) error

	// Close 关闭连接/释放资源
	Close() error
}

// KeyValueStore 是 Store 的扩展接口，提供引擎需要的结构化操作：
//   - 有序集合：内容热度排行（TopN 热门召回）
//   - 集合：用户 / 内容 ID 索引
//   - 列表：有界追加日志（推荐历史）
//
// 如果后端不支持某些操作，可返回 ErrStoreNotSupported。
type KeyValueStore interface {
	Store

	// ZIncrBy 对有序集合成员的分数做增量，返回增量后的分数
	ZIncrBy(ctx context.Context, key string, delta float64, member string) (float64, error)

	// ZRevRange 按分数降序获取 [start, stop] 区间的成员
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZScore 获取成员的分数；不存在时返回 ErrStoreNotFound
	ZScore(ctx context.Context, key string, member string) (float64, error)

	// SAdd 向集合添加成员
	SAdd(ctx context.Context, key string, members ...string) error

	// SMembers 返回集合全部成员
	SMembers(ctx context.Context, key string) ([]string, error)

	// LPush 向列表头部追加一个元素
	LPush(ctx context.Context, key string, value []byte) error

	// LTrim 截断列表，仅保留 [start, stop] 区间
	LTrim(ctx context.Context, key string, start, stop int64) error

	// LRange 返回列表 [start, stop] 区间的元素（头部在前）
	LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error)
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	if err == nil {
		return false
	}
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
