package profile

import (
	"context"
	"log"
	"time"

	"github.com/rushteam/edurec/core"
)

// Recorder 是交互事件的统一入口（InteractionRecorder）。
//
// 职责：
//   - 校验交互类型（未知类型拒绝，拒绝前不发生任何画像写入）
//   - 内容画像懒创建：目录查得到用标签向量，查不到/查失败用零标签
//   - 派生交互权重并固化进记录
//   - 委托 ProfileStore.ApplyInteraction 原子落库
type Recorder struct {
	profiles core.ProfileStore
	catalog  core.Catalog
	weights  core.WeightTable

	// now 可注入，测试用
	now func() time.Time
}

// RecordRequest 是一次交互上报。Rating / Duration / Context 可选。
type RecordRequest struct {
	UserID    string
	ContentID string
	Type      string
	Rating    *float64
	Duration  float64
	Context   map[string]any
}

// NewRecorder 创建 Recorder。catalog 可为 nil（纯引擎内数据）；
// weights 为 nil 时使用默认权重表。
func NewRecorder(profiles core.ProfileStore, catalog core.Catalog, weights core.WeightTable) *Recorder {
	if weights == nil {
		weights = core.DefaultWeights()
	}
	return &Recorder{
		profiles: profiles,
		catalog:  catalog,
		weights:  weights,
		now:      time.Now,
	}
}

// Record 校验并落库一条交互，返回固化后的记录。
// 校验失败（INVALID_INTERACTION / INVALID_INPUT）时不产生任何写入。
func (r *Recorder) Record(ctx context.Context, req RecordRequest) (*core.InteractionRecord, error) {
	if req.UserID == "" || req.ContentID == "" {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput,
			"profile: user id and content id are required")
	}
	typ, err := core.ParseInteractionType(req.Type)
	if err != nil {
		return nil, err
	}
	if req.Rating != nil && (*req.Rating < 0 || *req.Rating > 5) {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeInvalidInput,
			"profile: rating must be in [0, 5]")
	}

	r.ensureContent(ctx, req.ContentID)

	rec := &core.InteractionRecord{
		UserID:    req.UserID,
		ContentID: req.ContentID,
		Type:      typ,
		Timestamp: r.now(),
		Rating:    req.Rating,
		Duration:  req.Duration,
		Context:   req.Context,
		Weight:    r.weights.Weight(typ),
	}
	if err := r.profiles.ApplyInteraction(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// ensureContent 保证内容画像存在：已有则不动；目录查得到带标签创建；
// 目录无此内容或查询失败则零标签创建。目录故障被隔离为日志，
// 从不让交互上报失败。
func (r *Recorder) ensureContent(ctx context.Context, contentID string) {
	if _, err := r.profiles.GetContentProfile(ctx, contentID); err == nil {
		return
	}

	c := core.NewContentProfile(contentID)
	if r.catalog != nil {
		info, err := r.catalog.GetContent(ctx, contentID)
		switch {
		case err == nil:
			c.ContentType = info.ContentType
			for tag, w := range info.Tags {
				c.Tags[tag] = w
			}
		case core.IsNotFound(err):
			// 目录没有：零标签懒创建
		default:
			log.Printf("[profile] catalog lookup failed for %s: %v", contentID, err)
		}
	}
	if err := r.profiles.UpsertContentProfile(ctx, c); err != nil {
		log.Printf("[profile] lazy content create failed for %s: %v", contentID, err)
	}
}
