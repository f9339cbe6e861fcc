package filter

import (
	"context"

	"github.com/rushteam/edurec/core"
)

// ContentType 按内容类型过滤：请求指定 contentType 时只保留该类型。
// 类型信息从内容画像读取；读不到类型的内容（零标签懒创建等）不过滤，
// 宁可多给也不让单条目录缺失影响整个请求。
type ContentType struct {
	Profiles core.ProfileStore
}

func (f *ContentType) Name() string {
	return "filter.content_type"
}

func (f *ContentType) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.ContentType == "" || f.Profiles == nil {
		return false, nil
	}
	c, err := f.Profiles.GetContentProfile(ctx, item.ID)
	if err != nil || c.ContentType == "" {
		return false, nil
	}
	return c.ContentType != rctx.ContentType, nil
}
