package catalog

import (
	"context"
	"fmt"
	"strings"

	feastsdk "github.com/feast-dev/feast/sdk/go"

	"github.com/rushteam/edurec/core"
)

// Feast 是基于 Feast Feature Store 的内容目录实现：
// 内容的标签向量作为在线特征存放，按 content_id 实体查询。
//
// 特征约定：
//   - TagFeatures 里的每个特征名形如 "content_features:math"，
//     冒号后的部分即标签名，特征值（double）即标签权重
//   - TypeFeature 可选，值为内容类型字符串
//
// 查询失败返回 CATALOG_FAILURE，由上游隔离（跳过该内容，不中断请求）。
type Feast struct {
	client *feastsdk.GrpcClient

	// Project 是 Feast 项目名。
	Project string

	// EntityKey 是内容实体的 key，默认 "content_id"。
	EntityKey string

	// TagFeatures 是标签特征的完整名称列表。
	TagFeatures []string

	// TypeFeature 是内容类型特征的完整名称，可为空。
	TypeFeature string
}

// NewFeast 创建一个 Feast 目录客户端。
func NewFeast(host string, port int, project string, tagFeatures []string) (*Feast, error) {
	if port == 0 {
		port = 6565
	}
	client, err := feastsdk.NewGrpcClient(host, port)
	if err != nil {
		return nil, fmt.Errorf("feast client: %w", err)
	}
	return &Feast{
		client:      client,
		Project:     project,
		EntityKey:   "content_id",
		TagFeatures: tagFeatures,
	}, nil
}

var _ core.Catalog = (*Feast)(nil)

func (f *Feast) GetContent(ctx context.Context, contentID string) (*core.ContentInfo, error) {
	features := f.TagFeatures
	if f.TypeFeature != "" {
		features = append(append([]string{}, f.TagFeatures...), f.TypeFeature)
	}
	entityKey := f.EntityKey
	if entityKey == "" {
		entityKey = "content_id"
	}

	resp, err := f.client.GetOnlineFeatures(ctx, &feastsdk.OnlineFeaturesRequest{
		Features: features,
		Entities: []feastsdk.Row{{entityKey: feastsdk.StrVal(contentID)}},
		Project:  f.Project,
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeCatalogFailure,
			fmt.Sprintf("catalog: feast lookup for %s: %v", contentID, err))
	}

	rows := resp.Rows()
	if len(rows) == 0 {
		return nil, core.ErrCatalogNotFound
	}
	row := rows[0]

	info := &core.ContentInfo{
		ContentID: contentID,
		Tags:      make(map[string]float64, len(f.TagFeatures)),
	}
	for _, feat := range f.TagFeatures {
		val, ok := row[feat]
		if !ok || val == nil {
			continue
		}
		w := val.GetDoubleVal()
		if w == 0 {
			w = float64(val.GetFloatVal())
		}
		if w != 0 {
			info.Tags[tagName(feat)] = w
		}
	}
	if f.TypeFeature != "" {
		if val, ok := row[f.TypeFeature]; ok && val != nil {
			info.ContentType = val.GetStringVal()
		}
	}

	// 所有标签都缺失视为目录里没有这条内容
	if len(info.Tags) == 0 && info.ContentType == "" {
		return nil, core.ErrCatalogNotFound
	}
	return info, nil
}

// tagName 取特征全名冒号后的部分作为标签名。
func tagName(feature string) string {
	if i := strings.LastIndex(feature, ":"); i >= 0 {
		return feature[i+1:]
	}
	return feature
}
