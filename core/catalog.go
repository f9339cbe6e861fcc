package core

import "context"

// ContentInfo 是外部内容目录中的一条内容元数据。
// 引擎只读取 Tags / ContentType，不拥有内容本体。
type ContentInfo struct {
	ContentID   string
	ContentType string
	Tags        map[string]float64 // tag -> weight，权重非负
}

// Catalog 是外部内容目录协作方的接口。
//
// 引擎对目录的依赖是弱依赖：单条查询失败（CATALOG_FAILURE）时，
// 受影响的内容被跳过或以零标签懒创建，整个推荐请求不会因此失败。
//
// 实现：
//   - catalog.Static：内存目录（测试 / 原型）
//   - catalog.Feast：标签向量作为 Feast 在线特征
type Catalog interface {
	// GetContent 查询单条内容的标签向量；不存在时返回 NOT_FOUND，
	// 查询链路故障时返回 CATALOG_FAILURE。
	GetContent(ctx context.Context, contentID string) (*ContentInfo, error)
}

// Catalog 错误定义
var (
	// ErrCatalogNotFound 表示目录中不存在该内容
	ErrCatalogNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: content not found")
)
