package core

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX）
//
// 使用场景：
//   - 画像错误：NOT_FOUND, INVALID_INTERACTION
//   - 实验错误：INSUFFICIENT_DATA
//   - 目录错误：CATALOG_FAILURE
//   - 存储错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INTERACTION"）
	Message string // 错误消息
	Module  string // 模块名称（如 "profile", "experiment"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// GetDomainError 获取 DomainError，如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	if domainErr, ok := err.(*DomainError); ok {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound           = "NOT_FOUND"           // 资源不存在
	ErrorCodeNotSupported       = "NOT_SUPPORTED"       // 操作不支持
	ErrorCodeInvalidInteraction = "INVALID_INTERACTION" // 交互类型无效
	ErrorCodeInsufficientData   = "INSUFFICIENT_DATA"   // 实验观测数据不足
	ErrorCodeCatalogFailure     = "CATALOG_FAILURE"     // 内容目录查询失败
	ErrorCodeInvalidInput       = "INVALID_INPUT"       // 输入无效
	ErrorCodeInternalError      = "INTERNAL_ERROR"      // 内部错误
)

// 模块名称常量
const (
	ModuleStore      = "store"      // 存储模块
	ModuleProfile    = "profile"    // 画像模块
	ModuleRecall     = "recall"     // 召回模块
	ModuleEngine     = "engine"     // 引擎模块
	ModuleExperiment = "experiment" // 实验模块
	ModuleCatalog    = "catalog"    // 内容目录模块
)

func hasCode(err error, code string) bool {
	if err == nil {
		return false
	}
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsInvalidInteraction 检查错误是否为 INVALID_INTERACTION
func IsInvalidInteraction(err error) bool {
	return hasCode(err, ErrorCodeInvalidInteraction)
}

// IsInsufficientData 检查错误是否为 INSUFFICIENT_DATA
func IsInsufficientData(err error) bool {
	return hasCode(err, ErrorCodeInsufficientData)
}

// IsCatalogFailure 检查错误是否为 CATALOG_FAILURE
func IsCatalogFailure(err error) bool {
	return hasCode(err, ErrorCodeCatalogFailure)
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	return hasCode(err, ErrorCodeNotSupported)
}
