// Package timeout defines centralized timeout constants for AI operations.
// Package timeout 定义 AI 操作的集中式超时常量。
package timeout

import "time"

const (
	// InterpretTimeout bounds one call to the upstream interpreter before the
	// rule classifier answers instead.
	// InterpretTimeout 是上游解析器单次调用的超时时间，超时后由规则分类器兜底。
	InterpretTimeout = 5 * time.Second

	// ShutdownTimeout bounds draining in-flight requests on shutdown.
	// ShutdownTimeout 是关闭时等待进行中请求完成的超时时间。
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds reading request headers.
	ReadHeaderTimeout = 10 * time.Second
)
