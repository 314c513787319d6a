package executor

import "fmt"

// ErrorKind 运行错误分类
type ErrorKind int

const (
	// ErrCapture 显示器不可用等采集致命错误
	ErrCapture ErrorKind = iota
	// ErrConfiguration 脚本配置错误（如未知动作类型）
	ErrConfiguration
	// ErrInjector 输入注入失败，不可重试
	ErrInjector
)

func (k ErrorKind) String() string {
	switch k {
	case ErrCapture:
		return "CAPTURE"
	case ErrConfiguration:
		return "CONFIG"
	case ErrInjector:
		return "INJECTOR"
	default:
		return "UNKNOWN"
	}
}

// RunError 终止整个运行的错误（带分类）。
// 瞬时状况（本轮无帧、本轮未命中）由重试流程就地消化，不会出现在这里。
type RunError struct {
	Kind ErrorKind
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// newRunError 创建运行错误
func newRunError(kind ErrorKind, err error) *RunError {
	return &RunError{Kind: kind, Err: err}
}
