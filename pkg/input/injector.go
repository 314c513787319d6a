// Package input 封装鼠标与键盘的注入操作
package input

import (
	"github.com/zoeyai/colorbot/pkg/motion"
	"github.com/zoeyai/colorbot/pkg/script"
)

// Injector 输入注入协作方接口。
// 注入失败是不可重试的致命错误：重发可能已部分执行的物理动作不安全。
type Injector interface {
	// Position 返回当前指针位置
	Position() (x, y int, err error)
	// MoveAlong 依次移动指针经过 path 各点，短暂停顿后执行终结动作
	MoveAlong(path []motion.Point, action script.Action) error
	// PressKey 执行一次按键
	PressKey(token string) error
}
