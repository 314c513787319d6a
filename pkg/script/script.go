// Package script 定义自动化脚本的事件模型与加载校验
package script

import (
	"encoding/json"
	"fmt"
	"os"
)

// EventType 事件类型（标签字段，区分指针/按键两类事件）
type EventType string

const (
	EventPointer EventType = "pointer"
	EventKey     EventType = "key"
)

// Action 指针终结动作，取值为封闭集合
type Action string

const (
	ActionLeftClick  Action = "left_click"
	ActionRightClick Action = "right_click"
	ActionShiftClick Action = "shift_click"
)

// Valid 判断动作是否属于已知集合
func (a Action) Valid() bool {
	switch a {
	case ActionLeftClick, ActionRightClick, ActionShiftClick:
		return true
	}
	return false
}

// Event 脚本事件。Type 为 pointer 时使用 Color/Action/SkipIfVanished，
// 为 key 时使用 Key。DelayRange 单位毫秒，要求 min <= max。
type Event struct {
	Type           EventType `json:"type"`
	ID             string    `json:"id"`
	Color          [3]uint8  `json:"color,omitempty"`
	Action         Action    `json:"action,omitempty"`
	DelayRange     [2]int    `json:"delay_rng"`
	Repeat         int       `json:"repeat,omitempty"`
	SkipIfVanished bool      `json:"skip_if_vanished,omitempty"`
	Key            string    `json:"key,omitempty"`
}

// Guard 运行前守护条件：该颜色存在时按键缓解并退避等待，
// 超出等待预算则终止运行。
type Guard struct {
	Color     [3]uint8 `json:"color"`
	Key       string   `json:"key"`
	BackoffMs int      `json:"backoff_ms,omitempty"`
	MaxWaitMs int      `json:"max_wait_ms,omitempty"`
}

// Guard 默认退避间隔与等待预算（毫秒）
const (
	DefaultGuardBackoffMs = 2000
	DefaultGuardMaxWaitMs = 60000
)

// Script 有序事件列表，加载一次，运行期间只读
type Script struct {
	Guard  *Guard  `json:"guard,omitempty"`
	Events []Event `json:"events"`
}

// Load 读取并校验脚本文件
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取脚本文件失败: %w", err)
	}

	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("解析脚本失败: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 校验脚本并补齐默认值（repeat 默认 1，守护默认退避与预算）
func (s *Script) Validate() error {
	if len(s.Events) == 0 {
		return fmt.Errorf("脚本中没有事件")
	}

	for i := range s.Events {
		ev := &s.Events[i]
		if ev.ID == "" {
			return fmt.Errorf("第 %d 个事件缺少 id", i+1)
		}
		if ev.Repeat == 0 {
			ev.Repeat = 1
		}
		if ev.Repeat < 1 {
			return fmt.Errorf("事件 %s: repeat 必须 >= 1", ev.ID)
		}
		if ev.DelayRange[0] < 0 || ev.DelayRange[0] > ev.DelayRange[1] {
			return fmt.Errorf("事件 %s: 延迟区间非法 [%d,%d]", ev.ID, ev.DelayRange[0], ev.DelayRange[1])
		}

		switch ev.Type {
		case EventPointer:
			if !ev.Action.Valid() {
				return fmt.Errorf("事件 %s: 未知的动作类型: %s", ev.ID, ev.Action)
			}
		case EventKey:
			if ev.Key == "" {
				return fmt.Errorf("事件 %s: 缺少按键", ev.ID)
			}
		default:
			return fmt.Errorf("事件 %s: 未知的事件类型: %s", ev.ID, ev.Type)
		}
	}

	if s.Guard != nil {
		if s.Guard.Key == "" {
			return fmt.Errorf("守护条件缺少按键")
		}
		if s.Guard.BackoffMs <= 0 {
			s.Guard.BackoffMs = DefaultGuardBackoffMs
		}
		if s.Guard.MaxWaitMs <= 0 {
			s.Guard.MaxWaitMs = DefaultGuardMaxWaitMs
		}
	}
	return nil
}
