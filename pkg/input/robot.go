package input

import (
	"fmt"
	"math"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/zoeyai/colorbot/pkg/motion"
	"github.com/zoeyai/colorbot/pkg/script"
)

const (
	// settleDelay 点击前的停顿，保证指针到位后再执行动作
	settleDelay = 250 * time.Millisecond
	// stepPaceMs 相邻移动点之间的间隔（毫秒）
	stepPaceMs = 1
)

// Robot 基于 robotgo 的输入注入实现
type Robot struct{}

// NewRobot 创建 robotgo 注入器
func NewRobot() *Robot {
	return &Robot{}
}

// Position 返回当前指针位置
func (r *Robot) Position() (int, int, error) {
	x, y := robotgo.Location()
	return x, y, nil
}

// MoveAlong 依次移动指针经过 path 各点，停顿后执行终结动作
func (r *Robot) MoveAlong(path []motion.Point, action script.Action) error {
	for _, p := range path {
		robotgo.Move(int(math.Round(p.X)), int(math.Round(p.Y)))
		robotgo.MilliSleep(stepPaceMs)
	}
	time.Sleep(settleDelay)

	switch action {
	case script.ActionLeftClick:
		robotgo.Click("left", false)
	case script.ActionRightClick:
		robotgo.Click("right", false)
	case script.ActionShiftClick:
		// 按住 shift 点击，保证修饰键与点击原子成对
		if err := robotgo.KeyToggle("shift", "down"); err != nil {
			return fmt.Errorf("按下 shift 失败: %w", err)
		}
		robotgo.Click("left", false)
		if err := robotgo.KeyToggle("shift", "up"); err != nil {
			return fmt.Errorf("释放 shift 失败: %w", err)
		}
	default:
		return fmt.Errorf("未知的动作类型: %s", action)
	}
	return nil
}

// PressKey 执行一次按键
func (r *Robot) PressKey(token string) error {
	if err := robotgo.KeyTap(token); err != nil {
		return fmt.Errorf("按键 %s 失败: %w", token, err)
	}
	return nil
}
