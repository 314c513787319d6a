package vision

import (
	"errors"
	"image"

	"github.com/kbinani/screenshot"
)

// DisplayCapturer 基于主显示器的屏幕采集实现。
// 仅支持主显示器（索引 0）。
type DisplayCapturer struct {
	bounds image.Rectangle
}

// NewDisplayCapturer 打开主显示器。没有任何可用显示器时返回致命错误。
func NewDisplayCapturer() (*DisplayCapturer, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return nil, errors.New("没有可用的显示器")
	}
	return &DisplayCapturer{bounds: screenshot.GetDisplayBounds(0)}, nil
}

// Bounds 返回主显示器尺寸
func (c *DisplayCapturer) Bounds() (width, height int) {
	return c.bounds.Dx(), c.bounds.Dy()
}

// Capture 采集主显示器当前帧。
// 单帧采集失败视为瞬时状况，映射为 ErrNoFrame 由下一轮重试。
func (c *DisplayCapturer) Capture() (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(c.bounds)
	if err != nil {
		return nil, ErrNoFrame
	}
	return img, nil
}
