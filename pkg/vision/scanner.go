package vision

import (
	"errors"
	"fmt"
	"image"

	"github.com/zoeyai/colorbot/pkg/motion"
)

// ErrNoFrame 本轮未能取得屏幕帧。瞬时状况，调用方按空结果处理。
var ErrNoFrame = errors.New("本轮未取得屏幕帧")

// Capturer 屏幕采集协作方接口
type Capturer interface {
	// Bounds 返回主显示器尺寸
	Bounds() (width, height int)
	// Capture 采集一帧 RGBA 像素缓冲（行主序，通道顺序已归一化）。
	// 瞬时无帧时返回 ErrNoFrame，显示器不可用时返回其他错误。
	Capture() (*image.RGBA, error)
}

// Match 扫描命中：像素坐标加 3×3 邻域密度
type Match struct {
	Point   motion.Point
	Density int
}

// ScanResult 单次扫描的全部命中。每次扫描新建，不跨扫描缓存。
type ScanResult []Match

// Scanner 屏幕扫描器
type Scanner struct {
	capturer Capturer
}

// NewScanner 创建屏幕扫描器
func NewScanner(c Capturer) *Scanner {
	return &Scanner{capturer: c}
}

// Scan 采集一帧并返回所有命中像素及其密度。
// 仅扫描内部像素（最外一圈不参与）；密度为 3×3 邻域内同签名像素数，
// 含自身，取值范围 [1,9]。本轮无帧时返回空结果而非错误。
func (s *Scanner) Scan(sig Signature) (ScanResult, error) {
	frame, err := s.capturer.Capture()
	if err != nil {
		if errors.Is(err, ErrNoFrame) {
			return nil, nil
		}
		return nil, fmt.Errorf("截屏失败: %w", err)
	}

	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return nil, nil
	}

	// 第一遍直接扫 Pix 缓冲标记命中，避免逐像素 At 的装箱开销
	hits := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := frame.Pix[y*frame.Stride : y*frame.Stride+w*4]
		for x := 0; x < w; x++ {
			p := row[x*4 : x*4+3 : x*4+4]
			if sig.Matches(p[0], p[1], p[2]) {
				hits[y*w+x] = true
			}
		}
	}

	// 第二遍只对内部命中点计算密度
	var result ScanResult
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if !hits[y*w+x] {
				continue
			}
			density := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if hits[(y+dy)*w+x+dx] {
						density++
					}
				}
			}
			result = append(result, Match{
				Point:   motion.Point{X: float64(x), Y: float64(y)},
				Density: density,
			})
		}
	}
	return result, nil
}
