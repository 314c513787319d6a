package motion

import (
	"math"
	"math/rand"
)

// 控制点偏移的角度扰动幅度（绕直线方位垂线方向，弧度）
const angleJitter = math.Pi / 6

// Synthesizer 轨迹合成器。
// 随机源显式注入，固定种子时可复现，便于测试。
type Synthesizer struct {
	rng *rand.Rand
}

// NewSynthesizer 创建轨迹合成器
func NewSynthesizer(rng *rand.Rand) *Synthesizer {
	return &Synthesizer{rng: rng}
}

// Curve 生成从 start 到 end 的随机化运动曲线。
// deviation 为 0-100 的偏移强度（超出范围自动收敛）：
// 两个控制点位于直线段 1/3、2/3 处，沿方位角垂线方向偏移
// 线段长度的 deviation/2%~deviation% 随机比例，并叠加随机角度扰动；
// 结果坐标裁剪为非负。每次调用重新随机，deviation=0 退化为直线。
func (s *Synthesizer) Curve(start, end Point, deviation int) Curve {
	if deviation < 0 {
		deviation = 0
	}
	if deviation > 100 {
		deviation = 100
	}

	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	bearing := math.Atan2(dy, dx)

	ctrl := func(t float64) Point {
		base := Point{X: start.X + dx*t, Y: start.Y + dy*t}
		if deviation == 0 || length == 0 {
			return base
		}

		frac := (float64(deviation)/2 + s.rng.Float64()*float64(deviation)/2) / 100
		side := 1.0
		if s.rng.Intn(2) == 0 {
			side = -1
		}
		angle := bearing + side*math.Pi/2 + (s.rng.Float64()*2-1)*angleJitter

		return Point{
			X: math.Max(0, base.X+length*frac*math.Cos(angle)),
			Y: math.Max(0, base.Y+length*frac*math.Sin(angle)),
		}
	}

	return Curve{
		Start: start,
		Ctrl1: ctrl(1.0 / 3),
		Ctrl2: ctrl(2.0 / 3),
		End:   end,
	}
}
