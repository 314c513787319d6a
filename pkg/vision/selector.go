package vision

import (
	"math/rand"
	"sort"

	"github.com/zoeyai/colorbot/pkg/motion"
)

// DefaultJitter 选取目标后每个轴的最大随机抖动（单位：像素）
const DefaultJitter = 5.0

// Selector 目标选取器。
// 随机源显式注入，固定种子时可复现，便于测试。
type Selector struct {
	rng    *rand.Rand
	jitter float64
}

// NewSelector 创建目标选取器
func NewSelector(rng *rand.Rand) *Selector {
	return &Selector{rng: rng, jitter: DefaultJitter}
}

// Select 从扫描结果中选出一个候选点。
// 按密度降序保留前四分之一（至少一个），偏向色块内部而非边缘噪声；
// 在保留集中均匀随机选取，并对每个轴叠加独立的 ±jitter 均匀抖动，
// 避免重复点击完全相同的坐标。空输入返回 false。
func (s *Selector) Select(result ScanResult) (motion.Point, bool) {
	if len(result) == 0 {
		return motion.Point{}, false
	}

	sorted := make(ScanResult, len(result))
	copy(sorted, result)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Density > sorted[j].Density
	})

	keep := len(sorted) / 4
	if keep < 1 {
		keep = 1
	}

	pick := sorted[s.rng.Intn(keep)].Point
	return motion.Point{
		X: pick.X + (s.rng.Float64()*2-1)*s.jitter,
		Y: pick.Y + (s.rng.Float64()*2-1)*s.jitter,
	}, true
}
