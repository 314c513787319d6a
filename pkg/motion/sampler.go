package motion

const (
	// baseSamples 速度为 1 时的采样点数
	baseSamples = 600
	// minSamples 采样点数下限，防止退化为空序列
	minSamples = 12
)

// SamplePath 将曲线采样为离散的移动点序列。
// speed 取值 1-10（超出范围自动收敛），越大采样点越少、表观移动越快。
// 返回序列包含曲线两端点。
func SamplePath(c Curve, speed int) []Point {
	if speed < 1 {
		speed = 1
	}
	if speed > 10 {
		speed = 10
	}

	n := baseSamples / speed
	if n < minSamples {
		n = minSamples
	}

	path := make([]Point, 0, n+1)
	for i := 0; i <= n; i++ {
		path = append(path, c.At(float64(i)/float64(n)))
	}
	return path
}
