// Package vision 提供基于颜色的屏幕感知功能：
// 像素颜色容差匹配、全屏扫描与密度加权的目标选取。
package vision

// DefaultTolerance 默认颜色容差。
// 3 是在截屏压缩噪声下仍能稳定命中的最严格取值。
const DefaultTolerance uint8 = 3

// Signature 颜色签名：目标颜色加上逐通道容差
type Signature struct {
	R, G, B   uint8
	Tolerance uint8
}

// NewSignature 创建使用默认容差的颜色签名
func NewSignature(r, g, b uint8) Signature {
	return Signature{R: r, G: g, B: b, Tolerance: DefaultTolerance}
}

// Matches 判断采样颜色是否命中签名：每个通道的差值均不超过容差
func (s Signature) Matches(r, g, b uint8) bool {
	return absDiff(s.R, r) <= s.Tolerance &&
		absDiff(s.G, g) <= s.Tolerance &&
		absDiff(s.B, b) <= s.Tolerance
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
