// Package motion 提供拟人化的鼠标轨迹合成：
// 随机化三次贝塞尔曲线生成，以及按速度采样出的离散移动序列。
package motion

// Point 二维浮点坐标
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
