package motion

// Curve 三次贝塞尔曲线，由起点、两个控制点和终点定义
type Curve struct {
	Start Point
	Ctrl1 Point
	Ctrl2 Point
	End   Point
}

// At 计算曲线在参数 t 处的坐标，t 取值 [0,1]。
// At(0) 恒等于 Start，At(1) 恒等于 End。
func (c Curve) At(t float64) Point {
	if t <= 0 {
		return c.Start
	}
	if t >= 1 {
		return c.End
	}

	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	d := 3 * u * t * t
	e := t * t * t

	return Point{
		X: a*c.Start.X + b*c.Ctrl1.X + d*c.Ctrl2.X + e*c.End.X,
		Y: a*c.Start.Y + b*c.Ctrl1.Y + d*c.Ctrl2.Y + e*c.End.Y,
	}
}
