package executor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/zoeyai/colorbot/pkg/config"
	"github.com/zoeyai/colorbot/pkg/motion"
	"github.com/zoeyai/colorbot/pkg/script"
	"github.com/zoeyai/colorbot/pkg/vision"
)

var (
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// fakeCapturer 测试用采集器，按顺序返回预设帧，最后一帧保持不变
type fakeCapturer struct {
	frames []*image.RGBA
	idx    int
}

func (f *fakeCapturer) Bounds() (int, int) {
	b := f.frames[0].Bounds()
	return b.Dx(), b.Dy()
}

func (f *fakeCapturer) Capture() (*image.RGBA, error) {
	img := f.frames[f.idx]
	if f.idx < len(f.frames)-1 {
		f.idx++
	}
	return img, nil
}

// fakeInjector 测试用注入器，记录全部注入调用
type fakeInjector struct {
	keys    []string
	paths   [][]motion.Point
	actions []script.Action
	moveErr error
	keyErr  error
}

func (f *fakeInjector) Position() (int, int, error) {
	return 0, 0, nil
}

func (f *fakeInjector) MoveAlong(path []motion.Point, action script.Action) error {
	if f.moveErr != nil {
		return f.moveErr
	}
	f.paths = append(f.paths, path)
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeInjector) PressKey(token string) error {
	if f.keyErr != nil {
		return f.keyErr
	}
	f.keys = append(f.keys, token)
	return nil
}

// absentFrame 全黑帧（目标不存在）
func absentFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 21, 21))
	for y := 0; y < 21; y++ {
		for x := 0; x < 21; x++ {
			img.SetRGBA(x, y, black)
		}
	}
	return img
}

// presentFrame 中心带 3x3 白色色块的帧（目标存在）
func presentFrame() *image.RGBA {
	img := absentFrame()
	for y := 9; y <= 11; y++ {
		for x := 9; x <= 11; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	return img
}

// newTestExecutor 构造使用固定种子与短冷却的测试执行器
func newTestExecutor(capt vision.Capturer, inj *fakeInjector, opts ...Option) *Executor {
	cfg := &config.BotConfig{
		ScriptPath:     "test.json",
		RuntimeSeconds: 1,
		MouseDeviation: 10,
		MouseSpeed:     10,
	}
	rng := rand.New(rand.NewSource(1))
	base := []Option{WithSkipCooldown(time.Millisecond, 2*time.Millisecond)}
	return New(vision.NewScanner(capt), vision.NewSelector(rng), motion.NewSynthesizer(rng),
		inj, cfg, rng, append(base, opts...)...)
}

// TestKeyEventRepeat 测试按键事件严格按 repeat 次数执行并逐次等待
func TestKeyEventRepeat(t *testing.T) {
	inj := &fakeInjector{}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{absentFrame()}}, inj)

	ev := &script.Event{
		Type:       script.EventKey,
		ID:         "heal",
		Key:        "f1",
		DelayRange: [2]int{10, 10},
		Repeat:     3,
	}

	started := time.Now()
	if err := e.ExecuteEvent(context.Background(), ev); err != nil {
		t.Fatalf("执行按键事件失败: %v", err)
	}
	elapsed := time.Since(started)

	if len(inj.keys) != 3 {
		t.Errorf("应执行 3 次按键, 实际 %d", len(inj.keys))
	}
	for _, k := range inj.keys {
		if k != "f1" {
			t.Errorf("按键应为 f1, 实际 %s", k)
		}
	}
	if elapsed < 30*time.Millisecond {
		t.Errorf("3 次 10ms 延迟总耗时不应小于 30ms, 实际 %v", elapsed)
	}
}

// TestPointerClick 测试指针事件的完整 扫描→选取→移动点击 路径
func TestPointerClick(t *testing.T) {
	inj := &fakeInjector{}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{presentFrame()}}, inj)

	ev := &script.Event{
		Type:       script.EventPointer,
		ID:         "attack",
		Color:      [3]uint8{255, 255, 255},
		Action:     script.ActionShiftClick,
		DelayRange: [2]int{5, 5},
		Repeat:     2,
	}

	if err := e.ExecuteEvent(context.Background(), ev); err != nil {
		t.Fatalf("执行指针事件失败: %v", err)
	}

	if len(inj.paths) != 2 {
		t.Fatalf("repeat=2 应执行 2 次移动点击, 实际 %d", len(inj.paths))
	}
	for _, a := range inj.actions {
		if a != script.ActionShiftClick {
			t.Errorf("终结动作应为 shift_click, 实际 %s", a)
		}
	}

	// 轨迹从当前指针位置出发，终点落在色块抖动范围内
	for _, path := range inj.paths {
		if path[0].X != 0 || path[0].Y != 0 {
			t.Errorf("轨迹起点应为当前指针位置 (0,0), 实际 %v", path[0])
		}
		last := path[len(path)-1]
		if math.Abs(last.X-10) > 6 || math.Abs(last.Y-10) > 6 {
			t.Errorf("轨迹终点应落在色块附近, 实际 %v", last)
		}
	}
}

// TestSkipIfVanishedAbandonsWait 测试目标中途消失时放弃剩余等待
func TestSkipIfVanishedAbandonsWait(t *testing.T) {
	// 扫描时目标存在，首次监视轮询时已消失
	capt := &fakeCapturer{frames: []*image.RGBA{presentFrame(), absentFrame()}}
	inj := &fakeInjector{}
	e := newTestExecutor(capt, inj, WithMonitorInterval(20*time.Millisecond))

	ev := &script.Event{
		Type:           script.EventPointer,
		ID:             "loot",
		Color:          [3]uint8{255, 255, 255},
		Action:         script.ActionLeftClick,
		DelayRange:     [2]int{800, 800},
		Repeat:         1,
		SkipIfVanished: true,
	}

	started := time.Now()
	if err := e.ExecuteEvent(context.Background(), ev); err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	elapsed := time.Since(started)

	if len(inj.paths) != 1 {
		t.Errorf("应执行 1 次移动点击, 实际 %d", len(inj.paths))
	}
	if elapsed >= 400*time.Millisecond {
		t.Errorf("目标消失后应放弃剩余等待, 800ms 窗口实际耗时 %v", elapsed)
	}
}

// TestMonitorWaitsFullDelay 测试目标持续存在时等满整个延迟窗口
func TestMonitorWaitsFullDelay(t *testing.T) {
	inj := &fakeInjector{}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{presentFrame()}}, inj,
		WithMonitorInterval(10*time.Millisecond))

	ev := &script.Event{
		Type:           script.EventPointer,
		ID:             "hold",
		Color:          [3]uint8{255, 255, 255},
		Action:         script.ActionLeftClick,
		DelayRange:     [2]int{60, 60},
		Repeat:         1,
		SkipIfVanished: true,
	}

	started := time.Now()
	if err := e.ExecuteEvent(context.Background(), ev); err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	if elapsed := time.Since(started); elapsed < 60*time.Millisecond {
		t.Errorf("目标未消失时应等满延迟窗口 60ms, 实际 %v", elapsed)
	}
}

// TestNoMatchFullDelay 测试未命中且未设 skip 时等待完整延迟
func TestNoMatchFullDelay(t *testing.T) {
	inj := &fakeInjector{}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{absentFrame()}}, inj)

	ev := &script.Event{
		Type:       script.EventPointer,
		ID:         "wait",
		Color:      [3]uint8{255, 255, 255},
		Action:     script.ActionLeftClick,
		DelayRange: [2]int{60, 60},
		Repeat:     1,
	}

	started := time.Now()
	if err := e.ExecuteEvent(context.Background(), ev); err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	elapsed := time.Since(started)

	if len(inj.paths) != 0 {
		t.Errorf("未命中时不应注入任何移动, 实际 %d 次", len(inj.paths))
	}
	if elapsed < 60*time.Millisecond {
		t.Errorf("未设 skip 时应等待完整延迟 60ms, 实际 %v", elapsed)
	}
}

// TestNoMatchSkipCooldown 测试未命中且设 skip 时只做短冷却
func TestNoMatchSkipCooldown(t *testing.T) {
	inj := &fakeInjector{}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{absentFrame()}}, inj)

	ev := &script.Event{
		Type:           script.EventPointer,
		ID:             "skip",
		Color:          [3]uint8{255, 255, 255},
		Action:         script.ActionLeftClick,
		DelayRange:     [2]int{500, 500},
		Repeat:         1,
		SkipIfVanished: true,
	}

	started := time.Now()
	if err := e.ExecuteEvent(context.Background(), ev); err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	if elapsed := time.Since(started); elapsed >= 100*time.Millisecond {
		t.Errorf("未命中 + skip 应只做短冷却, 实际耗时 %v", elapsed)
	}
}

// TestUnknownActionFatal 测试未知动作类型是致命配置错误
func TestUnknownActionFatal(t *testing.T) {
	inj := &fakeInjector{}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{presentFrame()}}, inj)

	ev := &script.Event{
		Type:       script.EventPointer,
		ID:         "bad",
		Color:      [3]uint8{255, 255, 255},
		Action:     "double_click",
		DelayRange: [2]int{0, 0},
		Repeat:     1,
	}

	err := e.ExecuteEvent(context.Background(), ev)
	if err == nil {
		t.Fatal("未知动作类型应报错")
	}
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != ErrConfiguration {
		t.Errorf("应为 CONFIG 类错误, 实际: %v", err)
	}
	if len(inj.paths) != 0 {
		t.Error("配置错误时不应执行任何注入")
	}
}

// TestUnknownEventTypeFatal 测试未知事件类型是致命配置错误
func TestUnknownEventTypeFatal(t *testing.T) {
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{absentFrame()}}, &fakeInjector{})

	ev := &script.Event{Type: "scroll", ID: "bad", DelayRange: [2]int{0, 0}, Repeat: 1}

	err := e.ExecuteEvent(context.Background(), ev)
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != ErrConfiguration {
		t.Errorf("应为 CONFIG 类错误, 实际: %v", err)
	}
}

// TestInjectorFailurePropagates 测试注入失败不重试并向上传播
func TestInjectorFailurePropagates(t *testing.T) {
	inj := &fakeInjector{moveErr: errors.New("指针移动失败")}
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{presentFrame()}}, inj)

	ev := &script.Event{
		Type:       script.EventPointer,
		ID:         "attack",
		Color:      [3]uint8{255, 255, 255},
		Action:     script.ActionLeftClick,
		DelayRange: [2]int{0, 0},
		Repeat:     3,
	}

	err := e.ExecuteEvent(context.Background(), ev)
	var runErr *RunError
	if !errors.As(err, &runErr) || runErr.Kind != ErrInjector {
		t.Fatalf("应为 INJECTOR 类错误, 实际: %v", err)
	}
}

// TestContextCancelBreaksSleep 测试外部中断能立即打断等待
func TestContextCancelBreaksSleep(t *testing.T) {
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{absentFrame()}}, &fakeInjector{})

	ev := &script.Event{
		Type:       script.EventKey,
		ID:         "long",
		Key:        "f1",
		DelayRange: [2]int{5000, 5000},
		Repeat:     1,
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	err := e.ExecuteEvent(ctx, ev)
	elapsed := time.Since(started)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("取消后应返回 context.Canceled, 实际: %v", err)
	}
	if elapsed >= time.Second {
		t.Errorf("取消应立即打断 5s 等待, 实际耗时 %v", elapsed)
	}
}

// TestGuardBudgetExhausted 测试守护条件超出等待预算时终止运行
func TestGuardBudgetExhausted(t *testing.T) {
	inj := &fakeInjector{}
	// 守护颜色始终存在
	e := newTestExecutor(&fakeCapturer{frames: []*image.RGBA{presentFrame()}}, inj)

	s := &script.Script{
		Guard: &script.Guard{
			Color:     [3]uint8{255, 255, 255},
			Key:       "esc",
			BackoffMs: 10,
			MaxWaitMs: 50,
		},
		Events: []script.Event{
			{Type: script.EventKey, ID: "k", Key: "f1", DelayRange: [2]int{0, 0}, Repeat: 1},
		},
	}

	err := e.Run(context.Background(), s)
	if err == nil {
		t.Fatal("守护条件超出预算应终止运行")
	}
	if len(inj.keys) == 0 {
		t.Error("守护期间应至少执行一次缓解按键")
	}
	for _, k := range inj.keys {
		if k != "esc" {
			t.Errorf("缓解按键应为 esc, 实际 %s", k)
		}
	}
}

// TestGuardClearsThenRuns 测试守护条件消失后正常进入事件循环
func TestGuardClearsThenRuns(t *testing.T) {
	inj := &fakeInjector{}
	// 第一次扫描守护颜色存在，之后消失
	capt := &fakeCapturer{frames: []*image.RGBA{presentFrame(), absentFrame()}}
	e := newTestExecutor(capt, inj)

	s := &script.Script{
		Guard: &script.Guard{
			Color:     [3]uint8{255, 255, 255},
			Key:       "esc",
			BackoffMs: 10,
			MaxWaitMs: 5000,
		},
		Events: []script.Event{
			{Type: script.EventKey, ID: "k", Key: "f1", DelayRange: [2]int{200, 200}, Repeat: 1},
		},
	}

	if err := e.Run(context.Background(), s); err != nil {
		t.Fatalf("运行失败: %v", err)
	}

	var escs, f1s int
	for _, k := range inj.keys {
		switch k {
		case "esc":
			escs++
		case "f1":
			f1s++
		}
	}
	if escs != 1 {
		t.Errorf("守护应缓解 1 次, 实际 %d", escs)
	}
	if f1s == 0 {
		t.Error("守护消失后应执行事件序列")
	}
}
