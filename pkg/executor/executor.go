// Package executor 驱动 扫描→选取→移动点击→监视 的事件执行循环
package executor

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/zoeyai/colorbot/internal/logger"
	"github.com/zoeyai/colorbot/pkg/config"
	"github.com/zoeyai/colorbot/pkg/input"
	"github.com/zoeyai/colorbot/pkg/motion"
	"github.com/zoeyai/colorbot/pkg/script"
	"github.com/zoeyai/colorbot/pkg/vision"
)

// 默认监视与冷却参数
const (
	// DefaultMonitorInterval 监视阶段的屏幕轮询间隔
	DefaultMonitorInterval = 100 * time.Millisecond
	// 未命中/目标消失后的短随机冷却区间
	defaultSkipCooldownMin = 150 * time.Millisecond
	defaultSkipCooldownMax = 400 * time.Millisecond
)

// Executor 事件执行器。
// 单逻辑线程：感知、选取、合成、注入顺序执行，阻塞休眠是唯一挂起点。
type Executor struct {
	scanner  *vision.Scanner
	selector *vision.Selector
	synth    *motion.Synthesizer
	injector input.Injector
	cfg      *config.BotConfig
	rng      *rand.Rand

	monitorInterval time.Duration
	skipCooldownMin time.Duration
	skipCooldownMax time.Duration
}

// Option 配置选项函数类型
type Option func(*Executor)

// WithMonitorInterval 设置监视阶段的轮询间隔
func WithMonitorInterval(d time.Duration) Option {
	return func(e *Executor) {
		e.monitorInterval = d
	}
}

// WithSkipCooldown 设置未命中/目标消失后的冷却区间
func WithSkipCooldown(min, max time.Duration) Option {
	return func(e *Executor) {
		e.skipCooldownMin = min
		e.skipCooldownMax = max
	}
}

// New 创建事件执行器
func New(scanner *vision.Scanner, selector *vision.Selector, synth *motion.Synthesizer,
	injector input.Injector, cfg *config.BotConfig, rng *rand.Rand, opts ...Option) *Executor {
	e := &Executor{
		scanner:         scanner,
		selector:        selector,
		synth:           synth,
		injector:        injector,
		cfg:             cfg,
		rng:             rng,
		monitorInterval: DefaultMonitorInterval,
		skipCooldownMin: defaultSkipCooldownMin,
		skipCooldownMax: defaultSkipCooldownMax,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run 先评估守护条件，然后循环执行完整事件序列直到超过截止时间。
// 截止时间只在两轮之间检查，进行中的一轮总是完整执行。
func (e *Executor) Run(ctx context.Context, s *script.Script) error {
	if s.Guard != nil {
		if err := e.waitGuard(ctx, s.Guard); err != nil {
			return err
		}
	}

	deadline := time.Now().Add(time.Duration(e.cfg.RuntimeSeconds) * time.Second)
	pass := 0
	for time.Now().Before(deadline) {
		pass++
		logger.Debug("第 %d 轮事件序列开始", pass)
		for i := range s.Events {
			if err := e.ExecuteEvent(ctx, &s.Events[i]); err != nil {
				return err
			}
		}
	}
	logger.Info("达到运行截止时间，共执行 %d 轮", pass)
	return nil
}

// waitGuard 等待非预期状态消失：守护颜色存在时按键缓解并退避，
// 超出等待预算时终止运行。
func (e *Executor) waitGuard(ctx context.Context, g *script.Guard) error {
	sig := vision.NewSignature(g.Color[0], g.Color[1], g.Color[2])
	backoff := time.Duration(g.BackoffMs) * time.Millisecond
	budget := time.Duration(g.MaxWaitMs) * time.Millisecond
	start := time.Now()

	for {
		result, err := e.scanner.Scan(sig)
		if err != nil {
			return newRunError(ErrCapture, err)
		}
		if len(result) == 0 {
			return nil
		}
		if time.Since(start) >= budget {
			return fmt.Errorf("守护条件在 %v 内未消失，终止运行", budget)
		}

		logger.Warn("检测到非预期状态，按 %s 缓解后退避 %v", g.Key, backoff)
		if err := e.injector.PressKey(g.Key); err != nil {
			return newRunError(ErrInjector, err)
		}
		if err := sleepCtx(ctx, backoff); err != nil {
			return err
		}
	}
}

// ExecuteEvent 按事件的 repeat 次数独立执行（每次重新扫描、重新抽取延迟）
func (e *Executor) ExecuteEvent(ctx context.Context, ev *script.Event) error {
	switch ev.Type {
	case script.EventPointer:
		return e.executePointer(ctx, ev)
	case script.EventKey:
		return e.executeKey(ctx, ev)
	default:
		return newRunError(ErrConfiguration, fmt.Errorf("未知的事件类型: %s", ev.Type))
	}
}

// executePointer 执行指针事件的全部尝试
func (e *Executor) executePointer(ctx context.Context, ev *script.Event) error {
	if !ev.Action.Valid() {
		return newRunError(ErrConfiguration, fmt.Errorf("未知的动作类型: %s", ev.Action))
	}

	sig := vision.NewSignature(ev.Color[0], ev.Color[1], ev.Color[2])
	for attempt := 1; attempt <= ev.Repeat; attempt++ {
		if err := e.pointerAttempt(ctx, ev, sig, attempt); err != nil {
			return err
		}
	}
	return nil
}

// pointerAttempt 单次尝试：扫描→选取→移动点击→监视
func (e *Executor) pointerAttempt(ctx context.Context, ev *script.Event, sig vision.Signature, attempt int) error {
	started := time.Now()

	result, err := e.scanner.Scan(sig)
	if err != nil {
		return newRunError(ErrCapture, err)
	}
	delay := e.drawDelay(ev)

	// 未命中是瞬时状况，按退避流程消化，不算错误
	if len(result) == 0 {
		if ev.SkipIfVanished {
			logger.Debug("[%s] 第 %d 次尝试未命中，短冷却后继续", ev.ID, attempt)
			return e.skipCooldown(ctx)
		}
		logger.Debug("[%s] 第 %d 次尝试未命中，等待完整延迟 %v", ev.ID, attempt, delay)
		return sleepCtx(ctx, delay)
	}

	target, ok := e.selector.Select(result)
	if !ok {
		return e.skipCooldown(ctx)
	}

	curX, curY, err := e.injector.Position()
	if err != nil {
		return newRunError(ErrInjector, err)
	}

	curve := e.synth.Curve(motion.Point{X: float64(curX), Y: float64(curY)}, target, e.cfg.MouseDeviation)
	path := motion.SamplePath(curve, e.cfg.MouseSpeed)

	logger.Debug("[%s] 命中 %d 处，目标 (%.0f, %.0f)，采样 %d 点", ev.ID, len(result), target.X, target.Y, len(path))
	if err := e.injector.MoveAlong(path, ev.Action); err != nil {
		return newRunError(ErrInjector, err)
	}

	if err := e.monitor(ctx, ev, sig, delay); err != nil {
		return err
	}
	logger.LogAttempt(ev.ID, attempt, "DONE", time.Since(started))
	return nil
}

// monitor 在本次尝试的延迟窗口内等待。
// skip_if_vanished 时按固定间隔轮询屏幕，签名中途消失则放弃剩余等待，
// 短冷却后进入下一次尝试——这是取消路径，不是错误。
func (e *Executor) monitor(ctx context.Context, ev *script.Event, sig vision.Signature, total time.Duration) error {
	if !ev.SkipIfVanished {
		return sleepCtx(ctx, total)
	}

	deadline := time.Now().Add(total)
	for {
		remain := time.Until(deadline)
		if remain <= 0 {
			return nil
		}
		wait := e.monitorInterval
		if remain < wait {
			wait = remain
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}

		result, err := e.scanner.Scan(sig)
		if err != nil {
			return newRunError(ErrCapture, err)
		}
		if len(result) == 0 {
			logger.Debug("[%s] 目标已消失，放弃剩余 %v 等待", ev.ID, time.Until(deadline))
			return e.skipCooldown(ctx)
		}
	}
}

// executeKey 执行按键事件：按键→抽取延迟→休眠，重复 repeat 次
func (e *Executor) executeKey(ctx context.Context, ev *script.Event) error {
	for attempt := 1; attempt <= ev.Repeat; attempt++ {
		if err := e.injector.PressKey(ev.Key); err != nil {
			return newRunError(ErrInjector, err)
		}

		delay := e.drawDelay(ev)
		logger.Debug("[%s] 按键 %s，等待 %v", ev.ID, ev.Key, delay)
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

// drawDelay 在事件延迟区间内均匀抽取一次延迟
func (e *Executor) drawDelay(ev *script.Event) time.Duration {
	min, max := ev.DelayRange[0], ev.DelayRange[1]
	if max <= min {
		return time.Duration(min) * time.Millisecond
	}
	return time.Duration(min+e.rng.Intn(max-min+1)) * time.Millisecond
}

// skipCooldown 短随机冷却
func (e *Executor) skipCooldown(ctx context.Context) error {
	d := e.skipCooldownMin
	if span := e.skipCooldownMax - e.skipCooldownMin; span > 0 {
		d += time.Duration(e.rng.Int63n(int64(span)))
	}
	return sleepCtx(ctx, d)
}

// sleepCtx 可被取消的休眠，外部中断能立即打断等待
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
