package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/zoeyai/colorbot/internal/logger"
	"github.com/zoeyai/colorbot/pkg/config"
	"github.com/zoeyai/colorbot/pkg/executor"
	"github.com/zoeyai/colorbot/pkg/input"
	"github.com/zoeyai/colorbot/pkg/motion"
	"github.com/zoeyai/colorbot/pkg/script"
	"github.com/zoeyai/colorbot/pkg/vision"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		scriptPath  = flag.String("script", "", "脚本文件路径 (JSON)")
		runtimeSecs = flag.Int("runtime", 0, "运行总时长（秒）")
		deviation   = flag.Int("deviation", -1, "鼠标轨迹偏移强度 (0-100)")
		speed       = flag.Int("speed", 0, "鼠标速度 (1-10，越大越快)")
		debug       = flag.Bool("debug", false, "启用调试日志")
		saveConfig  = flag.Bool("save", false, "保存配置到本地")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("[WARN] 加载配置失败: %v\n", err)
	}

	// 命令行参数优先级高于配置文件
	if *scriptPath != "" {
		cfg.ScriptPath = *scriptPath
	}
	if *runtimeSecs > 0 {
		cfg.RuntimeSeconds = *runtimeSecs
	}
	if *deviation >= 0 {
		cfg.MouseDeviation = *deviation
	}
	if *speed > 0 {
		cfg.MouseSpeed = *speed
	}
	if *debug {
		cfg.Debug = true
	}

	// 验证必要参数
	if err := cfg.Validate(); err != nil {
		fmt.Printf("[ERROR] 配置非法: %v\n", err)
		printHelp()
		os.Exit(1)
	}

	// 保存配置
	if *saveConfig {
		if err := config.Save(cfg); err != nil {
			fmt.Printf("[WARN] 保存配置失败: %v\n", err)
		} else {
			fmt.Printf("[INFO] 配置已保存到 %s\n", config.GetDefaultManager().GetConfigFile())
		}
	}

	if cfg.Debug {
		logger.Default().SetLevel(logger.DEBUG)
	}

	// 打印启动信息
	fmt.Println("========================================")
	fmt.Printf("  Colorbot v%s\n", Version)
	fmt.Println("========================================")
	fmt.Printf("脚本: %s\n", cfg.ScriptPath)
	fmt.Printf("运行时长: %d 秒 | 偏移: %d | 速度: %d\n", cfg.RuntimeSeconds, cfg.MouseDeviation, cfg.MouseSpeed)
	fmt.Println()

	if cfg.Debug {
		printHostInfo()
	}

	// 加载脚本
	s, err := script.Load(cfg.ScriptPath)
	if err != nil {
		logger.Error("加载脚本失败: %v", err)
		os.Exit(1)
	}
	logger.Info("脚本加载成功，共 %d 个事件", len(s.Events))

	// 打开主显示器（失败是致命错误）
	capturer, err := vision.NewDisplayCapturer()
	if err != nil {
		logger.Error("打开显示器失败: %v", err)
		os.Exit(1)
	}
	w, h := capturer.Bounds()
	logger.Info("主显示器: %dx%d", w, h)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	exec := executor.New(
		vision.NewScanner(capturer),
		vision.NewSelector(rng),
		motion.NewSynthesizer(rng),
		input.NewRobot(),
		cfg,
		rng,
	)

	// Ctrl+C / SIGTERM 取消运行，可打断任何休眠
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("开始运行，按 Ctrl+C 退出")
	if err := exec.Run(ctx, s); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("收到中断信号，已退出")
			return
		}
		logger.Error("运行终止: %v", err)
		os.Exit(1)
	}
	logger.Info("运行结束")
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Colorbot v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Colorbot - 基于颜色识别的屏幕自动化工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  colorbot [选项]")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -script string     脚本文件路径 (JSON)")
	fmt.Println("  -runtime int       运行总时长（秒）")
	fmt.Println("  -deviation int     鼠标轨迹偏移强度 (0-100)")
	fmt.Println("  -speed int         鼠标速度 (1-10，越大越快)")
	fmt.Println("  -debug             启用调试日志")
	fmt.Println("  -save              保存配置到本地")
	fmt.Println("  -version           显示版本信息")
	fmt.Println("  -help              显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 运行脚本 10 分钟")
	fmt.Println("  colorbot -script bot.json -runtime 600")
	fmt.Println()
	fmt.Println("  # 更大的轨迹偏移和更快的移动速度")
	fmt.Println("  colorbot -script bot.json -runtime 600 -deviation 30 -speed 5")
	fmt.Println()
	fmt.Printf("配置文件位置: %s\n", config.GetDefaultManager().GetConfigFile())
}

// printHostInfo 打印主机信息（调试模式）
func printHostInfo() {
	if count, err := cpu.Counts(true); err == nil {
		logger.Debug("CPU 逻辑核心数: %d", count)
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		logger.Debug("内存: %.1f GB / 已用 %.1f%%", float64(vm.Total)/1024/1024/1024, vm.UsedPercent)
	}
}
