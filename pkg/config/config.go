// Package config 提供运行配置及其本地持久化
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// BotConfig 运行配置
type BotConfig struct {
	// ScriptPath 脚本文件路径
	ScriptPath string `json:"script_path"`
	// RuntimeSeconds 运行总时长（秒）
	RuntimeSeconds int `json:"runtime_seconds"`
	// MouseDeviation 鼠标轨迹偏移强度 (0-100)
	MouseDeviation int `json:"mouse_deviation"`
	// MouseSpeed 鼠标速度 (1-10，越大采样点越少、移动越快)
	MouseSpeed int `json:"mouse_speed"`
	// Debug 是否启用调试日志
	Debug bool `json:"debug"`
}

// DefaultBotConfig 默认运行配置
func DefaultBotConfig() *BotConfig {
	return &BotConfig{
		ScriptPath:     "",
		RuntimeSeconds: 60,
		MouseDeviation: 10,
		MouseSpeed:     3,
		Debug:          false,
	}
}

// Validate 校验配置。缺失必要参数时报错，数值参数收敛到合法区间。
func (c *BotConfig) Validate() error {
	if c.ScriptPath == "" {
		return fmt.Errorf("缺少脚本路径")
	}
	if c.RuntimeSeconds <= 0 {
		return fmt.Errorf("运行时长必须大于 0")
	}

	if c.MouseDeviation < 0 {
		c.MouseDeviation = 0
	}
	if c.MouseDeviation > 100 {
		c.MouseDeviation = 100
	}
	if c.MouseSpeed < 1 {
		c.MouseSpeed = 1
	}
	if c.MouseSpeed > 10 {
		c.MouseSpeed = 10
	}
	return nil
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器，配置保存在 ~/.colorbot 下
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	configDir := filepath.Join(homeDir, ".colorbot")
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.json"),
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，文件不存在时返回默认配置
func (m *Manager) Load() (*BotConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return DefaultBotConfig(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return DefaultBotConfig(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config BotConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return DefaultBotConfig(), fmt.Errorf("解析配置文件失败: %w", err)
	}
	return &config, nil
}

// Save 保存配置
func (m *Manager) Save(config *BotConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}
	return nil
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*BotConfig, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *BotConfig) error {
	return defaultManager.Save(config)
}
