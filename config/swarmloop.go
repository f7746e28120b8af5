package config

import (
	"errors"
	"time"
)

// SwarmLoopConfig 配置命令/事件平面（CommandChannel/EventChannel）。
type SwarmLoopConfig struct {
	// ChannelCapacity 命令通道与广播事件通道的默认容量
	ChannelCapacity int `json:"channel_capacity"`

	// SweepInterval 驱动 XStream/XAuth/XRoutes 周期性超时检查的 tick 间隔。
	// 未规定具体节拍，本实现选择 500ms
	SweepInterval Duration `json:"sweep_interval"`
}

// DefaultSwarmLoopConfig 返回默认 SwarmLoop 配置
func DefaultSwarmLoopConfig() SwarmLoopConfig {
	return SwarmLoopConfig{
		ChannelCapacity: 32,
		SweepInterval:   Duration(500 * time.Millisecond),
	}
}

// Validate 验证 SwarmLoop 配置
func (c SwarmLoopConfig) Validate() error {
	if c.ChannelCapacity <= 0 {
		return errors.New("swarmloop: channel_capacity must be positive")
	}
	if c.SweepInterval.Duration() <= 0 {
		return errors.New("swarmloop: sweep_interval must be positive")
	}
	return nil
}

// WithChannelCapacity 设置命令/事件通道容量
func (c SwarmLoopConfig) WithChannelCapacity(n int) SwarmLoopConfig {
	c.ChannelCapacity = n
	return c
}

// WithSweepInterval 设置周期性 tick 间隔
func (c SwarmLoopConfig) WithSweepInterval(d Duration) SwarmLoopConfig {
	c.SweepInterval = d
	return c
}
