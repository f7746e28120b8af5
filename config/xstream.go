package config

import (
	"errors"
	"time"
)

// XStreamConfig 配置 XStream 行为：子流配对、超时与入站审批策略。
type XStreamConfig struct {
	// PendingTimeout 未配对子流的最长等待时间，超过后关闭并发出
	// SubstreamTimeoutError
	PendingTimeout Duration `json:"pending_timeout"`

	// HeaderReadTimeout 读取 17 字节 XStreamHeader 的超时
	HeaderReadTimeout Duration `json:"header_read_timeout"`

	// SweepInterval 清理未配对子流的周期性 tick 间隔。只参与 Validate；
	// NewNode 不读取它，清理实际按 SwarmLoopConfig.SweepInterval 的节拍运行
	SweepInterval Duration `json:"sweep_interval"`

	// ApproveViaEvent 为 true 时入站流需要先发出 IncomingStreamRequest
	// 事件并等待一次性决策；为 false 时等价于 AutoApprove
	ApproveViaEvent bool `json:"approve_via_event"`

	// ReadBufferSize Read() 预分配的缓冲区容量，避免零长度缓冲导致的
	// 虚假 EOF
	ReadBufferSize int `json:"read_buffer_size"`
}

// DefaultXStreamConfig 返回默认 XStream 配置
func DefaultXStreamConfig() XStreamConfig {
	return XStreamConfig{
		PendingTimeout:    Duration(30 * time.Second),
		HeaderReadTimeout: Duration(10 * time.Second),
		SweepInterval:     Duration(1 * time.Second),
		ApproveViaEvent:   false,
		ReadBufferSize:    4096,
	}
}

// Validate 验证 XStream 配置
func (c XStreamConfig) Validate() error {
	if c.PendingTimeout.Duration() <= 0 {
		return errors.New("xstream: pending_timeout must be positive")
	}
	if c.HeaderReadTimeout.Duration() <= 0 {
		return errors.New("xstream: header_read_timeout must be positive")
	}
	if c.SweepInterval.Duration() <= 0 {
		return errors.New("xstream: sweep_interval must be positive")
	}
	if c.ReadBufferSize <= 0 {
		return errors.New("xstream: read_buffer_size must be positive")
	}
	return nil
}

// WithPendingTimeout 设置未配对子流超时
func (c XStreamConfig) WithPendingTimeout(d Duration) XStreamConfig {
	c.PendingTimeout = d
	return c
}

// WithApproveViaEvent 设置是否对入站流走事件审批策略
func (c XStreamConfig) WithApproveViaEvent(v bool) XStreamConfig {
	c.ApproveViaEvent = v
	return c
}
