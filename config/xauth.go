package config

import (
	"errors"
	"time"
)

// XAuthConfig 配置 PoR 互认证行为。
type XAuthConfig struct {
	// AuthTimeout 单个方向从 InProgress 起算的超时
	AuthTimeout Duration `json:"auth_timeout"`

	// SweepInterval 超时检查 tick 的间隔。只参与 Validate；NewNode 不读取它，
	// 超时检查实际按 SwarmLoopConfig.SweepInterval 的节拍运行
	SweepInterval Duration `json:"sweep_interval"`

	// AutoInitiate 连接建立后是否自动发起己方的出站 PoR 请求；
	// 为 false 时仅在显式命令触发后才发起（manual 模式）
	AutoInitiate bool `json:"auto_initiate"`

	// ApproveViaEvent 为 true 时已验证的 PoR 需要等待 VerifyPorRequest
	// 事件的运营方回执；为 false 等价于 AutoApprove
	ApproveViaEvent bool `json:"approve_via_event"`

	// MaxMetadataEntries 元数据 map 的最大条目数，防止恶意对端发送无界 CBOR 负载
	MaxMetadataEntries int `json:"max_metadata_entries"`

	// MaxMetadataValueLen 元数据单个 value 的最大字节长度
	MaxMetadataValueLen int `json:"max_metadata_value_len"`

	// HandshakeTimeout 单次 PoR 请求/响应交换所在子流的打开与读写截止时长
	// （连接确认用的 2 字节握手帧使用 host.DefaultHandshakeTimeout，不受此项影响）
	HandshakeTimeout Duration `json:"handshake_timeout"`
}

// DefaultXAuthConfig 返回默认 XAuth 配置
func DefaultXAuthConfig() XAuthConfig {
	return XAuthConfig{
		AuthTimeout:         Duration(5 * time.Second),
		SweepInterval:       Duration(1 * time.Second),
		AutoInitiate:        true,
		ApproveViaEvent:     false,
		MaxMetadataEntries:  32,
		MaxMetadataValueLen: 256,
		HandshakeTimeout:    Duration(5 * time.Second),
	}
}

// Validate 验证 XAuth 配置
func (c XAuthConfig) Validate() error {
	if c.AuthTimeout.Duration() <= 0 {
		return errors.New("xauth: auth_timeout must be positive")
	}
	if c.SweepInterval.Duration() <= 0 {
		return errors.New("xauth: sweep_interval must be positive")
	}
	if c.MaxMetadataEntries <= 0 {
		return errors.New("xauth: max_metadata_entries must be positive")
	}
	if c.MaxMetadataValueLen <= 0 {
		return errors.New("xauth: max_metadata_value_len must be positive")
	}
	if c.HandshakeTimeout.Duration() <= 0 {
		return errors.New("xauth: handshake_timeout must be positive")
	}
	return nil
}

// WithAuthTimeout 设置单方向认证超时
func (c XAuthConfig) WithAuthTimeout(d Duration) XAuthConfig {
	c.AuthTimeout = d
	return c
}

// WithAutoInitiate 设置是否自动发起出站 PoR 请求
func (c XAuthConfig) WithAutoInitiate(v bool) XAuthConfig {
	c.AutoInitiate = v
	return c
}

// WithApproveViaEvent 设置 PoR 审批是否走事件策略
func (c XAuthConfig) WithApproveViaEvent(v bool) XAuthConfig {
	c.ApproveViaEvent = v
	return c
}
