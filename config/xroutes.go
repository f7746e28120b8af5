package config

import (
	"errors"
	"time"
)

// XRoutesConfig 配置发现与可选的 NAT 穿越子行为组合。
type XRoutesConfig struct {
	// EnableMdns 启动时是否挂载本地多播发现
	EnableMdns bool `json:"enable_mdns"`

	// EnableKad 启动时是否挂载 Kademlia
	EnableKad bool `json:"enable_kad"`

	// KadMode 初始 DHT 模式："client" | "server" | "auto"
	KadMode string `json:"kad_mode"`

	// KadBucketSize 每个 k-bucket 的容量
	KadBucketSize int `json:"kad_bucket_size"`

	// MdnsServiceTag mDNS 服务发现使用的 PTR 记录服务名
	MdnsServiceTag string `json:"mdns_service_tag"`

	// MdnsInterval 周期性 mDNS 查询广播的间隔
	MdnsInterval Duration `json:"mdns_interval"`

	// SearchSweepInterval peer 搜索等待者清理 tick 的间隔。只参与 Validate；
	// NewNode 不读取它，清理实际按 SwarmLoopConfig.SweepInterval 的节拍运行
	SearchSweepInterval Duration `json:"search_sweep_interval"`

	// EnableRelayClient 是否启用中继客户端（可选 NAT 穿越集成面）
	EnableRelayClient bool `json:"enable_relay_client"`

	// RelayReservationRetries 中继预留失败后的重试次数
	RelayReservationRetries int `json:"relay_reservation_retries"`

	// RelayReservationBackoff 退避基数（第 n 次重试等待 backoff * 2^(n-1)）
	RelayReservationBackoff Duration `json:"relay_reservation_backoff"`

	// EnableDcutr 是否启用打洞协作（仅集成面，协议本身不在范围内）
	EnableDcutr bool `json:"enable_dcutr"`

	// EnableAutonat 是否启用被动可达性探测
	EnableAutonat bool `json:"enable_autonat"`

	// AutonatProbeInterval 作为客户端时探测已配置服务端的周期
	AutonatProbeInterval Duration `json:"autonat_probe_interval"`
}

// DefaultXRoutesConfig 返回默认 XRoutes 配置
func DefaultXRoutesConfig() XRoutesConfig {
	return XRoutesConfig{
		EnableMdns:              false,
		EnableKad:               false,
		KadMode:                 "auto",
		KadBucketSize:           20,
		MdnsServiceTag:          "_xcore-discovery._udp",
		MdnsInterval:            Duration(10 * time.Second),
		SearchSweepInterval:     Duration(1 * time.Second),
		EnableRelayClient:       false,
		RelayReservationRetries: 3,
		RelayReservationBackoff: Duration(10 * time.Second),
		EnableDcutr:             false,
		EnableAutonat:           false,
		AutonatProbeInterval:    Duration(30 * time.Second),
	}
}

// Validate 验证 XRoutes 配置
func (c XRoutesConfig) Validate() error {
	switch c.KadMode {
	case "client", "server", "auto":
	default:
		return errors.New("xroutes: kad_mode must be one of client, server, auto")
	}
	if c.KadBucketSize <= 0 {
		return errors.New("xroutes: kad_bucket_size must be positive")
	}
	if c.MdnsInterval.Duration() <= 0 {
		return errors.New("xroutes: mdns_interval must be positive")
	}
	if c.SearchSweepInterval.Duration() <= 0 {
		return errors.New("xroutes: search_sweep_interval must be positive")
	}
	if c.RelayReservationRetries < 0 {
		return errors.New("xroutes: relay_reservation_retries must be non-negative")
	}
	return nil
}

// WithKadMode 设置初始 DHT 模式
func (c XRoutesConfig) WithKadMode(mode string) XRoutesConfig {
	c.KadMode = mode
	return c
}

// WithMdns 设置是否启用 mDNS
func (c XRoutesConfig) WithMdns(enable bool) XRoutesConfig {
	c.EnableMdns = enable
	return c
}

// WithKad 设置是否启用 Kademlia
func (c XRoutesConfig) WithKad(enable bool) XRoutesConfig {
	c.EnableKad = enable
	return c
}
