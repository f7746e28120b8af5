// Package config 提供统一的配置管理
//
// 顶层 Config 聚合四个核心组件各自的配置，统一采用
// DefaultXConfig() + Validate() + WithX(...) 的流式写法（见 identity.go）。
package config

import "fmt"

// Config 是节点的顶层配置
type Config struct {
	Identity  IdentityConfig  `json:"identity"`
	XStream   XStreamConfig   `json:"xstream"`
	XAuth     XAuthConfig     `json:"xauth"`
	XRoutes   XRoutesConfig   `json:"xroutes"`
	SwarmLoop SwarmLoopConfig `json:"swarm_loop"`
}

// DefaultConfig 返回每个子配置均为默认值的顶层配置
func DefaultConfig() Config {
	return Config{
		Identity:  DefaultIdentityConfig(),
		XStream:   DefaultXStreamConfig(),
		XAuth:     DefaultXAuthConfig(),
		XRoutes:   DefaultXRoutesConfig(),
		SwarmLoop: DefaultSwarmLoopConfig(),
	}
}

// Validate 依次验证每个子配置，返回第一个错误
func (c Config) Validate() error {
	if err := c.Identity.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.XStream.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.XAuth.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.XRoutes.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.SwarmLoop.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// WithIdentity 设置身份配置
func (c Config) WithIdentity(v IdentityConfig) Config {
	c.Identity = v
	return c
}

// WithXStream 设置 XStream 配置
func (c Config) WithXStream(v XStreamConfig) Config {
	c.XStream = v
	return c
}

// WithXAuth 设置 XAuth 配置
func (c Config) WithXAuth(v XAuthConfig) Config {
	c.XAuth = v
	return c
}

// WithXRoutes 设置 XRoutes 配置
func (c Config) WithXRoutes(v XRoutesConfig) Config {
	c.XRoutes = v
	return c
}

// WithSwarmLoop 设置 SwarmLoop 配置
func (c Config) WithSwarmLoop(v SwarmLoopConfig) Config {
	c.SwarmLoop = v
	return c
}
