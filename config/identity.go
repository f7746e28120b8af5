// Package config 提供统一的配置管理
package config

import "errors"

// IdentityConfig 身份配置
//
// XCore 的身份密钥仅支持 Ed25519（签名方案对核心不透明，但默认
// 实现固定为 Ed25519，见 pkg/lib/crypto）。密钥的生成与文件持久化由调用方
// 负责（核心不持久化身份），这里只保留构造节点身份所需的最小参数。
type IdentityConfig struct {
	// SeedFile 32 字节 Ed25519 种子文件路径
	// 为空时在内存中生成临时身份
	SeedFile string `json:"seed_file"`

	// AutoGenerate 当 SeedFile 不存在时是否自动生成
	AutoGenerate bool `json:"auto_generate"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		SeedFile:     "",
		AutoGenerate: true,
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if c.SeedFile == "" && !c.AutoGenerate {
		return errors.New("identity: seed_file is empty and auto_generate is disabled")
	}
	return nil
}

// WithSeedFile 设置种子文件路径
func (c IdentityConfig) WithSeedFile(path string) IdentityConfig {
	c.SeedFile = path
	return c
}

// WithAutoGenerate 设置是否自动生成身份
func (c IdentityConfig) WithAutoGenerate(auto bool) IdentityConfig {
	c.AutoGenerate = auto
	return c
}
