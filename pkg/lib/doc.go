// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - crypto: 密码学原语（密钥、签名、PeerID）
//   - multiaddr: 多地址格式解析
//   - log: 日志封装
//
// # 与 pkg/ 其他目录的关系
//
// pkg/ 目录包含两类内容：
//
//   - types/: 公共类型定义（架构核心）
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import (
//	    "github.com/xcore-net/xcore/pkg/lib/crypto"
//	    "github.com/xcore-net/xcore/pkg/lib/log"
//	    "github.com/xcore-net/xcore/pkg/lib/multiaddr"
//	)
package lib
