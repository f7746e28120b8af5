// Package types 定义 XCore 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
// 基础类型:
//   - ids.go        - PeerID, StreamID
//   - enums.go      - Direction, DiscoverySource
//   - base58.go     - Base58 编解码
//   - multiaddr.go  - Multiaddr 多地址类型与协议常量
//   - errors.go     - 公共错误定义
//   - protocol.go   - ProtocolID
//
// # 设计原则
//
//  1. 不可变性：类型创建后尽量不可修改，使用值类型
//  2. 可比较性：实现 Equal 方法，支持作为 map key
//  3. 零依赖：不依赖任何其他内部包（最底层）
//
// # 使用示例
//
//	import "github.com/xcore-net/xcore/pkg/types"
//
//	peerID, err := types.ParsePeerID("12D3KooW...")
package types
