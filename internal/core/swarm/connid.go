// Package swarm 定义进程内连接标识与监控辅助类型
//
// Swarm 本身（拨号、监听、维护 (peer, connection) 映射）由
// internal/core/host 实现；本包只持有与具体传输无关的值类型，
// 供 host、xstream、xauth、xroutes、swarmloop 共同依赖，避免循环引用。
package swarm

import "sync/atomic"

// ConnectionID 进程内唯一标识一条到某个 peer 的传输连接
//
// 同一个 peer 可能同时持有多条连接，因此 ConnectionID 而非 PeerID
// 才是 (peer, connection) 记录的键的一部分。
type ConnectionID uint64

// generator 是一个无锁的单调递增计数器
var generator atomic.Uint64

// NextConnectionID 分配一个新的、单调递增的 ConnectionID
func NextConnectionID() ConnectionID {
	return ConnectionID(generator.Add(1))
}
