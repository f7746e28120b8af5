package xstream

import (
	"sync"
	"time"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// PendingKey 标识一个未配对子流在 PendingStreamsManager 中的槽位
//
// 配对只按 (direction, peer, connection, id) 查找，忽略角色——这样到达的
// 第二个角色不同的子流才能命中同一个槽位并完成配对。
type PendingKey struct {
	Direction XStreamDirection
	Peer      types.PeerID
	Conn      swarm.ConnectionID
	ID        XStreamID
}

// PendingSubstream 是一个等待配对的子流半边
type PendingSubstream struct {
	Key       PendingKey
	Role      SubstreamRole
	Stream    host.Substream
	ArrivedAt time.Time
}

// Paired 是配对成功后产出的两个半边
type Paired struct {
	Key   PendingKey
	Main  host.Substream
	Error host.Substream
}

// PendingManager 持有全部未配对的入站/出站子流半边
//
// 对应 PendingStreamsManager：配对命中时从 map 中移除并返回
// 一对 Substream；deadline 到期时由 Sweep 清理。
type PendingManager struct {
	mu       sync.Mutex
	pending  map[PendingKey]*PendingSubstream
	deadline time.Duration
}

// NewPendingManager 创建一个 PendingManager，deadline 是未配对子流的等待期限
func NewPendingManager(deadline time.Duration) *PendingManager {
	return &PendingManager{
		pending:  make(map[PendingKey]*PendingSubstream),
		deadline: deadline,
	}
}

// Len 返回当前等待中的子流数量（用于测试与指标）
func (m *PendingManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Offer 尝试把一条新到达的子流半边与已有的等待者配对
//
// 返回值：
//   - paired != nil：配对成功，两个半边都已从管理器中移除
//   - sameRole == true：key 已存在但角色相同，属于协议错误，调用方应
//     关闭两个子流并发出 SubstreamSameRole
//   - 否则：该半边已被记为等待中
func (m *PendingManager) Offer(key PendingKey, role SubstreamRole, stream host.Substream, now time.Time) (paired *Paired, sameRole bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.pending[key]
	if !ok {
		m.pending[key] = &PendingSubstream{Key: key, Role: role, Stream: stream, ArrivedAt: now}
		return nil, false
	}

	if existing.Role == role {
		return nil, true
	}

	delete(m.pending, key)
	if role == RoleMain {
		return &Paired{Key: key, Main: stream, Error: existing.Stream}, false
	}
	return &Paired{Key: key, Main: existing.Stream, Error: stream}, false
}

// Sweep 移除全部超过 deadline 的等待项并返回它们，供调用方关闭并发事件
func (m *PendingManager) Sweep(now time.Time) []*PendingSubstream {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []*PendingSubstream
	for key, p := range m.pending {
		if now.Sub(p.ArrivedAt) >= m.deadline {
			expired = append(expired, p)
			delete(m.pending, key)
		}
	}
	return expired
}
