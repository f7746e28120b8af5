package xroutes

import (
	"context"
	"sync"

	"github.com/xcore-net/xcore/pkg/types"
)

// DirectUpgrader 尝试把一条经中继的出站连接升级为直连。具体的打洞协议
// （地址交换、同步拨号）由调用方注入的实现承担；这里只编排"每条
// 中继连接尝试一次"的协作契约并报告结果。
type DirectUpgrader interface {
	Upgrade(ctx context.Context, peer types.PeerID, relayedAddr types.Multiaddr) error
}

// dcutrCoordinator 保证对每条经中继建立的出站连接只尝试一次直连升级
type dcutrCoordinator struct {
	upgrader DirectUpgrader
	emit     func(Event)

	mu       sync.Mutex
	attempted map[types.PeerID]bool
}

func newDcutrCoordinator(upgrader DirectUpgrader, emit func(Event)) *dcutrCoordinator {
	return &dcutrCoordinator{
		upgrader:  upgrader,
		emit:      emit,
		attempted: make(map[types.PeerID]bool),
	}
}

// HandleOutboundRelayedConn 在一条经中继的出站连接建立时调用；
// 对同一个 peer 只触发一次升级尝试。
func (d *dcutrCoordinator) HandleOutboundRelayedConn(peer types.PeerID, relayedAddr types.Multiaddr) {
	d.mu.Lock()
	if d.attempted[peer] {
		d.mu.Unlock()
		return
	}
	d.attempted[peer] = true
	d.mu.Unlock()

	go d.attempt(peer, relayedAddr)
}

func (d *dcutrCoordinator) attempt(peer types.PeerID, relayedAddr types.Multiaddr) {
	err := d.upgrader.Upgrade(context.Background(), peer, relayedAddr)
	if err != nil {
		d.emit(DcutrAttempt{baseEvent: baseEvent{Peer: peer}, Success: false, Reason: err.Error()})
		return
	}
	d.emit(DcutrAttempt{baseEvent: baseEvent{Peer: peer}, Success: true})
}

// Forget 清除某个 peer 的升级尝试记录，允许未来对一条新连接重新尝试一次
func (d *dcutrCoordinator) Forget(peer types.PeerID) {
	d.mu.Lock()
	delete(d.attempted, peer)
	d.mu.Unlock()
}
