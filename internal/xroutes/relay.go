package xroutes

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xcore-net/xcore/pkg/types"
)

// Reserver 执行一次对给定中继地址的预留握手，返回预留的到期时间。
// 具体的 relay-client 线路协议由调用方注入；生产环境在这里接上真正的
// 中继协议，测试用假实现直接返回一个到期时间或错误。
type Reserver interface {
	Reserve(ctx context.Context, relayAddr types.Multiaddr) (expiresAt time.Time, err error)
}

// reservation 是一条活跃的中继预留
type reservation struct {
	relayAddr types.Multiaddr
	relayPeer types.PeerID
	expiresAt time.Time
}

// relayClient 管理 ListenViaRelay 的自动预留，按固定次数、指数退避重试：
// 默认 3 次重试，第 n 次重试前等待 backoff * 2^(n-1)。
type relayClient struct {
	reserver Reserver
	clock    clock.Clock
	retries  int
	backoff  time.Duration
	emit     func(Event)

	mu           sync.Mutex
	reservations map[types.PeerID]*reservation
}

func newRelayClient(reserver Reserver, c clock.Clock, retries int, backoff time.Duration, emit func(Event)) *relayClient {
	if c == nil {
		c = clock.New()
	}
	return &relayClient{
		reserver:     reserver,
		clock:        c,
		retries:      retries,
		backoff:      backoff,
		emit:         emit,
		reservations: make(map[types.PeerID]*reservation),
	}
}

// ListenViaRelay 对 relayAddr 发起（带重试的）中继预留；成功时返回
// 节点新的可监听地址 <relay-addr>/p2p-circuit。
func (rc *relayClient) ListenViaRelay(ctx context.Context, relayAddr types.Multiaddr, relayPeer types.PeerID) (types.Multiaddr, error) {
	if relayAddr == nil {
		return nil, ErrNoRelayAddr
	}

	attempts := 0
	var lastErr error
	for attempts <= rc.retries {
		if attempts > 0 {
			wait := rc.backoff * time.Duration(1<<(attempts-1))
			t := rc.clock.Timer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil, ctx.Err()
			case <-t.C:
			}
		}
		expiresAt, err := rc.reserver.Reserve(ctx, relayAddr)
		attempts++
		if err == nil {
			rc.mu.Lock()
			rc.reservations[relayPeer] = &reservation{relayAddr: relayAddr, relayPeer: relayPeer, expiresAt: expiresAt}
			rc.mu.Unlock()

			circuit, cerr := types.ParseMultiaddr(relayAddr.String() + "/" + types.RelayAddrProtocol)
			if cerr != nil {
				return nil, cerr
			}
			return circuit, nil
		}
		lastErr = err
	}

	rc.emit(ReservationFailed{baseEvent: baseEvent{Peer: relayPeer}, Attempts: attempts})
	if lastErr == nil {
		lastErr = ErrReservationExhausted
	}
	return nil, lastErr
}

// Sweep 检查全部活跃预留是否已经过期，过期的发出 ReservationExpired 并移除
func (rc *relayClient) Sweep(now time.Time) {
	rc.mu.Lock()
	var expired []*reservation
	for peer, r := range rc.reservations {
		if !now.Before(r.expiresAt) {
			expired = append(expired, r)
			delete(rc.reservations, peer)
		}
	}
	rc.mu.Unlock()

	for _, r := range expired {
		rc.emit(ReservationExpired{baseEvent: baseEvent{Peer: r.relayPeer}, RelayAddr: r.relayAddr})
	}
}

// ActiveReservations 返回当前持有的预留中继 peer 列表，供内省/测试使用
func (rc *relayClient) ActiveReservations() []types.PeerID {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	out := make([]types.PeerID, 0, len(rc.reservations))
	for p := range rc.reservations {
		out = append(out, p)
	}
	return out
}
