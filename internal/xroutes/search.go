package xroutes

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xcore-net/xcore/pkg/types"
)

// Resolver 执行一次实际的"查找某个 peer 地址"的底层查询
//
// 具体的 Kademlia 网络往返由调用方注入；生产环境下这里
// 接入真正的 DHT 查询，测试与默认实现只查询本地路由表，若未命中则
// 阻塞到 ctx 被取消（代表一次真实查询"仍在进行中"）。
type Resolver interface {
	FindPeer(ctx context.Context, target types.PeerID) ([]types.Multiaddr, error)
}

// tableResolver 是未注入 Resolver 时的默认 Resolver：只查本地路由表
type tableResolver struct {
	table *RoutingTable
}

func (r *tableResolver) FindPeer(ctx context.Context, target types.PeerID) ([]types.Multiaddr, error) {
	if addrs := r.table.Addresses(target); len(addrs) > 0 {
		return addrs, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

// FindResult 是一次 peer 搜索交付给等待者的结果
type FindResult struct {
	Addrs []types.Multiaddr
	Err   error
}

// ActiveSearch 是 GetActiveSearches 的一条内省记录
type ActiveSearch struct {
	Peer      types.PeerID
	QueryID   uint64
	Waiters   int
	StartedAt time.Time
	Deadline  *time.Time
}

// searchEntry 是一个 peer 正在进行的唯一底层查询及其全部等待者
//
// 多个调用方对同一个 peer 并发调用 FindPeerAddresses 时，只触发一次
// 底层查询，全部调用方注册为该查询的等待者；查询完成后结果一次性
// 分发给每一个等待者。
type searchEntry struct {
	peer      types.PeerID
	queryID   uint64
	waiters   []chan FindResult
	startedAt time.Time
	deadline  *time.Time
	cancel    context.CancelFunc
}

// searchManager 实现 FindPeerAddresses/CancelPeerSearch/CancelAllSearches/
// GetActiveSearches 的去重、超时与取消语义。超时不是每个查询各自起一个
// 定时器，而是由调用方周期性调用 Sweep 驱动，与 xstream/xauth 的
// 清扫方式一致。
type searchManager struct {
	clock    clock.Clock
	resolver Resolver
	table    *RoutingTable
	metrics  SearchMetrics
	// onFound 在一次底层查询成功解析出地址时回调（用于发现事件）
	onFound func(peer types.PeerID, addrs []types.Multiaddr)

	mu          sync.Mutex
	nextQueryID uint64
	entries     map[types.PeerID]*searchEntry
}

// SearchMetrics 是 searchManager 可选导出的指标钩子，避免直接依赖
// internal/core/metrics 造成循环引用；Behavior 构造时用具体 Registry 填充。
type SearchMetrics struct {
	ActiveSearchesGauge func(delta int)
	ObserveLatency      func(d time.Duration)
}

func newSearchManager(table *RoutingTable, resolver Resolver, c clock.Clock, m SearchMetrics) *searchManager {
	if resolver == nil {
		resolver = &tableResolver{table: table}
	}
	if c == nil {
		c = clock.New()
	}
	return &searchManager{
		clock:    c,
		resolver: resolver,
		table:    table,
		metrics:  m,
		entries:  make(map[types.PeerID]*searchEntry),
	}
}

// Local 返回 timeout=0 时的纯本地路由表查询结果，从不发起底层查询
func (sm *searchManager) Local(peer types.PeerID) []types.Multiaddr {
	return sm.table.Addresses(peer)
}

// Register 为 peer 注册一个等待者；timeoutSecs>0 设置一个相对截止时间，
// timeoutSecs<=0 不设截止时间，等待至查询完成或显式取消。FindPeerAddresses
// 把 timeoutSecs==0 短路成 Local 查询；BootstrapToPeer 以 0 调用这里。
func (sm *searchManager) Register(peer types.PeerID, timeoutSecs int, reply chan FindResult) {
	sm.mu.Lock()
	e, ok := sm.entries[peer]
	if !ok {
		sm.nextQueryID++
		qid := sm.nextQueryID
		ctx, cancel := context.WithCancel(context.Background())
		var deadline *time.Time
		if timeoutSecs > 0 {
			d := sm.clock.Now().Add(time.Duration(timeoutSecs) * time.Second)
			deadline = &d
		}
		e = &searchEntry{
			peer:      peer,
			queryID:   qid,
			startedAt: sm.clock.Now(),
			deadline:  deadline,
			cancel:    cancel,
		}
		sm.entries[peer] = e
		if sm.metrics.ActiveSearchesGauge != nil {
			sm.metrics.ActiveSearchesGauge(1)
		}
		go sm.runQuery(ctx, e)
	}
	e.waiters = append(e.waiters, reply)
	sm.mu.Unlock()
}

func (sm *searchManager) runQuery(ctx context.Context, e *searchEntry) {
	addrs, err := sm.resolver.FindPeer(ctx, e.peer)
	if err == nil && len(addrs) > 0 {
		sm.table.Add(e.peer, addrs)
		if sm.onFound != nil {
			sm.onFound(e.peer, addrs)
		}
	}
	sm.complete(e.peer, e.queryID, FindResult{Addrs: addrs, Err: err})
}

func (sm *searchManager) complete(peer types.PeerID, queryID uint64, result FindResult) {
	sm.mu.Lock()
	e, ok := sm.entries[peer]
	if !ok || e.queryID != queryID {
		sm.mu.Unlock()
		return
	}
	delete(sm.entries, peer)
	waiters := e.waiters
	sm.mu.Unlock()

	if sm.metrics.ActiveSearchesGauge != nil {
		sm.metrics.ActiveSearchesGauge(-1)
	}
	if sm.metrics.ObserveLatency != nil {
		sm.metrics.ObserveLatency(sm.clock.Now().Sub(e.startedAt))
	}
	for _, w := range waiters {
		w <- result
	}
}

// Cancel 取消某个 peer 的在途搜索，全部等待者收到 ErrSearchCancelled
func (sm *searchManager) Cancel(peer types.PeerID, reason string) {
	sm.mu.Lock()
	e, ok := sm.entries[peer]
	if !ok {
		sm.mu.Unlock()
		return
	}
	delete(sm.entries, peer)
	waiters := e.waiters
	sm.mu.Unlock()

	if sm.metrics.ActiveSearchesGauge != nil {
		sm.metrics.ActiveSearchesGauge(-1)
	}
	e.cancel()
	result := FindResult{Err: ErrSearchCancelled}
	_ = reason // 原因既不交给等待者也不记录；等待者只区分取消/超时/成功
	for _, w := range waiters {
		w <- result
	}
}

// CancelAll 取消全部在途搜索
func (sm *searchManager) CancelAll(reason string) {
	sm.mu.Lock()
	peers := make([]types.PeerID, 0, len(sm.entries))
	for p := range sm.entries {
		peers = append(peers, p)
	}
	sm.mu.Unlock()
	for _, p := range peers {
		sm.Cancel(p, reason)
	}
}

// Sweep 检查全部设有截止时间的搜索，到期的直接以 ErrSearchTimeout 完成
// 并清理——与 xstream.Behavior.Sweep / xauth.Behavior.Sweep 同一套由
// SwarmLoop 周期性 tick 驱动的清扫模式。
func (sm *searchManager) Sweep(now time.Time) {
	sm.mu.Lock()
	var due []*searchEntry
	for peer, e := range sm.entries {
		if e.deadline != nil && !now.Before(*e.deadline) {
			due = append(due, e)
			delete(sm.entries, peer)
		}
	}
	sm.mu.Unlock()

	for _, e := range due {
		if sm.metrics.ActiveSearchesGauge != nil {
			sm.metrics.ActiveSearchesGauge(-1)
		}
		e.cancel()
		result := FindResult{Err: ErrSearchTimeout}
		for _, w := range e.waiters {
			w <- result
		}
	}
}

// GetActive 返回当前全部在途搜索的内省快照
func (sm *searchManager) GetActive() []ActiveSearch {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	out := make([]ActiveSearch, 0, len(sm.entries))
	for _, e := range sm.entries {
		out = append(out, ActiveSearch{
			Peer:      e.peer,
			QueryID:   e.queryID,
			Waiters:   len(e.waiters),
			StartedAt: e.startedAt,
			Deadline:  e.deadline,
		})
	}
	return out
}
