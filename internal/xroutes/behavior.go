package xroutes

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("xroutes")

// Config 是 Behavior 运行所需的全部可调参数与可插拔协作方。传输层
// 具体协议（mDNS 组播、Kademlia 网络往返、relay-client 线路、DCUtR
// 打洞、AutoNAT 探测）一律通过接口注入，Behavior 本身只编排状态机与
// 去重/超时/重试语义。
type Config struct {
	Local      types.PeerID
	LocalAddrs func() []types.Multiaddr

	BucketSize int

	InitialMdnsEnabled bool
	MdnsServiceTag     string
	MdnsInterval       time.Duration
	MdnsTransport      mdnsTransport

	InitialKadEnabled bool
	InitialKadMode    KadMode
	Resolver          Resolver

	RelayReserver Reserver
	RelayRetries  int
	RelayBackoff  time.Duration

	DirectUpgrader DirectUpgrader

	AutonatProber   Prober
	AutonatServers  []types.PeerID
	AutonatInterval time.Duration

	Clock   clock.Clock
	Metrics SearchMetrics
}

// Behavior 是 mDNS、Kademlia 风格路由表、搜索去重、中继客户端与
// DCUtR/AutoNAT 协作钩子的统一门面
type Behavior struct {
	cfg   Config
	clock clock.Clock

	table  *RoutingTable
	search *searchManager

	mu       sync.Mutex
	mdns     *mdnsService
	mdnsOn   bool
	mdnsSeen map[types.PeerID]time.Time
	kadOn    bool
	kadMode  KadMode
	relay    *relayClient
	dcutr    *dcutrCoordinator
	autonat  *autonatService

	events chan Event
}

// NewBehavior 创建一个 Behavior；按 cfg 的 Initial* 开关决定启动时挂载哪些子行为
func NewBehavior(cfg Config) *Behavior {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.BucketSize <= 0 {
		cfg.BucketSize = 20
	}

	b := &Behavior{
		cfg:      cfg,
		clock:    cfg.Clock,
		table:    NewRoutingTable(cfg.Local, cfg.BucketSize),
		kadMode:  cfg.InitialKadMode,
		mdnsSeen: make(map[types.PeerID]time.Time),
		events:   make(chan Event, 64),
	}
	b.search = newSearchManager(b.table, cfg.Resolver, cfg.Clock, cfg.Metrics)
	b.search.onFound = func(peer types.PeerID, addrs []types.Multiaddr) {
		b.emit(PeerDiscovered{baseEvent: baseEvent{Peer: peer}, Addresses: addrs, Source: types.SourceDHT})
	}

	if cfg.RelayReserver != nil {
		b.relay = newRelayClient(cfg.RelayReserver, cfg.Clock, cfg.RelayRetries, cfg.RelayBackoff, b.emit)
	}
	if cfg.DirectUpgrader != nil {
		b.dcutr = newDcutrCoordinator(cfg.DirectUpgrader, b.emit)
	}
	if cfg.AutonatProber != nil {
		b.autonat = newAutonatService(cfg.AutonatProber, cfg.AutonatServers, cfg.AutonatInterval, cfg.Clock, b.emit)
	}

	if cfg.InitialKadEnabled {
		b.kadOn = true
	}
	if cfg.InitialMdnsEnabled {
		_ = b.EnableMdns()
	}
	if b.autonat != nil {
		b.autonat.Start()
	}
	return b
}

// Events 返回该行为产生的事件流
func (b *Behavior) Events() <-chan Event {
	return b.events
}

func (b *Behavior) emit(e Event) {
	select {
	case b.events <- e:
	default:
		logger.Warn("xroutes event channel full, dropping event")
	}
}

// EnableMdns 挂载本地多播发现
func (b *Behavior) EnableMdns() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mdnsOn {
		return nil
	}
	if b.cfg.MdnsTransport == nil {
		return ErrMdnsDisabled
	}
	b.mdns = newMdnsService(b.cfg.MdnsServiceTag, b.cfg.Local, b.cfg.LocalAddrs, b.cfg.MdnsInterval, b.cfg.MdnsTransport, b.onMdnsDiscovered)
	b.mdns.Start()
	b.mdnsOn = true
	return nil
}

// DisableMdns 卸载本地多播发现
func (b *Behavior) DisableMdns() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.mdnsOn {
		return nil
	}
	b.mdns.Stop()
	b.mdns = nil
	b.mdnsOn = false
	return nil
}

func (b *Behavior) onMdnsDiscovered(ann mdnsAnnouncement) {
	b.table.Add(ann.Peer, ann.Addresses)
	b.mu.Lock()
	b.mdnsSeen[ann.Peer] = b.clock.Now()
	b.mu.Unlock()
	b.emit(PeerDiscovered{baseEvent: baseEvent{Peer: ann.Peer}, Addresses: ann.Addresses, Source: types.SourceMDNS})
}

// mdnsTTL 是一条 mDNS 发现记录在未被新公告刷新时的存活期：错过三个
// 广播周期即视为对端离线
func (b *Behavior) mdnsTTL() time.Duration {
	if b.cfg.MdnsInterval <= 0 {
		return 30 * time.Second
	}
	return 3 * b.cfg.MdnsInterval
}

func (b *Behavior) sweepMdns(now time.Time) {
	ttl := b.mdnsTTL()
	b.mu.Lock()
	var expired []types.PeerID
	for peer, seen := range b.mdnsSeen {
		if now.Sub(seen) >= ttl {
			expired = append(expired, peer)
			delete(b.mdnsSeen, peer)
		}
	}
	b.mu.Unlock()

	for _, peer := range expired {
		b.table.Remove(peer)
		b.emit(PeerExpired{baseEvent: baseEvent{Peer: peer}})
	}
}

// EnableKad 挂载 Kademlia，mode 为 client/server/auto
func (b *Behavior) EnableKad(mode KadMode) error {
	if err := validateKadMode(mode); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kadOn = true
	b.kadMode = mode
	return nil
}

// DisableKad 卸载 Kademlia
func (b *Behavior) DisableKad() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kadOn = false
	b.search.CancelAll("kademlia disabled")
	return nil
}

// SetKadMode 在运行期切换 DHT 模式，是一个实时操作
func (b *Behavior) SetKadMode(mode KadMode) error {
	if err := validateKadMode(mode); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.kadOn {
		return ErrKadDisabled
	}
	b.kadMode = mode
	return nil
}

// GetKadMode 返回当前 DHT 模式
func (b *Behavior) GetKadMode() (KadMode, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.kadOn {
		return "", ErrKadDisabled
	}
	return b.kadMode, nil
}

func validateKadMode(mode KadMode) error {
	switch mode {
	case KadModeClient, KadModeServer, KadModeAuto:
		return nil
	default:
		return ErrInvalidKadMode
	}
}

// BootstrapToPeer 把地址登记进路由表，然后发起一次引导查询
func (b *Behavior) BootstrapToPeer(ctx context.Context, peer types.PeerID, addrs []types.Multiaddr) error {
	b.mu.Lock()
	on := b.kadOn
	b.mu.Unlock()
	if !on {
		return ErrKadDisabled
	}
	b.table.Add(peer, addrs)

	ctx, cancel := context.WithTimeout(ctx, bootstrapDeadline)
	defer cancel()
	reply := make(chan FindResult, 1)
	b.search.Register(peer, 0, reply)
	select {
	case res := <-reply:
		return res.Err
	case <-ctx.Done():
		b.search.Cancel(peer, "bootstrap deadline exceeded")
		return ctx.Err()
	}
}

// FindPeer 对 target 做一次性最近节点查询，在取得第一批结果时返回
func (b *Behavior) FindPeer(target types.PeerID) ([]types.PeerID, error) {
	b.mu.Lock()
	on := b.kadOn
	b.mu.Unlock()
	if !on {
		return nil, ErrKadDisabled
	}
	return b.table.ClosestPeers(target, b.cfg.BucketSize), nil
}

// FindPeerAddresses 实现三态超时的组合搜索：0 只查本地路由表；
// N>0 带截止时间等待；-1 等待至显式取消。
func (b *Behavior) FindPeerAddresses(peer types.PeerID, timeoutSecs int) ([]types.Multiaddr, error) {
	if timeoutSecs == 0 {
		return b.search.Local(peer), nil
	}
	reply := make(chan FindResult, 1)
	b.search.Register(peer, timeoutSecs, reply)
	res := <-reply
	return res.Addrs, res.Err
}

// CancelPeerSearch 取消某个 peer 的在途搜索
func (b *Behavior) CancelPeerSearch(peer types.PeerID) {
	b.search.Cancel(peer, "cancelled by caller")
}

// CancelAllSearches 取消全部在途搜索
func (b *Behavior) CancelAllSearches(reason string) {
	b.search.CancelAll(reason)
}

// GetActiveSearches 返回当前全部在途搜索的快照
func (b *Behavior) GetActiveSearches() []ActiveSearch {
	return b.search.GetActive()
}

// ListenViaRelay 对 relayAddr 发起自动预留并返回新的可监听中继地址
func (b *Behavior) ListenViaRelay(ctx context.Context, relayAddr types.Multiaddr, relayPeer types.PeerID) (types.Multiaddr, error) {
	if b.relay == nil {
		return nil, ErrRelayClientDisabled
	}
	return b.relay.ListenViaRelay(ctx, relayAddr, relayPeer)
}

// HandleOutboundRelayedConn 把一条经中继建立的出站连接交给 DCUtR 协作钩子
func (b *Behavior) HandleOutboundRelayedConn(peer types.PeerID, relayedAddr types.Multiaddr) {
	if b.dcutr != nil {
		b.dcutr.HandleOutboundRelayedConn(peer, relayedAddr)
	}
}

// Reachability 返回 AutoNAT 当前得出的可达性分类
func (b *Behavior) Reachability() Reachability {
	if b.autonat == nil {
		return ReachabilityUnknown
	}
	return b.autonat.Reachability()
}

// Sweep 驱动全部周期性清理：搜索等待者超时、mDNS 发现记录过期与中继预留过期
func (b *Behavior) Sweep(now time.Time) {
	b.search.Sweep(now)
	b.sweepMdns(now)
	if b.relay != nil {
		b.relay.Sweep(now)
	}
}

// Close 卸载全部已挂载的子行为
func (b *Behavior) Close() error {
	b.mu.Lock()
	mdnsOn := b.mdnsOn
	autonat := b.autonat
	b.mu.Unlock()
	var err error
	if mdnsOn {
		err = b.DisableMdns()
	}
	if autonat != nil {
		autonat.Stop()
	}
	b.search.CancelAll("behavior closed")
	return err
}
