package swarmloop

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/miekg/dns"

	"github.com/xcore-net/xcore/config"
	"github.com/xcore-net/xcore/internal/core/eventbus"
	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/identity"
	"github.com/xcore-net/xcore/internal/core/metrics"
	"github.com/xcore-net/xcore/internal/xauth"
	"github.com/xcore-net/xcore/internal/xroutes"
	"github.com/xcore-net/xcore/internal/xstream"
	"github.com/xcore-net/xcore/pkg/types"
)

// MdnsTransport 镜像 xroutes 组播 I/O 边界的方法集（该接口本身未导出，
// 具体的 mDNS 组播 socket 是调用方注入的协作方）。调用方据此
// 实现一个真实或测试用的收发器并经 NodeConfig.MdnsTransport 注入：
// Go 的接口赋值只看方法集是否匹配，不要求引用同一个类型名。
type MdnsTransport interface {
	Announce(msg *dns.Msg) error
	Announcements() <-chan *dns.Msg
	Close() error
}

// NodeConfig 是组装一个 Node 所需的全部配置与可插拔协作方。
// 凡是 stream 粒度以下的具体传输与发现协议 I/O，一律由调用方注入。
type NodeConfig struct {
	Identity *identity.Identity
	Config   config.Config

	// Dialer/ListenerFactory 是 Host 的传输层协作方（生产实现由调用方
	// 提供；测试常用 host.NewMemNetwork()）。
	Dialer          host.Dialer
	ListenerFactory host.ListenerFactory

	// SupplyPoR 返回本端面向给定对端当前有效的 PoR
	SupplyPoR   xauth.PoRSupplier
	OwnMetadata map[string]string

	// LocalAddrs 供 mDNS 自我公告使用（未启用 mDNS 时可为 nil）
	LocalAddrs func() []types.Multiaddr

	// Metrics 可选；非 nil 时三个行为的计数器/直方图都挂到该注册表上
	Metrics *metrics.Registry

	MdnsTransport  MdnsTransport
	Resolver       xroutes.Resolver
	RelayReserver  xroutes.Reserver
	DirectUpgrader xroutes.DirectUpgrader
	AutonatProber  xroutes.Prober
	AutonatServers []types.PeerID

	Clock clock.Clock
}

// Node 是一个完整组装好的 swarm：一个 Host，三个行为，一个
// Dispatcher，一个尚未启动的 Loop，外加面向调用方的
// Commander/Stopper 句柄。
type Node struct {
	host     *host.Host
	xstreamB *xstream.Behavior
	xauthB   *xauth.Behavior
	xroutesB *xroutes.Behavior

	bus       *eventbus.Bus[Event]
	chanCap   int
	loop      *Loop
	commander *Commander
	stopper   *Stopper

	startOnce sync.Once
}

// NewNode 组装一个 Node：Host + 三个行为 + HandlerDispatcher + Loop，
// 并返回供调用方驱动它的 Commander/Stopper。循环尚未运行——调用方先
// Subscribe()，再调用 Start()，避免 NodeStarted 的发布早于订阅完成。
func NewNode(nc NodeConfig) (*Node, error) {
	if err := nc.Config.Validate(); err != nil {
		return nil, err
	}

	clk := nc.Clock
	if clk == nil {
		clk = clock.New()
	}

	h := host.NewHost(nc.Identity.PeerID(), nc.Dialer, nc.ListenerFactory)

	xstreamB := xstream.NewBehavior(xstream.Config{
		PendingTimeout:    nc.Config.XStream.PendingTimeout.Duration(),
		HeaderReadTimeout: nc.Config.XStream.HeaderReadTimeout.Duration(),
		Policy:            approvalPolicy(nc.Config.XStream.ApproveViaEvent),
		ReadBufSize:       nc.Config.XStream.ReadBufferSize,
	})

	xauthB := xauth.NewBehavior(xauth.Config{
		AuthTimeout:         nc.Config.XAuth.AuthTimeout.Duration(),
		HandshakeTimeout:    nc.Config.XAuth.HandshakeTimeout.Duration(),
		AutoInitiate:        nc.Config.XAuth.AutoInitiate,
		Policy:              xauthApprovalPolicy(nc.Config.XAuth.ApproveViaEvent),
		MaxMetadataEntries:  nc.Config.XAuth.MaxMetadataEntries,
		MaxMetadataValueLen: nc.Config.XAuth.MaxMetadataValueLen,
		OwnMetadata:         nc.OwnMetadata,
		SupplyPoR:           nc.SupplyPoR,
	})

	kadMode, err := parseKadMode(nc.Config.XRoutes.KadMode)
	if err != nil {
		return nil, err
	}
	xroutesB := xroutes.NewBehavior(xroutes.Config{
		Local:              nc.Identity.PeerID(),
		LocalAddrs:         nc.LocalAddrs,
		BucketSize:         nc.Config.XRoutes.KadBucketSize,
		InitialMdnsEnabled: nc.Config.XRoutes.EnableMdns,
		MdnsServiceTag:     nc.Config.XRoutes.MdnsServiceTag,
		MdnsInterval:       nc.Config.XRoutes.MdnsInterval.Duration(),
		MdnsTransport:      nc.MdnsTransport,
		InitialKadEnabled:  nc.Config.XRoutes.EnableKad,
		InitialKadMode:     kadMode,
		Resolver:           nc.Resolver,
		RelayReserver:      relayReserver(nc.Config.XRoutes.EnableRelayClient, nc.RelayReserver),
		RelayRetries:       nc.Config.XRoutes.RelayReservationRetries,
		RelayBackoff:       nc.Config.XRoutes.RelayReservationBackoff.Duration(),
		DirectUpgrader:     directUpgrader(nc.Config.XRoutes.EnableDcutr, nc.DirectUpgrader),
		AutonatProber:      autonatProber(nc.Config.XRoutes.EnableAutonat, nc.AutonatProber),
		AutonatServers:     nc.AutonatServers,
		AutonatInterval:    nc.Config.XRoutes.AutonatProbeInterval.Duration(),
		Clock:              clk,
		Metrics:            searchMetricsHooks(nc.Metrics),
	})

	h.SetStreamHandler(xstream.ProtocolID, xstreamB.HandleInbound)
	h.SetStreamHandler(xauth.ProtocolID, xauthB.HandleInboundPorSubstream)

	bus := eventbus.NewBus[Event]()
	dispatcher := NewDispatcher(h, xstreamB, xauthB, bus)
	dispatcher.metrics = nc.Metrics

	chanCap := nc.Config.SwarmLoop.ChannelCapacity
	cmdCh := make(chan Command, chanCap)

	sweepInterval := nc.Config.SwarmLoop.SweepInterval.Duration()
	sweep := func(now time.Time) {
		xstreamB.Sweep(now)
		xauthB.Sweep(now)
		xroutesB.Sweep(now)
	}
	loop := newLoop(dispatcher, cmdCh, h.Events(), xstreamB.Events(), xauthB.Events(), sweep, clk, sweepInterval)

	commander := &Commander{
		cmdCh:    cmdCh,
		done:     loop.Done(),
		host:     h,
		xstreamB: xstreamB,
		xauthB:   xauthB,
		xroutesB: xroutesB,
	}
	stopper := &Stopper{
		cmdCh:    cmdCh,
		done:     loop.Done(),
		host:     h,
		xroutesB: xroutesB,
	}

	return &Node{
		host:      h,
		xstreamB:  xstreamB,
		xauthB:    xauthB,
		xroutesB:  xroutesB,
		bus:       bus,
		chanCap:   chanCap,
		loop:      loop,
		commander: commander,
		stopper:   stopper,
	}, nil
}

// Start 在自己的 goroutine 里启动循环；幂等——第二次调用是空操作。
// 调用方应当先 Subscribe()，再 Start()，才能看到 NodeStarted。
func (n *Node) Start() {
	n.startOnce.Do(func() {
		go func() {
			n.bus.Publish(NodeStarted{})
			n.loop.Run()
			n.bus.Publish(NodeStopped{})
		}()
	})
}

// Commander 返回提交命令与发起按行为操作的句柄
func (n *Node) Commander() *Commander { return n.commander }

// Stopper 返回触发协作式关闭的句柄
func (n *Node) Stopper() *Stopper { return n.stopper }

// Subscribe 订阅节点公共事件的广播流
func (n *Node) Subscribe() *eventbus.Subscription[Event] {
	return n.bus.Subscribe(n.chanCap)
}

// XRoutesEvents 返回 XRoutes 自身更丰富的发现/NAT 穿越事件流——这些
// 事件不在核心字母表之内，单独暴露而不是翻译进广播事件总线。
func (n *Node) XRoutesEvents() <-chan xroutes.Event {
	return n.xroutesB.Events()
}

// Done 返回一个在循环退出后关闭的 channel
func (n *Node) Done() <-chan struct{} {
	return n.loop.Done()
}

func approvalPolicy(viaEvent bool) xstream.ApprovalPolicy {
	if viaEvent {
		return xstream.ApproveViaEvent
	}
	return xstream.AutoApprove
}

func xauthApprovalPolicy(viaEvent bool) xauth.ApprovalPolicy {
	if viaEvent {
		return xauth.ApproveViaEvent
	}
	return xauth.AutoApprove
}

func parseKadMode(s string) (xroutes.KadMode, error) {
	switch xroutes.KadMode(s) {
	case xroutes.KadModeClient:
		return xroutes.KadModeClient, nil
	case xroutes.KadModeServer:
		return xroutes.KadModeServer, nil
	case xroutes.KadModeAuto:
		return xroutes.KadModeAuto, nil
	default:
		return "", xroutes.ErrInvalidKadMode
	}
}

func relayReserver(enabled bool, r xroutes.Reserver) xroutes.Reserver {
	if !enabled {
		return nil
	}
	return r
}

func directUpgrader(enabled bool, d xroutes.DirectUpgrader) xroutes.DirectUpgrader {
	if !enabled {
		return nil
	}
	return d
}

func autonatProber(enabled bool, p xroutes.Prober) xroutes.Prober {
	if !enabled {
		return nil
	}
	return p
}

func searchMetricsHooks(reg *metrics.Registry) xroutes.SearchMetrics {
	if reg == nil {
		return xroutes.SearchMetrics{}
	}
	return xroutes.SearchMetrics{
		ActiveSearchesGauge: func(delta int) {
			reg.ActiveSearches.Add(float64(delta))
		},
		ObserveLatency: func(d time.Duration) {
			reg.SearchLatencySeconds.Observe(d.Seconds())
		},
	}
}
