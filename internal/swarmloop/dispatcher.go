package swarmloop

import (
	"context"
	"sync"

	"github.com/xcore-net/xcore/internal/core/eventbus"
	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/metrics"
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/internal/xauth"
	"github.com/xcore-net/xcore/internal/xstream"
	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("swarmloop")

// Dispatcher 持有 Host 与 xstream、xauth 两个行为实例，执行 swarm 级
// 命令，并把 Host 与这两个行为的事件映射到公共事件。没有两个
// handler 会被并发调用：全部事件与 swarm 级命令都经由 Loop 的单一
// select 串行路由到这里。
type Dispatcher struct {
	host     *host.Host
	xstreamB *xstream.Behavior
	xauthB   *xauth.Behavior

	bus *eventbus.Bus[Event]

	// metrics 可选；nil 时不导出任何指标
	metrics *metrics.Registry

	mu                 sync.Mutex
	peerConnCount      map[types.PeerID]int
	authenticatedConns map[swarm.ConnectionID]types.PeerID
	authenticatedPeers map[types.PeerID]int
}

// NewDispatcher 创建一个 HandlerDispatcher，绑定此节点的 Host 与三个行为实例
func NewDispatcher(h *host.Host, xstreamB *xstream.Behavior, xauthB *xauth.Behavior, bus *eventbus.Bus[Event]) *Dispatcher {
	return &Dispatcher{
		host:               h,
		xstreamB:           xstreamB,
		xauthB:             xauthB,
		bus:                bus,
		peerConnCount:      make(map[types.PeerID]int),
		authenticatedConns: make(map[swarm.ConnectionID]types.PeerID),
		authenticatedPeers: make(map[types.PeerID]int),
	}
}

func (d *Dispatcher) publish(e Event) {
	d.bus.Publish(e)
}

// HandleSwarmCommand 执行一条 swarm 级命令。
// Shutdown 不在这里处理：它的回复必须严格晚于循环退出，由 Loop 自己负责。
func (d *Dispatcher) HandleSwarmCommand(cmd Command) {
	switch c := cmd.(type) {
	case ListenOn:
		addr, err := d.host.ListenOn(c.Addr)
		if err == nil {
			d.publish(ListeningOn{Addr: addr})
		}
		c.Reply <- ListenOnReply{Addr: addr, Err: err}
	case Dial:
		conn, err := d.host.Dial(context.Background(), c.Peer, c.Addr)
		c.Reply <- DialReply{Conn: conn, Err: err}
	case Disconnect:
		err := d.host.Disconnect(c.Peer)
		c.Reply <- DisconnectReply{Err: err}
	case GetNetworkState:
		c.Reply <- d.networkState()
	case Echo:
		c.Reply <- EchoReply{Value: c.Value}
	default:
		logger.Warn("unrecognized swarm command", "type", c)
	}
}

func (d *Dispatcher) networkState() NetworkState {
	d.mu.Lock()
	authPeers := make([]types.PeerID, 0, len(d.authenticatedPeers))
	for p := range d.authenticatedPeers {
		authPeers = append(authPeers, p)
	}
	d.mu.Unlock()
	return NetworkState{
		PeerID:             d.host.LocalPeer(),
		ListeningAddresses: d.host.ListeningAddresses(),
		ConnectedPeers:     d.host.ConnectedPeers(),
		AuthenticatedPeers: authPeers,
	}
}

// HandleHostEvent 把一个 Host 传输层事件映射到公共事件，并在连接建立时
// 触发 xauth 的自动发起出站请求；swarm 级处理总是先于任何行为看到事件。
func (d *Dispatcher) HandleHostEvent(ev host.Event) {
	switch e := ev.(type) {
	case host.ConnEstablished:
		peer := e.Conn.Peer()
		d.mu.Lock()
		d.peerConnCount[peer]++
		first := d.peerConnCount[peer] == 1
		d.mu.Unlock()
		if first {
			d.publish(PeerConnected{Peer: peer})
		}
		d.publish(ConnectionEstablished{Peer: peer, Conn: e.Conn.ID()})
		if d.xauthB != nil {
			d.xauthB.HandleConnEstablished(e.Conn)
		}
	case host.ConnClosed:
		d.mu.Lock()
		d.peerConnCount[e.Peer]--
		last := d.peerConnCount[e.Peer] <= 0
		if last {
			delete(d.peerConnCount, e.Peer)
		}
		if connPeer, ok := d.authenticatedConns[e.ID]; ok {
			delete(d.authenticatedConns, e.ID)
			d.authenticatedPeers[connPeer]--
			if d.authenticatedPeers[connPeer] <= 0 {
				delete(d.authenticatedPeers, connPeer)
			}
		}
		d.mu.Unlock()
		d.publish(ConnectionClosed{Peer: e.Peer, Conn: e.ID})
		if last {
			d.publish(PeerDisconnected{Peer: e.Peer})
		}
	case host.NewListenAddr:
		d.publish(NewListenAddr{Addr: e.Addr})
	case host.ExpiredListenAddr:
		d.publish(ExpiredListenAddr{Addr: e.Addr})
	case host.ListenError:
		d.publish(Error{Message: "listen on " + e.Addr.String() + ": " + e.Err.Error()})
	case host.SubstreamProtocolError:
		d.publish(Error{Message: "substream protocol error from " + e.Conn.Peer().String() + ": " + e.Err.Error()})
	case host.InboundSubstream:
		e.Stream.Close()
	}
}

// HandleXStreamEvent 把一个 xstream 行为事件映射到公共事件
func (d *Dispatcher) HandleXStreamEvent(ev xstream.Event) {
	switch e := ev.(type) {
	case xstream.IncomingStream:
		if d.metrics != nil {
			d.metrics.StreamPairsTotal.WithLabelValues("paired").Inc()
		}
		d.publish(IncomingStream{Stream: e.Stream})
	case xstream.IncomingStreamRequest:
		d.publish(IncomingStreamRequest{
			Peer:   e.Peer.Peer,
			Conn:   e.Peer.Conn,
			Decide: e.Decide,
		})
	case xstream.StreamOpened:
		d.publish(StreamOpened{Peer: e.Peer, ID: e.ID})
	case xstream.StreamClosed:
		d.publish(StreamClosed{Peer: e.Peer, ID: e.ID})
	case xstream.SubstreamReadHeaderError:
		if d.metrics != nil {
			d.metrics.StreamPairsTotal.WithLabelValues("header_error").Inc()
		}
		d.publish(Error{Message: "xstream header read failed from " + e.Peer.String() + ": " + e.Err.Error()})
	case xstream.SubstreamSameRole:
		if d.metrics != nil {
			d.metrics.StreamPairsTotal.WithLabelValues("same_role").Inc()
		}
		d.publish(Error{Message: "xstream duplicate role from " + e.Key.Peer.String()})
	case xstream.SubstreamTimeoutError:
		if d.metrics != nil {
			d.metrics.StreamPairTimeouts.Inc()
		}
		d.publish(Error{Message: "xstream pairing timed out for " + e.Key.Peer.String()})
	}
}

// HandleXAuthEvent 把一个 xauth 行为事件映射到公共事件，并维护
// per-peer 的已认证集合（GetNetworkState 的 authenticated_peers 依据）。
func (d *Dispatcher) HandleXAuthEvent(ev xauth.Event) {
	switch e := ev.(type) {
	case xauth.MutualAuthSuccess:
		d.mu.Lock()
		if _, already := d.authenticatedConns[e.Conn]; !already {
			d.authenticatedConns[e.Conn] = e.Peer
			d.authenticatedPeers[e.Peer]++
		}
		d.mu.Unlock()
		d.publish(PeerAuthenticated{Peer: e.Peer})
	case xauth.OutboundAuthSuccess:
		if d.metrics != nil {
			d.metrics.AuthSuccessTotal.WithLabelValues("outbound").Inc()
		}
	case xauth.InboundAuthSuccess:
		if d.metrics != nil {
			d.metrics.AuthSuccessTotal.WithLabelValues("inbound").Inc()
		}
	case xauth.OutboundAuthFailure:
		if d.metrics != nil {
			d.metrics.AuthFailureTotal.WithLabelValues("outbound").Inc()
		}
		d.publish(AuthenticationFailed{Peer: e.Peer})
	case xauth.InboundAuthFailure:
		if d.metrics != nil {
			d.metrics.AuthFailureTotal.WithLabelValues("inbound").Inc()
		}
		d.publish(AuthenticationFailed{Peer: e.Peer})
	case xauth.AuthTimeout:
		if d.metrics != nil {
			d.metrics.AuthTimeoutTotal.WithLabelValues(authTimeoutLabel(e.Direction)).Inc()
		}
		d.publish(AuthenticationFailed{Peer: e.Peer})
	case xauth.VerifyPorRequest:
		d.publish(VerifyPorRequest{
			Peer:     e.Peer,
			Conn:     e.Conn,
			Address:  e.Address,
			Metadata: e.Metadata,
			Decide: func(r AuthResult) {
				e.Decide(xauth.AuthResult{Ok: r.Ok, Metadata: r.Metadata, Reason: r.Reason})
			},
		})
	}
}

func authTimeoutLabel(d xauth.TimeoutDirection) string {
	switch d {
	case xauth.TimeoutOutbound:
		return "outbound"
	case xauth.TimeoutInbound:
		return "inbound"
	default:
		return "both"
	}
}
