// Package host 提供传输无关的连接与子流抽象
//
// 本包把 "stream 粒度以下的具体传输"（类 TLS 的传输安全、基于 UDP 的
// 可靠传输、TCP、Noise 握手）列为核心之外的协作方。本包只定义核心三个组件
// （XStream、XAuth、XRoutes）共同依赖的连接/子流接口，以及一个串联它们的
// Host：具体的拨号器与监听器由调用方注入，核心不构造任何具体传输。
package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("core/host")

// Substream 是一条可被 XStream 按 header 配对、也可被 XAuth 用于一次性
// PoR 握手的原始双向通道。
type Substream interface {
	io.Reader
	io.Writer
	CloseRead() error
	CloseWrite() error
	Close() error
	SetDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Conn 是一条已建立的传输连接（ConnectionData 的传输侧对应物）
type Conn interface {
	ID() swarm.ConnectionID
	Peer() types.PeerID
	RemoteMultiaddr() types.Multiaddr
	Direction() types.Direction
	EstablishedAt() time.Time
	// OpenSubstream 在此连接上发起一条新的出站子流
	OpenSubstream(ctx context.Context) (Substream, error)
	// AcceptSubstream 等待对端发起的下一条入站子流
	AcceptSubstream(ctx context.Context) (Substream, error)
	Close() error
	IsClosed() bool
}

// Dialer 建立到某个 peer 地址的出站连接
type Dialer interface {
	Dial(ctx context.Context, peer types.PeerID, addr types.Multiaddr) (Conn, error)
}

// Listener 在一个本地地址上接受入站连接
type Listener interface {
	Addr() types.Multiaddr
	Accept() (Conn, error)
	Close() error
}

// ListenerFactory 从一个 Multiaddr 构造一个已绑定的 Listener
//
// 具体实现（QUIC/TCP 等）留给调用方；核心只消费这个工厂函数。
type ListenerFactory func(types.Multiaddr) (Listener, error)

// Event 是 Host 向 SwarmLoop 轮询暴露的传输层事件
type Event interface{ isHostEvent() }

type baseEvent struct{}

func (baseEvent) isHostEvent() {}

// ConnEstablished 一条新连接建立
type ConnEstablished struct {
	baseEvent
	Conn Conn
}

// ConnClosed 一条连接关闭
type ConnClosed struct {
	baseEvent
	Peer types.PeerID
	ID   swarm.ConnectionID
}

// NewListenAddr 一个监听地址生效
type NewListenAddr struct {
	baseEvent
	Addr types.Multiaddr
}

// ExpiredListenAddr 一个监听地址失效
type ExpiredListenAddr struct {
	baseEvent
	Addr types.Multiaddr
}

// InboundSubstream 一条入站子流到达，其声明的 protocol id 没有注册处理器
//
// 正常路径下 XStream/XAuth 都通过 SetStreamHandler 注册，不会走到这里；
// 这个事件只覆盖两种情况：协议协商失败（对端发来无法识别的 protocol id）
// 或调用方压根没有经由 SwarmLoop 组装、自己直接轮询 Host.Events()（测试用）。
type InboundSubstream struct {
	baseEvent
	Conn     Conn
	Stream   Substream
	Protocol types.ProtocolID
}

// ListenError 监听失败
type ListenError struct {
	baseEvent
	Addr types.Multiaddr
	Err  error
}

// SubstreamProtocolError 一条入站子流的 protocol id 头读取失败，子流已关闭
type SubstreamProtocolError struct {
	baseEvent
	Conn Conn
	Err  error
}

var (
	// ErrAlreadyListening 已经在该地址监听
	ErrAlreadyListening = errors.New("host: already listening on address")
	// ErrNoDialer 未配置拨号器
	ErrNoDialer = errors.New("host: no dialer configured")
	// ErrNoListenerFactory 未配置监听器工厂
	ErrNoListenerFactory = errors.New("host: no listener factory configured")
)

// Host 拥有拨号器、零或多个监听器，以及当前所有连接的记录
//
// Host 本身不做任何并发互斥之外的状态机：所有行为状态的序列化由
// internal/swarmloop 的单线程事件循环保证。
type Host struct {
	identity types.PeerID
	dialer   Dialer
	lf       ListenerFactory

	mu        sync.Mutex
	conns     map[types.PeerID]map[swarm.ConnectionID]Conn
	listeners map[string]Listener

	handlersMu sync.Mutex
	handlers   map[types.ProtocolID]StreamHandler

	events    chan Event
	closed    bool
	closeOnce sync.Once
}

// NewHost 创建一个 Host
func NewHost(self types.PeerID, dialer Dialer, lf ListenerFactory) *Host {
	return &Host{
		identity:  self,
		dialer:    dialer,
		lf:        lf,
		conns:     make(map[types.PeerID]map[swarm.ConnectionID]Conn),
		listeners: make(map[string]Listener),
		events:    make(chan Event, 64),
	}
}

// Events 返回 Host 产生的传输层事件流，供 SwarmLoop 轮询
func (h *Host) Events() <-chan Event {
	return h.events
}

func (h *Host) emit(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	select {
	case h.events <- e:
	default:
		logger.Warn("host event channel full, dropping event")
	}
}

// LocalPeer 返回本地节点的 PeerID
func (h *Host) LocalPeer() types.PeerID {
	return h.identity
}

// Dial 建立到 peer 的出站连接，完成连接确认握手后登记
//
// 拨号方在发出 ConnEstablished 之前，先在一条连接确认子流上等待
// 接受方的握手帧；接受方拒绝或超时则关闭连接并返回错误。
func (h *Host) Dial(ctx context.Context, peer types.PeerID, addr types.Multiaddr) (Conn, error) {
	if h.dialer == nil {
		return nil, ErrNoDialer
	}
	conn, err := h.dialer.Dial(ctx, peer, addr)
	if err != nil {
		return nil, err
	}
	if err := h.confirmConn(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("host: connection handshake with %s failed: %w", peer, err)
	}
	h.registerConn(conn)
	h.emit(ConnEstablished{Conn: conn})
	go h.substreamAcceptLoop(conn)
	return conn, nil
}

// confirmConn 在新建立的出站连接上执行连接确认握手
func (h *Host) confirmConn(ctx context.Context, conn Conn) error {
	s, err := openConnect(ctx, conn)
	if err != nil {
		return err
	}
	defer s.Close()
	return ReadHandshake(s, DefaultHandshakeTimeout)
}

// ListenOn 绑定一个监听地址并启动接受循环
func (h *Host) ListenOn(addr types.Multiaddr) (types.Multiaddr, error) {
	if h.lf == nil {
		return nil, ErrNoListenerFactory
	}
	key := addr.String()
	h.mu.Lock()
	if _, ok := h.listeners[key]; ok {
		h.mu.Unlock()
		return nil, ErrAlreadyListening
	}
	h.mu.Unlock()

	l, err := h.lf(addr)
	if err != nil {
		h.emit(ListenError{Addr: addr, Err: err})
		return nil, err
	}

	h.mu.Lock()
	h.listeners[key] = l
	h.mu.Unlock()

	h.emit(NewListenAddr{Addr: l.Addr()})
	go h.acceptLoop(key, l)
	return l.Addr(), nil
}

func (h *Host) acceptLoop(key string, l Listener) {
	for {
		conn, err := l.Accept()
		if err != nil {
			h.mu.Lock()
			_, stillListening := h.listeners[key]
			delete(h.listeners, key)
			h.mu.Unlock()
			if stillListening {
				h.emit(ExpiredListenAddr{Addr: l.Addr()})
			}
			return
		}
		h.registerConn(conn)
		h.emit(ConnEstablished{Conn: conn})
		go h.substreamAcceptLoop(conn)
	}
}

func (h *Host) substreamAcceptLoop(conn Conn) {
	for {
		s, err := conn.AcceptSubstream(context.Background())
		if err != nil {
			return
		}
		go h.dispatchInbound(conn, s)
	}
}

// dispatchInbound 读取子流最前面的 protocol id 头并路由给已注册的
// StreamHandler；没有任何 SetStreamHandler 命中时退化为发出通用的
// InboundSubstream 事件，供不经 SwarmLoop 组装的调用方（测试）直接处理。
func (h *Host) dispatchInbound(conn Conn, s Substream) {
	br := bufio.NewReader(s)
	protocolID, err := readProtocolHeader(br)
	if err != nil {
		s.Close()
		h.emit(SubstreamProtocolError{Conn: conn, Err: err})
		return
	}
	wrapped := &bufferedSubstream{Substream: s, r: br}
	if protocolID == ConnectProtocolID {
		h.answerConnect(wrapped)
		return
	}
	if handler, ok := h.handlerFor(protocolID); ok {
		handler(conn, wrapped)
		return
	}
	h.emit(InboundSubstream{Conn: conn, Stream: wrapped, Protocol: protocolID})
}

func (h *Host) registerConn(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	peerConns, ok := h.conns[conn.Peer()]
	if !ok {
		peerConns = make(map[swarm.ConnectionID]Conn)
		h.conns[conn.Peer()] = peerConns
	}
	peerConns[conn.ID()] = conn
}

// Disconnect 关闭到指定 peer 的全部连接
func (h *Host) Disconnect(peer types.PeerID) error {
	h.mu.Lock()
	peerConns, ok := h.conns[peer]
	delete(h.conns, peer)
	h.mu.Unlock()
	if !ok {
		return nil
	}
	var firstErr error
	for id, conn := range peerConns {
		err := conn.Close()
		h.emit(ConnClosed{Peer: peer, ID: id})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ConnsToPeer 返回到指定 peer 的全部活跃连接
func (h *Host) ConnsToPeer(peer types.PeerID) []Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	peerConns, ok := h.conns[peer]
	if !ok {
		return nil
	}
	out := make([]Conn, 0, len(peerConns))
	for _, c := range peerConns {
		out = append(out, c)
	}
	return out
}

// ConnectedPeers 返回当前持有至少一条连接的 peer 列表
func (h *Host) ConnectedPeers() []types.PeerID {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.PeerID, 0, len(h.conns))
	for p, conns := range h.conns {
		if len(conns) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// ListeningAddresses 返回当前全部活跃监听地址
func (h *Host) ListeningAddresses() []types.Multiaddr {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]types.Multiaddr, 0, len(h.listeners))
	for _, l := range h.listeners {
		out = append(out, l.Addr())
	}
	return out
}

// ConnByID 在指定 peer 的连接集合中按 ID 查找一条连接
func (h *Host) ConnByID(peer types.PeerID, id swarm.ConnectionID) (Conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	peerConns, ok := h.conns[peer]
	if !ok {
		return nil, false
	}
	c, ok := peerConns[id]
	return c, ok
}

// RemoveConn 从记录中移除一条连接（连接自身关闭后调用）
func (h *Host) RemoveConn(peer types.PeerID, id swarm.ConnectionID) {
	h.mu.Lock()
	peerConns, ok := h.conns[peer]
	if ok {
		delete(peerConns, id)
		if len(peerConns) == 0 {
			delete(h.conns, peer)
		}
	}
	h.mu.Unlock()
	h.emit(ConnClosed{Peer: peer, ID: id})
}

// Close 关闭全部监听器与连接；幂等
func (h *Host) Close() error {
	h.mu.Lock()
	listeners := h.listeners
	h.listeners = make(map[string]Listener)
	conns := h.conns
	h.conns = make(map[types.PeerID]map[swarm.ConnectionID]Conn)
	h.closed = true
	h.mu.Unlock()

	var firstErr error
	for _, l := range listeners {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for _, peerConns := range conns {
		for _, c := range peerConns {
			if err := c.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	h.closeOnce.Do(func() { close(h.events) })
	return firstErr
}
