package host

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// memSubstream 用两条独立方向的 net.Pipe() 拼出一条支持真半关闭的双工子流
//
// net.Pipe() 本身是同步全双工管道：Close 一端会让两端的 I/O 立即失败，
// 没有"只关一个方向"的概念。这里每个方向各用一条独立的 net.Pipe()：
// CloseWrite 只关自己的发送管道（对端的读会据此收到 EOF），CloseRead
// 只关自己的接收管道（不影响对端写）。
type memSubstream struct {
	send net.Conn // 本端写入此端点
	recv net.Conn // 本端从此端点读取

	mu          sync.Mutex
	writeClosed bool
	closeOnce   sync.Once
}

func (s *memSubstream) Read(p []byte) (int, error) {
	n, err := s.recv.Read(p)
	if err == io.ErrClosedPipe {
		return n, io.EOF
	}
	return n, err
}

func (s *memSubstream) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.writeClosed
	s.mu.Unlock()
	if closed {
		return 0, ErrSubstreamClosed
	}
	n, err := s.send.Write(p)
	if err == io.ErrClosedPipe {
		return n, ErrSubstreamClosed
	}
	return n, err
}

func (s *memSubstream) CloseRead() error {
	return s.recv.Close()
}

func (s *memSubstream) CloseWrite() error {
	s.mu.Lock()
	if s.writeClosed {
		s.mu.Unlock()
		return nil
	}
	s.writeClosed = true
	s.mu.Unlock()
	return s.send.Close()
}

func (s *memSubstream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.CloseWrite()
		err = s.recv.Close()
	})
	return err
}

func (s *memSubstream) SetDeadline(t time.Time) error {
	if err := s.send.SetWriteDeadline(t); err != nil {
		return err
	}
	return s.recv.SetReadDeadline(t)
}

func (s *memSubstream) SetReadDeadline(t time.Time) error  { return s.recv.SetReadDeadline(t) }
func (s *memSubstream) SetWriteDeadline(t time.Time) error { return s.send.SetWriteDeadline(t) }

// newMemSubstreamPair 返回一对通过两条内存管道（每个方向各一条）连接的 Substream
func newMemSubstreamPair() (Substream, Substream) {
	d1a, d1b := net.Pipe() // a 写入 d1a，b 从 d1b 读取
	d2a, d2b := net.Pipe() // b 写入 d2b，a 从 d2a 读取
	a := &memSubstream{send: d1a, recv: d2a}
	b := &memSubstream{send: d2b, recv: d1b}
	return a, b
}

// memConn 是 Conn 的内存实现：子流通过一对有缓冲的 channel 在两端之间传递
type memConn struct {
	id          swarm.ConnectionID
	peer        types.PeerID
	remote      types.Multiaddr
	direction   types.Direction
	established time.Time

	outSubs chan Substream // 本端 OpenSubstream 产生、对端 AcceptSubstream 消费
	inSubs  chan Substream // 对端 OpenSubstream 产生、本端 AcceptSubstream 消费

	closeOnce sync.Once
	closed    chan struct{}
}

func (c *memConn) ID() swarm.ConnectionID           { return c.id }
func (c *memConn) Peer() types.PeerID               { return c.peer }
func (c *memConn) RemoteMultiaddr() types.Multiaddr { return c.remote }
func (c *memConn) Direction() types.Direction       { return c.direction }
func (c *memConn) EstablishedAt() time.Time         { return c.established }

func (c *memConn) OpenSubstream(ctx context.Context) (Substream, error) {
	local, remote := newMemSubstreamPair()
	select {
	case c.outSubs <- remote:
		return local, nil
	case <-c.closed:
		return nil, ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *memConn) AcceptSubstream(ctx context.Context) (Substream, error) {
	select {
	case s := <-c.inSubs:
		return s, nil
	case <-c.closed:
		return nil, ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *memConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *memConn) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// newMemConnPair 创建一对互为 peer 的内存连接：一端的 outSubs 是另一端的 inSubs
func newMemConnPair(localPeer, remotePeer types.PeerID, addr types.Multiaddr) (*memConn, *memConn) {
	ab := make(chan Substream, 8)
	ba := make(chan Substream, 8)
	now := time.Now()
	client := &memConn{
		id: swarm.NextConnectionID(), peer: remotePeer, remote: addr,
		direction: types.DirOutbound, established: now,
		outSubs: ab, inSubs: ba, closed: make(chan struct{}),
	}
	server := &memConn{
		id: swarm.NextConnectionID(), peer: localPeer, remote: addr,
		direction: types.DirInbound, established: now,
		outSubs: ba, inSubs: ab, closed: make(chan struct{}),
	}
	return client, server
}

// MemNetwork 是一个进程内的传输替身：把 peer 注册为可被拨号的监听器，
// 拨号直接在内存中建立一对 memConn，不经过任何真实 socket。
//
// 用于 XStream/XAuth/XRoutes 的端到端测试，替代列为核心之外的
// 具体传输（QUIC/TCP/Noise）。
type MemNetwork struct {
	mu        sync.Mutex
	listeners map[types.PeerID]chan Conn
}

// NewMemNetwork 创建一个新的内存网络
func NewMemNetwork() *MemNetwork {
	return &MemNetwork{listeners: make(map[types.PeerID]chan Conn)}
}

// memListener 实现 Listener，按 peer 身份而非真实地址绑定
type memListener struct {
	addr   types.Multiaddr
	accept chan Conn
	net    *MemNetwork
	peer   types.PeerID
}

func (l *memListener) Addr() types.Multiaddr { return l.addr }

func (l *memListener) Accept() (Conn, error) {
	c, ok := <-l.accept
	if !ok {
		return nil, ErrListenerClosed
	}
	return c, nil
}

func (l *memListener) Close() error {
	l.net.mu.Lock()
	defer l.net.mu.Unlock()
	if ch, ok := l.net.listeners[l.peer]; ok {
		delete(l.net.listeners, l.peer)
		close(ch)
	}
	return nil
}

// ListenerFactory 返回一个绑定到 selfPeer 的 ListenerFactory，交给 Host 使用
func (n *MemNetwork) ListenerFactory(selfPeer types.PeerID) ListenerFactory {
	return func(addr types.Multiaddr) (Listener, error) {
		ch := make(chan Conn, 8)
		n.mu.Lock()
		n.listeners[selfPeer] = ch
		n.mu.Unlock()
		return &memListener{addr: addr, accept: ch, net: n, peer: selfPeer}, nil
	}
}

// Dialer 返回一个以 selfPeer 为本地身份的 Dialer，交给 Host 使用
func (n *MemNetwork) Dialer(selfPeer types.PeerID) Dialer {
	return &memDialer{net: n, self: selfPeer}
}

type memDialer struct {
	net  *MemNetwork
	self types.PeerID
}

func (d *memDialer) Dial(ctx context.Context, peer types.PeerID, addr types.Multiaddr) (Conn, error) {
	d.net.mu.Lock()
	ch, ok := d.net.listeners[peer]
	d.net.mu.Unlock()
	if !ok {
		return nil, ErrNoListenerForPeer
	}
	client, server := newMemConnPair(d.self, peer, addr)
	select {
	case ch <- server:
		return client, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
