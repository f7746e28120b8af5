package swarmloop

import (
	"context"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/internal/xauth"
	"github.com/xcore-net/xcore/internal/xroutes"
	"github.com/xcore-net/xcore/internal/xstream"
	"github.com/xcore-net/xcore/pkg/types"
)

// Commander 是面向运营方的命令句柄：提交命令并等待一次性回复。
// 它只持有发送侧访问——循环单一命令通道的发送端（swarm 级变更用），
// 加上三个行为实例的直接引用（按行为操作用）。三个行为各自内部
// 已经线程安全（自有互斥/通道串行化并发调用方），把它们的操作再绕经
// 命令通道只会增加时延而不增加任何安全性；只有对 swarm 本身的变更
// （dial/listen/disconnect/shutdown/状态快照）需要经循环串行化。
type Commander struct {
	cmdCh chan<- Command
	done  <-chan struct{}

	host     *host.Host
	xstreamB *xstream.Behavior
	xauthB   *xauth.Behavior
	xroutesB *xroutes.Behavior
}

// submit 把一条命令送入循环；循环已退出时返回 ErrChannelClosed，
// 不会永远阻塞在一条没有消费者的通道上
func (c *Commander) submit(cmd Command) error {
	select {
	case c.cmdCh <- cmd:
		return nil
	case <-c.done:
		return ErrChannelClosed
	}
}

// ListenOn 请求循环绑定一个新的监听地址
func (c *Commander) ListenOn(addr types.Multiaddr) (types.Multiaddr, error) {
	reply := make(chan ListenOnReply, 1)
	if err := c.submit(ListenOn{Addr: addr, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case r := <-reply:
		return r.Addr, r.Err
	case <-c.done:
		return nil, ErrChannelClosed
	}
}

// Dial 请求循环建立到 peer 给定地址的出站连接，返回建立好的连接，
// 供调用方立即用于 OpenStream 或 InitiateAuth
func (c *Commander) Dial(peer types.PeerID, addr types.Multiaddr) (host.Conn, error) {
	reply := make(chan DialReply, 1)
	if err := c.submit(Dial{Peer: peer, Addr: addr, Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case r := <-reply:
		return r.Conn, r.Err
	case <-c.done:
		return nil, ErrChannelClosed
	}
}

// ConnsToPeer 返回到 peer 的当前活跃连接。这是 Host 的只读查询而非
// swarm 变更，与按行为操作一样绕过命令通道
func (c *Commander) ConnsToPeer(peer types.PeerID) []host.Conn {
	return c.host.ConnsToPeer(peer)
}

// ConnByID 按 ID 查找到 peer 的某条具体连接
func (c *Commander) ConnByID(peer types.PeerID, id swarm.ConnectionID) (host.Conn, bool) {
	return c.host.ConnByID(peer, id)
}

// Disconnect 请求循环关闭到 peer 的全部连接
func (c *Commander) Disconnect(peer types.PeerID) error {
	reply := make(chan DisconnectReply, 1)
	if err := c.submit(Disconnect{Peer: peer, Reply: reply}); err != nil {
		return err
	}
	select {
	case r := <-reply:
		return r.Err
	case <-c.done:
		return ErrChannelClosed
	}
}

// GetNetworkState 请求一份一致的网络状态快照
func (c *Commander) GetNetworkState() (NetworkState, error) {
	reply := make(chan NetworkState, 1)
	if err := c.submit(GetNetworkState{Reply: reply}); err != nil {
		return NetworkState{}, err
	}
	select {
	case state := <-reply:
		return state, nil
	case <-c.done:
		return NetworkState{}, ErrChannelClosed
	}
}

// Echo 把一个字符串经循环原样送回，仅供测试探测命令平面的存活
func (c *Commander) Echo(value string) (string, error) {
	reply := make(chan EchoReply, 1)
	if err := c.submit(Echo{Value: value, Reply: reply}); err != nil {
		return "", err
	}
	select {
	case r := <-reply:
		return r.Value, nil
	case <-c.done:
		return "", ErrChannelClosed
	}
}

// OpenStream 在 conn 上向对端打开一条新的逻辑 XStream
func (c *Commander) OpenStream(ctx context.Context, conn host.Conn) (xstream.XStream, error) {
	return c.xstreamB.OpenStream(ctx, conn)
}

// ApproveIncomingStream 回执一个 ApproveViaEvent 策略下等待中的 IncomingStreamRequest
func (c *Commander) ApproveIncomingStream(peer types.PeerID, conn swarm.ConnectionID, streamID xstream.XStreamID, result xstream.ApprovalResult) {
	c.xstreamB.ApproveIncoming(xstream.PendingKey{
		Direction: xstream.DirectionInbound,
		Peer:      peer,
		Conn:      conn,
		ID:        streamID,
	}, result)
}

// InitiateAuth 在 manual 模式下显式触发 conn 上的一次出站 PoR 交换
func (c *Commander) InitiateAuth(conn host.Conn) {
	c.xauthB.InitiateOutbound(conn)
}

// SubmitAuthResult 回执一个 ApproveViaEvent 策略下等待中的 VerifyPorRequest
func (c *Commander) SubmitAuthResult(connID swarm.ConnectionID, result AuthResult) {
	c.xauthB.SubmitAuthResult(connID, xauth.AuthResult{Ok: result.Ok, Metadata: result.Metadata, Reason: result.Reason})
}

// IsPeerAuthenticated 报告 connID 是否已达到 FullyAuthenticated
func (c *Commander) IsPeerAuthenticated(connID swarm.ConnectionID) bool {
	return c.xauthB.IsPeerAuthenticated(connID)
}

// EnableMdns 挂载本地多播发现
func (c *Commander) EnableMdns() error { return c.xroutesB.EnableMdns() }

// DisableMdns 卸载本地多播发现
func (c *Commander) DisableMdns() error { return c.xroutesB.DisableMdns() }

// EnableKad 以给定模式挂载 Kademlia
func (c *Commander) EnableKad(mode xroutes.KadMode) error { return c.xroutesB.EnableKad(mode) }

// DisableKad 卸载 Kademlia
func (c *Commander) DisableKad() error { return c.xroutesB.DisableKad() }

// SetKadMode 在运行期切换 DHT 模式
func (c *Commander) SetKadMode(mode xroutes.KadMode) error { return c.xroutesB.SetKadMode(mode) }

// GetKadMode 返回当前 DHT 模式
func (c *Commander) GetKadMode() (xroutes.KadMode, error) { return c.xroutesB.GetKadMode() }

// BootstrapToPeer 把地址登记进路由表并发起一次引导查询
func (c *Commander) BootstrapToPeer(ctx context.Context, peer types.PeerID, addrs []types.Multiaddr) error {
	return c.xroutesB.BootstrapToPeer(ctx, peer, addrs)
}

// FindPeer 做一次性最近节点查询
func (c *Commander) FindPeer(target types.PeerID) ([]types.PeerID, error) {
	return c.xroutesB.FindPeer(target)
}

// FindPeerAddresses 执行三态超时的组合搜索：0 只查本地路由表，
// N>0 带 N 秒截止时间，-1 等待至显式取消
func (c *Commander) FindPeerAddresses(peer types.PeerID, timeoutSecs int) ([]types.Multiaddr, error) {
	return c.xroutesB.FindPeerAddresses(peer, timeoutSecs)
}

// CancelPeerSearch 取消 peer 的任何在途搜索
func (c *Commander) CancelPeerSearch(peer types.PeerID) { c.xroutesB.CancelPeerSearch(peer) }

// CancelAllSearches 取消全部在途搜索
func (c *Commander) CancelAllSearches(reason string) { c.xroutesB.CancelAllSearches(reason) }

// GetActiveSearches 返回全部在途搜索的快照
func (c *Commander) GetActiveSearches() []xroutes.ActiveSearch { return c.xroutesB.GetActiveSearches() }

// ListenViaRelay 预留一个中继槽位并返回对应的 circuit 监听地址
func (c *Commander) ListenViaRelay(ctx context.Context, relayAddr types.Multiaddr, relayPeer types.PeerID) (types.Multiaddr, error) {
	return c.xroutesB.ListenViaRelay(ctx, relayAddr, relayPeer)
}

// Reachability 返回 AutoNAT 当前对本节点可达性的分类
func (c *Commander) Reachability() xroutes.Reachability { return c.xroutesB.Reachability() }
