package swarmloop

import (
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/internal/xstream"
	"github.com/xcore-net/xcore/pkg/types"
)

// Event 是公共事件总线对外发出的全部事件的封闭集合。
type Event interface{ isNodeEvent() }

type baseEvent struct{}

func (baseEvent) isNodeEvent() {}

// ListeningOn 报告 ListenOn 命令针对某个地址成功返回
type ListeningOn struct {
	baseEvent
	Addr types.Multiaddr
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

// PeerConnected 到某个 peer 的第一条连接建立
type PeerConnected struct {
	baseEvent
	Peer types.PeerID
}

// PeerDisconnected 到某个 peer 的最后一条连接关闭
type PeerDisconnected struct {
	baseEvent
	Peer types.PeerID
}

// ConnectionEstablished 一条具体连接建立
type ConnectionEstablished struct {
	baseEvent
	Peer types.PeerID
	Conn swarm.ConnectionID
}

// ConnectionClosed 一条具体连接关闭
type ConnectionClosed struct {
	baseEvent
	Peer types.PeerID
	Conn swarm.ConnectionID
}

// PeerAuthenticated 某个 peer 的至少一条连接达到 FullyAuthenticated
type PeerAuthenticated struct {
	baseEvent
	Peer types.PeerID
}

// AuthenticationFailed 某个 peer 的认证交换失败
type AuthenticationFailed struct {
	baseEvent
	Peer types.PeerID
}

// StreamOpened 一条逻辑流完成配对、可供使用
type StreamOpened struct {
	baseEvent
	Peer types.PeerID
	ID   xstream.XStreamID
}

// StreamClosed 一条逻辑流已经完全关闭
type StreamClosed struct {
	baseEvent
	Peer types.PeerID
	ID   xstream.XStreamID
}

// IncomingStream 一条入站逻辑流已经配对完成并通过了审批策略
type IncomingStream struct {
	baseEvent
	Stream xstream.XStream
}

// IncomingStreamRequest 在 xstream 的 ApproveViaEvent 策略下发出
type IncomingStreamRequest struct {
	baseEvent
	Peer   types.PeerID
	Conn   swarm.ConnectionID
	Decide func(xstream.ApprovalResult)
}

// VerifyPorRequest 在 xauth 的 ApproveViaEvent 策略下发出
type VerifyPorRequest struct {
	baseEvent
	Peer     types.PeerID
	Conn     swarm.ConnectionID
	Address  types.Multiaddr
	Metadata map[string]string
	Decide   func(AuthResult)
}

// AuthResult 是运营方对一次 VerifyPorRequest 的裁决，镜像 xauth.AuthResult
// 以避免公共事件面直接暴露内部包类型。
type AuthResult struct {
	Ok       bool
	Metadata map[string]string
	Reason   string
}

// Error 报告一次未经请求方征询的运行时错误（未征求回复的 I/O/协议错误）
type Error struct {
	baseEvent
	Message string
}

// NodeStarted 循环已经开始处理命令与事件
type NodeStarted struct{ baseEvent }

// NodeStopped 循环已经退出
type NodeStopped struct{ baseEvent }
