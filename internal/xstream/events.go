package xstream

import (
	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// Event 是 xstream 行为对外发出的事件，最终被转发到公共事件总线。
type Event interface{ isXStreamEvent() }

// IncomingStream 报告一条刚完成配对并已经可用的入站流
type IncomingStream struct {
	Stream XStream
}

func (IncomingStream) isXStreamEvent() {}

// IncomingStreamRequest 在 ApproveViaEvent 策略下发出，等待运营方的一次性回执
type IncomingStreamRequest struct {
	Peer PeerConn
	Key  PendingKey
	// Decide 由运营方调用恰好一次；审批没有超时，调用之前这一对子流一直保持待批
	Decide func(ApprovalResult)
}

func (IncomingStreamRequest) isXStreamEvent() {}

// SubstreamReadHeaderError 报告读取子流头部失败（对端提前关闭、IO 错误等）
type SubstreamReadHeaderError struct {
	Direction XStreamDirection
	Peer      types.PeerID
	Conn      swarm.ConnectionID
	Err       error
}

func (SubstreamReadHeaderError) isXStreamEvent() {}

// SubstreamSameRole 报告一对到达的子流携带了相同角色，属于协议错误
type SubstreamSameRole struct {
	Key  PendingKey
	Role SubstreamRole
}

func (SubstreamSameRole) isXStreamEvent() {}

// SubstreamTimeoutError 报告一个等待中的半边超过了配对期限，已被丢弃
type SubstreamTimeoutError struct {
	Key  PendingKey
	Role SubstreamRole
}

func (SubstreamTimeoutError) isXStreamEvent() {}

// StreamOpened 报告一条流（入站或出站）已经配对完成、可供使用
type StreamOpened struct {
	Peer      types.PeerID
	Conn      swarm.ConnectionID
	ID        XStreamID
	Direction XStreamDirection
}

func (StreamOpened) isXStreamEvent() {}

// StreamClosed 报告一条流已经完全关闭
type StreamClosed struct {
	Peer types.PeerID
	Conn swarm.ConnectionID
	ID   XStreamID
}

func (StreamClosed) isXStreamEvent() {}

// Command 是 xstream 行为接受的命令。
type Command interface{ isXStreamCommand() }

// OpenStream 请求在一条已建立的连接上打开一条新的逻辑流
type OpenStream struct {
	Conn  host.Conn
	Peer  types.PeerID
	Reply chan OpenStreamReply
}

func (OpenStream) isXStreamCommand() {}

// OpenStreamReply 是 OpenStream 的一次性回执
type OpenStreamReply struct {
	Stream XStream
	Err    error
}

// ApproveIncoming 是运营方对一个 IncomingStreamRequest 的回执命令形式，
// 供不便使用闭包回调的调用方（例如跨进程 RPC 封装）使用。
type ApproveIncoming struct {
	Key    PendingKey
	Result ApprovalResult
}

func (ApproveIncoming) isXStreamCommand() {}
