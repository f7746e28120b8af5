package swarmloop

import (
	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/pkg/types"
)

// Command 是 SwarmLoop 单一命令通道上流转的标签值。通道上只有 swarm 级
// 命令（携带一次性回复 channel），由 Dispatcher 按类型执行；按行为的操作
// 不是 Command，Commander 直接调用对应行为的方法，不经过这条通道。
type Command interface{ isSwarmCommand() }

type baseCommand struct{}

func (baseCommand) isSwarmCommand() {}

// ListenOn 请求在给定地址上开始监听
type ListenOn struct {
	baseCommand
	Addr  types.Multiaddr
	Reply chan ListenOnReply
}

// ListenOnReply 是 ListenOn 的一次性回复
type ListenOnReply struct {
	Addr types.Multiaddr
	Err  error
}

// Dial 请求拨号到给定 peer 的给定地址
type Dial struct {
	baseCommand
	Peer  types.PeerID
	Addr  types.Multiaddr
	Reply chan DialReply
}

// DialReply 是 Dial 的一次性回复，携带建立好的连接供调用方
// 立即用于 OpenStream/InitiateAuth 等按连接操作
type DialReply struct {
	Conn host.Conn
	Err  error
}

// Disconnect 请求关闭到某个 peer 的全部连接
type Disconnect struct {
	baseCommand
	Peer  types.PeerID
	Reply chan DisconnectReply
}

// DisconnectReply 是 Disconnect 的一次性回复
type DisconnectReply struct {
	Err error
}

// GetNetworkState 请求当前网络状态快照
type GetNetworkState struct {
	baseCommand
	Reply chan NetworkState
}

// NetworkState 是 GetNetworkState 的回复载荷
type NetworkState struct {
	PeerID             types.PeerID
	ListeningAddresses []types.Multiaddr
	ConnectedPeers     []types.PeerID
	AuthenticatedPeers []types.PeerID
}

// Shutdown 请求循环停止；回复只在循环已经退出之后发送
type Shutdown struct {
	baseCommand
	Reply chan ShutdownReply
}

// ShutdownReply 是 Shutdown 的一次性回复
type ShutdownReply struct{}

// Echo 把输入字符串原样送回，仅用于测试命令平面本身
type Echo struct {
	baseCommand
	Value string
	Reply chan EchoReply
}

// EchoReply 是 Echo 的一次性回复
type EchoReply struct {
	Value string
}
