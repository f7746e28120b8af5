package xroutes

import (
	"github.com/xcore-net/xcore/pkg/types"
)

// KadMode 镜像 config.KadMode 的三态字符串，供运行期 SetKadMode/GetKadMode
// 的命令回复使用，避免 xroutes 直接依赖 config 包产生环路。
type KadMode string

const (
	KadModeClient KadMode = "client"
	KadModeServer KadMode = "server"
	KadModeAuto   KadMode = "auto"
)

// BootstrapResult 是 BootstrapToPeer 完成后的回复
type BootstrapResult struct {
	Err error
}

// FindPeerResult 是 FindPeer 一次性最近节点查询的回复
type FindPeerResult struct {
	Peers []types.PeerID
	Err   error
}
