package xstream

import (
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// ApprovalPolicy 决定入站子流配对前是否放行
type ApprovalPolicy int

const (
	// AutoApprove 总是放行
	AutoApprove ApprovalPolicy = iota
	// ApproveViaEvent 发出 IncomingStreamRequest 并等待一次性回执
	ApproveViaEvent
)

// ApprovalDecision 是 ApproveViaEvent 策略下运营方给出的回执
type ApprovalDecision int

const (
	// Approved 放行
	Approved ApprovalDecision = iota
	// Rejected 拒绝，携带原因
	Rejected
)

// ApprovalResult 是一次性回执的完整内容
type ApprovalResult struct {
	Decision ApprovalDecision
	Reason   string
}

// pendingApproval 是一个等待中的 ApproveViaEvent 审批
type pendingApproval struct {
	key    PendingKey
	paired *Paired
}

// PeerConn 标识一次审批请求归属的连接，便于去重/查找
type PeerConn struct {
	Peer types.PeerID
	Conn swarm.ConnectionID
}
