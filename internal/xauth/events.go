package xauth

import (
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// Event 是 xauth 行为对外发出的事件，最终被转发到公共事件总线。
type Event interface{ isXAuthEvent() }

type baseEvent struct {
	Peer    types.PeerID
	Conn    swarm.ConnectionID
	Address types.Multiaddr
}

func (baseEvent) isXAuthEvent() {}

// MutualAuthSuccess 两个方向都已成功认证
type MutualAuthSuccess struct {
	baseEvent
}

// OutboundAuthSuccess 仅出站方向成功
type OutboundAuthSuccess struct {
	baseEvent
	Metadata map[string]string
}

// InboundAuthSuccess 仅入站方向成功
type InboundAuthSuccess struct {
	baseEvent
}

// OutboundAuthFailure 出站方向失败
type OutboundAuthFailure struct {
	baseEvent
	Reason string
}

// InboundAuthFailure 入站方向失败
type InboundAuthFailure struct {
	baseEvent
	Reason string
}

// TimeoutDirection 标记一次超时波及的方向
type TimeoutDirection int

const (
	// TimeoutOutbound 仅出站方向超时
	TimeoutOutbound TimeoutDirection = iota
	// TimeoutInbound 仅入站方向超时
	TimeoutInbound
	// TimeoutBoth 两个方向都超时，或整条连接长期无活动
	TimeoutBoth
)

// AuthTimeout 一个或两个方向的 PoR 交换超过了截止时间
type AuthTimeout struct {
	baseEvent
	Direction TimeoutDirection
}

// VerifyPorRequest 在 ApproveViaEvent 策略下发出，等待运营方对入站 PoR 的裁决
type VerifyPorRequest struct {
	baseEvent
	Por      ProofOfRepresentation
	Metadata map[string]string
	// Decide 由运营方调用恰好一次
	Decide func(AuthResult)
}

// AuthResult 是运营方对一次 VerifyPorRequest 的裁决
type AuthResult struct {
	Ok       bool
	Metadata map[string]string
	Reason   string
}

// Command 是 xauth 行为接受的命令
type Command interface{ isXAuthCommand() }

// InitiateAuth 在 manual 模式下显式触发一次出站 PoR 请求
type InitiateAuth struct {
	Conn swarm.ConnectionID
}

func (InitiateAuth) isXAuthCommand() {}

// SubmitAuthResult 以命令形式回执一个等待中的 VerifyPorRequest
type SubmitAuthResult struct {
	Conn   swarm.ConnectionID
	Result AuthResult
}

func (SubmitAuthResult) isXAuthCommand() {}
