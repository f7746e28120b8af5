package xauth

import (
	"context"
	"sync"
	"time"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// PoRSupplier 在每次发起出站请求时返回本端当前有效的 PoR
type PoRSupplier func(peer types.PeerID) (ProofOfRepresentation, error)

// Config 是 Behavior 运行所需的全部可调参数
type Config struct {
	AuthTimeout         time.Duration
	HandshakeTimeout    time.Duration
	AutoInitiate        bool
	Policy              ApprovalPolicy
	MaxMetadataEntries  int
	MaxMetadataValueLen int
	// OwnMetadata 是本端在成功响应里附带的元数据
	OwnMetadata map[string]string
	// SupplyPoR 返回本端面向给定对端的当前 PoR
	SupplyPoR PoRSupplier
}

func (c Config) validateMetadata(md map[string]string) error {
	if len(md) > c.MaxMetadataEntries {
		return ErrMetadataTooLarge
	}
	for _, v := range md {
		if len(v) > c.MaxMetadataValueLen {
			return ErrMetadataTooLarge
		}
	}
	return nil
}

type connEntry struct {
	conn      host.Conn
	state     ConnectionState
	lastSeen  time.Time
	emittedMA bool // MutualAuthSuccess 是否已经发出过（终态后不重复发）
}

type pendingVerify struct {
	conn   *connEntry
	por    ProofOfRepresentation
	md     map[string]string
	decide func(AuthResult)
}

// Behavior 串联每条连接的双向 DirectionalAuthState、策略裁决与超时清扫
type Behavior struct {
	cfg Config

	mu       sync.Mutex
	conns    map[swarm.ConnectionID]*connEntry
	pendings map[swarm.ConnectionID]*pendingVerify

	events chan Event
}

// NewBehavior 创建一个 Behavior
func NewBehavior(cfg Config) *Behavior {
	return &Behavior{
		cfg:      cfg,
		conns:    make(map[swarm.ConnectionID]*connEntry),
		pendings: make(map[swarm.ConnectionID]*pendingVerify),
		events:   make(chan Event, 64),
	}
}

// Events 返回该行为产生的事件流
func (b *Behavior) Events() <-chan Event {
	return b.events
}

func (b *Behavior) emit(e Event) {
	select {
	case b.events <- e:
	default:
		logger.Warn("xauth event channel full, dropping event")
	}
}

func (b *Behavior) entry(conn host.Conn) *connEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.conns[conn.ID()]
	if !ok {
		e = &connEntry{conn: conn, lastSeen: time.Now()}
		b.conns[conn.ID()] = e
	}
	return e
}

func (b *Behavior) base(e *connEntry) baseEvent {
	return baseEvent{Peer: e.conn.Peer(), Conn: e.conn.ID(), Address: e.conn.RemoteMultiaddr()}
}

// HandleConnEstablished 登记一条新连接，按配置决定是否立即发起出站 PoR 请求
func (b *Behavior) HandleConnEstablished(conn host.Conn) {
	e := b.entry(conn)
	if b.cfg.AutoInitiate {
		go b.initiateOutbound(e)
	}
}

// InitiateOutbound 在 manual 模式下显式触发一次出站 PoR 请求
func (b *Behavior) InitiateOutbound(conn host.Conn) {
	go b.initiateOutbound(b.entry(conn))
}

func (b *Behavior) initiateOutbound(e *connEntry) {
	b.mu.Lock()
	if e.state.Outbound.Phase != NotStarted {
		b.mu.Unlock()
		return
	}
	e.state.Outbound = DirectionalAuthState{Phase: InProgress, StartedAt: time.Now()}
	b.mu.Unlock()

	fail := func(reason string) {
		b.mu.Lock()
		e.state.Outbound = DirectionalAuthState{Phase: Failed, Reason: reason, StartedAt: e.state.Outbound.StartedAt}
		b.mu.Unlock()
		b.emit(OutboundAuthFailure{baseEvent: b.base(e), Reason: reason})
	}

	por, err := b.cfg.SupplyPoR(e.conn.Peer())
	if err != nil {
		fail(err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.HandshakeTimeout)
	defer cancel()
	sub, err := host.OpenProtocolStream(ctx, e.conn, ProtocolID)
	if err != nil {
		fail(err.Error())
		return
	}
	defer sub.Close()
	sub.SetDeadline(time.Now().Add(b.cfg.HandshakeTimeout))

	payload, err := EncodeRequest(Request{Por: por, Metadata: b.cfg.OwnMetadata})
	if err != nil {
		fail(err.Error())
		return
	}
	if err := WriteFrame(sub, payload); err != nil {
		fail(err.Error())
		return
	}

	respBytes, err := ReadFrame(sub)
	if err != nil {
		fail(err.Error())
		return
	}
	resp, err := DecodeResponse(respBytes)
	if err != nil {
		fail(err.Error())
		return
	}
	if !resp.Ok {
		fail(resp.Reason)
		return
	}

	b.mu.Lock()
	e.state.Outbound = DirectionalAuthState{Phase: Successful, Metadata: resp.Metadata, StartedAt: e.state.Outbound.StartedAt}
	e.lastSeen = time.Now()
	b.mu.Unlock()
	b.emit(OutboundAuthSuccess{baseEvent: b.base(e), Metadata: resp.Metadata})
	b.maybeEmitMutualSuccess(e)
}

// HandleInboundPorSubstream 处理对端在 /por-auth/1.0.0 上发起的一次请求
func (b *Behavior) HandleInboundPorSubstream(conn host.Conn, sub host.Substream) {
	e := b.entry(conn)
	defer sub.Close()
	sub.SetDeadline(time.Now().Add(b.cfg.HandshakeTimeout))

	b.mu.Lock()
	if e.state.Inbound.Phase == NotStarted {
		e.state.Inbound = DirectionalAuthState{Phase: InProgress, StartedAt: time.Now()}
	}
	b.mu.Unlock()

	fail := func(reason string) {
		b.mu.Lock()
		e.state.Inbound = DirectionalAuthState{Phase: Failed, Reason: reason, StartedAt: e.state.Inbound.StartedAt}
		b.mu.Unlock()
		WriteFrame(sub, mustEncodeErrorResponse(reason))
		b.emit(InboundAuthFailure{baseEvent: b.base(e), Reason: reason})
	}

	reqBytes, err := ReadFrame(sub)
	if err != nil {
		fail(err.Error())
		return
	}
	req, err := DecodeRequest(reqBytes)
	if err != nil {
		fail(err.Error())
		return
	}
	if err := b.cfg.validateMetadata(req.Metadata); err != nil {
		fail(err.Error())
		return
	}
	if err := req.Por.Validate(time.Now(), conn.Peer()); err != nil {
		fail(err.Error())
		return
	}

	if b.cfg.Policy == AutoApprove {
		b.approveInbound(e, sub, req, AuthResult{Ok: true, Metadata: b.cfg.OwnMetadata})
		return
	}

	decided := make(chan AuthResult, 1)
	b.mu.Lock()
	if _, exists := b.pendings[conn.ID()]; exists {
		b.mu.Unlock()
		fail(ErrAlreadyPending.Error())
		return
	}
	b.pendings[conn.ID()] = &pendingVerify{
		conn:   e,
		por:    req.Por,
		md:     req.Metadata,
		decide: func(result AuthResult) { decided <- result },
	}
	b.mu.Unlock()

	b.emit(VerifyPorRequest{
		baseEvent: b.base(e),
		Por:       req.Por,
		Metadata:  req.Metadata,
		Decide: func(result AuthResult) {
			b.resolvePending(conn.ID(), result)
		},
	})

	timer := time.NewTimer(b.cfg.AuthTimeout)
	defer timer.Stop()
	select {
	case result := <-decided:
		b.approveInbound(e, sub, req, result)
	case <-timer.C:
		b.mu.Lock()
		_, waiting := b.pendings[conn.ID()]
		delete(b.pendings, conn.ID())
		b.mu.Unlock()
		if waiting {
			fail("verification decision timed out")
			return
		}
		// 裁决与超时同时到达：裁决已经从 pendings 里摘走了条目，
		// 结果马上会出现在 decided 上
		b.approveInbound(e, sub, req, <-decided)
	}
}

// resolvePending 把一条运营方裁决送达等待中的入站处理器；pendings 表是
// 唯一的仲裁者，重复裁决与未知连接的裁决都是空操作
func (b *Behavior) resolvePending(connID swarm.ConnectionID, result AuthResult) {
	b.mu.Lock()
	p, ok := b.pendings[connID]
	delete(b.pendings, connID)
	b.mu.Unlock()
	if !ok {
		return
	}
	p.decide(result)
}

// SubmitAuthResult 以命令形式回执一个等待中的 VerifyPorRequest，
// 与 VerifyPorRequest.Decide 等价，供不便持有闭包的调用方使用
func (b *Behavior) SubmitAuthResult(connID swarm.ConnectionID, result AuthResult) {
	b.resolvePending(connID, result)
}

func (b *Behavior) approveInbound(e *connEntry, sub host.Substream, req Request, result AuthResult) {
	if !result.Ok {
		WriteFrame(sub, mustEncodeErrorResponse(result.Reason))
		b.mu.Lock()
		e.state.Inbound = DirectionalAuthState{Phase: Failed, Reason: result.Reason, StartedAt: e.state.Inbound.StartedAt}
		b.mu.Unlock()
		b.emit(InboundAuthFailure{baseEvent: b.base(e), Reason: result.Reason})
		return
	}
	payload, err := EncodeResponse(Response{Ok: true, Metadata: result.Metadata})
	if err != nil {
		return
	}
	if err := WriteFrame(sub, payload); err != nil {
		return
	}
	b.mu.Lock()
	e.state.Inbound = DirectionalAuthState{Phase: Successful, Metadata: req.Metadata, StartedAt: e.state.Inbound.StartedAt}
	e.lastSeen = time.Now()
	b.mu.Unlock()
	b.emit(InboundAuthSuccess{baseEvent: b.base(e)})
	b.maybeEmitMutualSuccess(e)
}

func (b *Behavior) maybeEmitMutualSuccess(e *connEntry) {
	b.mu.Lock()
	fire := !e.emittedMA && e.state.Combined() == FullyAuthenticated
	if fire {
		e.emittedMA = true
	}
	b.mu.Unlock()
	if fire {
		b.emit(MutualAuthSuccess{baseEvent: b.base(e)})
	}
}

// IsPeerAuthenticated 报告某条连接是否已达到 FullyAuthenticated
func (b *Behavior) IsPeerAuthenticated(connID swarm.ConnectionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	e, ok := b.conns[connID]
	if !ok {
		return false
	}
	return e.state.Combined() == FullyAuthenticated
}

// Sweep 检查全部非终态连接的方向超时，发出对应的 AuthTimeout
func (b *Behavior) Sweep(now time.Time) {
	b.mu.Lock()
	type due struct {
		e   *connEntry
		dir TimeoutDirection
	}
	var fired []due
	for _, e := range b.conns {
		outTimedOut := e.state.Outbound.Phase == InProgress && now.Sub(e.state.Outbound.StartedAt) >= b.cfg.AuthTimeout
		inTimedOut := e.state.Inbound.Phase == InProgress && now.Sub(e.state.Inbound.StartedAt) >= b.cfg.AuthTimeout

		inactiveBoth := e.state.Combined() != FullyAuthenticated && now.Sub(e.lastSeen) >= b.cfg.AuthTimeout &&
			e.state.Inbound.Phase != Failed && e.state.Outbound.Phase != Failed

		switch {
		case outTimedOut && inTimedOut:
			if !e.state.Outbound.TimedOutOnce || !e.state.Inbound.TimedOutOnce {
				e.state.Outbound.TimedOutOnce = true
				e.state.Inbound.TimedOutOnce = true
				fired = append(fired, due{e, TimeoutBoth})
			}
		case outTimedOut:
			if !e.state.Outbound.TimedOutOnce {
				e.state.Outbound.TimedOutOnce = true
				fired = append(fired, due{e, TimeoutOutbound})
			}
		case inTimedOut:
			if !e.state.Inbound.TimedOutOnce {
				e.state.Inbound.TimedOutOnce = true
				fired = append(fired, due{e, TimeoutInbound})
			}
		case inactiveBoth:
			if !e.state.Outbound.TimedOutOnce || !e.state.Inbound.TimedOutOnce {
				e.state.Outbound.TimedOutOnce = true
				e.state.Inbound.TimedOutOnce = true
				fired = append(fired, due{e, TimeoutBoth})
			}
		}
	}
	b.mu.Unlock()

	for _, d := range fired {
		b.emit(AuthTimeout{baseEvent: b.base(d.e), Direction: d.dir})
	}
}

func mustEncodeErrorResponse(reason string) []byte {
	payload, err := EncodeResponse(Response{Ok: false, Reason: reason})
	if err != nil {
		return []byte{}
	}
	return payload
}
