package xstream

import (
	"context"
	"sync"
	"time"

	"github.com/xcore-net/xcore/internal/core/host"
)

// Config 是 Behavior 运行所需的全部可调参数。
type Config struct {
	// PendingTimeout 是一条子流在等待另一半到达期间允许等待的时长
	PendingTimeout time.Duration
	// HeaderReadTimeout 是读取对端 17 字节 header 的截止时长
	HeaderReadTimeout time.Duration
	// Policy 决定入站流配对完成后是否立即可用
	Policy ApprovalPolicy
	// ReadBufSize 是新建 XStream 的默认读缓冲大小
	ReadBufSize int
}

// Behavior 串联 PendingManager、入站审批策略与底层 Host，
// 实现出站发起与入站接受两条配对路径。
type Behavior struct {
	cfg     Config
	pending *PendingManager
	events  chan Event

	approvalsMu sync.Mutex
	approvals   map[PendingKey]*pendingApproval
}

// NewBehavior 创建一个 Behavior
func NewBehavior(cfg Config) *Behavior {
	return &Behavior{
		cfg:       cfg,
		pending:   NewPendingManager(cfg.PendingTimeout),
		events:    make(chan Event, 64),
		approvals: make(map[PendingKey]*pendingApproval),
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
		logger.Warn("xstream event channel full, dropping event")
	}
}

// OpenStream 在给定连接上发起一对新的出站子流（Main + Error），
// 写入各自 header 后直接组装为一个已打开的 XStream——出站方不需要配对等待,
// 因为两个半边都由本端直接持有。
func (b *Behavior) OpenStream(ctx context.Context, conn host.Conn) (XStream, error) {
	id := NextXStreamID()
	peer := conn.Peer()

	main, err := host.OpenProtocolStream(ctx, conn, ProtocolID)
	if err != nil {
		return XStream{}, err
	}
	if err := WriteHeader(main, XStreamHeader{ID: id, Role: RoleMain}); err != nil {
		main.Close()
		return XStream{}, err
	}

	errs, err := host.OpenProtocolStream(ctx, conn, ProtocolID)
	if err != nil {
		main.Close()
		return XStream{}, err
	}
	if err := WriteHeader(errs, XStreamHeader{ID: id, Role: RoleError}); err != nil {
		main.Close()
		errs.Close()
		return XStream{}, err
	}

	stream := newXStream(id, peer, conn.ID(), DirectionOutbound, main, errs, b.cfg.ReadBufSize)
	stream.SetOnClose(func() { b.emit(StreamClosed{Peer: peer, Conn: conn.ID(), ID: id}) })
	b.emit(StreamOpened{Peer: peer, Conn: conn.ID(), ID: id, Direction: DirectionOutbound})
	return stream, nil
}

// HandleInbound 处理一条刚到达、尚未归属任何逻辑流的入站子流：
// 读取 header，尝试与等待中的另一半配对，必要时走审批策略。
func (b *Behavior) HandleInbound(conn host.Conn, raw host.Substream) {
	deadline := time.Now().Add(b.cfg.HeaderReadTimeout)
	raw.SetReadDeadline(deadline)
	hdr, err := ReadHeader(raw)
	raw.SetReadDeadline(time.Time{})
	if err != nil {
		raw.Close()
		b.emit(SubstreamReadHeaderError{Direction: DirectionInbound, Peer: conn.Peer(), Conn: conn.ID(), Err: err})
		return
	}

	key := PendingKey{Direction: DirectionInbound, Peer: conn.Peer(), Conn: conn.ID(), ID: hdr.ID}
	paired, sameRole := b.pending.Offer(key, hdr.Role, raw, time.Now())
	if sameRole {
		raw.Close()
		b.pending.mu.Lock()
		if existing, ok := b.pending.pending[key]; ok {
			delete(b.pending.pending, key)
			existing.Stream.Close()
		}
		b.pending.mu.Unlock()
		b.emit(SubstreamSameRole{Key: key, Role: hdr.Role})
		return
	}
	if paired == nil {
		return
	}

	b.completeInbound(conn, key, paired)
}

func (b *Behavior) completeInbound(conn host.Conn, key PendingKey, paired *Paired) {
	finish := func(result ApprovalResult) {
		if result.Decision == Rejected {
			paired.Main.Close()
			paired.Error.Close()
			return
		}
		stream := newXStream(key.ID, key.Peer, key.Conn, DirectionInbound, paired.Main, paired.Error, b.cfg.ReadBufSize)
		stream.SetOnClose(func() { b.emit(StreamClosed{Peer: key.Peer, Conn: key.Conn, ID: key.ID}) })
		b.emit(StreamOpened{Peer: key.Peer, Conn: key.Conn, ID: key.ID, Direction: DirectionInbound})
		b.emit(IncomingStream{Stream: stream})
	}

	if b.cfg.Policy == AutoApprove {
		finish(ApprovalResult{Decision: Approved})
		return
	}

	pa := &pendingApproval{key: key, paired: paired}
	b.approvalsMu.Lock()
	b.approvals[key] = pa
	b.approvalsMu.Unlock()

	decided := false
	b.emit(IncomingStreamRequest{
		Peer: PeerConn{Peer: key.Peer, Conn: key.Conn},
		Key:  key,
		Decide: func(result ApprovalResult) {
			b.approvalsMu.Lock()
			_, ok := b.approvals[key]
			delete(b.approvals, key)
			b.approvalsMu.Unlock()
			if !ok || decided {
				return
			}
			decided = true
			finish(result)
		},
	})
}

// ApproveIncoming 以命令形式回执一个等待中的入站审批，等价于调用 IncomingStreamRequest.Decide
func (b *Behavior) ApproveIncoming(key PendingKey, result ApprovalResult) {
	b.approvalsMu.Lock()
	pa, ok := b.approvals[key]
	delete(b.approvals, key)
	b.approvalsMu.Unlock()
	if !ok {
		return
	}
	if result.Decision == Rejected {
		pa.paired.Main.Close()
		pa.paired.Error.Close()
		return
	}
	stream := newXStream(key.ID, key.Peer, key.Conn, DirectionInbound, pa.paired.Main, pa.paired.Error, b.cfg.ReadBufSize)
	stream.SetOnClose(func() { b.emit(StreamClosed{Peer: key.Peer, Conn: key.Conn, ID: key.ID}) })
	b.emit(StreamOpened{Peer: key.Peer, Conn: key.Conn, ID: key.ID, Direction: DirectionInbound})
	b.emit(IncomingStream{Stream: stream})
}

// Sweep 清理全部超过等待期限的未配对半边，为每一个发出 SubstreamTimeoutError
func (b *Behavior) Sweep(now time.Time) {
	for _, p := range b.pending.Sweep(now) {
		p.Stream.Close()
		b.emit(SubstreamTimeoutError{Key: p.Key, Role: p.Role})
	}
}

// PendingCount 返回当前等待配对的子流半边数量
func (b *Behavior) PendingCount() int {
	return b.pending.Len()
}
