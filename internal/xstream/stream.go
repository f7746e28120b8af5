package xstream

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

// flusher 是子流可选实现的接口；大多数内存/管道替身没有内部缓冲，
// Flush 因而是可选操作。
type flusher interface{ Flush() error }

// core 是 XStream 的共享内部状态：读写半边、状态机、错误
//
// 多个 XStream 值（克隆）持有同一个 *core 指针；读锁与写锁各自独立，
// 从不同时持有同一半边的读锁与写锁。
type core struct {
	id        XStreamID
	peer      types.PeerID
	conn      swarm.ConnectionID
	direction XStreamDirection

	readBufSize int

	readMu  sync.Mutex
	writeMu sync.Mutex

	main host.Substream
	errs host.Substream

	stateMu     sync.Mutex
	state       State
	err         error
	writeClosed bool
	readClosed  bool

	closeOnce sync.Once
	onClose   func()
}

// XStream 是一条逻辑双向流：配对两条原始子流后暴露的用户接口
type XStream struct {
	c *core
}

// ID 返回流配对标识
func (s XStream) ID() XStreamID { return s.c.id }

// Peer 返回对端 PeerID
func (s XStream) Peer() types.PeerID { return s.c.peer }

// Connection 返回承载该流的连接 ID
func (s XStream) Connection() swarm.ConnectionID { return s.c.conn }

// Direction 返回流配对方向
func (s XStream) Direction() XStreamDirection { return s.c.direction }

// State 返回当前状态机取值
func (s XStream) State() State {
	s.c.stateMu.Lock()
	defer s.c.stateMu.Unlock()
	return s.c.state
}

// Clone 返回共享同一对底层半边的另一个 XStream 值
//
// 任意克隆调用 close 都会影响全部克隆（interior synchronization）。
func (s XStream) Clone() XStream { return XStream{c: s.c} }

// SetOnClose 注册一个在 Close() 首次完成时恰好触发一次的回调，
// 供行为层据此发出 StreamClosed 事件；对克隆是共享的（设置一次即可）。
func (s XStream) SetOnClose(f func()) {
	s.c.onClose = f
}

func newXStream(id XStreamID, peer types.PeerID, conn swarm.ConnectionID, dir XStreamDirection, main, errs host.Substream, readBufSize int) XStream {
	if readBufSize <= 0 {
		readBufSize = 4096
	}
	return XStream{c: &core{
		id: id, peer: peer, conn: conn, direction: dir,
		main: main, errs: errs, state: StateOpen, readBufSize: readBufSize,
	}}
}

func (c *core) setErr(err error) {
	c.stateMu.Lock()
	if c.state != StateError {
		c.state = StateError
		c.err = err
	}
	c.stateMu.Unlock()
}

func (c *core) checkErr() error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state == StateError {
		return c.err
	}
	return nil
}

func (c *core) advanceOnEOF() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	switch c.state {
	case StateOpen:
		c.state = StateReadRemoteClosed
	case StateWriteLocalClosed:
		c.state = StateFullyClosed
	}
}

func (c *core) advanceOnWriteClose() {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	switch c.state {
	case StateOpen:
		c.state = StateWriteLocalClosed
	case StateReadRemoteClosed:
		c.state = StateFullyClosed
	}
}

// readRaw 把数据读入调用方提供的缓冲区，不做分配；供 Read/ReadExact/ReadToEnd
// 共用，避免 Read() 固定的缓冲容量截断 ReadExact 的精确字节数语义。
func (s XStream) readRaw(buf []byte) (int, error) {
	if err := s.c.checkErr(); err != nil {
		return 0, err
	}
	s.c.readMu.Lock()
	defer s.c.readMu.Unlock()

	if s.c.readClosed {
		return 0, ErrBrokenPipe
	}

	n, err := s.c.main.Read(buf)
	if err != nil {
		if err == io.EOF {
			s.c.advanceOnEOF()
			return n, io.EOF
		}
		s.c.setErr(err)
		return n, err
	}
	return n, nil
}

// Read 执行一次尽力而为的读取，返回一个新分配、非空容量的缓冲区。
func (s XStream) Read() ([]byte, error) {
	buf := make([]byte, s.c.readBufSize)
	n, err := s.readRaw(buf)
	return buf[:n], err
}

// ReadExact 重复读取直到恰好得到 n 字节，或流提前结束
//
// 短读时返回 *ReadExactError，包裹已读到的部分数据。
func (s XStream) ReadExact(n int) ([]byte, error) {
	out := make([]byte, n)
	read := 0
	for read < n {
		m, err := s.readRaw(out[read:])
		read += m
		if err != nil {
			if err == io.EOF {
				if read < n {
					return out[:read], &ReadExactError{Partial: out[:read], Err: ErrUnexpectedEOF}
				}
				break
			}
			return out[:read], err
		}
	}
	return out[:read], nil
}

// ReadToEnd 持续读取直到流结束，返回全部累积字节
func (s XStream) ReadToEnd() ([]byte, error) {
	var out []byte
	buf := make([]byte, s.c.readBufSize)
	for {
		n, err := s.readRaw(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}

// WriteAll 把 p 全部写入 Main 半边
func (s XStream) WriteAll(p []byte) error {
	if err := s.c.checkErr(); err != nil {
		return err
	}
	s.c.writeMu.Lock()
	defer s.c.writeMu.Unlock()

	if s.c.writeClosed {
		return ErrBrokenPipe
	}

	written := 0
	for written < len(p) {
		n, err := s.c.main.Write(p[written:])
		written += n
		if err != nil {
			s.c.setErr(err)
			return err
		}
	}
	return nil
}

// Flush 刷新 Main 半边（当底层子流实现 flusher 时）
func (s XStream) Flush() error {
	if f, ok := s.c.main.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// WriteError 把 p 写入 Error 半边，供对端 ReadError 消费
func (s XStream) WriteError(p []byte) error {
	if err := s.c.checkErr(); err != nil {
		return err
	}
	s.c.writeMu.Lock()
	defer s.c.writeMu.Unlock()
	if s.c.writeClosed {
		return ErrBrokenPipe
	}
	_, err := s.c.errs.Write(p)
	if err != nil {
		s.c.setErr(err)
	}
	return err
}

// CloseWrite 关闭 Main 与 Error 两条子流的写端
func (s XStream) CloseWrite() error {
	s.c.writeMu.Lock()
	defer s.c.writeMu.Unlock()
	if s.c.writeClosed {
		return nil
	}
	s.c.writeClosed = true
	s.c.advanceOnWriteClose()
	err1 := s.c.main.CloseWrite()
	err2 := s.c.errs.CloseWrite()
	if err1 != nil {
		return err1
	}
	return err2
}

// CloseRead 丢弃读半边；后续任何克隆上的读都会失败
func (s XStream) CloseRead() error {
	s.c.readMu.Lock()
	defer s.c.readMu.Unlock()
	s.c.readClosed = true
	err1 := s.c.main.CloseRead()
	err2 := s.c.errs.CloseRead()
	if err1 != nil {
		return err1
	}
	return err2
}

// Close 等价于先 CloseWrite() 再 CloseRead()；幂等
func (s XStream) Close() error {
	err1 := s.CloseWrite()
	err2 := s.CloseRead()
	s.c.stateMu.Lock()
	switch s.c.state {
	case StateError:
	case StateReadRemoteClosed, StateRemoteClosed, StateFullyClosed:
		s.c.state = StateFullyClosed
	default:
		// 本端读写都已关闭，但尚未观察到对端关闭
		s.c.state = StateLocalClosed
	}
	s.c.stateMu.Unlock()
	s.c.closeOnce.Do(func() {
		if s.c.onClose != nil {
			s.c.onClose()
		}
	})
	if err1 != nil {
		return err1
	}
	return err2
}

// ReadError 等待 Error 半边上的一个带外负载；如果在此之前 Main 半边已经
// 读到了部分数据，通过 *ErrorOnRead 一并返回。
func (s XStream) ReadError(ctx context.Context, mainPartial []byte) (*ErrorOnRead, error) {
	buf := make([]byte, s.c.readBufSize)
	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)
	go func() {
		n, err := s.c.errs.Read(buf)
		done <- result{n, err}
	}()
	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &ErrorOnRead{Partial: mainPartial, Payload: buf[:r.n]}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetDeadline 设置 Main 与 Error 两条子流的读写截止时间
func (s XStream) SetDeadline(t time.Time) error {
	if err := s.c.main.SetDeadline(t); err != nil {
		return err
	}
	return s.c.errs.SetDeadline(t)
}
