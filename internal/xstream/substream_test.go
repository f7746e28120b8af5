package xstream

import (
	"io"
	"net"
	"sync"
	"time"
)

// testSubstream 用两条独立方向的 net.Pipe() 拼出一条支持真半关闭的子流替身，
// 供测试直接构造 XStream 而不依赖 internal/core/host 的内存传输。
type testSubstream struct {
	send, recv net.Conn

	mu          sync.Mutex
	writeClosed bool
	closeOnce   sync.Once
}

func newTestSubstreamPair() (*testSubstream, *testSubstream) {
	d1a, d1b := net.Pipe()
	d2a, d2b := net.Pipe()
	a := &testSubstream{send: d1a, recv: d2a}
	b := &testSubstream{send: d2b, recv: d1b}
	return a, b
}

func (s *testSubstream) Read(p []byte) (int, error) {
	n, err := s.recv.Read(p)
	if err == io.ErrClosedPipe {
		return n, io.EOF
	}
	return n, err
}

func (s *testSubstream) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.writeClosed
	s.mu.Unlock()
	if closed {
		return 0, ErrBrokenPipe
	}
	n, err := s.send.Write(p)
	if err == io.ErrClosedPipe {
		return n, ErrBrokenPipe
	}
	return n, err
}

func (s *testSubstream) CloseRead() error {
	return s.recv.Close()
}

func (s *testSubstream) CloseWrite() error {
	s.mu.Lock()
	if s.writeClosed {
		s.mu.Unlock()
		return nil
	}
	s.writeClosed = true
	s.mu.Unlock()
	return s.send.Close()
}

func (s *testSubstream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		_ = s.CloseWrite()
		err = s.recv.Close()
	})
	return err
}

func (s *testSubstream) SetDeadline(t time.Time) error {
	if err := s.send.SetWriteDeadline(t); err != nil {
		return err
	}
	return s.recv.SetReadDeadline(t)
}

func (s *testSubstream) SetReadDeadline(t time.Time) error  { return s.recv.SetReadDeadline(t) }
func (s *testSubstream) SetWriteDeadline(t time.Time) error { return s.send.SetWriteDeadline(t) }
