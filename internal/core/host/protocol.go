package host

import (
	"bufio"
	"context"
	"io"

	"github.com/multiformats/go-varint"

	"github.com/xcore-net/xcore/pkg/types"
)

// StreamHandler 处理一条已经完成协议协商、归属某个已注册 protocol id 的
// 入站子流；调用方通常是 xstream.Behavior.HandleInbound 或
// xauth.Behavior.HandleInboundPorSubstream。
type StreamHandler func(conn Conn, stream Substream)

// bufferedSubstream 包装读取协议头时产生的 bufio.Reader，避免丢掉
// 紧跟在头后面、已经被预读进缓冲区但尚未交给调用方的数据。
type bufferedSubstream struct {
	Substream
	r *bufio.Reader
}

func (b *bufferedSubstream) Read(p []byte) (int, error) {
	return b.r.Read(p)
}

// writeProtocolHeader 把 protocol id 编码为一个 varint 长度前缀 + ascii 字节，
// 写在子流最前面——这是本包对"协议协商"的全部实现：只做协议 id 分发，
// 不做 multistream-select 式的版本列表/回退协商（那属于传输细节，不在核心范围内）。
func writeProtocolHeader(s Substream, protocolID types.ProtocolID) error {
	p := []byte(protocolID)
	if _, err := s.Write(varint.ToUvarint(uint64(len(p)))); err != nil {
		return err
	}
	_, err := s.Write(p)
	return err
}

// readProtocolHeader 读取 writeProtocolHeader 写入的 protocol id
func readProtocolHeader(br *bufio.Reader) (types.ProtocolID, error) {
	n, err := varint.ReadUvarint(br)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return "", err
	}
	return types.ProtocolID(buf), nil
}

// OpenProtocolStream 在 conn 上发起一条新的出站子流并写入 protocol id 头。
// 本包的 Conn 已经代表一条具体连接，调用方不需要再按 peer 选路。
func OpenProtocolStream(ctx context.Context, conn Conn, protocolID types.ProtocolID) (Substream, error) {
	s, err := conn.OpenSubstream(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeProtocolHeader(s, protocolID); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// SetStreamHandler 注册一个 protocol id 的入站处理器
//
// 一旦某个到达的子流在协议头里声明了这个 protocol id，
// substreamAcceptLoop 就把它直接派发给 handler，而不再
// 经由 Events() 发出笼统的 InboundSubstream。
func (h *Host) SetStreamHandler(protocolID types.ProtocolID, handler StreamHandler) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	if h.handlers == nil {
		h.handlers = make(map[types.ProtocolID]StreamHandler)
	}
	h.handlers[protocolID] = handler
}

// RemoveStreamHandler 注销一个 protocol id 的处理器
func (h *Host) RemoveStreamHandler(protocolID types.ProtocolID) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	delete(h.handlers, protocolID)
}

func (h *Host) handlerFor(protocolID types.ProtocolID) (StreamHandler, bool) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	handler, ok := h.handlers[protocolID]
	return handler, ok
}
