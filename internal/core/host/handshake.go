package host

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/xcore-net/xcore/pkg/types"
)

// 辅助协议在原始子流上交换的握手结果帧：
//
//	成功：[2 字节大端 0x0000]
//	失败：[2 字节大端 (L+1)][L 字节 UTF-8 原因]
//
// 读取握手有界超时，超时以 os.ErrDeadlineExceeded（TimedOut 类 I/O 错误）
// 的形式从底层子流冒出。

// DefaultHandshakeTimeout 是读取一个握手帧的默认截止时长
const DefaultHandshakeTimeout = 5 * time.Second

// maxHandshakeReason 是失败原因的长度上限：2 字节前缀能表达的最大值
const maxHandshakeReason = 65534

// HandshakeError 携带对端在失败握手里报告的原因
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string {
	return "host: handshake failed: " + e.Reason
}

// WriteHandshakeSuccess 写入一个成功握手帧
func WriteHandshakeSuccess(w io.Writer) error {
	var frame [2]byte
	_, err := w.Write(frame[:])
	return err
}

// WriteHandshakeFailure 写入一个携带原因的失败握手帧
func WriteHandshakeFailure(w io.Writer, reason string) error {
	msg := []byte(reason)
	if len(msg) > maxHandshakeReason {
		msg = msg[:maxHandshakeReason]
	}
	frame := make([]byte, 2+len(msg))
	binary.BigEndian.PutUint16(frame[:2], uint16(len(msg)+1))
	copy(frame[2:], msg)
	_, err := w.Write(frame)
	return err
}

// ReadHandshake 在 timeout 内读取一个握手帧
//
// 成功帧返回 nil；失败帧返回 *HandshakeError；读超时由子流的
// deadline 机制产生 TimedOut 类错误。timeout <= 0 时使用
// DefaultHandshakeTimeout。
func ReadHandshake(s Substream, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}
	if err := s.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	defer s.SetReadDeadline(time.Time{})

	var prefix [2]byte
	if _, err := io.ReadFull(s, prefix[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint16(prefix[:])
	if n == 0 {
		return nil
	}
	reason := make([]byte, n-1)
	if _, err := io.ReadFull(s, reason); err != nil {
		return fmt.Errorf("host: truncated handshake failure frame: %w", err)
	}
	return &HandshakeError{Reason: string(reason)}
}

// ConnectProtocolID 是连接确认握手子流的协议标识
//
// 出站连接建立后，拨号方在这条短命子流上等待接受方的握手帧，
// 成功后才把连接登记为已建立。
const ConnectProtocolID types.ProtocolID = "/xcore/connect/1.0.0"

// openConnect 打开一条连接确认子流（拨号侧）
func openConnect(ctx context.Context, conn Conn) (Substream, error) {
	return OpenProtocolStream(ctx, conn, ConnectProtocolID)
}

// answerConnect 应答一条入站连接确认子流（接受侧）：正常运行时回成功帧，
// Host 已关闭时回携带原因的失败帧
func (h *Host) answerConnect(s Substream) {
	defer s.Close()
	s.SetWriteDeadline(time.Now().Add(DefaultHandshakeTimeout))
	h.mu.Lock()
	closed := h.closed
	h.mu.Unlock()
	if closed {
		_ = WriteHandshakeFailure(s, "host is shutting down")
		return
	}
	_ = WriteHandshakeSuccess(s)
}
