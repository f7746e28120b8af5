package xstream

import "errors"

var (
	// ErrBrokenPipe 在已关闭的读或写半边上继续操作
	ErrBrokenPipe = errors.New("xstream: broken pipe")
	// ErrStreamError 流此前已进入 Error 状态
	ErrStreamError = errors.New("xstream: stream is in error state")
	// ErrSameRole 一对子流携带了相同角色，属于协议错误
	ErrSameRole = errors.New("xstream: paired substreams carry the same role")
	// ErrRejected 入站流在 ApproveViaEvent 策略下被拒绝
	ErrRejected = errors.New("xstream: incoming stream rejected")
	// ErrPendingTimeout 未配对子流超过等待期限
	ErrPendingTimeout = errors.New("xstream: pending substream timed out")
	// ErrAlreadyPending 同一个 key 已经有一个等待中的同角色子流
	ErrAlreadyPending = errors.New("xstream: a substream with this role is already pending")
	// ErrUnexpectedEOF 在 ReadExact 中提前遇到流结束
	ErrUnexpectedEOF = errors.New("xstream: unexpected EOF")
)

// ReadExactError 包装 ReadExact 的短读结果：已读到的部分数据加上底层错误
type ReadExactError struct {
	Partial []byte
	Err     error
}

func (e *ReadExactError) Error() string {
	return "xstream: short read: " + e.Err.Error()
}

func (e *ReadExactError) Unwrap() error {
	return e.Err
}

// ErrorOnRead 描述在等待 Main 数据时，Error 半边先送达了一个错误载荷
type ErrorOnRead struct {
	// Partial 是调用方此前已经在 Main 半边读到的数据
	Partial []byte
	// Payload 是 Error 半边送达的原始字节
	Payload []byte
}

func (e *ErrorOnRead) Error() string {
	return "xstream: peer reported an error on the error substream"
}
