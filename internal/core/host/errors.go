package host

import "errors"

var (
	// ErrSubstreamClosed 子流已关闭
	ErrSubstreamClosed = errors.New("host: substream closed")
	// ErrConnClosed 连接已关闭
	ErrConnClosed = errors.New("host: connection closed")
	// ErrListenerClosed 监听器已关闭
	ErrListenerClosed = errors.New("host: listener closed")
	// ErrNoListenerForPeer 目标 peer 未在内存网络中注册监听器
	ErrNoListenerForPeer = errors.New("host: no listener registered for peer")
)
