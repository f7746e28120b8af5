package xauth

import "errors"

var (
	// ErrWrongPeer PoR 里的 peer_id 与传输层观察到的对端身份不一致
	ErrWrongPeer = errors.New("xauth: por peer id does not match transport peer")
	// ErrNotYetValid PoR 的 issued_at 晚于当前时间
	ErrNotYetValid = errors.New("xauth: por is not yet valid")
	// ErrExpired PoR 的 expires_at 早于当前时间
	ErrExpired = errors.New("xauth: por has expired")
	// ErrSignatureInvalid PoR 签名验证失败
	ErrSignatureInvalid = errors.New("xauth: por signature is invalid")
	// ErrMetadataTooLarge metadata 超过了条目数或单值长度上限
	ErrMetadataTooLarge = errors.New("xauth: metadata exceeds configured bounds")
	// ErrAlreadyPending 该连接方向已有一个等待中的 ApproveViaEvent 验证
	ErrAlreadyPending = errors.New("xauth: a verification is already pending for this direction")
	// ErrHandshakeTimeout 读取 PoR 请求/响应超时
	ErrHandshakeTimeout = errors.New("xauth: handshake read timed out")
	// ErrDirectionTerminal 该方向已经处于 Successful 或 Failed 终态
	ErrDirectionTerminal = errors.New("xauth: direction is already in a terminal state")
)
