package xstream

// XStreamDirection 标记配对时由哪一方发起了子流
type XStreamDirection int

const (
	// DirectionInbound 对端发起
	DirectionInbound XStreamDirection = iota
	// DirectionOutbound 本端发起
	DirectionOutbound
)

func (d XStreamDirection) String() string {
	if d == DirectionOutbound {
		return "outbound"
	}
	return "inbound"
}

// State 是 XStream 的状态机取值
//
// 状态只能单调地朝 FullyClosed 或 Error 推进。
type State int

const (
	// StateOpen 初始状态，读写两端均未关闭
	StateOpen State = iota
	// StateWriteLocalClosed 本端已调用 close_write()
	StateWriteLocalClosed
	// StateReadRemoteClosed 本端在读时观察到对端已关闭写端（EOF）
	StateReadRemoteClosed
	// StateLocalClosed 本端读写均已关闭（close() 已被调用）
	StateLocalClosed
	// StateRemoteClosed 对端读写均已关闭（两个方向都观察到 EOF/关闭）
	StateRemoteClosed
	// StateFullyClosed 双端读写均已关闭
	StateFullyClosed
	// StateError 发生了 I/O 失败，后续操作返回该错误
	StateError
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateWriteLocalClosed:
		return "write_local_closed"
	case StateReadRemoteClosed:
		return "read_remote_closed"
	case StateLocalClosed:
		return "local_closed"
	case StateRemoteClosed:
		return "remote_closed"
	case StateFullyClosed:
		return "fully_closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
