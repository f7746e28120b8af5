package swarmloop

import "errors"

var (
	// ErrAlreadyStopped Stopper.Stop 已经执行过，关闭与收尾不再重复
	ErrAlreadyStopped = errors.New("swarmloop: loop already stopped")
	// ErrChannelClosed 循环已退出，命令无法提交或其回复永远不会到达
	ErrChannelClosed = errors.New("swarmloop: command channel closed")
)
