package swarmloop

import (
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/xroutes"
)

// Stopper 是触发协作式关闭的句柄。只有第一次 Stop 执行关闭与收尾；
// 之后的调用直接返回 ErrAlreadyStopped，不重复任何清理。
type Stopper struct {
	cmdCh chan<- Command
	done  <-chan struct{}

	host     *host.Host
	xroutesB *xroutes.Behavior

	stopped atomic.Bool
}

// Stop 请求循环退出并等待其完成，然后收尾比循环活得更久的协作方：
// XRoutes 已挂载的子行为（mDNS、AutoNAT）与 Host 的监听器和连接。
// 后者的错误做聚合而不是短路——关一个监听器失败不应阻止关掉其余的。
func (s *Stopper) Stop() error {
	if !s.stopped.CompareAndSwap(false, true) {
		return ErrAlreadyStopped
	}
	reply := make(chan ShutdownReply, 1)
	select {
	case s.cmdCh <- Shutdown{Reply: reply}:
		select {
		case <-reply:
		case <-s.done:
		}
	case <-s.done:
	}

	return multierr.Combine(s.xroutesB.Close(), s.host.Close())
}
