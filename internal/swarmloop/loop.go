package swarmloop

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/internal/xauth"
	"github.com/xcore-net/xcore/internal/xstream"
)

// Loop 是单线程协作式事件循环：拥有 swarm 与全部行为状态，
// 在一个 goroutine 里串行处理命令通道、swarm/行为轮询输出与关闭信号。
// 三者的选择是公平的：每轮迭代恰好运行其中一个分支（由 Go runtime 的
// select 伪随机选择保证，不偏向任何一个 case）。
type Loop struct {
	dispatcher *Dispatcher

	cmdCh chan Command

	hostEvents    <-chan host.Event
	xstreamEvents <-chan xstream.Event
	xauthEvents   <-chan xauth.Event

	sweep        func(now time.Time)
	sweepTicker  *clock.Ticker
	shutdownCh   chan struct{}
	shutdownOnce chan struct{}

	done chan struct{}
}

// newLoop 组装一个 Loop；不对外导出构造——调用方经由 NewNode(...) 获得
// Commander/Stopper 与尚未启动的循环。
func newLoop(dispatcher *Dispatcher, cmdCh chan Command, hostEvents <-chan host.Event, xstreamEvents <-chan xstream.Event, xauthEvents <-chan xauth.Event, sweep func(time.Time), clk clock.Clock, sweepInterval time.Duration) *Loop {
	return &Loop{
		dispatcher:    dispatcher,
		cmdCh:         cmdCh,
		hostEvents:    hostEvents,
		xstreamEvents: xstreamEvents,
		xauthEvents:   xauthEvents,
		sweep:         sweep,
		sweepTicker:   clk.Ticker(sweepInterval),
		shutdownCh:    make(chan struct{}),
		shutdownOnce:  make(chan struct{}, 1),
		done:          make(chan struct{}),
	}
}

// requestShutdown 以幂等方式触发循环退出（Stopper.Stop 的实现细节）
func (l *Loop) requestShutdown() {
	select {
	case l.shutdownOnce <- struct{}{}:
		close(l.shutdownCh)
	default:
	}
}

// Run 是循环主体；在自己的 goroutine 里调用一次，退出时关闭 l.done。
// 关闭的命令通道是硬性关闭触发：等价于 Shutdown。
func (l *Loop) Run() {
	defer close(l.done)
	defer l.sweepTicker.Stop()

	var pendingShutdownReplies []chan ShutdownReply

	for {
		select {
		case cmd, ok := <-l.cmdCh:
			if !ok {
				l.drainShutdownReplies(pendingShutdownReplies)
				return
			}
			if sd, isShutdown := cmd.(Shutdown); isShutdown {
				pendingShutdownReplies = append(pendingShutdownReplies, sd.Reply)
				l.requestShutdown()
				continue
			}
			l.dispatcher.HandleSwarmCommand(cmd)

		case ev := <-l.hostEvents:
			l.dispatcher.HandleHostEvent(ev)

		case ev := <-l.xstreamEvents:
			l.dispatcher.HandleXStreamEvent(ev)

		case ev := <-l.xauthEvents:
			l.dispatcher.HandleXAuthEvent(ev)

		case now := <-l.sweepTicker.C:
			l.sweep(now)

		case <-l.shutdownCh:
			l.drainShutdownReplies(pendingShutdownReplies)
			return
		}
	}
}

func (l *Loop) drainShutdownReplies(replies []chan ShutdownReply) {
	for _, r := range replies {
		r <- ShutdownReply{}
	}
}

// Done 返回一个在循环退出后关闭的 channel，供 Stopper.Wait 使用
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
