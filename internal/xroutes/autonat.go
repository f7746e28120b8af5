package xroutes

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xcore-net/xcore/pkg/types"
)

// Prober 对一个已配置的 AutoNAT 服务端发起一次连通性探测，返回对端是否
// 能够反向拨通本端（意味着本端公网可达）。真实的探测协议由调用方注入；
// 生产环境在这里接入真正的 AutoNAT 客户端协议。
type Prober interface {
	Probe(ctx context.Context, server types.PeerID) (reachable bool, err error)
}

// autonatService 是被动的可达性探测能力：作为客户端周期性探测已配置的
// 服务端并汇总分类；作为服务端只是一个开关，具体的应答逻辑挂在
// HandleInboundProbe 上供调用方接线。
type autonatService struct {
	clock    clock.Clock
	interval time.Duration
	prober   Prober
	servers  []types.PeerID
	emit     func(Event)

	mu           sync.Mutex
	reachability Reachability
	stopCh       chan struct{}
	running      bool
}

func newAutonatService(prober Prober, servers []types.PeerID, interval time.Duration, c clock.Clock, emit func(Event)) *autonatService {
	if c == nil {
		c = clock.New()
	}
	return &autonatService{
		clock:        c,
		interval:     interval,
		prober:       prober,
		servers:      servers,
		emit:         emit,
		reachability: ReachabilityUnknown,
	}
}

// Start 开始周期性探测（客户端角色）
func (a *autonatService) Start() {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return
	}
	a.running = true
	a.stopCh = make(chan struct{})
	stopCh := a.stopCh
	a.mu.Unlock()

	go a.loop(stopCh)
}

// Stop 停止周期性探测
func (a *autonatService) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	close(a.stopCh)
	a.mu.Unlock()
}

func (a *autonatService) loop(stopCh chan struct{}) {
	ticker := a.clock.Ticker(a.interval)
	defer ticker.Stop()
	a.probeAll()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			a.probeAll()
		}
	}
}

func (a *autonatService) probeAll() {
	if len(a.servers) == 0 || a.prober == nil {
		return
	}
	reachable := false
	for _, s := range a.servers {
		ctx, cancel := context.WithTimeout(context.Background(), a.interval)
		ok, err := a.prober.Probe(ctx, s)
		cancel()
		if err == nil && ok {
			reachable = true
			break
		}
	}

	next := ReachabilityPrivate
	if reachable {
		next = ReachabilityPublic
	}

	a.mu.Lock()
	changed := a.reachability != next
	a.reachability = next
	a.mu.Unlock()

	if changed {
		a.emit(AutonatStatusChanged{Reachability: next})
	}
}

// Reachability 返回当前分类
func (a *autonatService) Reachability() Reachability {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reachability
}

// HandleInboundProbe 是服务端角色对一次入站探测的应答钩子：默认总是
// 报告可达，调用方可以替换为接入真实传输层握手结果。
func (a *autonatService) HandleInboundProbe(ctx context.Context, from types.PeerID) (bool, error) {
	return true, nil
}
