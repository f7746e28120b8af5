package xroutes

import (
	"time"

	"github.com/xcore-net/xcore/pkg/types"
)

// baseEvent 是携带 peer 的事件公共字段
type baseEvent struct {
	Peer types.PeerID
}

func (b baseEvent) PeerID() types.PeerID { return b.Peer }

// Event 是 xroutes 行为产生的全部事件的封闭集合
type Event interface {
	isXRoutesEvent()
}

// PeerDiscovered 报告通过某个来源新发现（或刷新）的 peer 及其地址
type PeerDiscovered struct {
	baseEvent
	Addresses []types.Multiaddr
	Source    types.DiscoverySource
}

// PeerExpired 报告一个此前通过 mDNS 发现的 peer 条目过期
type PeerExpired struct {
	baseEvent
}

// ReservationExpired 报告一个中继预留到期，节点不再可经由该中继拨入
type ReservationExpired struct {
	baseEvent // Peer 为中继节点的 PeerID
	RelayAddr types.Multiaddr
}

// ReservationFailed 中继预留重试耗尽，节点放弃经由该中继监听
type ReservationFailed struct {
	baseEvent // Peer 为中继节点的 PeerID
	Attempts  int
}

// DcutrAttempt 报告一次直连升级（打洞）尝试的结果
type DcutrAttempt struct {
	baseEvent
	Success bool
	Reason  string
}

// AutonatStatusChanged 报告本端可达性分类的变化
type AutonatStatusChanged struct {
	Reachability Reachability
}

func (AutonatStatusChanged) isXRoutesEvent() {}

// Reachability 是 AutoNAT 得出的可达性分类
type Reachability int

const (
	ReachabilityUnknown Reachability = iota
	ReachabilityPublic
	ReachabilityPrivate
)

func (r Reachability) String() string {
	switch r {
	case ReachabilityPublic:
		return "public"
	case ReachabilityPrivate:
		return "private"
	default:
		return "unknown"
	}
}

func (PeerDiscovered) isXRoutesEvent()       {}
func (PeerExpired) isXRoutesEvent()          {}
func (ReservationExpired) isXRoutesEvent()   {}
func (ReservationFailed) isXRoutesEvent()    {}
func (DcutrAttempt) isXRoutesEvent()         {}

// bootstrapDeadline 是 BootstrapToPeer 查询在视为失败前的默认等待时间
const bootstrapDeadline = 30 * time.Second
