package xroutes

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/xcore-net/xcore/pkg/types"
)

// mdnsAnnouncement 是一次解析后的对端公告：peer 身份加地址集合
type mdnsAnnouncement struct {
	Peer      types.PeerID
	Addresses []types.Multiaddr
}

// mdnsTransport 是 mDNS 组播 I/O 的可插拔边界。真实实现在某个具体
// 传输包里绑定 UDP 组播 socket 并收发 DNS 报文；测试用内存实现驱动
// announcements channel，不需要网络。
//
// mDNS 组播 socket 本身属于具体传输，由调用方提供；本包只负责把
// 一组 (peer, addrs) 编码/解码为标准 DNS PTR/SRV/TXT 记录集合。
type mdnsTransport interface {
	// Announce 广播本端的一条公告
	Announce(msg *dns.Msg) error
	// Announcements 返回收到的对端公告（已解析为 DNS 报文）流
	Announcements() <-chan *dns.Msg
	// Close 停止收发
	Close() error
}

// mdnsService 管理本地多播发现的挂载/卸载与周期性自我广播
type mdnsService struct {
	serviceTag string
	local      types.PeerID
	localAddrs func() []types.Multiaddr
	interval   time.Duration
	transport  mdnsTransport

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup

	onDiscovered func(mdnsAnnouncement)
}

func newMdnsService(serviceTag string, local types.PeerID, localAddrs func() []types.Multiaddr, interval time.Duration, transport mdnsTransport, onDiscovered func(mdnsAnnouncement)) *mdnsService {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &mdnsService{
		serviceTag:   serviceTag,
		local:        local,
		localAddrs:   localAddrs,
		interval:     interval,
		transport:    transport,
		onDiscovered: onDiscovered,
	}
}

// Start 挂载 mDNS：开始周期性自我广播并消费收到的公告
func (s *mdnsService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	s.wg.Add(2)
	go s.announceLoop(stopCh)
	go s.listenLoop(stopCh)
}

// Stop 卸载 mDNS，停止全部周期性活动
func (s *mdnsService) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()
	s.wg.Wait()
	s.transport.Close()
}

func (s *mdnsService) announceLoop(stopCh chan struct{}) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.announceOnce()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.announceOnce()
		}
	}
}

func (s *mdnsService) announceOnce() {
	msg := buildAnnouncement(s.serviceTag, s.local, s.localAddrs())
	_ = s.transport.Announce(msg)
}

func (s *mdnsService) listenLoop(stopCh chan struct{}) {
	defer s.wg.Done()
	for {
		select {
		case <-stopCh:
			return
		case msg, ok := <-s.transport.Announcements():
			if !ok {
				return
			}
			ann, err := parseAnnouncement(s.serviceTag, msg)
			if err != nil || ann.Peer == s.local || ann.Peer.IsEmpty() {
				continue
			}
			s.onDiscovered(ann)
		}
	}
}

// buildAnnouncement 把本端身份与地址集合编码成一组 DNS 资源记录：一条
// PTR 指向服务实例，一条 SRV 给出实例主机名，一条 TXT 携带
// peer id 与每个 multiaddr，全部使用标准 miekg/dns 记录类型。
func buildAnnouncement(serviceTag string, peer types.PeerID, addrs []types.Multiaddr) *dns.Msg {
	instance := peer.String() + "." + serviceTag + ".local."
	msg := new(dns.Msg)
	msg.Response = true

	ptr := &dns.PTR{
		Hdr: dns.RR_Header{Name: serviceTag + ".local.", Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: 120},
		Ptr: instance,
	}
	srv := &dns.SRV{
		Hdr:    dns.RR_Header{Name: instance, Rrtype: dns.TypeSRV, Class: dns.ClassINET, Ttl: 120},
		Target: instance,
	}
	txtStrings := []string{"id=" + peer.String()}
	for _, a := range addrs {
		txtStrings = append(txtStrings, "addr="+a.String())
	}
	txt := &dns.TXT{
		Hdr: dns.RR_Header{Name: instance, Rrtype: dns.TypeTXT, Class: dns.ClassINET, Ttl: 120},
		Txt: txtStrings,
	}
	msg.Answer = append(msg.Answer, ptr, srv, txt)
	return msg
}

// parseAnnouncement 反向解析 buildAnnouncement 产生的报文
func parseAnnouncement(serviceTag string, msg *dns.Msg) (mdnsAnnouncement, error) {
	var peer types.PeerID
	var addrs []types.Multiaddr
	found := false

	for _, rr := range msg.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		for _, field := range txt.Txt {
			switch {
			case strings.HasPrefix(field, "id="):
				p, err := types.ParsePeerID(strings.TrimPrefix(field, "id="))
				if err != nil {
					return mdnsAnnouncement{}, fmt.Errorf("%w: %v", ErrMdnsMalformedAnnouncement, err)
				}
				peer = p
				found = true
			case strings.HasPrefix(field, "addr="):
				a, err := types.ParseMultiaddr(strings.TrimPrefix(field, "addr="))
				if err != nil {
					continue
				}
				addrs = append(addrs, a)
			}
		}
	}
	if !found {
		return mdnsAnnouncement{}, ErrMdnsMalformedAnnouncement
	}
	return mdnsAnnouncement{Peer: peer, Addresses: addrs}, nil
}

// memMdnsTransport 是测试用的进程内 mDNS 传输：多个实例共享一个广播总线
type memMdnsBus struct {
	mu        sync.Mutex
	listeners []chan *dns.Msg
}

// NewMdnsBus 创建一个进程内共享的 mDNS 总线，供同一测试进程内的
// 多个 mdnsService 互相发现，不依赖真实组播 socket。
func NewMdnsBus() *memMdnsBus {
	return &memMdnsBus{}
}

type memMdnsTransport struct {
	bus   *memMdnsBus
	inbox chan *dns.Msg
}

// NewMemMdnsTransport 在共享总线上注册一个新的参与者
func NewMemMdnsTransport(bus *memMdnsBus) mdnsTransport {
	inbox := make(chan *dns.Msg, 32)
	bus.mu.Lock()
	bus.listeners = append(bus.listeners, inbox)
	bus.mu.Unlock()
	return &memMdnsTransport{bus: bus, inbox: inbox}
}

func (t *memMdnsTransport) Announce(msg *dns.Msg) error {
	t.bus.mu.Lock()
	defer t.bus.mu.Unlock()
	for _, l := range t.bus.listeners {
		if l == t.inbox {
			continue
		}
		select {
		case l <- msg:
		default:
		}
	}
	return nil
}

func (t *memMdnsTransport) Announcements() <-chan *dns.Msg { return t.inbox }

func (t *memMdnsTransport) Close() error { return nil }
