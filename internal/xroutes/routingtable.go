package xroutes

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/xcore-net/xcore/pkg/types"
)

// bucketCount 是 k-bucket 的数量：PeerID 的 XOR 距离空间按位数分桶，
// 取 32 字节 SHA256 距离的位宽。
const bucketCount = 256

// peerRecord 是路由表中一个 bucket 槽位持有的记录
type peerRecord struct {
	addrs    []types.Multiaddr
	lastSeen time.Time
}

// RoutingTable 是一个按 XOR 距离分桶的本地路由表，供 FindPeerAddresses(timeout=0)
// 的纯本地查询以及 Kademlia 最近节点查询使用。
//
// 距离计算直接复用 pkg/types.PeerID.CommonPrefixLen；每个 bucket 用一个
// 容量受限的 LRU 持有记录，防止恶意大量地址公告耗尽内存。
type RoutingTable struct {
	local       types.PeerID
	bucketSize  int
	mu          sync.Mutex
	buckets     [bucketCount]*lru.Cache[types.PeerID, peerRecord]
}

// NewRoutingTable 创建一个以 local 为参照点的路由表，每个 bucket 最多持有
// bucketSize 条记录
func NewRoutingTable(local types.PeerID, bucketSize int) *RoutingTable {
	if bucketSize <= 0 {
		bucketSize = 20
	}
	return &RoutingTable{local: local, bucketSize: bucketSize}
}

func (t *RoutingTable) bucketIndex(remote types.PeerID) int {
	cpl := t.local.CommonPrefixLen(remote)
	if cpl >= bucketCount {
		return bucketCount - 1
	}
	return cpl
}

func (t *RoutingTable) bucket(idx int) *lru.Cache[types.PeerID, peerRecord] {
	if t.buckets[idx] == nil {
		c, _ := lru.New[types.PeerID, peerRecord](t.bucketSize)
		t.buckets[idx] = c
	}
	return t.buckets[idx]
}

// Add 登记或更新一个 peer 的已知地址集合
func (t *RoutingTable) Add(peer types.PeerID, addrs []types.Multiaddr) {
	if peer == t.local || peer.IsEmpty() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.bucketIndex(peer)
	b := t.bucket(idx)
	rec, ok := b.Get(peer)
	if ok {
		rec.addrs = types.UniqueMultiaddrs(append(rec.addrs, addrs...))
	} else {
		rec = peerRecord{addrs: addrs}
	}
	rec.lastSeen = time.Now()
	b.Add(peer, rec)
}

// Remove 从路由表中移除一个 peer 的全部记录
func (t *RoutingTable) Remove(peer types.PeerID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bucket(t.bucketIndex(peer)).Remove(peer)
}

// Addresses 返回路由表中已知的 peer 地址；未知 peer 返回 nil
func (t *RoutingTable) Addresses(peer types.PeerID) []types.Multiaddr {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.bucket(t.bucketIndex(peer)).Get(peer)
	if !ok {
		return nil
	}
	out := make([]types.Multiaddr, len(rec.addrs))
	copy(out, rec.addrs)
	return out
}

// Contains 报告路由表是否持有某个 peer 的记录
func (t *RoutingTable) Contains(peer types.PeerID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.bucket(t.bucketIndex(peer)).Contains(peer)
}

// Size 返回路由表当前持有的 peer 总数
func (t *RoutingTable) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, b := range t.buckets {
		if b != nil {
			n += b.Len()
		}
	}
	return n
}

// ClosestPeers 返回路由表中按到 target 的 XOR 距离排序最近的至多 count 个 peer，
// 供 Kademlia FindPeer/Bootstrap 查询使用
func (t *RoutingTable) ClosestPeers(target types.PeerID, count int) []types.PeerID {
	t.mu.Lock()
	var all []types.PeerID
	for _, b := range t.buckets {
		if b == nil {
			continue
		}
		all = append(all, b.Keys()...)
	}
	t.mu.Unlock()

	sortByDistance(all, target)
	if len(all) > count {
		all = all[:count]
	}
	return all
}

// sortByDistance 按到 target 的 XOR 距离升序原地排序（插入排序，路由表规模小）
func sortByDistance(peers []types.PeerID, target types.PeerID) {
	for i := 1; i < len(peers); i++ {
		for j := i; j > 0 && target.DistanceCmp(peers[j], peers[j-1]) < 0; j-- {
			peers[j], peers[j-1] = peers[j-1], peers[j]
		}
	}
}
