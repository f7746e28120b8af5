package xroutes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcore-net/xcore/internal/core/identity"
	"github.com/xcore-net/xcore/pkg/types"
)

func newTestPeer(t *testing.T) types.PeerID {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	return id.PeerID()
}

func newTestAddr(t *testing.T, s string) types.Multiaddr {
	t.Helper()
	a, err := types.NewMultiaddr(s)
	require.NoError(t, err)
	return a
}

func TestRoutingTable_AddAndAddresses(t *testing.T) {
	local := newTestPeer(t)
	peer := newTestPeer(t)
	addr := newTestAddr(t, "/ip4/127.0.0.1/tcp/4001")

	table := NewRoutingTable(local, 20)
	table.Add(peer, []types.Multiaddr{addr})

	assert.True(t, table.Contains(peer))
	got := table.Addresses(peer)
	require.Len(t, got, 1)
	assert.True(t, got[0].Equal(addr))
}

func TestRoutingTable_UnknownPeerReturnsNil(t *testing.T) {
	local := newTestPeer(t)
	table := NewRoutingTable(local, 20)
	assert.Nil(t, table.Addresses(newTestPeer(t)))
	assert.False(t, table.Contains(newTestPeer(t)))
}

func TestRoutingTable_IgnoresSelf(t *testing.T) {
	local := newTestPeer(t)
	table := NewRoutingTable(local, 20)
	table.Add(local, []types.Multiaddr{newTestAddr(t, "/ip4/127.0.0.1/tcp/4001")})
	assert.Equal(t, 0, table.Size())
}

func TestRoutingTable_RemoveAndSize(t *testing.T) {
	local := newTestPeer(t)
	table := NewRoutingTable(local, 20)

	peers := []types.PeerID{newTestPeer(t), newTestPeer(t), newTestPeer(t)}
	for _, p := range peers {
		table.Add(p, []types.Multiaddr{newTestAddr(t, "/ip4/127.0.0.1/tcp/4001")})
	}
	assert.Equal(t, 3, table.Size())

	table.Remove(peers[0])
	assert.Equal(t, 2, table.Size())
	assert.False(t, table.Contains(peers[0]))
}

func TestRoutingTable_ClosestPeersOrdersByDistance(t *testing.T) {
	local := newTestPeer(t)
	table := NewRoutingTable(local, 20)

	peers := make([]types.PeerID, 8)
	for i := range peers {
		peers[i] = newTestPeer(t)
		table.Add(peers[i], []types.Multiaddr{newTestAddr(t, "/ip4/127.0.0.1/tcp/4001")})
	}

	target := newTestPeer(t)
	closest := table.ClosestPeers(target, 3)
	require.Len(t, closest, 3)

	for i := 1; i < len(closest); i++ {
		assert.LessOrEqual(t, target.DistanceCmp(closest[i-1], closest[i]), 0)
	}
}

func TestRoutingTable_ClosestPeersCapsAtCount(t *testing.T) {
	local := newTestPeer(t)
	table := NewRoutingTable(local, 20)
	for i := 0; i < 5; i++ {
		table.Add(newTestPeer(t), []types.Multiaddr{newTestAddr(t, "/ip4/127.0.0.1/tcp/4001")})
	}
	assert.Len(t, table.ClosestPeers(newTestPeer(t), 2), 2)
	assert.Len(t, table.ClosestPeers(newTestPeer(t), 100), 5)
}
