package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMultiaddr(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// 有效的 multiaddr
		{"ipv4 udp quic", "/ip4/1.2.3.4/udp/4001/quic-v1", false},
		{"ipv4 tcp", "/ip4/1.2.3.4/tcp/4001", false},
		{"ipv6 udp quic", "/ip6/::1/udp/4001/quic-v1", false},
		{"dns4", "/dns4/example.com/udp/4001/quic-v1", false},
		{"with peer id", "/ip4/1.2.3.4/udp/4001/quic-v1/p2p/QmYyQSo1c1Ym7orWxLYvCrM2EmxFTANf8wXmmE7DWjhx5N", false},
		{"relay full", "/ip4/1.2.3.4/udp/4001/quic-v1/p2p/QmRelay/p2p-circuit", false},

		// 无效格式
		{"empty", "", true},
		{"host:port format", "1.2.3.4:4001", true},
		{"no leading slash", "ip4/1.2.3.4/udp/4001", true},
		{"unknown protocol", "/unknown/1.2.3.4/udp/4001", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, err := ParseMultiaddr(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.input, ma.String())
			}
		})
	}
}

func TestSplitJoinMultiaddr(t *testing.T) {
	ma, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001/p2p/QmPeer")
	require.NoError(t, err)

	transport, peerID := SplitMultiaddr(ma)
	require.NotNil(t, transport)
	assert.Equal(t, "/ip4/1.2.3.4/tcp/4001", transport.String())
	assert.Equal(t, PeerID("QmPeer"), peerID)

	rejoined := JoinMultiaddr(transport, peerID)
	assert.True(t, rejoined.Equal(ma))
}

func TestSplitMultiaddr_NoPeerComponent(t *testing.T) {
	ma, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)

	transport, peerID := SplitMultiaddr(ma)
	assert.True(t, transport.Equal(ma))
	assert.True(t, peerID.IsEmpty())
}

func TestGetWithWithoutPeerID(t *testing.T) {
	ma, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)

	_, err = GetPeerID(ma)
	assert.Error(t, err)

	withID, err := WithPeerID(ma, PeerID("QmPeer"))
	require.NoError(t, err)
	assert.Equal(t, "/ip4/1.2.3.4/tcp/4001/p2p/QmPeer", withID.String())

	got, err := GetPeerID(withID)
	require.NoError(t, err)
	assert.Equal(t, PeerID("QmPeer"), got)

	stripped := WithoutPeerID(withID)
	assert.True(t, stripped.Equal(ma))
}

func TestP2PMultiaddr(t *testing.T) {
	ma := P2PMultiaddr(PeerID("QmPeer"))
	require.NotNil(t, ma)
	assert.Equal(t, "/p2p/QmPeer", ma.String())
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(nil))

	ma, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)
	assert.False(t, IsEmpty(ma))
}

func TestUniqueMultiaddrs(t *testing.T) {
	a, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)
	b, err := ParseMultiaddr("/ip4/5.6.7.8/tcp/4001")
	require.NoError(t, err)
	dupA, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)

	unique := UniqueMultiaddrs([]Multiaddr{a, b, dupA})
	require.Len(t, unique, 2)
	assert.True(t, unique[0].Equal(a))
	assert.True(t, unique[1].Equal(b))
}

func TestFilterMultiaddrs(t *testing.T) {
	tcp, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)
	udp, err := ParseMultiaddr("/ip4/1.2.3.4/udp/4001")
	require.NoError(t, err)

	onlyTCP := FilterMultiaddrs([]Multiaddr{tcp, udp}, func(m Multiaddr) bool {
		return HasProtocol(m, ProtocolTCP)
	})
	require.Len(t, onlyTCP, 1)
	assert.True(t, onlyTCP[0].Equal(tcp))
}

func TestHasProtocol(t *testing.T) {
	ma, err := ParseMultiaddr("/ip4/1.2.3.4/udp/4001/quic-v1")
	require.NoError(t, err)

	assert.True(t, HasProtocol(ma, ProtocolIP4))
	assert.True(t, HasProtocol(ma, ProtocolUDP))
	assert.True(t, HasProtocol(ma, ProtocolQUIC_V1))
	assert.False(t, HasProtocol(ma, ProtocolTCP))
}

func TestValueForProtocolName(t *testing.T) {
	ma, err := ParseMultiaddr("/ip4/1.2.3.4/tcp/4001")
	require.NoError(t, err)

	ip, err := ValueForProtocolName(ma, "ip4")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", ip)

	port, err := ValueForProtocolName(ma, "tcp")
	require.NoError(t, err)
	assert.Equal(t, "4001", port)

	_, err = ValueForProtocolName(ma, "no-such-protocol")
	assert.Error(t, err)
}

func TestMultiaddr_ParseRoundTripIdempotent(t *testing.T) {
	inputs := []string{
		"/ip4/1.2.3.4/udp/4001/quic-v1",
		"/ip4/1.2.3.4/udp/4001/quic-v1/p2p/QmPeer",
		"/ip4/1.2.3.4/udp/4001/quic-v1/p2p/QmRelay/p2p-circuit",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			ma1, err := ParseMultiaddr(input)
			require.NoError(t, err)

			ma2, err := ParseMultiaddr(ma1.String())
			require.NoError(t, err)

			assert.True(t, ma1.Equal(ma2))
		})
	}
}
