package host

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcore-net/xcore/pkg/types"
)

func TestHandshake_SuccessRoundTrip(t *testing.T) {
	a, b := newMemSubstreamPair()

	go func() { _ = WriteHandshakeSuccess(a) }()

	err := ReadHandshake(b, time.Second)
	assert.NoError(t, err)
}

func TestHandshake_FailureCarriesReason(t *testing.T) {
	a, b := newMemSubstreamPair()

	go func() { _ = WriteHandshakeFailure(a, "por expired") }()

	err := ReadHandshake(b, time.Second)
	var herr *HandshakeError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "por expired", herr.Reason)
}

func TestHandshake_EmptyFailureReason(t *testing.T) {
	a, b := newMemSubstreamPair()

	go func() { _ = WriteHandshakeFailure(a, "") }()

	err := ReadHandshake(b, time.Second)
	var herr *HandshakeError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "", herr.Reason)
}

func TestHandshake_ReadTimesOut(t *testing.T) {
	_, b := newMemSubstreamPair()

	err := ReadHandshake(b, 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
}

func TestConnectHandshake_DialConfirmsAgainstListeningHost(t *testing.T) {
	network := NewMemNetwork()
	serverPeer := types.PeerID("server")
	clientPeer := types.PeerID("client")

	serverHost := NewHost(serverPeer, nil, network.ListenerFactory(serverPeer))
	listenAddr, err := types.NewMultiaddr("/ip4/127.0.0.1/tcp/4020")
	require.NoError(t, err)
	addr, err := serverHost.ListenOn(listenAddr)
	require.NoError(t, err)

	clientHost := NewHost(clientPeer, network.Dialer(clientPeer), nil)
	conn, err := clientHost.Dial(context.Background(), serverPeer, addr)
	require.NoError(t, err)
	assert.Equal(t, serverPeer, conn.Peer())
	require.Len(t, clientHost.ConnsToPeer(serverPeer), 1)
}

func TestAnswerConnect_RefusesWhenHostClosed(t *testing.T) {
	network := NewMemNetwork()
	h := NewHost(types.PeerID("local"), network.Dialer(types.PeerID("local")), nil)
	require.NoError(t, h.Close())

	local, remote := newMemSubstreamPair()
	go h.answerConnect(local)

	err := ReadHandshake(remote, time.Second)
	var herr *HandshakeError
	require.ErrorAs(t, err, &herr)
	assert.Contains(t, herr.Reason, "shutting down")
}
