package xstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcore-net/xcore/internal/core/host"
	"github.com/xcore-net/xcore/pkg/types"
)

func newConnectedHosts(t *testing.T) (clientConn host.Conn, serverConn host.Conn, serverAccept <-chan struct {
	conn host.Conn
	sub  host.Substream
}) {
	t.Helper()
	network := host.NewMemNetwork()
	clientPeer := types.PeerID("client")
	serverPeer := types.PeerID("server")

	listenAddr, err := types.NewMultiaddr("/ip4/127.0.0.1/tcp/4001")
	require.NoError(t, err)

	serverHost := host.NewHost(serverPeer, nil, network.ListenerFactory(serverPeer))
	addr, err := serverHost.ListenOn(listenAddr)
	require.NoError(t, err)

	clientHost := host.NewHost(clientPeer, network.Dialer(clientPeer), nil)
	cConn, err := clientHost.Dial(context.Background(), serverPeer, addr)
	require.NoError(t, err)

	// 服务端通过事件流拿到刚建立的连接；ListenOn 先发出的 NewListenAddr 被跳过
	var sConn host.Conn
	for established := false; !established; {
		select {
		case ev := <-serverHost.Events():
			if e, ok := ev.(host.ConnEstablished); ok {
				sConn = e.Conn
				established = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for server-side ConnEstablished")
		}
	}

	accepted := make(chan struct {
		conn host.Conn
		sub  host.Substream
	}, 4)
	go func() {
		for ev := range serverHost.Events() {
			if in, ok := ev.(host.InboundSubstream); ok {
				accepted <- struct {
					conn host.Conn
					sub  host.Substream
				}{in.Conn, in.Stream}
			}
		}
	}()

	return cConn, sConn, accepted
}

func TestBehavior_OpenStreamThenInboundAutoApprove(t *testing.T) {
	clientConn, _, accepted := newConnectedHosts(t)

	clientBehavior := NewBehavior(Config{
		PendingTimeout:    time.Second,
		HeaderReadTimeout: time.Second,
		Policy:            AutoApprove,
		ReadBufSize:       64,
	})
	serverBehavior := NewBehavior(Config{
		PendingTimeout:    time.Second,
		HeaderReadTimeout: time.Second,
		Policy:            AutoApprove,
		ReadBufSize:       64,
	})

	go func() {
		for i := 0; i < 2; i++ {
			a := <-accepted
			serverBehavior.HandleInbound(a.conn, a.sub)
		}
	}()

	stream, err := clientBehavior.OpenStream(context.Background(), clientConn)
	require.NoError(t, err)
	assert.Equal(t, DirectionOutbound, stream.Direction())

	// 配对完成后服务端先发出 StreamOpened，再发出 IncomingStream
	select {
	case ev := <-serverBehavior.Events():
		opened, ok := ev.(StreamOpened)
		require.True(t, ok, "expected StreamOpened, got %T", ev)
		assert.Equal(t, stream.ID(), opened.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for StreamOpened")
	}

	select {
	case ev := <-serverBehavior.Events():
		incoming, ok := ev.(IncomingStream)
		require.True(t, ok, "expected IncomingStream, got %T", ev)
		assert.Equal(t, stream.ID(), incoming.Stream.ID())
		assert.Equal(t, DirectionInbound, incoming.Stream.Direction())
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for IncomingStream")
	}
}

func TestBehavior_ApproveViaEventGatesIncomingStream(t *testing.T) {
	clientConn, _, accepted := newConnectedHosts(t)

	clientBehavior := NewBehavior(Config{
		PendingTimeout:    time.Second,
		HeaderReadTimeout: time.Second,
		Policy:            AutoApprove,
		ReadBufSize:       64,
	})
	serverBehavior := NewBehavior(Config{
		PendingTimeout:    time.Second,
		HeaderReadTimeout: time.Second,
		Policy:            ApproveViaEvent,
		ReadBufSize:       64,
	})

	go func() {
		for i := 0; i < 2; i++ {
			a := <-accepted
			serverBehavior.HandleInbound(a.conn, a.sub)
		}
	}()

	_, err := clientBehavior.OpenStream(context.Background(), clientConn)
	require.NoError(t, err)

	select {
	case ev := <-serverBehavior.Events():
		req, ok := ev.(IncomingStreamRequest)
		require.True(t, ok, "expected IncomingStreamRequest, got %T", ev)
		req.Decide(ApprovalResult{Decision: Approved})
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for IncomingStreamRequest")
	}

	// 批准后先发出 StreamOpened，再发出 IncomingStream
	select {
	case ev := <-serverBehavior.Events():
		_, ok := ev.(StreamOpened)
		require.True(t, ok, "expected StreamOpened after approval, got %T", ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for StreamOpened after approval")
	}

	select {
	case ev := <-serverBehavior.Events():
		_, ok := ev.(IncomingStream)
		assert.True(t, ok, "expected IncomingStream after approval, got %T", ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for IncomingStream after approval")
	}
}

func TestBehavior_SweepReportsPendingTimeout(t *testing.T) {
	b := NewBehavior(Config{
		PendingTimeout:    10 * time.Millisecond,
		HeaderReadTimeout: time.Second,
		Policy:            AutoApprove,
		ReadBufSize:       64,
	})
	raw, _ := newTestSubstreamPair()
	key := testKey()
	_, sameRole := b.pending.Offer(key, RoleMain, raw, time.Now())
	require.False(t, sameRole)

	b.Sweep(time.Now().Add(time.Hour))

	select {
	case ev := <-b.Events():
		timeout, ok := ev.(SubstreamTimeoutError)
		require.True(t, ok, "expected SubstreamTimeoutError, got %T", ev)
		assert.Equal(t, key, timeout.Key)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for SubstreamTimeoutError")
	}
}
