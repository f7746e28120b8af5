package xstream

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xcore-net/xcore/internal/core/swarm"
	"github.com/xcore-net/xcore/pkg/types"
)

func newTestXStreamPair() (XStream, XStream) {
	mainA, mainB := newTestSubstreamPair()
	errA, errB := newTestSubstreamPair()
	id := NextXStreamID()
	peer := types.PeerID("peer-b")
	conn := swarm.NextConnectionID()
	a := newXStream(id, peer, conn, DirectionOutbound, mainA, errA, 64)
	b := newXStream(id, peer, conn, DirectionInbound, mainB, errB, 64)
	return a, b
}

func TestXStream_WriteAllThenReadExact(t *testing.T) {
	a, b := newTestXStreamPair()
	payload := []byte("hello xstream")

	done := make(chan error, 1)
	go func() { done <- a.WriteAll(payload) }()

	got, err := b.ReadExact(len(payload))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	require.NoError(t, <-done)
}

func TestXStream_ReadExactAcrossMultipleWrites(t *testing.T) {
	a, b := newTestXStreamPair()
	part1 := []byte("0123")
	part2 := []byte("456789")

	go func() {
		_ = a.WriteAll(part1)
		_ = a.WriteAll(part2)
	}()

	got, err := b.ReadExact(len(part1) + len(part2))
	require.NoError(t, err)
	assert.Equal(t, append(part1, part2...), got)
}

func TestXStream_ReadExactShortReadOnClose(t *testing.T) {
	a, b := newTestXStreamPair()
	go func() {
		_ = a.WriteAll([]byte("ab"))
		_ = a.CloseWrite()
	}()

	_, err := b.ReadExact(10)
	require.Error(t, err)
	var rerr *ReadExactError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, []byte("ab"), rerr.Partial)
}

func TestXStream_ReadToEndAccumulatesAllBytes(t *testing.T) {
	a, b := newTestXStreamPair()
	go func() {
		_ = a.WriteAll([]byte("chunk-one-"))
		_ = a.WriteAll([]byte("chunk-two"))
		_ = a.CloseWrite()
	}()

	got, err := b.ReadToEnd()
	require.NoError(t, err)
	assert.Equal(t, "chunk-one-chunk-two", string(got))
}

func TestXStream_CloseWriteIsIdempotent(t *testing.T) {
	a, _ := newTestXStreamPair()
	require.NoError(t, a.CloseWrite())
	require.NoError(t, a.CloseWrite())
	assert.Equal(t, StateWriteLocalClosed, a.State())
}

func TestXStream_WriteAfterCloseWriteFails(t *testing.T) {
	a, _ := newTestXStreamPair()
	require.NoError(t, a.CloseWrite())
	err := a.WriteAll([]byte("x"))
	assert.ErrorIs(t, err, ErrBrokenPipe)
}

func TestXStream_CloneSharesState(t *testing.T) {
	a, b := newTestXStreamPair()
	clone := a.Clone()
	require.NoError(t, clone.CloseWrite())
	assert.Equal(t, StateWriteLocalClosed, a.State())
	_ = b
}

func TestXStream_ReadReturnsEOFAfterPeerCloseWrite(t *testing.T) {
	a, b := newTestXStreamPair()
	require.NoError(t, a.CloseWrite())

	_, err := b.Read()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, StateReadRemoteClosed, b.State())
}
