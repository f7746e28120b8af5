package xstream

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXStreamID_Monotonic(t *testing.T) {
	a := NextXStreamID()
	b := NextXStreamID()
	assert.NotEqual(t, a, b)
	assert.Greater(t, len(a.String()), 0)
}

func TestSubstreamRole_NormalizeLegacyBytes(t *testing.T) {
	assert.Equal(t, RoleMain, SubstreamRole(0).normalize())
	assert.Equal(t, RoleError, SubstreamRole(1).normalize())
	assert.Equal(t, RoleMain, SubstreamRole(2).normalize())
	assert.Equal(t, RoleMain, SubstreamRole(255).normalize())
}

func TestHeader_EncodeDecodeRoundTrip(t *testing.T) {
	h := XStreamHeader{ID: NextXStreamID(), Role: RoleError}
	encoded := h.Encode()
	require.Len(t, encoded, HeaderSize)

	decoded, err := DecodeHeader(encoded)
	require.NoError(t, err)
	assert.Equal(t, h.ID, decoded.ID)
	assert.Equal(t, h.Role, decoded.Role)
}

func TestDecodeHeader_WrongLength(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestWriteReadHeader(t *testing.T) {
	var buf bytes.Buffer
	h := XStreamHeader{ID: NextXStreamID(), Role: RoleMain}
	require.NoError(t, WriteHeader(&buf, h))

	got, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, h.ID, got.ID)
	assert.Equal(t, h.Role, got.Role)
}
