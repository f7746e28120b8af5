package config

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigValidates(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := DefaultConfig()
	c.XStream.PendingTimeout = Duration(0)
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.XAuth.MaxMetadataEntries = 0
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.XRoutes.KadMode = "bogus"
	assert.Error(t, c.Validate())

	c = DefaultConfig()
	c.SwarmLoop.ChannelCapacity = -1
	assert.Error(t, c.Validate())
}

func TestFluentSetters(t *testing.T) {
	c := DefaultConfig().
		WithXAuth(DefaultXAuthConfig().WithAutoInitiate(false)).
		WithXRoutes(DefaultXRoutesConfig().WithKadMode("client").WithKad(true))
	require.NoError(t, c.Validate())
	assert.False(t, c.XAuth.AutoInitiate)
	assert.Equal(t, "client", c.XRoutes.KadMode)
	assert.True(t, c.XRoutes.EnableKad)
}

func TestConfigJSONRoundTrip(t *testing.T) {
	c := DefaultConfig()
	c.XAuth.AuthTimeout = Duration(7 * time.Second)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var got Config
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, Duration(7*time.Second), got.XAuth.AuthTimeout)
	require.NoError(t, got.Validate())
}

func TestDurationAcceptsStringAndNumber(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1500ms"`), &d))
	assert.Equal(t, 1500*time.Millisecond, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Duration())
}
