package types

import "testing"

func TestDirection(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{DirUnknown, "unknown"},
		{DirInbound, "inbound"},
		{DirOutbound, "outbound"},
		{Direction(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.d.String(); got != tt.want {
				t.Errorf("Direction(%d).String() = %q, want %q", tt.d, got, tt.want)
			}
		})
	}
}

func TestDiscoverySource(t *testing.T) {
	if SourceDHT.String() != "dht" {
		t.Errorf("SourceDHT.String() = %q, want %q", SourceDHT.String(), "dht")
	}
	if SourceMDNS.String() != "mdns" {
		t.Errorf("SourceMDNS.String() = %q, want %q", SourceMDNS.String(), "mdns")
	}
}
