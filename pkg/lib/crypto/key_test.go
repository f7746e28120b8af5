package crypto

import (
	"crypto/rand"
	"testing"
)

func TestKeyType_String(t *testing.T) {
	cases := []struct {
		kt   KeyType
		want string
	}{
		{KeyTypeUnspecified, "Unspecified"},
		{KeyTypeEd25519, "Ed25519"},
		{KeyType(99), "Unknown"},
	}
	for _, c := range cases {
		if got := c.kt.String(); got != c.want {
			t.Errorf("KeyType(%d).String() = %q, want %q", c.kt, got, c.want)
		}
	}
}

func TestGenerateKeyPair_Ed25519(t *testing.T) {
	priv, pub, err := GenerateKeyPair(KeyTypeEd25519)
	if err != nil {
		t.Fatalf("GenerateKeyPair() error = %v", err)
	}
	if !priv.GetPublic().Equals(pub) {
		t.Fatalf("GetPublic() does not match generated public key")
	}

	sig, err := priv.Sign([]byte("hello"))
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	ok, err := pub.Verify([]byte("hello"), sig)
	if err != nil || !ok {
		t.Fatalf("Verify() = %v, %v, want true, nil", ok, err)
	}
}

func TestGenerateKeyPair_BadType(t *testing.T) {
	if _, _, err := GenerateKeyPair(KeyType(42)); err != ErrBadKeyType {
		t.Fatalf("GenerateKeyPair(bad) error = %v, want ErrBadKeyType", err)
	}
}

func TestUnmarshalPublicKey_RoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPairWithReader(KeyTypeEd25519, rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKeyPairWithReader() error = %v", err)
	}

	raw, err := MarshalPublicKey(pub)
	if err != nil {
		t.Fatalf("MarshalPublicKey() error = %v", err)
	}
	decoded, err := UnmarshalPublicKeyBytes(raw)
	if err != nil {
		t.Fatalf("UnmarshalPublicKeyBytes() error = %v", err)
	}
	if !decoded.Equals(pub) {
		t.Fatalf("round-tripped public key does not match original")
	}

	privRaw, err := MarshalPrivateKey(priv)
	if err != nil {
		t.Fatalf("MarshalPrivateKey() error = %v", err)
	}
	decodedPriv, err := UnmarshalPrivateKeyBytes(privRaw)
	if err != nil {
		t.Fatalf("UnmarshalPrivateKeyBytes() error = %v", err)
	}
	if !decodedPriv.Equals(priv) {
		t.Fatalf("round-tripped private key does not match original")
	}
}
