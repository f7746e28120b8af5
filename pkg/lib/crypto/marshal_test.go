package crypto

import (
	"bytes"
	"testing"
)

func TestMarshalPublicKey_RoundTrip(t *testing.T) {
	_, pub, _ := GenerateKeyPair(KeyTypeEd25519)

	data, err := MarshalPublicKey(pub)
	if err != nil {
		t.Fatalf("MarshalPublicKey() error = %v", err)
	}

	// 头部：类型 + 大端长度
	if KeyType(data[0]) != KeyTypeEd25519 {
		t.Errorf("serialized type = %v, want %v", KeyType(data[0]), KeyTypeEd25519)
	}

	got, err := UnmarshalPublicKeyBytes(data)
	if err != nil {
		t.Fatalf("UnmarshalPublicKeyBytes() error = %v", err)
	}

	rawWant, _ := pub.Raw()
	rawGot, _ := got.Raw()
	if !bytes.Equal(rawWant, rawGot) {
		t.Error("round-tripped public key differs from original")
	}
}

func TestMarshalPublicKey_Nil(t *testing.T) {
	_, err := MarshalPublicKey(nil)
	if err == nil {
		t.Error("MarshalPublicKey(nil) should return error")
	}
}

func TestUnmarshalPublicKeyBytes_TooShort(t *testing.T) {
	_, err := UnmarshalPublicKeyBytes([]byte{1, 2, 3})
	if err == nil {
		t.Error("UnmarshalPublicKeyBytes(short) should return error")
	}
}

func TestMarshalPrivateKey_RoundTrip(t *testing.T) {
	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)

	data, err := MarshalPrivateKey(priv)
	if err != nil {
		t.Fatalf("MarshalPrivateKey() error = %v", err)
	}

	got, err := UnmarshalPrivateKeyBytes(data)
	if err != nil {
		t.Fatalf("UnmarshalPrivateKeyBytes() error = %v", err)
	}

	rawWant, _ := priv.Raw()
	rawGot, _ := got.Raw()
	if !bytes.Equal(rawWant, rawGot) {
		t.Error("round-tripped private key differs from original")
	}
}

func TestMarshalPrivateKey_Nil(t *testing.T) {
	_, err := MarshalPrivateKey(nil)
	if err == nil {
		t.Error("MarshalPrivateKey(nil) should return error")
	}
}

func TestUnmarshalPrivateKeyBytes_Truncated(t *testing.T) {
	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	data, _ := MarshalPrivateKey(priv)

	_, err := UnmarshalPrivateKeyBytes(data[:len(data)-4])
	if err == nil {
		t.Error("UnmarshalPrivateKeyBytes(truncated) should return error")
	}
}

func TestMarshalSignature_RoundTrip(t *testing.T) {
	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	sig, _ := Sign(priv, []byte("payload"))

	data, err := MarshalSignature(sig.Type, sig.Data)
	if err != nil {
		t.Fatalf("MarshalSignature() error = %v", err)
	}

	keyType, sigData, err := UnmarshalSignature(data)
	if err != nil {
		t.Fatalf("UnmarshalSignature() error = %v", err)
	}
	if keyType != KeyTypeEd25519 {
		t.Errorf("UnmarshalSignature() type = %v, want %v", keyType, KeyTypeEd25519)
	}
	if !bytes.Equal(sigData, sig.Data) {
		t.Error("round-tripped signature differs from original")
	}
}

func TestMarshalSignature_Nil(t *testing.T) {
	_, err := MarshalSignature(KeyTypeEd25519, nil)
	if err == nil {
		t.Error("MarshalSignature(nil) should return error")
	}
}

func TestMarshalKeyPair_RoundTrip(t *testing.T) {
	priv, pub, _ := GenerateKeyPair(KeyTypeEd25519)

	data, err := MarshalKeyPair(priv, pub)
	if err != nil {
		t.Fatalf("MarshalKeyPair() error = %v", err)
	}

	gotPriv, gotPub, err := UnmarshalKeyPair(data)
	if err != nil {
		t.Fatalf("UnmarshalKeyPair() error = %v", err)
	}

	rawPrivWant, _ := priv.Raw()
	rawPrivGot, _ := gotPriv.Raw()
	if !bytes.Equal(rawPrivWant, rawPrivGot) {
		t.Error("round-tripped private key differs from original")
	}

	rawPubWant, _ := pub.Raw()
	rawPubGot, _ := gotPub.Raw()
	if !bytes.Equal(rawPubWant, rawPubGot) {
		t.Error("round-tripped public key differs from original")
	}
}

func TestUnmarshalKeyPair_TooShort(t *testing.T) {
	_, _, err := UnmarshalKeyPair([]byte{0, 0, 0})
	if err == nil {
		t.Error("UnmarshalKeyPair(short) should return error")
	}
}
