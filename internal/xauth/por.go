// Package xauth 实现连接建立后的双向 Proof-of-Representation 互认证。
package xauth

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/xcore-net/xcore/internal/core/identity"
	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("xauth")

// ProofOfRepresentation 是所有者签发、授权某个 peer 在一段时间窗口内
// 代表自己的签名声明。
type ProofOfRepresentation struct {
	OwnerPublicKey []byte
	PeerID         types.PeerID
	IssuedAt       int64
	ExpiresAt      int64
	Signature      []byte
}

// CanonicalSigningBytes 按固定布局拼出签名/验签所覆盖的字节：
// owner_public_key || ascii(peer_id) || issued_at(u64 LE) || expires_at(u64 LE)
func (p ProofOfRepresentation) CanonicalSigningBytes() []byte {
	var buf bytes.Buffer
	buf.Write(p.OwnerPublicKey)
	buf.WriteString(string(p.PeerID))
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(p.IssuedAt))
	buf.Write(ts[:])
	binary.LittleEndian.PutUint64(ts[:], uint64(p.ExpiresAt))
	buf.Write(ts[:])
	return buf.Bytes()
}

// Sign 用给定的签名函数（通常是 identity.Identity.Sign）生成一个 PoR
func Sign(ownerPublicKey []byte, peer types.PeerID, issuedAt, expiresAt time.Time, sign func([]byte) ([]byte, error)) (ProofOfRepresentation, error) {
	p := ProofOfRepresentation{
		OwnerPublicKey: ownerPublicKey,
		PeerID:         peer,
		IssuedAt:       issuedAt.Unix(),
		ExpiresAt:      expiresAt.Unix(),
	}
	sig, err := sign(p.CanonicalSigningBytes())
	if err != nil {
		return ProofOfRepresentation{}, err
	}
	p.Signature = sig
	return p, nil
}

// Validate 校验一个 PoR 对某个传输层 peer 身份是否在 now 时刻仍然有效
func (p ProofOfRepresentation) Validate(now time.Time, transportPeer types.PeerID) error {
	if p.PeerID != transportPeer {
		return ErrWrongPeer
	}
	nowUnix := now.Unix()
	if nowUnix < p.IssuedAt {
		return ErrNotYetValid
	}
	if nowUnix > p.ExpiresAt {
		return ErrExpired
	}
	ok, err := identity.Verify(p.OwnerPublicKey, p.CanonicalSigningBytes(), p.Signature)
	if err != nil {
		return ErrSignatureInvalid
	}
	if !ok {
		return ErrSignatureInvalid
	}
	return nil
}
