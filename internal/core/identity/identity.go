// Package identity 管理节点的密码学身份
package identity

import (
	"fmt"

	"github.com/xcore-net/xcore/pkg/lib/crypto"
	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("core/identity")

// Identity 封装节点的密钥对与派生的 PeerID
//
// PeerID 的推导和签名方案对上层完全不透明：核心只消费
// "从公钥派生的节点标识" 和一个 sign/verify 能力，不关心具体方案。
type Identity struct {
	peerID  types.PeerID
	privKey crypto.PrivateKey
	pubKey  crypto.PublicKey
}

// New 从私钥创建身份
func New(privKey crypto.PrivateKey) (*Identity, error) {
	if privKey == nil {
		return nil, ErrNilPrivateKey
	}
	pubKey := privKey.GetPublic()
	raw, err := pubKey.Raw()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToDerivePeerID, err)
	}
	peerID, err := types.PeerIDFromPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToDerivePeerID, err)
	}
	logger.Debug("identity created", "peer_id", peerID.ShortString())
	return &Identity{peerID: peerID, privKey: privKey, pubKey: pubKey}, nil
}

// NewFromSeed 从 32 字节 Ed25519 种子创建身份
//
// 种子的持久化与加载由调用方负责（核心不持久化身份）。
func NewFromSeed(seed []byte) (*Identity, error) {
	priv, err := crypto.UnmarshalEd25519PrivateKey(seed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGenerateKey, err)
	}
	return New(priv)
}

// Generate 生成一个新的随机 Ed25519 身份，主要用于测试和演示
func Generate() (*Identity, error) {
	priv, _, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToGenerateKey, err)
	}
	return New(priv)
}

// PeerID 返回节点的 PeerID
func (id *Identity) PeerID() types.PeerID {
	return id.peerID
}

// PublicKey 返回节点的公钥
func (id *Identity) PublicKey() crypto.PublicKey {
	return id.pubKey
}

// PublicKeyBytes 返回公钥的原始字节，用于 PoR 的 owner_public_key 字段
func (id *Identity) PublicKeyBytes() []byte {
	raw, _ := id.pubKey.Raw()
	return raw
}

// Sign 使用身份私钥对数据签名
func (id *Identity) Sign(data []byte) ([]byte, error) {
	return id.privKey.Sign(data)
}

// Verify 使用指定公钥验证签名，不依赖身份自身的密钥
func Verify(pubKeyBytes, data, sig []byte) (bool, error) {
	pub, err := crypto.UnmarshalEd25519PublicKey(pubKeyBytes)
	if err != nil {
		return false, err
	}
	return pub.Verify(data, sig)
}
