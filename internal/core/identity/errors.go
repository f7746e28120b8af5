package identity

import "errors"

var (
	// ErrNilPrivateKey 私钥为 nil
	ErrNilPrivateKey = errors.New("private key is nil")

	// ErrFailedToGenerateKey 密钥生成失败
	ErrFailedToGenerateKey = errors.New("failed to generate key")

	// ErrFailedToDerivePeerID PeerID 派生失败
	ErrFailedToDerivePeerID = errors.New("failed to derive peer id")
)
