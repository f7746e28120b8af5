// Package crypto 提供 XCore 密码学工具
//
// 本包提供密钥生成、签名验证与序列化等核心密码学功能。
// XCore 的核心语义对签名方案保持中立（节点身份只是"由公钥派生的标识符"，
// 签名/验证只是"一种能力"），本包给出唯一的默认实现：Ed25519。
//
// # 快速开始
//
// 生成密钥对：
//
//	priv, pub, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
//
// 签名和验证：
//
//	sig, err := crypto.Sign(priv, data)
//	valid, err := crypto.Verify(pub, data, sig)
//
// 从公钥派生 PeerID：
//
//	peerID, err := crypto.PeerIDFromPublicKey(pub)
//
// # 安全特性
//
//   - 常量时间比较防止时序攻击
//
// 密钥的生成与持久化（文件格式、密钥库）不属于本包职责，由调用方负责。
package crypto
