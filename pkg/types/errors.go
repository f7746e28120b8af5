// Package types 定义 XCore 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

var (
	// ErrEmptyPeerID 空节点 ID
	ErrEmptyPeerID = errors.New("empty peer ID")

	// ErrInvalidPeerID 无效的节点 ID
	ErrInvalidPeerID = errors.New("invalid peer ID")
)
