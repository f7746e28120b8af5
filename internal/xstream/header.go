// Package xstream 实现将两条原始子流按 17 字节 header 配对成一条
// 可靠、双向、半关闭语义的逻辑流。
package xstream

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/xcore-net/xcore/pkg/lib/log"
	"github.com/xcore-net/xcore/pkg/types"
)

var logger = log.Logger("xstream")

// ProtocolID 是 XStream 配对子流在传输层协商时使用的标识
const ProtocolID types.ProtocolID = "/xstream/1.0.0"

// HeaderSize 是 XStreamHeader 的固定编码长度：16 字节 id + 1 字节 role
const HeaderSize = 17

// XStreamID 是 128 位、进程内单调递增的流配对标识
//
// 表示为大端 16 字节数组，与线上 header 编码直接对应；由一个无锁计数器
// 生成，实际只递增低 64 位——对单个进程的生命周期而言永远不会溢出，
// 同时保留了协议要求的 128 位宽度。
type XStreamID [16]byte

// Bytes 返回大端编码的 16 字节
func (id XStreamID) Bytes() []byte {
	b := make([]byte, 16)
	copy(b, id[:])
	return b
}

// String 返回十六进制表示
func (id XStreamID) String() string {
	return hex.EncodeToString(id[:])
}

// idGenerator 是一个无锁的单调 XStreamID 计数器
type idGenerator struct {
	counter atomic.Uint64
}

func (g *idGenerator) Next() XStreamID {
	n := g.counter.Add(1)
	var id XStreamID
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}

// defaultGenerator 是进程级默认生成器
var defaultGenerator idGenerator

// NextXStreamID 从默认的进程级生成器分配一个新 ID
func NextXStreamID() XStreamID {
	return defaultGenerator.Next()
}

// SubstreamRole 标记一条原始子流在配对中承担的角色
type SubstreamRole byte

const (
	// RoleMain 承载用户数据
	RoleMain SubstreamRole = 0
	// RoleError 承载带外错误通知
	RoleError SubstreamRole = 1
)

// String 返回角色名称
func (r SubstreamRole) String() string {
	switch r {
	case RoleMain:
		return "main"
	case RoleError:
		return "error"
	default:
		return "main" // 其他字节值一律视为 Main（向后兼容）
	}
}

// normalize 把任意字节值按"非 0/1 视为 Main"规则归一化
func (r SubstreamRole) normalize() SubstreamRole {
	if r == RoleError {
		return RoleError
	}
	return RoleMain
}

// XStreamHeader 是每条原始子流上固定的 17 字节前缀
type XStreamHeader struct {
	ID   XStreamID
	Role SubstreamRole
}

// Encode 序列化为 17 字节：大端 id || 1 字节 role
func (h XStreamHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[:16], h.ID[:])
	buf[16] = byte(h.Role)
	return buf
}

// DecodeHeader 从恰好 17 字节解析 header，角色做归一化处理
func DecodeHeader(buf []byte) (XStreamHeader, error) {
	if len(buf) != HeaderSize {
		return XStreamHeader{}, fmt.Errorf("xstream: header must be %d bytes, got %d", HeaderSize, len(buf))
	}
	var h XStreamHeader
	copy(h.ID[:], buf[:16])
	h.Role = SubstreamRole(buf[16]).normalize()
	return h, nil
}

// WriteHeader 编码并写入 header 到 w，不做 flush（调用方负责）
func WriteHeader(w io.Writer, h XStreamHeader) error {
	_, err := w.Write(h.Encode())
	return err
}

// ReadHeader 从 r 读取恰好 HeaderSize 字节并解析
func ReadHeader(r io.Reader) (XStreamHeader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return XStreamHeader{}, err
	}
	return DecodeHeader(buf)
}
