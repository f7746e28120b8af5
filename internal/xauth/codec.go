package xauth

import (
	"bufio"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/multiformats/go-varint"

	"github.com/xcore-net/xcore/pkg/types"
)

// ProtocolID 是 PoR 互认证协议在传输层协商时使用的标识
const ProtocolID types.ProtocolID = "/por-auth/1.0.0"

// porWire 是 ProofOfRepresentation 的线上 CBOR 表示
type porWire struct {
	OwnerPublicKey []byte `cbor:"owner_public_key"`
	PeerID         string `cbor:"peer_id"`
	IssuedAt       uint64 `cbor:"issued_at"`
	ExpiresAt      uint64 `cbor:"expires_at"`
	Signature      []byte `cbor:"signature"`
}

func toWire(p ProofOfRepresentation) porWire {
	return porWire{
		OwnerPublicKey: p.OwnerPublicKey,
		PeerID:         string(p.PeerID),
		IssuedAt:       uint64(p.IssuedAt),
		ExpiresAt:      uint64(p.ExpiresAt),
		Signature:      p.Signature,
	}
}

func (w porWire) toPoR() ProofOfRepresentation {
	return ProofOfRepresentation{
		OwnerPublicKey: w.OwnerPublicKey,
		PeerID:         types.PeerID(w.PeerID),
		IssuedAt:       int64(w.IssuedAt),
		ExpiresAt:      int64(w.ExpiresAt),
		Signature:      w.Signature,
	}
}

// requestWire 是 CBOR-encoded `{por: PoR, metadata: map<string,string>}`
type requestWire struct {
	Por      porWire           `cbor:"por"`
	Metadata map[string]string `cbor:"metadata"`
}

// Request 是一次 PoR 交换请求的内存表示
type Request struct {
	Por      ProofOfRepresentation
	Metadata map[string]string
}

// resultWire 是判别联合 `{Ok: map<string,string>} | {Error: string}` 的 CBOR 表示
type resultWire struct {
	Ok    map[string]string `cbor:"Ok,omitempty"`
	Error *string           `cbor:"Error,omitempty"`
}

type responseWire struct {
	Result resultWire `cbor:"result"`
}

// Response 是一次 PoR 交换响应的内存表示：要么 Ok(metadata) 要么 Error(reason)
type Response struct {
	Metadata map[string]string
	Reason   string
	Ok       bool
}

// EncodeRequest 编码一个 Request 为原始 CBOR 字节
func EncodeRequest(req Request) ([]byte, error) {
	return cbor.Marshal(requestWire{Por: toWire(req.Por), Metadata: req.Metadata})
}

// DecodeRequest 从原始 CBOR 字节解码为 Request
func DecodeRequest(data []byte) (Request, error) {
	var w requestWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return Request{}, err
	}
	return Request{Por: w.Por.toPoR(), Metadata: w.Metadata}, nil
}

// EncodeResponse 编码一个 Response 为原始 CBOR 字节
func EncodeResponse(resp Response) ([]byte, error) {
	var w responseWire
	if resp.Ok {
		w.Result = resultWire{Ok: resp.Metadata}
	} else {
		reason := resp.Reason
		w.Result = resultWire{Error: &reason}
	}
	return cbor.Marshal(w)
}

// DecodeResponse 从原始 CBOR 字节解码为 Response
func DecodeResponse(data []byte) (Response, error) {
	var w responseWire
	if err := cbor.Unmarshal(data, &w); err != nil {
		return Response{}, err
	}
	if w.Result.Error != nil {
		return Response{Ok: false, Reason: *w.Result.Error}, nil
	}
	return Response{Ok: true, Metadata: w.Result.Ok}, nil
}

// WriteFrame 写入一个 varint 长度前缀 + 原始负载，供 PoR 握手在裸子流上交换消息
func WriteFrame(w io.Writer, payload []byte) error {
	if _, err := w.Write(varint.ToUvarint(uint64(len(payload)))); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame 读取一个 varint 长度前缀 + 原始负载
func ReadFrame(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	n, err := varint.ReadUvarint(br)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(br, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
