package xroutes

import "errors"

var (
	// ErrKadDisabled Kademlia 子行为未挂载
	ErrKadDisabled = errors.New("xroutes: kademlia is not enabled")
	// ErrMdnsDisabled mDNS 子行为未挂载
	ErrMdnsDisabled = errors.New("xroutes: mdns is not enabled")
	// ErrInvalidKadMode KadMode 不是 client/server/auto 之一
	ErrInvalidKadMode = errors.New("xroutes: kad mode must be one of client, server, auto")
	// ErrSearchCancelled 一次 peer 搜索被显式取消
	ErrSearchCancelled = errors.New("xroutes: peer search cancelled")
	// ErrSearchTimeout 一次 peer 搜索超过了调用方指定的截止时间
	ErrSearchTimeout = errors.New("xroutes: peer search timed out")
	// ErrRelayClientDisabled 中继客户端子行为未挂载
	ErrRelayClientDisabled = errors.New("xroutes: relay client is not enabled")
	// ErrNoRelayAddr ListenViaRelay 未提供中继地址
	ErrNoRelayAddr = errors.New("xroutes: no relay address provided")
	// ErrReservationExhausted 中继预留重试次数耗尽
	ErrReservationExhausted = errors.New("xroutes: relay reservation retries exhausted")
	// ErrMdnsMalformedAnnouncement 收到的 mDNS 记录集合无法解析出 peer 身份
	ErrMdnsMalformedAnnouncement = errors.New("xroutes: malformed mdns announcement")
)
