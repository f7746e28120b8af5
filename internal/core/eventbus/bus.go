// Package eventbus 实现一个多消费者、慢消费者丢最旧事件的广播总线
//
// 语义约定：多生产者/多消费者广播；订阅者各自持有有界缓冲；
// 缓冲满时丢弃该订阅者最旧的一条事件而不是阻塞生产者，
// 也不丢新事件——慢订阅者错过的是历史，不是最新状态。
package eventbus

import (
	"sync"

	"github.com/xcore-net/xcore/pkg/lib/log"
)

var logger = log.Logger("core/eventbus")

// Bus 是一个泛型的广播事件总线
type Bus[T any] struct {
	mu   sync.Mutex
	subs map[*Subscription[T]]struct{}
}

// NewBus 创建一个新的广播总线
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[*Subscription[T]]struct{})}
}

// Subscription 是一个订阅者的接收句柄
type Subscription[T any] struct {
	bus *Bus[T]
	ch  chan T
	mu  sync.Mutex
}

// Events 返回订阅者的接收 channel
func (s *Subscription[T]) Events() <-chan T {
	return s.ch
}

// Close 注销该订阅
func (s *Subscription[T]) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()
}

// Subscribe 注册一个新的订阅者，缓冲区容量为 capacity
func (b *Bus[T]) Subscribe(capacity int) *Subscription[T] {
	if capacity <= 0 {
		capacity = 32
	}
	sub := &Subscription[T]{bus: b, ch: make(chan T, capacity)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Publish 向全部订阅者广播一个事件
//
// 订阅者缓冲区已满时，丢弃该订阅者缓冲区中最旧的一条事件再写入新事件，
// 而不是丢弃新事件，对应"慢订阅者丢弃最旧消息"的约定。
func (b *Bus[T]) Publish(event T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		sub.mu.Lock()
		select {
		case sub.ch <- event:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
				logger.Warn("subscriber buffer still full after eviction, dropping event")
			}
		}
		sub.mu.Unlock()
	}
}

// SubscriberCount 返回当前订阅者数量，用于测试与内省
func (b *Bus[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
