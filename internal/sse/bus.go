package sse

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventConnected    = "connected"
	EventHeartbeat    = "heartbeat"
	EventNewOrder     = "new-order"
	EventOrderUpdated = "order-updated"
)

// subscriber channels are buffered; a subscriber that cannot keep up is
// evicted rather than blocking the broadcaster.
const subscriberBuffer = 16

type Event struct {
	ID   uint64
	Name string
	Data []byte
}

// Bus is the process-local dashboard notification registry. Delivery is
// at-most-once with no replay; clients re-fetch current state after a
// reconnect. Multi-instance deployments need a shared broker instead.
type Bus struct {
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]chan Event

	seq atomic.Uint64

	heartbeatEvery time.Duration
}

func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		logger:         logger,
		clients:        make(map[string]chan Event),
		heartbeatEvery: 30 * time.Second,
	}
}

// Subscribe registers a new client and queues its initial connected event.
func (b *Bus) Subscribe() (string, <-chan Event) {
	id := uuid.NewString()
	ch := make(chan Event, subscriberBuffer)

	data, _ := json.Marshal(map[string]string{"clientId": id})
	ch <- Event{ID: b.seq.Add(1), Name: EventConnected, Data: data}

	b.mu.Lock()
	b.clients[id] = ch
	b.mu.Unlock()

	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.clients[id]; ok {
		delete(b.clients, id)
		close(ch)
	}
	b.mu.Unlock()
}

// Broadcast serializes the payload once and fans it out. Subscribers whose
// buffers are full are dropped; there is no retry or backpressure.
func (b *Bus) Broadcast(name string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		b.logger.Error("marshal sse payload", zap.String("event", name), zap.Error(err))
		return
	}

	ev := Event{ID: b.seq.Add(1), Name: name, Data: data}

	b.mu.Lock()
	var dead []string
	for id, ch := range b.clients {
		select {
		case ch <- ev:
		default:
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		close(b.clients[id])
		delete(b.clients, id)
	}
	b.mu.Unlock()

	if len(dead) > 0 {
		b.logger.Info("evicted stalled sse clients", zap.Int("count", len(dead)))
	}
}

// Run drives the keepalive ticker until the context is cancelled. The
// heartbeat doubles as the stale-connection detector: clients that cannot
// take it are evicted by Broadcast.
func (b *Bus) Run(ctx context.Context) {
	ticker := time.NewTicker(b.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return
		case t := <-ticker.C:
			b.Broadcast(EventHeartbeat, map[string]int64{"ts": t.Unix()})
		}
	}
}

func (b *Bus) closeAll() {
	b.mu.Lock()
	for id, ch := range b.clients {
		close(ch)
		delete(b.clients, id)
	}
	b.mu.Unlock()
}

// ClientCount is used by tests and the health endpoint.
func (b *Bus) ClientCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
