package wasm

import (
	"encoding/json"
	"sync"

	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// deliveryQueue runs a subscription's deliveries on its own goroutine, in
// arrival order. push never blocks, so a host callback returns to the event
// loop before any handler code runs; handlers may then await host promises.
type deliveryQueue struct {
	mu      sync.Mutex
	pending []json.RawMessage
	wake    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newDeliveryQueue(deliver ports.DeliveryFunc) *deliveryQueue {
	q := &deliveryQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.run(deliver)
	return q
}

func (q *deliveryQueue) push(raw json.RawMessage) {
	q.mu.Lock()
	q.pending = append(q.pending, raw)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *deliveryQueue) take() []json.RawMessage {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

func (q *deliveryQueue) run(deliver ports.DeliveryFunc) {
	for {
		select {
		case <-q.done:
			return
		case <-q.wake:
		}
		for batch := q.take(); len(batch) > 0; batch = q.take() {
			for _, raw := range batch {
				select {
				case <-q.done:
					return
				default:
				}
				deliver(raw)
			}
		}
	}
}

// stop drops pending deliveries and ends the goroutine. Safe to call twice.
func (q *deliveryQueue) stop() {
	q.once.Do(func() { close(q.done) })
}
