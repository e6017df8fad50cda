package wasip1

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tauri-wasm/tauri-go/domain/entities"
	"github.com/tauri-wasm/tauri-go/domain/ports"
)

// handlerTable maps guest-chosen handler IDs to delivery functions.
type handlerTable struct {
	handlers map[uint32]ports.DeliveryFunc
	next     uint32
	mu       sync.Mutex
}

func newHandlerTable() *handlerTable {
	return &handlerTable{handlers: make(map[uint32]ports.DeliveryFunc)}
}

func (t *handlerTable) add(fn ports.DeliveryFunc) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	t.handlers[t.next] = fn
	return t.next
}

func (t *handlerTable) remove(id uint32) {
	t.mu.Lock()
	delete(t.handlers, id)
	t.mu.Unlock()
}

func (t *handlerTable) get(id uint32) ports.DeliveryFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handlers[id]
}

func (t *handlerTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.handlers)
}

// dispatch decodes a poll response and hands each delivery to its handler,
// in order. Deliveries for removed handlers are dropped.
func (t *handlerTable) dispatch(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	var poll entities.PollResponseWire
	if err := json.Unmarshal(data, &poll); err != nil {
		return 0, fmt.Errorf("wasip1: failed to unmarshal deliveries: %w", err)
	}

	delivered := 0
	for _, d := range poll.Deliveries {
		fn := t.get(d.HandlerID)
		if fn == nil {
			continue
		}
		fn(d.Event)
		delivered++
	}
	return delivered, nil
}

// settle converts a host response into the transport result.
func settle(resp *entities.ResponseWire) (json.RawMessage, error) {
	switch {
	case resp.Error != nil:
		return nil, resp.Error
	case resp.Rejection != nil:
		return nil, &entities.Rejection{Reason: resp.Rejection}
	case len(resp.Result) == 0:
		return json.RawMessage("null"), nil
	default:
		return resp.Result, nil
	}
}
