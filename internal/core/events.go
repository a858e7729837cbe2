package core

import (
	"sync"

	"go.uber.org/zap"

	"github.com/chess10kp/hexpanel/internal/listmodel"
	"github.com/chess10kp/hexpanel/internal/logging"
)

// Subscribable is any collection publishing list model notifications.
type Subscribable interface {
	Subscribe(o listmodel.Observer) func()
}

// Hub forwards collection notifications to IPC subscribers. Publishing
// never blocks; a subscriber whose buffer is full misses events.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan listmodel.Event
	nextID int
	buffer int
	logger *zap.Logger
}

func NewHub(buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	return &Hub{
		subs:   make(map[int]chan listmodel.Event),
		buffer: buffer,
		logger: logging.OrNop(logger).Named("events"),
	}
}

// Watch tags notifications from model with name and publishes them. Call it
// on the event loop.
func (h *Hub) Watch(name string, model Subscribable) func() {
	return model.Subscribe(listmodel.Func(func(e listmodel.Event) {
		e.Model = name
		h.Publish(e)
	}))
}

func (h *Hub) Publish(e listmodel.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			h.logger.Debug("subscriber too slow, dropping event", zap.Int("subscriber", id), zap.String("model", e.Model))
		}
	}
}

// Subscribe returns a channel of events and a function that closes it.
func (h *Hub) Subscribe() (<-chan listmodel.Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan listmodel.Event, h.buffer)
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
