package web

import (
	"strings"
	"sync"
)

type resourceKey struct {
	kind string
	id   string
}

func (k resourceKey) String() string {
	kind := strings.TrimSpace(k.kind)
	id := strings.TrimSpace(k.id)
	if id == "" {
		return kind
	}
	return kind + ":" + id
}

func boardKey(id string) resourceKey { return resourceKey{kind: "board", id: id} }

type resourceHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newResourceHub() *resourceHub {
	return &resourceHub{subs: map[chan struct{}]struct{}{}}
}

func (h *resourceHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// broadcast never blocks: a subscriber with a full buffer already has a wakeup pending.
func (h *resourceHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *resourceHub) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Broadcaster fans committed board changes out to stream and websocket
// subscribers. It implements mutate.Notifier.
type Broadcaster struct {
	mu   sync.Mutex
	hubs map[string]*resourceHub
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{hubs: map[string]*resourceHub{}}
}

func (b *Broadcaster) hubFor(key resourceKey) *resourceHub {
	k := key.String()
	b.mu.Lock()
	h := b.hubs[k]
	if h == nil {
		h = newResourceHub()
		b.hubs[k] = h
	}
	b.mu.Unlock()
	return h
}

func (b *Broadcaster) BoardChanged(boardID string) {
	if b == nil || strings.TrimSpace(boardID) == "" {
		return
	}
	b.hubFor(boardKey(boardID)).broadcast()
}

// Subscribers reports how many listeners a board currently has.
func (b *Broadcaster) Subscribers(boardID string) int {
	return b.hubFor(boardKey(boardID)).size()
}
