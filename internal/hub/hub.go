package hub

import (
	"sync"
)

// Room is a named broadcast channel. Guests of one table session share a
// room; kitchen and waiter screens of a venue each get their own.
type Room string

func SessionRoom(sessionID string) Room { return Room("tableSession:" + sessionID) }
func KitchenRoom(venueID string) Room   { return Room("venue:" + venueID + ":kitchen") }
func WaitersRoom(venueID string) Room   { return Room("venue:" + venueID + ":waiters") }

// subscriber buffer; slow consumers drop events rather than block publishers.
const subBuffer = 16

type Hub struct {
	mu    sync.RWMutex
	rooms map[Room]map[chan Event]struct{}
}

func New() *Hub {
	return &Hub{rooms: map[Room]map[chan Event]struct{}{}}
}

// Subscribe registers a listener on a room. The returned cancel func must be
// called when the consumer goes away; it closes the channel.
func (h *Hub) Subscribe(room Room) (<-chan Event, func()) {
	ch := make(chan Event, subBuffer)
	h.mu.Lock()
	subs, ok := h.rooms[room]
	if !ok {
		subs = map[chan Event]struct{}{}
		h.rooms[room] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.rooms[room]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.rooms, room)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish fans an event out to every listener of the given rooms. Sends are
// non-blocking; a full subscriber buffer means the event is dropped for that
// subscriber (the client re-syncs via the state endpoint).
func (h *Hub) Publish(ev Event, rooms ...Room) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, room := range rooms {
		for ch := range h.rooms[room] {
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Subscribers reports the listener count of a room.
func (h *Hub) Subscribers(room Room) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
