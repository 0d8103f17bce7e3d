// Package store persists Room, Player and Guess records and fans row-level
// change notifications out to per-room subscribers.
package store

import (
	"sync"

	"github.com/Rushigaming001/askify-sketch/internal/game"
)

// feedBuffer is per subscriber; a subscriber that falls this far behind
// starts losing notifications and resyncs from the next snapshot read.
const feedBuffer = 64

// feed is the in-process change-notification fanout shared by both store
// implementations.
type feed struct {
	mu   sync.Mutex
	subs map[string]map[int]chan game.Change
	next int
}

func newFeed() *feed {
	return &feed{subs: make(map[string]map[int]chan game.Change)}
}

func (f *feed) subscribe(roomID string) (<-chan game.Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.subs[roomID] == nil {
		f.subs[roomID] = make(map[int]chan game.Change)
	}
	id := f.next
	f.next++
	ch := make(chan game.Change, feedBuffer)
	f.subs[roomID][id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[roomID][id]; ok {
			delete(f.subs[roomID], id)
			close(sub)
			if len(f.subs[roomID]) == 0 {
				delete(f.subs, roomID)
			}
		}
	}
	return ch, cancel
}

func (f *feed) emit(roomID string, change game.Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs[roomID] {
		select {
		case ch <- change:
		default:
		}
	}
}
