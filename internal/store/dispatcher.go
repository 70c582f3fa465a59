package store

import (
	"context"
	"sync"
)

// Event identifies a category of store state change. Subscribers use events
// to schedule re-renders; the payload is always read back from the store
// itself, never carried on the event.
type Event string

const (
	// EventSnapshotLoaded fires when the SVG blob has been fetched and parsed.
	EventSnapshotLoaded Event = "snapshot-loaded"
	// EventComponentsLoaded fires when the component list and index changed.
	EventComponentsLoaded Event = "components-loaded"
	// EventCommentsChanged fires after any successful comment load or mutation.
	EventCommentsChanged Event = "comments-changed"
	// EventSelectionChanged fires when the selected component ref changed.
	EventSelectionChanged Event = "selection-changed"
	// EventViewportChanged fires when the store itself moved the viewport.
	EventViewportChanged Event = "viewport-changed"
)

// Dispatcher fans store events out to subscribers. Publishing never blocks:
// each subscriber has a buffered stream and events are dropped when a
// subscriber falls behind, since a re-render is idempotent.
type Dispatcher struct {
	mu          sync.RWMutex
	subscribers map[int64]*subscriber
	nextID      int64
	bufferSize  int
}

type subscriber struct {
	id     int64
	stream chan Event
}

// NewDispatcher constructs an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		subscribers: make(map[int64]*subscriber),
		bufferSize:  16,
	}
}

// Subscribe registers a listener that receives events until the context is
// cancelled or the returned cleanup runs.
func (d *Dispatcher) Subscribe(ctx context.Context) (<-chan Event, func()) {
	entry := &subscriber{
		id:     d.nextSequence(),
		stream: make(chan Event, d.bufferSize),
	}
	d.register(entry)
	cleanup := func() {
		d.unregister(entry.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return entry.stream, cleanup
}

// Publish delivers the event to every current subscriber without blocking.
func (d *Dispatcher) Publish(event Event) {
	if event == "" {
		return
	}
	d.mu.RLock()
	copies := make([]*subscriber, 0, len(d.subscribers))
	for _, entry := range d.subscribers {
		copies = append(copies, entry)
	}
	d.mu.RUnlock()
	for _, entry := range copies {
		select {
		case entry.stream <- event:
		default:
		}
	}
}

func (d *Dispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *Dispatcher) register(entry *subscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers[entry.id] = entry
}

func (d *Dispatcher) unregister(id int64) {
	d.mu.Lock()
	delete(d.subscribers, id)
	d.mu.Unlock()
}
