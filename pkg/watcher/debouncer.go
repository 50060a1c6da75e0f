package watcher

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// pendingEvent is the in-window state for one path.
type pendingEvent struct {
	event ChangeEvent
	timer *time.Timer
	gen   uint64
}

// debouncer coalesces raw notifications per path and pushes the logical
// event onto an eventQueue once the path has been quiet for the window.
type debouncer struct {
	window time.Duration
	out    *eventQueue
	now    func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingEvent
	gen     uint64
	closed  bool
}

func newDebouncer(window time.Duration, out *eventQueue) *debouncer {
	return &debouncer{
		window:  window,
		out:     out,
		now:     time.Now,
		pending: make(map[string]*pendingEvent),
	}
}

// add records one raw notification for path.
func (d *debouncer) add(path string, op Op, kind Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	now := d.now()
	p, exists := d.pending[path]
	if !exists {
		p = &pendingEvent{
			event: ChangeEvent{
				ID:        uuid.NewString(),
				Kind:      kind,
				Paths:     []string{path},
				FirstSeen: now,
			},
		}
		d.pending[path] = p
	} else {
		p.timer.Stop()
		next, keep := coalesce(p.event.Kind, kind)
		if !keep {
			// Created and gone again within one window.
			delete(d.pending, path)
			return
		}
		p.event.Kind = next
	}

	p.event.Ops |= op
	p.event.LastSeen = now

	// Stale callbacks are recognized by generation rather than relying on
	// Stop, which cannot recall a timer that already fired.
	d.gen++
	gen := d.gen
	p.gen = gen
	p.timer = time.AfterFunc(d.window, func() {
		d.fire(path, gen)
	})
}

// fire emits the pending event for path if gen is still current.
func (d *debouncer) fire(path string, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, exists := d.pending[path]
	if d.closed || !exists || p.gen != gen {
		return
	}
	delete(d.pending, path)
	d.out.push(p.event)
}

// pendingCount returns the number of paths waiting for their window.
func (d *debouncer) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// close cancels every pending timer. Pending events are discarded.
func (d *debouncer) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	for path, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, path)
	}
}

// coalesce merges an incoming raw kind into the pending kind for a path.
// It returns false when the pending event should be dropped.
//
//	create + modify        -> create
//	create + remove/rename -> dropped
//	anything else          -> incoming kind
func coalesce(current, incoming Kind) (Kind, bool) {
	if current.IsCreate() {
		switch incoming {
		case KindModify:
			return current, true
		case KindRemove, KindRename:
			return KindOther, false
		}
	}
	return incoming, true
}

// eventQueue is an unbounded FIFO between the debouncer and the consumer.
type eventQueue struct {
	mu     sync.Mutex
	items  []ChangeEvent
	signal chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{
		signal: make(chan struct{}, 1),
	}
}

func (q *eventQueue) push(ev ChangeEvent) {
	q.mu.Lock()
	q.items = append(q.items, ev)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// drain removes and returns all queued events in order.
func (q *eventQueue) drain() []ChangeEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// pump forwards queued events to out until done is closed.
func (q *eventQueue) pump(out chan<- ChangeEvent, done <-chan struct{}) {
	for {
		for _, ev := range q.drain() {
			select {
			case out <- ev:
			case <-done:
				return
			}
		}

		select {
		case <-q.signal:
		case <-done:
			return
		}
	}
}
