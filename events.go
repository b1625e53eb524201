package cartforge

import "sync"

// EventKind distinguishes the three progress events the coordinator emits.
type EventKind uint8

const (
	// Cloning is emitted when a project's repository is being cloned for
	// the first time into the shared cache.
	Cloning EventKind = iota
	// Fetching is emitted when an existing cached repository is being
	// brought up to date.
	Fetching
	// CheckingOut is emitted when a project's working directory is being
	// set to a specific pinned revision.
	CheckingOut
)

func (k EventKind) String() string {
	switch k {
	case Cloning:
		return "cloning"
	case Fetching:
		return "fetching"
	case CheckingOut:
		return "checking out"
	default:
		return "unknown"
	}
}

// ProjectEvent is a progress event surfaced to callers (CLI/TTY layers).
// Consumed outside the core; the resolver and build orchestrator never
// read them back.
type ProjectEvent struct {
	Kind     EventKind
	Project  Identifier
	Revision string // set only for CheckingOut
}

// Broadcaster is a hot, unbuffered multicast of ProjectEvent values.
// Subscribers attach and detach at any time; a Publish with no subscribers
// attached is dropped rather than blocking the publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan<- ProjectEvent]struct{}
}

// NewBroadcaster returns a ready-to-use Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan<- ProjectEvent]struct{})}
}

// Subscribe attaches ch as a recipient of future Publish calls. The caller
// owns ch and must continue draining it (or call Unsubscribe) to avoid
// backpressure on the publisher; Publish never blocks on a full channel, it
// drops the event for that subscriber instead.
func (b *Broadcaster) Subscribe(ch chan<- ProjectEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[ch] = struct{}{}
}

// Unsubscribe detaches ch. Safe to call even if ch was never subscribed.
func (b *Broadcaster) Unsubscribe(ch chan<- ProjectEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, ch)
}

// Publish sends ev to every attached subscriber. A subscriber whose channel
// is full has the event dropped for it; Publish itself never blocks.
func (b *Broadcaster) Publish(ev ProjectEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
