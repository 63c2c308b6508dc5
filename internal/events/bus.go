package events

import "sync"

// Workflow event kinds.
const (
	KindAnalyzed = "call_analyzed"
	KindDegraded = "extraction_fallback"
	KindSaved    = "call_saved"
)

// Event describes one step of the call-analysis workflow.
type Event struct {
	Kind     string
	CallID   int64
	Filename string
	Priority string
	Detail   string
}

// Bus provides simple in-process pub/sub for observability.
type Bus struct {
	mu   sync.RWMutex
	subs []chan Event
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
