package notify

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultTTL = 3 * time.Second

type Notification struct {
	ID        uuid.UUID
	Message   string
	CreatedAt time.Time
}

// Sink presents notifications. Dismiss is called from a timer goroutine.
type Sink interface {
	Show(n Notification)
	Dismiss(n Notification)
}

type entry struct {
	n     Notification
	seq   uint64
	timer *time.Timer
}

// Service shows transient messages. Each notification owns its dismissal
// timer; nothing is queued.
type Service struct {
	mu     sync.Mutex
	ttl    time.Duration
	sink   Sink
	seq    uint64
	active map[uuid.UUID]*entry
}

func New(ttl time.Duration, sink Sink) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Service{
		ttl:    ttl,
		sink:   sink,
		active: make(map[uuid.UUID]*entry),
	}
}

func (s *Service) Notify(message string) {
	n := Notification{
		ID:        uuid.New(),
		Message:   message,
		CreatedAt: time.Now(),
	}

	s.mu.Lock()
	s.seq++
	e := &entry{n: n, seq: s.seq}
	s.active[n.ID] = e
	e.timer = time.AfterFunc(s.ttl, func() { s.dismiss(n.ID) })
	s.mu.Unlock()

	s.sink.Show(n)
}

func (s *Service) dismiss(id uuid.UUID) {
	s.mu.Lock()
	e, ok := s.active[id]
	if ok {
		delete(s.active, id)
	}
	s.mu.Unlock()

	if ok {
		s.sink.Dismiss(e.n)
	}
}

// Active returns the visible notifications, oldest first.
func (s *Service) Active() []Notification {
	s.mu.Lock()
	entries := make([]*entry, 0, len(s.active))
	for _, e := range s.active {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	out := make([]Notification, len(entries))
	for i, e := range entries {
		out[i] = e.n
	}
	return out
}

// Clear dismisses everything still on screen without waiting for timers.
func (s *Service) Clear() {
	s.mu.Lock()
	cleared := make([]Notification, 0, len(s.active))
	for id, e := range s.active {
		e.timer.Stop()
		cleared = append(cleared, e.n)
		delete(s.active, id)
	}
	s.mu.Unlock()

	for _, n := range cleared {
		s.sink.Dismiss(n)
	}
}

type NopSink struct{}

func (NopSink) Show(Notification)    {}
func (NopSink) Dismiss(Notification) {}

// WriterSink prints each notification as it appears.
type WriterSink struct {
	W io.Writer
}

func (w WriterSink) Show(n Notification) {
	fmt.Fprintf(w.W, "» %s\n", n.Message)
}

func (w WriterSink) Dismiss(Notification) {}
