package directory

import "time"

type EventKind string

const (
	EventUpsert EventKind = "upsert"
	EventDelete EventKind = "delete"
	EventReview EventKind = "review" // rating recomputed from reviews
)

// Event is published after every successful write.
type Event struct {
	Kind EventKind `json:"kind"`
	IDs  []string  `json:"ids"`
	At   time.Time `json:"at"`
}

// Subscribe registers a listener. The returned func unsubscribes and
// closes the channel; calling it twice is fine. A subscriber that falls
// behind misses events rather than blocking writers.
func (s *Store) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	s.subMu.Lock()
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.log.Warn().Int("subscriber", id).Str("kind", string(ev.Kind)).Msg("subscriber lagging, event dropped")
		}
	}
}
