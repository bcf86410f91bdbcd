package explore

import (
	"sort"
	"sync"
	"time"

	"github.com/baechuer/real-time-ressys/services/explore-service/internal/domain"
	zlog "github.com/rs/zerolog/log"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailure Phase = "failure"
)

// FeedState is the view-independent state of one feed. Listing survives a
// reload or failure so the last good page stays readable.
type FeedState struct {
	Phase     Phase
	Listing   Page[domain.EventRecord]
	Err       string
	UpdatedAt time.Time
}

// Msg is an input to Reduce.
type Msg interface{ msg() }

type MsgLoad struct{ At time.Time }

type MsgLoaded struct {
	Listing Page[domain.EventRecord]
	At      time.Time
}

type MsgFailed struct {
	Err error
	At  time.Time
}

type MsgReset struct{}

func (MsgLoad) msg()   {}
func (MsgLoaded) msg() {}
func (MsgFailed) msg() {}
func (MsgReset) msg()  {}

// Reduce is the only way a FeedState changes. Results that arrive while no
// load is in flight are ignored.
func Reduce(s FeedState, m Msg) FeedState {
	switch m := m.(type) {
	case MsgLoad:
		s.Phase = PhaseLoading
		s.Err = ""
		s.UpdatedAt = m.At
	case MsgLoaded:
		if s.Phase != PhaseLoading {
			return s
		}
		s.Phase = PhaseSuccess
		s.Listing = m.Listing
		s.Err = ""
		s.UpdatedAt = m.At
	case MsgFailed:
		if s.Phase != PhaseLoading {
			return s
		}
		s.Phase = PhaseFailure
		if m.Err != nil {
			s.Err = m.Err.Error()
		}
		s.UpdatedAt = m.At
	case MsgReset:
		return FeedState{Phase: PhaseIdle}
	}
	return s
}

type Transition struct {
	Feed string
	Prev FeedState
	Next FeedState
}

// FeedStore keeps one FeedState per feed and fans transitions out to subscribers.
type FeedStore struct {
	mu     sync.Mutex
	states map[string]FeedState
	subs   map[int]chan Transition
	nextID int
}

func NewFeedStore() *FeedStore {
	return &FeedStore{
		states: make(map[string]FeedState),
		subs:   make(map[int]chan Transition),
	}
}

// Dispatch applies m to the feed and returns the new state. A subscriber whose
// buffer is full misses the transition.
func (s *FeedStore) Dispatch(feed string, m Msg) FeedState {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.states[feed]
	if !ok {
		prev = FeedState{Phase: PhaseIdle}
	}
	next := Reduce(prev, m)
	s.states[feed] = next

	t := Transition{Feed: feed, Prev: prev, Next: next}
	for id, ch := range s.subs {
		select {
		case ch <- t:
		default:
			zlog.Warn().Int("subscriber", id).Str("feed", feed).Msg("feed subscriber lagging, transition dropped")
		}
	}
	return next
}

func (s *FeedStore) Get(feed string) FeedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[feed]; ok {
		return st
	}
	return FeedState{Phase: PhaseIdle}
}

// Feeds returns the known feed names, sorted.
func (s *FeedStore) Feeds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.states))
	for k := range s.states {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Subscribe returns a channel of transitions and a cancel func that closes it.
func (s *FeedStore) Subscribe(buffer int) (<-chan Transition, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Transition, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
