package schedule

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/pianoterm/core"
)

// Clock is the monotonic audio clock events are anchored to
type Clock interface {
	Now() time.Duration
}

// entry is a pending dispatch
type entry struct {
	at     time.Duration
	seq    uint64
	action Action
}

// Scheduler dispatches timeline events against the audio clock.
// Events within lookahead of Now are fired early with their exact time so
// engines can start envelopes on the intended sample.
type Scheduler struct {
	clock     Clock
	lookahead time.Duration

	mu      sync.Mutex
	pending []entry
	seq     uint64

	fired atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewScheduler creates a scheduler reading clock
func NewScheduler(clock Clock, lookahead time.Duration) *Scheduler {
	if lookahead < 0 {
		lookahead = 0
	}
	return &Scheduler{
		clock:     clock,
		lookahead: lookahead,
		stopChan:  make(chan struct{}),
	}
}

// Playback reports the span of one scheduled timeline
type Playback struct {
	start time.Duration
	end   time.Duration
	done  chan struct{}
}

// Start is the audio time the timeline was anchored at
func (p *Playback) Start() time.Duration { return p.start }

// End is the audio time of the last event plus the completion buffer
func (p *Playback) End() time.Duration { return p.end }

// Done is closed once the clock passes End
func (p *Playback) Done() <-chan struct{} { return p.done }

// Wait blocks until Done or ctx ends
func (p *Playback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule anchors tl at the current clock time. buffer extends End past the
// timeline duration before Done closes. There is no cancellation: engines
// tolerate stale note-off and stop events.
func (s *Scheduler) Schedule(tl *Timeline, buffer time.Duration) *Playback {
	return s.ScheduleAt(tl, s.clock.Now(), buffer)
}

// ScheduleAt anchors tl at an explicit audio time
func (s *Scheduler) ScheduleAt(tl *Timeline, anchor time.Duration, buffer time.Duration) *Playback {
	pb := &Playback{
		start: anchor,
		end:   anchor + tl.Duration() + buffer,
		done:  make(chan struct{}),
	}

	s.mu.Lock()
	for _, e := range tl.Events() {
		s.insertLocked(anchor+e.Offset, e.Action)
	}
	// Completion marker runs after every event at the same time
	s.insertLocked(pb.end, func(time.Duration) { close(pb.done) })
	s.mu.Unlock()

	return pb
}

// After runs a single action d after the current clock time
func (s *Scheduler) After(d time.Duration, a Action) {
	s.mu.Lock()
	s.insertLocked(s.clock.Now()+d, a)
	s.mu.Unlock()
}

func (s *Scheduler) insertLocked(at time.Duration, a Action) {
	s.seq++
	e := entry{at: at, seq: s.seq, action: a}
	i := sort.Search(len(s.pending), func(i int) bool {
		p := s.pending[i]
		return p.at > at || (p.at == at && p.seq > e.seq)
	})
	s.pending = append(s.pending, entry{})
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = e
}

// Poll fires every event due within the lookahead window and returns the count.
// Actions run outside the lock and may schedule further events.
func (s *Scheduler) Poll() int {
	horizon := s.clock.Now() + s.lookahead

	s.mu.Lock()
	n := sort.Search(len(s.pending), func(i int) bool { return s.pending[i].at > horizon })
	due := make([]entry, n)
	copy(due, s.pending[:n])
	s.pending = append(s.pending[:0], s.pending[n:]...)
	s.mu.Unlock()

	for _, e := range due {
		e.action(e.at)
	}
	s.fired.Add(uint64(n))
	return n
}

// Pending is the number of undispatched events
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Fired is the number of events dispatched so far
func (s *Scheduler) Fired() uint64 {
	return s.fired.Load()
}

// Start begins polling every tick
func (s *Scheduler) Start(tick time.Duration) {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		core.Go(func() { s.loop(tick) })
	}
}

// Stop halts the poll loop; pending events are kept
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.running.CompareAndSwap(true, false) {
			close(s.stopChan)
			s.wg.Wait()
		}
	})
}

func (s *Scheduler) loop(tick time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Poll()
		}
	}
}
