package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// LessonRef names a lesson within its level
type LessonRef struct {
	Level string
	ID    string
}

// LessonProgress is the per-lesson record
type LessonProgress struct {
	Started    bool      `msgpack:"started"`
	Completed  bool      `msgpack:"completed"`
	Score      int       `msgpack:"score"`
	LastPlayed time.Time `msgpack:"last_played"`
}

// Stats summarises progress for the home screen
type Stats struct {
	Total     int
	Completed int
	Started   int // Started but not completed
	Percent   int
	// Last is the most recently played lesson, zero when none
	Last LessonRef
}

// Progress stores lesson records under progress:<level>:<id>
type Progress struct {
	store Store
}

// NewProgress wraps store
func NewProgress(store Store) *Progress {
	return &Progress{store: store}
}

func progressKey(ref LessonRef) string {
	return Key(nsProgress, ref.Level, ref.ID)
}

// Init seeds an empty record for each lesson when nothing is stored yet
func (p *Progress) Init(ctx context.Context, lessons []LessonRef) error {
	for _, err := range p.store.List(ctx, nsProgress) {
		if err != nil {
			return err
		}
		// Already initialised
		return nil
	}
	for _, ref := range lessons {
		if err := p.put(ctx, ref, LessonProgress{}); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the record for ref, zero when missing
func (p *Progress) Get(ctx context.Context, ref LessonRef) (LessonProgress, error) {
	var lp LessonProgress
	data, err := p.store.Get(ctx, progressKey(ref))
	if errors.Is(err, ErrNotFound) {
		return lp, nil
	}
	if err != nil {
		return lp, err
	}
	if err := msgpack.Unmarshal(data, &lp); err != nil {
		return lp, fmt.Errorf("decode progress %s/%s: %w", ref.Level, ref.ID, err)
	}
	return lp, nil
}

func (p *Progress) put(ctx context.Context, ref LessonRef, lp LessonProgress) error {
	data, err := msgpack.Marshal(lp)
	if err != nil {
		return err
	}
	return p.store.Set(ctx, progressKey(ref), data)
}

func (p *Progress) update(ctx context.Context, ref LessonRef, fn func(lp *LessonProgress)) error {
	lp, err := p.Get(ctx, ref)
	if err != nil {
		return err
	}
	fn(&lp)
	return p.put(ctx, ref, lp)
}

// MarkStarted records that ref was opened at
func (p *Progress) MarkStarted(ctx context.Context, ref LessonRef, at time.Time) error {
	return p.update(ctx, ref, func(lp *LessonProgress) {
		lp.Started = true
		lp.LastPlayed = at
	})
}

// MarkCompleted sets the completed flag
func (p *Progress) MarkCompleted(ctx context.Context, ref LessonRef) error {
	return p.update(ctx, ref, func(lp *LessonProgress) {
		lp.Started = true
		lp.Completed = true
	})
}

// AddScore adds points to the lesson score
func (p *Progress) AddScore(ctx context.Context, ref LessonRef, points int) error {
	return p.update(ctx, ref, func(lp *LessonProgress) { lp.Score += points })
}

// All returns level -> lesson id -> record
func (p *Progress) All(ctx context.Context) (map[string]map[string]LessonProgress, error) {
	all := make(map[string]map[string]LessonProgress)
	for e, err := range p.store.List(ctx, nsProgress) {
		if err != nil {
			return nil, err
		}
		parts := strings.Split(e.Key, Separator)
		if len(parts) != 3 {
			continue
		}
		var lp LessonProgress
		if err := msgpack.Unmarshal(e.Value, &lp); err != nil {
			return nil, fmt.Errorf("decode progress %s: %w", e.Key, err)
		}
		if all[parts[1]] == nil {
			all[parts[1]] = make(map[string]LessonProgress)
		}
		all[parts[1]][parts[2]] = lp
	}
	return all, nil
}

// Stats counts totals and finds the last played lesson
func (p *Progress) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	all, err := p.All(ctx)
	if err != nil {
		return st, err
	}

	var last time.Time
	for level, lessons := range all {
		for id, lp := range lessons {
			st.Total++
			switch {
			case lp.Completed:
				st.Completed++
			case lp.Started:
				st.Started++
			}
			if lp.LastPlayed.After(last) {
				last = lp.LastPlayed
				st.Last = LessonRef{Level: level, ID: id}
			}
		}
	}
	if st.Total > 0 {
		st.Percent = (st.Completed*100 + st.Total/2) / st.Total
	}
	return st, nil
}

// Reset removes all progress records
func (p *Progress) Reset(ctx context.Context) error {
	return deletePrefix(ctx, p.store, nsProgress)
}
