package audio

import "sync/atomic"

// Policy holds the overlap switches shared by both engines.
// Monophonic wins when both are set.
type Policy struct {
	monophonic atomic.Bool
	noteCutoff atomic.Bool
}

// NewPolicy creates a policy with the given switches
func NewPolicy(monophonic, noteCutoff bool) *Policy {
	p := &Policy{}
	p.monophonic.Store(monophonic)
	p.noteCutoff.Store(noteCutoff)
	return p
}

func (p *Policy) Monophonic() bool      { return p.monophonic.Load() }
func (p *Policy) SetMonophonic(on bool) { p.monophonic.Store(on) }
func (p *Policy) NoteCutoff() bool      { return p.noteCutoff.Load() }
func (p *Policy) SetNoteCutoff(on bool) { p.noteCutoff.Store(on) }
