package audio

import "sort"

// paramEvent is one automation point on the sample clock
type paramEvent struct {
	at    int64
	value float64
	ramp  bool // linear ramp from the previous point ending at `at`
}

// Param is a gain value automated against sample positions.
// Not safe for concurrent use; voices guard it with the bank lock.
type Param struct {
	initial float64
	events  []paramEvent
}

// NewParam returns a parameter holding v until automated
func NewParam(v float64) *Param {
	return &Param{initial: v}
}

// insert keeps events ordered by time, later inserts after equal times
func (p *Param) insert(e paramEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].at > e.at })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

// SetValueAt jumps to v at sample t
func (p *Param) SetValueAt(v float64, t int64) {
	p.insert(paramEvent{at: t, value: v})
}

// LinearRampTo ramps from the previous point to v, arriving at sample t
func (p *Param) LinearRampTo(v float64, t int64) {
	p.insert(paramEvent{at: t, value: v, ramp: true})
}

// HoldAt cancels automation at or after t and pins the value it had at t
func (p *Param) HoldAt(t int64) {
	v := p.ValueAt(t)
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].at >= t })
	p.events = p.events[:i]
	p.SetValueAt(v, t)
}

// ValueAt evaluates the automation curve at sample t
func (p *Param) ValueAt(t int64) float64 {
	// First event strictly after t
	next := sort.Search(len(p.events), func(i int) bool { return p.events[i].at > t })

	prevAt, prevVal := int64(0), p.initial
	if next > 0 {
		prev := p.events[next-1]
		prevAt, prevVal = prev.at, prev.value
	}

	if next < len(p.events) && p.events[next].ramp {
		e := p.events[next]
		span := e.at - prevAt
		if span <= 0 {
			return e.value
		}
		frac := float64(t-prevAt) / float64(span)
		return prevVal + (e.value-prevVal)*frac
	}
	return prevVal
}

// Compact drops points no longer needed to evaluate times >= t
func (p *Param) Compact(t int64) {
	next := sort.Search(len(p.events), func(i int) bool { return p.events[i].at > t })
	if next <= 1 {
		return
	}
	// Keep the last point at or before t as the ramp origin
	p.events = append(p.events[:0], p.events[next-1:]...)
}

// LastTime is the time of the final automation point
func (p *Param) LastTime() int64 {
	if len(p.events) == 0 {
		return 0
	}
	return p.events[len(p.events)-1].at
}
