package audio

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParamRamps(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(0, 100)
	p.LinearRampTo(1, 200)
	p.LinearRampTo(0.5, 400)

	testCases := []struct {
		at       int64
		expected float64
	}{
		{0, 0},
		{100, 0},
		{150, 0.5},
		{200, 1},
		{300, 0.75},
		{400, 0.5},
		{10000, 0.5},
	}
	for _, tc := range testCases {
		if got := p.ValueAt(tc.at); !approx(got, tc.expected) {
			t.Errorf("ValueAt(%d): expected %v, got %v", tc.at, tc.expected, got)
		}
	}
}

func TestParamHoldAt(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(0, 0)
	p.LinearRampTo(1, 100)
	p.LinearRampTo(0.5, 300)

	// Cancel mid-attack and release
	p.HoldAt(50)
	p.LinearRampTo(0, 150)

	if got := p.ValueAt(50); !approx(got, 0.5) {
		t.Errorf("Expected held value 0.5, got %v", got)
	}
	if got := p.ValueAt(100); !approx(got, 0.25) {
		t.Errorf("Expected 0.25 halfway through release, got %v", got)
	}
	if got := p.ValueAt(300); got != 0 {
		t.Errorf("Expected cancelled decay to stay at 0, got %v", got)
	}
	if p.LastTime() != 150 {
		t.Errorf("Expected last event at 150, got %d", p.LastTime())
	}
}

func TestParamSameTimeOrder(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(0.3, 10)
	p.SetValueAt(0.8, 10)

	if got := p.ValueAt(10); got != 0.8 {
		t.Errorf("Expected later insert to win at equal time, got %v", got)
	}
}

func TestParamCompact(t *testing.T) {
	p := NewParam(0)
	p.SetValueAt(0, 0)
	p.LinearRampTo(1, 100)
	p.LinearRampTo(0.7, 200)
	p.LinearRampTo(0, 1000)

	before := p.ValueAt(600)
	p.Compact(500)

	if got := p.ValueAt(600); !approx(got, before) {
		t.Errorf("Compact changed future value: %v -> %v", before, got)
	}
	if len(p.events) != 2 {
		t.Errorf("Expected 2 events kept, got %d", len(p.events))
	}
}
