// Package sequence generates the deterministic digital-output pattern stream
// that the acquisition loop interleaves with timed sampling.
//
// A Plan walks either an arithmetic range of patterns or an explicit list,
// holding each pattern for a fixed number of samples. Looping plans wrap
// around; non-looping plans freeze at their last pattern and ignore further
// ticks. A Plan is driven synchronously by the acquisition loop and is not
// safe for concurrent use.
package sequence

import (
	"errors"
	"fmt"
)

// MaxPattern is the largest representable output pattern: 11 independent
// output bits.
const MaxPattern = 2047

// ErrConfig indicates invalid range or list parameters. It is raised at plan
// construction, before any run starts.
var ErrConfig = errors.New("sequence: invalid configuration")

// Mode selects how the plan produces patterns.
type Mode int

const (
	// RangeMode walks start, start+step, ... while <= end.
	RangeMode Mode = iota
	// ListMode walks an explicit ordered pattern list.
	ListMode
)

func (m Mode) String() string {
	switch m {
	case RangeMode:
		return "range"
	case ListMode:
		return "list"
	default:
		return "unknown"
	}
}

// Plan is a sequence plan with its cursor. The cursor always points at a
// valid pattern: within [start, end] for RangeMode, a valid index for
// ListMode.
type Plan struct {
	mode Mode
	loop bool

	// RangeMode parameters.
	start int
	end   int
	step  int

	// ListMode parameters.
	patterns []int

	samplesPerStep int

	// Cursor.
	value  int // active pattern (RangeMode)
	index  int // active index (ListMode)
	count  int // samples taken at the current step
	frozen bool
}

// NewRangePlan creates a range-mode plan covering start, start+step, ...
// while <= end, holding each pattern for samplesPerStep samples.
func NewRangePlan(start, end, step, samplesPerStep int, loop bool) (*Plan, error) {
	if start < 0 || start > MaxPattern {
		return nil, fmt.Errorf("%w: start %d out of range [0, %d]", ErrConfig, start, MaxPattern)
	}
	if end < 0 || end > MaxPattern {
		return nil, fmt.Errorf("%w: end %d out of range [0, %d]", ErrConfig, end, MaxPattern)
	}
	if start > end {
		return nil, fmt.Errorf("%w: start %d greater than end %d", ErrConfig, start, end)
	}
	if step < 1 {
		return nil, fmt.Errorf("%w: step %d must be at least 1", ErrConfig, step)
	}
	if samplesPerStep < 1 {
		return nil, fmt.Errorf("%w: samples per step %d must be at least 1", ErrConfig, samplesPerStep)
	}

	return &Plan{
		mode:           RangeMode,
		loop:           loop,
		start:          start,
		end:            end,
		step:           step,
		samplesPerStep: samplesPerStep,
		value:          start,
	}, nil
}

// NewListPlan creates a list-mode plan walking patterns in order, holding
// each for samplesPerStep samples.
func NewListPlan(patterns []int, samplesPerStep int, loop bool) (*Plan, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: empty pattern list", ErrConfig)
	}
	for i, p := range patterns {
		if p < 0 || p > MaxPattern {
			return nil, fmt.Errorf("%w: pattern[%d]=%d out of range [0, %d]", ErrConfig, i, p, MaxPattern)
		}
	}
	if samplesPerStep < 1 {
		return nil, fmt.Errorf("%w: samples per step %d must be at least 1", ErrConfig, samplesPerStep)
	}

	list := make([]int, len(patterns))
	copy(list, patterns)

	return &Plan{
		mode:           ListMode,
		loop:           loop,
		patterns:       list,
		samplesPerStep: samplesPerStep,
	}, nil
}

// Mode returns the plan's mode.
func (p *Plan) Mode() Mode { return p.mode }

// Loop returns whether the plan wraps around after its last pattern.
func (p *Plan) Loop() bool { return p.loop }

// Period returns the number of distinct steps in one pass of the plan.
func (p *Plan) Period() int {
	if p.mode == ListMode {
		return len(p.patterns)
	}

	return (p.end-p.start)/p.step + 1
}

// Current returns the active pattern without advancing. Safe to call any
// number of times.
func (p *Plan) Current() int {
	if p.mode == ListMode {
		return p.patterns[p.index]
	}

	return p.value
}

// Tick records one completed sample at the current step. When the per-step
// sample count is reached, the counter resets and the cursor advances.
//
// Tick must be called exactly once per completed sample.
func (p *Plan) Tick() {
	if p.frozen {
		return
	}

	p.count++
	if p.count < p.samplesPerStep {
		return
	}

	p.count = 0
	p.advance()
}

func (p *Plan) advance() {
	if p.mode == ListMode {
		if p.index+1 < len(p.patterns) {
			p.index++
			return
		}
		if p.loop {
			p.index = 0
			return
		}
		p.frozen = true

		return
	}

	next := p.value + p.step
	if next <= p.end {
		p.value = next
		return
	}
	if p.loop {
		p.value = p.start
		return
	}
	p.frozen = true
}
