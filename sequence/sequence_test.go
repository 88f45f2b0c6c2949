package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stream collects the pattern observed for n consecutive samples.
func stream(p *Plan, n int) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, p.Current())
		p.Tick()
	}

	return out
}

func TestRangePlan_LoopingScenario(t *testing.T) {
	// start=0 end=7 step=1 samplesPerStep=5, 80 samples: two full 8-state loops.
	p, err := NewRangePlan(0, 7, 1, 5, true)
	require.NoError(t, err)
	assert.Equal(t, 8, p.Period())

	got := stream(p, 80)

	want := make([]int, 0, 80)
	for loop := 0; loop < 2; loop++ {
		for v := 0; v <= 7; v++ {
			for s := 0; s < 5; s++ {
				want = append(want, v)
			}
		}
	}

	assert.Equal(t, want, got)
	// After two full loops the cursor is back at the start.
	assert.Equal(t, 0, p.Current())
}

func TestRangePlan_PeriodicityWithLoop(t *testing.T) {
	p, err := NewRangePlan(2, 10, 3, 1, true)
	require.NoError(t, err)

	period := p.Period()
	assert.Equal(t, 3, period) // 2, 5, 8

	first := stream(p, period)
	second := stream(p, period)

	assert.Equal(t, first, second)
	assert.Equal(t, []int{2, 5, 8}, first)
}

func TestRangePlan_FreezesWithoutLoop(t *testing.T) {
	p, err := NewRangePlan(0, 3, 2, 1, false)
	require.NoError(t, err)

	got := stream(p, 6)
	assert.Equal(t, []int{0, 2, 2, 2, 2, 2}, got)

	// Further ticks leave the cursor untouched.
	for i := 0; i < 10; i++ {
		p.Tick()
	}
	assert.Equal(t, 2, p.Current())
}

func TestListPlan_Scenario(t *testing.T) {
	// patterns=[1,2,4,7] samplesPerStep=10 loop=false, 40 samples.
	p, err := NewListPlan([]int{1, 2, 4, 7}, 10, false)
	require.NoError(t, err)

	got := stream(p, 40)

	want := make([]int, 0, 40)
	for _, v := range []int{1, 2, 4, 7} {
		for s := 0; s < 10; s++ {
			want = append(want, v)
		}
	}
	assert.Equal(t, want, got)

	// No further advance is possible after the final entry.
	p.Tick()
	p.Tick()
	assert.Equal(t, 7, p.Current())
}

func TestListPlan_Looping(t *testing.T) {
	p, err := NewListPlan([]int{5, 9}, 1, true)
	require.NoError(t, err)

	assert.Equal(t, []int{5, 9, 5, 9, 5}, stream(p, 5))
}

func TestListPlan_CopiesInput(t *testing.T) {
	patterns := []int{1, 2}
	p, err := NewListPlan(patterns, 1, false)
	require.NoError(t, err)

	patterns[0] = 99
	assert.Equal(t, 1, p.Current())
}

func TestNewRangePlan_Validation(t *testing.T) {
	cases := []struct {
		name                        string
		start, end, step, perSample int
	}{
		{"negative start", -1, 7, 1, 1},
		{"start above max", MaxPattern + 1, MaxPattern + 1, 1, 1},
		{"end above max", 0, MaxPattern + 1, 1, 1},
		{"start after end", 5, 2, 1, 1},
		{"zero step", 0, 7, 0, 1},
		{"zero samples per step", 0, 7, 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRangePlan(tc.start, tc.end, tc.step, tc.perSample, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestNewListPlan_Validation(t *testing.T) {
	_, err := NewListPlan(nil, 1, false)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewListPlan([]int{0, 2048}, 1, false)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewListPlan([]int{1}, 0, false)
	assert.ErrorIs(t, err, ErrConfig)
}
