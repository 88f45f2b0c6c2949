package acquire

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4x0/hioctl/sequence"
	"github.com/4x0/hioctl/transport"
)

func testConfig(samples int) Config {
	return Config{
		Samples:  samples,
		Interval: time.Millisecond,
		Trigger:  TriggerImmediate,
	}
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(nil, testConfig(1))
	require.Error(t, err)

	cfg := testConfig(1)
	cfg.Samples = -1
	_, err = NewRunner(newFakeClient(), cfg)
	require.Error(t, err)

	cfg = testConfig(1)
	cfg.Interval = 0
	_, err = NewRunner(newFakeClient(), cfg)
	require.Error(t, err)

	cfg = testConfig(1)
	cfg.TriggerTimeout = -time.Second
	_, err = NewRunner(newFakeClient(), cfg)
	require.Error(t, err)
}

func TestRun_CollectsTargetCount(t *testing.T) {
	client := newFakeClient()
	runner, err := NewRunner(client, testConfig(5))
	require.NoError(t, err)
	require.Equal(t, Idle, runner.State())

	samples, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 5)
	assert.Equal(t, Completed, runner.State())

	for _, s := range samples {
		assert.InDelta(t, 1.23456e-02, s.Voltage, 1e-12)
		assert.Nil(t, s.Temperature)
		assert.Nil(t, s.IOPattern)
		assert.False(t, s.Time.IsZero())
	}

	require.Equal(t, 5, client.queryCount())
	assert.Equal(t, ":READ?", client.queries[0])
}

func TestRun_SingleUse(t *testing.T) {
	client := newFakeClient()
	runner, err := NewRunner(client, testConfig(1))
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.Error(t, err)
}

func TestRun_TemperatureReading(t *testing.T) {
	client := newFakeClient()
	client.respond = func(cmd string) (string, error) {
		return "+1.50000E+00,+2.34000E+01", nil
	}

	cfg := testConfig(2)
	cfg.Temperature = true
	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, ":READ? TEMP", client.queries[0])
	for _, s := range samples {
		require.NotNil(t, s.Temperature)
		assert.InDelta(t, 1.5, s.Voltage, 1e-9)
		assert.InDelta(t, 23.4, *s.Temperature, 1e-9)
	}
}

func TestRun_SequenceInterleaving(t *testing.T) {
	// Range 0..7 step 1, 5 samples per step, looping: 80 samples cover the
	// sequence exactly twice.
	plan, err := sequence.NewRangePlan(0, 7, 1, 5, true)
	require.NoError(t, err)

	client := newFakeClient()
	cfg := testConfig(80)
	cfg.Interval = 200 * time.Microsecond
	cfg.Plan = plan

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 80)

	for i, s := range samples {
		require.NotNil(t, s.IOPattern)
		assert.Equal(t, (i/5)%8, *s.IOPattern, "sample %d", i)
	}

	// The output pattern is written only when it changes: 8 values per pass,
	// two passes, and the wrap from 7 back to 0 is a change.
	writes := client.flushedCommands()
	require.Len(t, writes, 16)
	assert.Equal(t, ":IO:OUTPut 0", writes[0])
	assert.Equal(t, ":IO:OUTPut 7", writes[7])
	assert.Equal(t, ":IO:OUTPut 0", writes[8])
}

func TestRun_ListSequenceFreezesAtEnd(t *testing.T) {
	plan, err := sequence.NewListPlan([]int{1, 2, 4, 7}, 2, false)
	require.NoError(t, err)

	client := newFakeClient()
	cfg := testConfig(12)
	cfg.Interval = 200 * time.Microsecond
	cfg.Plan = plan

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 12)

	// After the list is exhausted the last pattern holds; no further writes.
	for i, s := range samples[8:] {
		assert.Equal(t, 7, *s.IOPattern, "sample %d", i+8)
	}
	assert.Len(t, client.flushedCommands(), 4)
}

func TestRun_AbortsOnQueryError(t *testing.T) {
	client := newFakeClient()
	n := 0
	client.respond = func(cmd string) (string, error) {
		n++
		if n > 3 {
			return "", fmt.Errorf("%w: connection reset", transport.ErrConnection)
		}

		return "+1.00000E+00", nil
	}

	runner, err := NewRunner(client, testConfig(10))
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.ErrorIs(t, err, transport.ErrConnection)
	assert.Len(t, samples, 3)
	assert.Equal(t, Aborted, runner.State())
}

func TestRun_AbortsOnMalformedResponse(t *testing.T) {
	client := newFakeClient()
	client.respond = func(cmd string) (string, error) {
		return "garbage", nil
	}

	runner, err := NewRunner(client, testConfig(3))
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.ErrorIs(t, err, transport.ErrProtocol)
	assert.Empty(t, samples)
	assert.Equal(t, Aborted, runner.State())
}

func TestRun_ContextCancel(t *testing.T) {
	client := newFakeClient()
	cfg := testConfig(0) // continuous
	cfg.Interval = 5 * time.Millisecond

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	samples, err := runner.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Aborted, runner.State())
	assert.NotEmpty(t, samples)
	assert.True(t, client.closed)
}

func TestRun_GatedTriggerUsesTriggerTimeout(t *testing.T) {
	client := newFakeClient()
	cfg := testConfig(2)
	cfg.Trigger = TriggerExternal
	cfg.TriggerTimeout = 250 * time.Millisecond

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, client.timeouts, 2)
	assert.Equal(t, 250*time.Millisecond, client.timeouts[0])
}

func TestRun_GatedTriggerTimeoutDefaultsToInterval(t *testing.T) {
	client := newFakeClient()
	cfg := testConfig(1)
	cfg.Trigger = TriggerBus
	cfg.Interval = 7 * time.Millisecond

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	_, err = runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, client.timeouts, 1)
	assert.Equal(t, 7*time.Millisecond, client.timeouts[0])
}

func TestRun_TriggerTimeoutIsFatal(t *testing.T) {
	client := newFakeClient()
	client.respond = func(cmd string) (string, error) {
		return "", fmt.Errorf("%w: no response within deadline", transport.ErrTimeout)
	}

	cfg := testConfig(5)
	cfg.Trigger = TriggerExternal

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.ErrorIs(t, err, transport.ErrTimeout)
	assert.Empty(t, samples)
	assert.Equal(t, Aborted, runner.State())
}

func TestRun_SchedulingDoesNotDrift(t *testing.T) {
	client := newFakeClient()
	cfg := testConfig(10)
	cfg.Interval = 10 * time.Millisecond

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	start := time.Now()
	samples, err := runner.Run(context.Background())
	elapsed := time.Since(start)
	require.NoError(t, err)
	require.Len(t, samples, 10)

	// Nine inter-sample gaps on the monotonic schedule; generous upper
	// bound for slow CI machines.
	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestParseTriggerSource(t *testing.T) {
	tests := []struct {
		in      string
		want    TriggerSource
		wantErr bool
	}{
		{in: "IMM", want: TriggerImmediate},
		{in: "IMMediate", want: TriggerImmediate},
		{in: "immediate", want: TriggerImmediate},
		{in: "EXT", want: TriggerExternal},
		{in: "EXTernal", want: TriggerExternal},
		{in: "BUS", want: TriggerBus},
		{in: "bogus", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTriggerSource(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseSample(t *testing.T) {
	at := time.Now()

	s, err := parseSample(" 1.23456E-02", at, false)
	require.NoError(t, err)
	assert.InDelta(t, 1.23456e-02, s.Voltage, 1e-12)
	assert.Nil(t, s.Temperature)

	s, err = parseSample("+1.5E+00,+2.34E+01", at, true)
	require.NoError(t, err)
	require.NotNil(t, s.Temperature)
	assert.InDelta(t, 23.4, *s.Temperature, 1e-9)

	_, err = parseSample("not-a-number", at, false)
	require.ErrorIs(t, err, transport.ErrProtocol)

	_, err = parseSample("+1.5E+00,??", at, true)
	require.ErrorIs(t, err, transport.ErrProtocol)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "Completed", Completed.String())
	assert.Equal(t, "Aborted", Aborted.String())
	assert.Equal(t, "Unknown", State(99).String())
}

func TestRun_FlushErrorAborts(t *testing.T) {
	plan, err := sequence.NewListPlan([]int{3}, 1, false)
	require.NoError(t, err)

	client := newFakeClient()
	client.flushErr = errors.Join(transport.ErrConnection, errors.New("broken pipe"))

	cfg := testConfig(5)
	cfg.Plan = plan

	runner, err := NewRunner(client, cfg)
	require.NoError(t, err)

	samples, err := runner.Run(context.Background())
	require.ErrorIs(t, err, transport.ErrConnection)
	assert.Empty(t, samples)
	assert.Equal(t, Aborted, runner.State())
}
