package acquire

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/4x0/hioctl/internal/pool"
	"github.com/4x0/hioctl/logger"
	"github.com/4x0/hioctl/scpi"
	"github.com/4x0/hioctl/sequence"
	"github.com/4x0/hioctl/transport"
)

// State is the lifecycle state of a run.
type State uint32

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Completed:
		return "Completed"
	case Aborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// Client is the transport surface the scheduler drives. *transport.Client
// implements it.
type Client interface {
	Enqueue(cmd string)
	Flush() error
	Query(cmd string) (string, error)
	QueryTimeout(cmd string, timeout time.Duration) (string, error)
	Close() error
}

// Sample is one timestamped reading. The timestamp is the wall-clock moment
// the response was received. A Sample is immutable once appended.
type Sample struct {
	Time        time.Time
	Voltage     float64
	Temperature *float64
	IOPattern   *int
}

// Config drives one acquisition run.
type Config struct {
	// Samples is the target sample count; 0 runs continuously until the
	// context is cancelled.
	Samples int

	// Interval is the polling interval between scheduled sample ticks.
	Interval time.Duration

	// Temperature adds the temperature field to each measurement query.
	Temperature bool

	// Trigger selects the measurement gating mechanism.
	Trigger TriggerSource

	// TriggerTimeout bounds the wait for instrument-side trigger completion
	// on gated sources. Zero defaults to Interval.
	TriggerTimeout time.Duration

	// Plan, when non-nil, interleaves digital-output sequencing with
	// sampling.
	Plan *sequence.Plan

	Logger logger.Logger
}

// Runner executes one acquisition run over an exclusively-owned transport
// client. A Runner is single use.
type Runner struct {
	id     uuid.UUID
	client Client
	cfg    Config
	logger logger.Logger

	state atomic.Uint32

	meas scpi.Measure
	eio  scpi.ExternalIO
}

// NewRunner creates a Runner for the given client and configuration.
func NewRunner(client Client, cfg Config) (*Runner, error) {
	if client == nil {
		return nil, fmt.Errorf("acquire: client is nil")
	}
	if cfg.Samples < 0 {
		return nil, fmt.Errorf("acquire: sample count %d must be non-negative", cfg.Samples)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("acquire: polling interval %v must be positive", cfg.Interval)
	}
	if cfg.TriggerTimeout < 0 {
		return nil, fmt.Errorf("acquire: trigger timeout %v must be non-negative", cfg.TriggerTimeout)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}

	id := uuid.New()

	return &Runner{
		id:     id,
		client: client,
		cfg:    cfg,
		logger: cfg.Logger.With("run", id.String()),
		meas:   scpi.NewMeasure(),
		eio:    scpi.NewExternalIO(),
	}, nil
}

// ID returns the run's identifier.
func (r *Runner) ID() uuid.UUID { return r.id }

// State returns the run's lifecycle state.
func (r *Runner) State() State { return State(r.state.Load()) }

// triggerTimeout is the upper bound for gated measurement queries.
func (r *Runner) triggerTimeout() time.Duration {
	if r.cfg.TriggerTimeout > 0 {
		return r.cfg.TriggerTimeout
	}

	return r.cfg.Interval
}

// Run executes the sampling loop until the target count is reached, the
// context is cancelled, or an unrecoverable error occurs.
//
// The returned samples are always valid, including on error: an aborted run
// surfaces its partial results together with the abort reason. Cancellation
// closes the transport so no further writes can reach the instrument.
func (r *Runner) Run(ctx context.Context) ([]Sample, error) {
	if !r.state.CompareAndSwap(uint32(Idle), uint32(Running)) {
		return nil, fmt.Errorf("acquire: run already started (state %s)", r.State())
	}

	r.logger.Info("acquire: run starting",
		"samples", r.cfg.Samples,
		"interval", r.cfg.Interval,
		"trigger", r.cfg.Trigger.String(),
		"sequencing", r.cfg.Plan != nil)

	samples := make([]Sample, 0, r.cfg.Samples)

	// Scheduling is anchored to a monotonic base so measurement latency
	// never accumulates into drift.
	base := time.Now()
	lastPattern := -1

	for i := 0; r.cfg.Samples == 0 || i < r.cfg.Samples; i++ {
		if err := r.waitForTick(ctx, base, i); err != nil {
			r.abort(len(samples), err)
			_ = r.client.Close()

			return samples, err
		}

		if r.cfg.Plan != nil {
			cur := r.cfg.Plan.Current()
			if cur != lastPattern {
				r.client.Enqueue(r.eio.SetOutput(cur))
				if err := r.client.Flush(); err != nil {
					r.abort(len(samples), err)

					return samples, err
				}
				lastPattern = cur
			}
		}

		sample, err := r.takeSample()
		if err != nil {
			r.abort(len(samples), err)

			return samples, err
		}

		if r.cfg.Plan != nil {
			p := r.cfg.Plan.Current()
			sample.IOPattern = &p
			r.cfg.Plan.Tick()
		}

		samples = append(samples, sample)

		r.logger.Debug("acquire: sample collected",
			"index", i+1,
			"voltage", sample.Voltage)
	}

	r.state.Store(uint32(Completed))
	r.logger.Info("acquire: run completed", "collected", len(samples))

	return samples, nil
}

// waitForTick blocks until the i-th scheduled tick on the monotonic base.
func (r *Runner) waitForTick(ctx context.Context, base time.Time, i int) error {
	next := base.Add(time.Duration(i) * r.cfg.Interval)

	wait := time.Until(next)
	if wait <= 0 {
		// Behind schedule; sample immediately but still honor cancellation.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return nil
		}
	}

	t := pool.GetTimer(wait)
	defer pool.PutTimer(t)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// takeSample issues one measurement query and parses the response.
//
// Gated trigger sources may legitimately block until the instrument-side
// trigger completes; the wait is bounded by the trigger timeout and treated
// as fatal when exceeded, not as a skipped sample.
func (r *Runner) takeSample() (Sample, error) {
	cmd := r.meas.Read.Get()
	if r.cfg.Temperature {
		cmd = r.meas.Read.GetSub("TEMP")
	}

	var (
		rsp string
		err error
	)
	if r.cfg.Trigger.Gated() {
		rsp, err = r.client.QueryTimeout(cmd, r.triggerTimeout())
	} else {
		rsp, err = r.client.Query(cmd)
	}
	if err != nil {
		return Sample{}, err
	}

	return parseSample(rsp, time.Now(), r.cfg.Temperature)
}

// abort marks the run Aborted and reports the reason with the partial count.
func (r *Runner) abort(collected int, err error) {
	r.state.Store(uint32(Aborted))
	r.logger.Error("acquire: run aborted",
		"reason", err,
		"collected", collected)
}

// parseSample decodes a response line into a Sample. The voltage is the
// first comma-separated field; when temperature was requested a second field
// carries it.
func parseSample(rsp string, at time.Time, temperature bool) (Sample, error) {
	fields := strings.Split(rsp, ",")

	v, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("%w: unparseable reading %q", transport.ErrProtocol, rsp)
	}

	s := Sample{Time: at, Voltage: v}

	if temperature && len(fields) > 1 {
		tv, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("%w: unparseable temperature in %q", transport.ErrProtocol, rsp)
		}
		s.Temperature = &tv
	}

	return s, nil
}
