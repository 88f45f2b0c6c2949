package script

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/4x0/hioctl/internal/pool"
	"github.com/4x0/hioctl/logger"
	"github.com/4x0/hioctl/scpi"
)

// MaxWait bounds a single wait call inside a routine.
const MaxWait = 60 * time.Second

// Instrument is the slice of the transport client a routine may drive. All
// sandbox-originated commands funnel through the same pending batch as the
// acquisition loop, so flush-before-query ordering holds regardless of who
// issued the call.
type Instrument interface {
	Enqueue(cmd string)
	Flush() error
	Query(cmd string) (string, error)
}

// PersistFunc writes a session's readings and metadata out and returns the
// path written. Wired by the caller; routines reach it via save_results.
type PersistFunc func(sess *Session, path string) (string, error)

// API is the capability object handed to a routine. It exposes exactly the
// operations of the sandbox contract and nothing else; the interpreter can
// only reach it through the per-tier call table.
type API struct {
	inst    Instrument
	logger  logger.Logger
	persist PersistFunc

	meas scpi.Measure
	eio  scpi.ExternalIO

	sess *Session
}

// NewAPI creates the capability object over the given instrument client.
// persist may be nil, in which case save_results is rejected at runtime.
func NewAPI(inst Instrument, log logger.Logger, persist PersistFunc) *API {
	return &API{
		inst:    inst,
		logger:  log,
		persist: persist,
		meas:    scpi.NewMeasure(),
		eio:     scpi.NewExternalIO(),
	}
}

// bind attaches the session for one routine invocation.
func (a *API) bind(sess *Session) {
	a.sess = sess
}

// SetIO drives the digital output lines to pattern.
func (a *API) SetIO(pattern int) error {
	if pattern < 0 || pattern > 2047 {
		return fmt.Errorf("io pattern %d out of range [0, 2047]", pattern)
	}

	a.inst.Enqueue(a.eio.SetOutput(pattern))

	return a.inst.Flush()
}

// SetRange sets the measurement voltage range.
func (a *API) SetRange(value string) error {
	a.inst.Enqueue(a.meas.VoltageRange.Set(value))

	return a.inst.Flush()
}

// SetSpeed sets the measurement speed (NPLC value or SLOW/MED/FAST).
func (a *API) SetSpeed(value string) error {
	a.inst.Enqueue(a.meas.Speed.Set(value))

	return a.inst.Flush()
}

// Measure takes n sequential readings spaced at least delay apart, appending
// each to the session's result buffer. One query per reading.
func (a *API) Measure(n int, delay time.Duration) (int, error) {
	if n < 1 {
		return 0, fmt.Errorf("measurement count %d must be at least 1", n)
	}
	if delay < 0 {
		return 0, fmt.Errorf("measurement delay must be non-negative")
	}

	taken := 0
	for i := 0; i < n; i++ {
		if a.sess.Expired() {
			return taken, ErrTimeout
		}

		rsp, err := a.inst.Query(a.meas.Read.Get())
		if err != nil {
			return taken, err
		}

		v, err := parseReading(rsp)
		if err != nil {
			return taken, err
		}

		a.sess.AppendReading(v)
		taken++

		if i < n-1 && delay > 0 {
			if err := a.sleep(delay); err != nil {
				return taken, err
			}
		}
	}

	return taken, nil
}

// Wait pauses the routine for d, bounded by MaxWait and the session
// deadline.
func (a *API) Wait(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("wait duration must be positive")
	}
	if d > MaxWait {
		return fmt.Errorf("wait duration %v exceeds maximum %v", d, MaxWait)
	}

	return a.sleep(d)
}

// sleep blocks for d or until the session deadline, whichever comes first.
// Hitting the deadline terminates the routine.
func (a *API) sleep(d time.Duration) error {
	remaining := time.Until(a.sess.Deadline)
	if remaining <= 0 {
		return ErrTimeout
	}

	expired := false
	if d > remaining {
		d = remaining
		expired = true
	}

	t := pool.GetTimer(d)
	defer pool.PutTimer(t)
	<-t.C

	if expired {
		return ErrTimeout
	}

	return nil
}

// Log emits a routine log line through the host logger.
func (a *API) Log(msg string) {
	a.logger.Info("script: " + msg)
}

// SaveResults persists the session's readings and metadata.
func (a *API) SaveResults(path string) (string, error) {
	if a.persist == nil {
		return "", fmt.Errorf("result persistence is not available in this run")
	}

	return a.persist(a.sess, path)
}

// Command sends a raw protocol command. Developer tier only.
func (a *API) Command(cmd string) error {
	a.inst.Enqueue(cmd)

	return a.inst.Flush()
}

// RawQuery sends a raw protocol query and returns the response line.
// Developer tier only.
func (a *API) RawQuery(cmd string) (string, error) {
	return a.inst.Query(cmd)
}

// table builds the capability call table for the given tier. Developer adds
// the raw passthrough symbols; everything else is identical across tiers.
func (a *API) table(tier Tier) map[string]callable {
	t := map[string]callable{
		"set_io": func(args []any) (any, error) {
			n, err := intArg("set_io", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return nil, a.SetIO(n)
		},
		"set_range": func(args []any) (any, error) {
			s, err := strArg("set_range", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return nil, a.SetRange(s)
		},
		"set_speed": func(args []any) (any, error) {
			s, err := strArg("set_speed", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return nil, a.SetSpeed(s)
		},
		"measure": func(args []any) (any, error) {
			n, err := intArg("measure", args, 0, 2)
			if err != nil {
				return nil, err
			}
			delayMs, err := intArg("measure", args, 1, 2)
			if err != nil {
				return nil, err
			}
			taken, err := a.Measure(n, time.Duration(delayMs)*time.Millisecond)

			return float64(taken), err
		},
		"wait": func(args []any) (any, error) {
			if err := arity("wait", args, 1); err != nil {
				return nil, err
			}
			sec, ok := args[0].(float64)
			if !ok {
				return nil, fmt.Errorf("wait expects seconds")
			}

			return nil, a.Wait(time.Duration(sec * float64(time.Second)))
		},
		"stats": func(args []any) (any, error) {
			if err := arity("stats", args, 0); err != nil {
				return nil, err
			}
			st := a.sess.Stats()

			return map[string]any{
				"count":  float64(st.Count),
				"mean":   st.Mean,
				"min":    st.Min,
				"max":    st.Max,
				"stddev": st.Stddev,
			}, nil
		},
		"log": func(args []any) (any, error) {
			if err := arity("log", args, 1); err != nil {
				return nil, err
			}
			a.Log(format(args[0]))

			return nil, nil
		},
		"set_metadata": func(args []any) (any, error) {
			if err := arity("set_metadata", args, 2); err != nil {
				return nil, err
			}
			k, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("set_metadata key must be a string")
			}
			a.sess.SetMetadata(k, args[1])

			return nil, nil
		},
		"get_metadata": func(args []any) (any, error) {
			k, err := strArg("get_metadata", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return a.sess.Metadata(k), nil
		},
		"save_results": func(args []any) (any, error) {
			p, err := strArg("save_results", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return a.SaveResults(p)
		},
	}

	if tier >= Developer {
		t["command"] = func(args []any) (any, error) {
			cmd, err := strArg("command", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return nil, a.Command(cmd)
		}
		t["query"] = func(args []any) (any, error) {
			cmd, err := strArg("query", args, 0, 1)
			if err != nil {
				return nil, err
			}

			return a.RawQuery(cmd)
		}
	}

	return t
}

func intArg(name string, args []any, i, want int) (int, error) {
	if err := arity(name, args, want); err != nil {
		return 0, err
	}
	f, ok := args[i].(float64)
	if !ok || f != float64(int(f)) {
		return 0, fmt.Errorf("%s argument %d must be an integer", name, i+1)
	}

	return int(f), nil
}

func strArg(name string, args []any, i, want int) (string, error) {
	if err := arity(name, args, want); err != nil {
		return "", err
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("%s argument %d must be a string", name, i+1)
	}

	return s, nil
}

// parseReading extracts the voltage field from a response line. Responses
// carrying multiple comma-separated fields yield the first.
func parseReading(rsp string) (float64, error) {
	field := rsp
	if idx := strings.IndexByte(rsp, ','); idx >= 0 {
		field = rsp[:idx]
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable reading %q", rsp)
	}

	return v, nil
}
