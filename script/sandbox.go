package script

import (
	"fmt"
	"time"

	"github.com/4x0/hioctl/logger"
)

// DefaultTimeout is the wall-clock budget applied when none is configured.
const DefaultTimeout = 5 * time.Minute

// Sandbox executes user routines under a trust tier and a wall-clock
// deadline. A routine runs to completion or timeout before the surrounding
// acquisition proceeds; both share one transport, so their commands never
// interleave.
type Sandbox struct {
	tier    Tier
	timeout time.Duration
	logger  logger.Logger
}

// NewSandbox creates a sandbox for the given tier. A non-positive timeout
// falls back to DefaultTimeout.
func NewSandbox(tier Tier, timeout time.Duration, log logger.Logger) *Sandbox {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.GetLogger()
	}

	return &Sandbox{tier: tier, timeout: timeout, logger: log}
}

// Tier returns the sandbox's trust tier.
func (s *Sandbox) Tier() Tier { return s.tier }

// Run parses and executes one routine against the capability object.
//
// Every function symbol the routine references is checked against the active
// tier's allowlist before any statement executes; a disallowed symbol fails
// with [ErrSecurityViolation] and produces zero instrument I/O. Runtime
// failures, including the deadline overrun, come back as errors wrapping
// [ErrScript]; the returned session always carries whatever readings and
// metadata were collected before the failure.
func (s *Sandbox) Run(src string, api *API) (*Session, error) {
	prog, err := parse(src)
	if err != nil {
		return nil, err
	}

	sess := NewSession(s.tier, s.timeout)
	api.bind(sess)

	calls := builtinTable(s.tier)
	for name, fn := range api.table(s.tier) {
		calls[name] = fn
	}

	for _, name := range prog.callNames() {
		if _, ok := calls[name]; !ok {
			return sess, fmt.Errorf("%w: symbol %q is not allowed at the %s tier", ErrSecurityViolation, name, s.tier)
		}
	}

	s.logger.Debug("script: routine starting",
		"session", sess.ID.String(),
		"tier", s.tier.String(),
		"timeout", s.timeout)

	it := &interp{sess: sess, calls: calls, env: map[string]any{}}
	if err := it.run(prog); err != nil {
		s.logger.Warn("script: routine failed",
			"session", sess.ID.String(),
			"readings", len(sess.Readings()),
			"error", err)

		return sess, err
	}

	s.logger.Info("script: routine completed",
		"session", sess.ID.String(),
		"readings", len(sess.Readings()))

	return sess, nil
}
