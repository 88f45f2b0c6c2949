package script

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

// Session is the per-invocation state of a sandboxed routine: its trust
// tier, wall-clock deadline, accumulated readings, and metadata.
//
// The routine goroutine writes while the surrounding run may read partial
// results after a timeout, so the reading buffer is mutex-guarded and the
// metadata mapping is a concurrent map.
type Session struct {
	ID       uuid.UUID
	Tier     Tier
	Deadline time.Time

	mu      sync.Mutex
	results []float64

	metadata *xsync.MapOf[string, any]
}

// NewSession creates a session for one routine invocation with the given
// tier and wall-clock timeout.
func NewSession(tier Tier, timeout time.Duration) *Session {
	return &Session{
		ID:       uuid.New(),
		Tier:     tier,
		Deadline: time.Now().Add(timeout),
		metadata: xsync.NewMapOf[string, any](),
	}
}

// Expired reports whether the session's deadline has passed.
func (s *Session) Expired() bool {
	return time.Now().After(s.Deadline)
}

// AppendReading appends one measurement to the session's result buffer.
func (s *Session) AppendReading(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, v)
}

// Readings returns a copy of the accumulated readings. Partial results
// collected before a timeout remain available here.
func (s *Session) Readings() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, len(s.results))
	copy(out, s.results)

	return out
}

// SetMetadata stores a metadata key/value pair.
func (s *Session) SetMetadata(key string, value any) {
	s.metadata.Store(key, value)
}

// Metadata returns the value stored under key, or nil.
func (s *Session) Metadata(key string) any {
	v, ok := s.metadata.Load(key)
	if !ok {
		return nil
	}

	return v
}

// MetadataSnapshot returns a plain copy of the metadata mapping.
func (s *Session) MetadataSnapshot() map[string]any {
	out := make(map[string]any)
	s.metadata.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})

	return out
}

// Stats holds aggregate statistics over the session's readings.
type Stats struct {
	Count  int
	Mean   float64
	Min    float64
	Max    float64
	Stddev float64
}

// Stats computes aggregate statistics over the accumulated readings on
// demand. All fields are zero when no readings have been collected.
func (s *Session) Stats() Stats {
	readings := s.Readings()
	if len(readings) == 0 {
		return Stats{}
	}

	st := Stats{
		Count: len(readings),
		Min:   readings[0],
		Max:   readings[0],
	}

	sum := 0.0
	for _, v := range readings {
		sum += v
		st.Min = math.Min(st.Min, v)
		st.Max = math.Max(st.Max, v)
	}
	st.Mean = sum / float64(st.Count)

	var sq float64
	for _, v := range readings {
		d := v - st.Mean
		sq += d * d
	}
	st.Stddev = math.Sqrt(sq / float64(st.Count))

	return st
}
