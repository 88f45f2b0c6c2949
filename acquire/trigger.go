package acquire

import "fmt"

// TriggerSource is the mechanism gating when a measurement is taken.
type TriggerSource int

const (
	// TriggerImmediate takes a measurement as soon as the query arrives.
	TriggerImmediate TriggerSource = iota
	// TriggerExternal waits for an external signal edge.
	TriggerExternal
	// TriggerBus waits for a bus-issued trigger.
	TriggerBus
)

func (t TriggerSource) String() string {
	switch t {
	case TriggerImmediate:
		return "IMM"
	case TriggerExternal:
		return "EXT"
	case TriggerBus:
		return "BUS"
	default:
		return "unknown"
	}
}

// Gated reports whether measurement queries may block awaiting
// instrument-side trigger completion.
func (t TriggerSource) Gated() bool {
	return t == TriggerExternal || t == TriggerBus
}

// ParseTriggerSource parses a trigger source name from configuration.
func ParseTriggerSource(s string) (TriggerSource, error) {
	switch s {
	case "IMM", "IMMediate", "immediate":
		return TriggerImmediate, nil
	case "EXT", "EXTernal", "external":
		return TriggerExternal, nil
	case "BUS", "bus":
		return TriggerBus, nil
	default:
		return TriggerImmediate, fmt.Errorf("acquire: unknown trigger source %q", s)
	}
}
