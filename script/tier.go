package script

import "fmt"

// Tier is the sandbox permission level determining which symbols a routine
// may resolve. The boundary is structural: a routine can only ever reach the
// names in the active tier's allowlist, never host internals.
type Tier int

const (
	// Restricted exposes the capability object plus a minimal
	// arithmetic/string vocabulary. No filesystem, network, or
	// host-introspection access of any kind.
	Restricted Tier = iota

	// Trusted additionally exposes pure numeric and statistical builtins.
	Trusted

	// Developer additionally exposes raw command/query passthrough to the
	// instrument. It must be explicitly flagged as unsafe at configuration
	// time. Even Developer resolves against an explicit allowlist, never
	// reflection into the host.
	Developer
)

func (t Tier) String() string {
	switch t {
	case Restricted:
		return "restricted"
	case Trusted:
		return "trusted"
	case Developer:
		return "developer"
	default:
		return "unknown"
	}
}

// ParseTier parses a tier name from configuration.
func ParseTier(s string) (Tier, error) {
	switch s {
	case "restricted":
		return Restricted, nil
	case "trusted":
		return Trusted, nil
	case "developer":
		return Developer, nil
	default:
		return Restricted, fmt.Errorf("script: unknown trust tier %q", s)
	}
}
