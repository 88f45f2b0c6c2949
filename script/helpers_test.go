package script

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// fakeInstrument records every command and answers queries with canned
// readings.
type fakeInstrument struct {
	mu       sync.Mutex
	commands []string
	readings []string
	queryAt  []time.Time
	queryErr error
}

func (f *fakeInstrument) Enqueue(cmd string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
}

func (f *fakeInstrument) Flush() error { return nil }

func (f *fakeInstrument) Query(cmd string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
	f.queryAt = append(f.queryAt, time.Now())

	if f.queryErr != nil {
		return "", f.queryErr
	}

	if len(f.readings) == 0 {
		return "+1.000E+00", nil
	}
	r := f.readings[0]
	if len(f.readings) > 1 {
		f.readings = f.readings[1:]
	}

	return r, nil
}

func (f *fakeInstrument) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]string, len(f.commands))
	copy(out, f.commands)

	return out
}

func (f *fakeInstrument) queryTimes() []time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]time.Time, len(f.queryAt))
	copy(out, f.queryAt)

	return out
}

// readingSeq builds n canned responses v, v+1, ...
func readingSeq(v float64, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%+.3E", v+float64(i))
	}

	return out
}

func hasCommand(cmds []string, prefix string) bool {
	for _, c := range cmds {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}

	return false
}
