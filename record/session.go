package record

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/4x0/hioctl/script"
)

// PersistSession writes a script session's metadata and readings to path and
// returns the path written. An empty path falls back to the default
// timestamped filename. The signature matches script.PersistFunc.
func PersistSession(sess *script.Session, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(time.Now())
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("record: open %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	meta := sess.MetadataSnapshot()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s=%v\n", k, meta[k]); err != nil {
			return "", fmt.Errorf("record: write metadata: %w", err)
		}
	}

	for _, v := range sess.Readings() {
		if _, err := w.WriteString(formatReading(v) + "\n"); err != nil {
			return "", fmt.Errorf("record: write reading: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("record: flush: %w", err)
	}

	return path, nil
}
