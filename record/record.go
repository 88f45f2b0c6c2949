// Package record writes acquisition results to CSV files.
//
// The row shape is fixed: timestamp, voltage, then the optional temperature
// and digital-output pattern columns when the run produced them. An optional
// settings-dump header of key=value lines precedes the data rows.
package record

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/4x0/hioctl/acquire"
)

// TimestampLayout is the timestamp column format, microsecond resolution.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// DefaultFilename returns the output filename used when none is configured.
func DefaultFilename(now time.Time) string {
	return now.Format("20060102_150405") + "_HIOKI.csv"
}

// Writer appends samples to a CSV file.
type Writer struct {
	f *os.File
	w *bufio.Writer
}

// Create opens path for appending, creating it if needed.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("record: open %s: %w", path, err)
	}

	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// WriteSettings writes the settings-dump header, one key=value line per
// setting, in the order given.
func (w *Writer) WriteSettings(settings []acquire.Setting) error {
	for _, s := range settings {
		if _, err := fmt.Fprintf(w.w, "%s=%s\n", s.Key, s.Value); err != nil {
			return fmt.Errorf("record: write settings: %w", err)
		}
	}

	return nil
}

// WriteSample appends one data row.
func (w *Writer) WriteSample(s acquire.Sample) error {
	if _, err := w.w.WriteString(FormatSample(s)); err != nil {
		return fmt.Errorf("record: write sample: %w", err)
	}

	return nil
}

// Flush pushes buffered rows to the file.
func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("record: flush: %w", err)
	}

	return nil
}

// Close flushes and closes the file. Idempotent.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}

	ferr := w.w.Flush()
	cerr := w.f.Close()
	w.f = nil

	if ferr != nil {
		return fmt.Errorf("record: flush: %w", ferr)
	}
	if cerr != nil {
		return fmt.Errorf("record: close: %w", cerr)
	}

	return nil
}

// FormatSample renders one data row including the trailing newline.
func FormatSample(s acquire.Sample) string {
	row := s.Time.Format(TimestampLayout) + "," + formatReading(s.Voltage)
	if s.Temperature != nil {
		row += "," + formatReading(*s.Temperature)
	}
	if s.IOPattern != nil {
		row += "," + strconv.Itoa(*s.IOPattern)
	}

	return row + "\n"
}

// formatReading matches the instrument's scientific notation.
func formatReading(v float64) string {
	return fmt.Sprintf("%+.5E", v)
}
