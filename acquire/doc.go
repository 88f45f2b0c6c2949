// Package acquire drives the timed sampling loop against the instrument.
//
// A Runner owns one run: it schedules samples on a monotonic clock, funnels
// digital-output changes and measurement queries through the shared
// transport batch, and collects timestamped records. Transport and protocol
// failures abort the run immediately; the samples collected so far are
// returned alongside the error, and no retry is attempted.
package acquire
