// Package queue provides the pending-command FIFO used by the transport batch.
package queue

import "strings"

// CommandQueue is an ordered FIFO of protocol command strings awaiting a
// single network write. It is not safe for concurrent use; callers serialize
// access.
type CommandQueue struct {
	items []string
}

// NewCommandQueue creates a CommandQueue with the given preallocated capacity.
func NewCommandQueue(prealloc int) *CommandQueue {
	return &CommandQueue{items: make([]string, 0, prealloc)}
}

// Enqueue adds a command to the tail of the queue.
func (q *CommandQueue) Enqueue(cmd string) {
	q.items = append(q.items, cmd)
}

// Join returns all pending commands joined with sep, head first.
func (q *CommandQueue) Join(sep string) string {
	return strings.Join(q.items, sep)
}

// Peek returns the command at the head of the queue without removing it.
// It returns an empty string if the queue is empty.
func (q *CommandQueue) Peek() string {
	if len(q.items) == 0 {
		return ""
	}
	return q.items[0]
}

// Reset resets the queue to an empty state.
func (q *CommandQueue) Reset() {
	q.items = q.items[:0] // Reslice to 0 length to reuse the underlying array
}

// IsEmpty returns true if the queue is empty, false otherwise.
func (q *CommandQueue) IsEmpty() bool {
	return len(q.items) == 0
}

// Length returns the number of pending commands.
func (q *CommandQueue) Length() int {
	return len(q.items)
}
