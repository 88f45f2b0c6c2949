// Package scpi builds the text command and query strings understood by the
// instrument. It is pure string templating; nothing here touches the wire.
package scpi

import "fmt"

// Query is a read-only parameter stub. Get renders the query form
// ("<stub>?"), optionally with a sub-argument ("<stub>? <sub>").
type Query struct {
	stub string
}

// NewQuery creates a Query for the given command stub.
func NewQuery(stub string) Query {
	return Query{stub: stub}
}

// Get returns the query form of the command.
func (q Query) Get() string {
	return q.stub + "?"
}

// GetSub returns the query form with a sub-argument.
func (q Query) GetSub(sub string) string {
	return fmt.Sprintf("%s? %s", q.stub, sub)
}

func (q Query) String() string {
	return q.Get()
}

// Control is a read/write parameter: Set renders "<stub> <value>", Get the
// query form.
type Control struct {
	Query
}

// NewControl creates a Control for the given command stub.
func NewControl(stub string) Control {
	return Control{Query{stub: stub}}
}

// Set returns the command that assigns value to the parameter.
func (c Control) Set(value string) string {
	return fmt.Sprintf("%s %s", c.stub, value)
}

// SetInt returns the command that assigns an integer value to the parameter.
func (c Control) SetInt(value int) string {
	return fmt.Sprintf("%s %d", c.stub, value)
}

// Bare is a command that carries no parameters and produces no response
// (*RST, *WAI, :ABORt).
type Bare struct {
	stub string
}

// NewBare creates a Bare command.
func NewBare(stub string) Bare {
	return Bare{stub: stub}
}

func (b Bare) String() string {
	return b.stub
}
