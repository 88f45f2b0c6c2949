package transport

import "sync/atomic"

// ConnState is the lifecycle state of the instrument connection.
type ConnState uint32

const (
	DisconnectedState ConnState = iota
	ConnectingState
	ConnectedState
	ClosingState
)

func (s ConnState) String() string {
	switch s {
	case DisconnectedState:
		return "Disconnected"
	case ConnectingState:
		return "Connecting"
	case ConnectedState:
		return "Connected"
	case ClosingState:
		return "Closing"
	default:
		return "Unknown"
	}
}

// AtomicConnState holds a ConnState with atomic transitions.
//
// The To* methods are compare-and-swap transitions; they return false when the
// current state does not permit the transition.
type AtomicConnState struct {
	state atomic.Uint32
}

// Get returns the current state.
func (st *AtomicConnState) Get() ConnState {
	return ConnState(st.state.Load())
}

// Set sets the state unconditionally.
func (st *AtomicConnState) Set(state ConnState) {
	st.state.Store(uint32(state))
}

func (st *AtomicConnState) String() string {
	return st.Get().String()
}

func (st *AtomicConnState) IsDisconnected() bool {
	return st.Get() == DisconnectedState
}

func (st *AtomicConnState) IsConnected() bool {
	return st.Get() == ConnectedState
}

func (st *AtomicConnState) IsClosing() bool {
	return st.Get() == ClosingState
}

func (st *AtomicConnState) ToConnecting() bool {
	return st.state.CompareAndSwap(uint32(DisconnectedState), uint32(ConnectingState))
}

func (st *AtomicConnState) ToConnected() bool {
	return st.state.CompareAndSwap(uint32(ConnectingState), uint32(ConnectedState))
}

func (st *AtomicConnState) ToClosing() bool {
	result := st.state.CompareAndSwap(uint32(ConnectedState), uint32(ClosingState))
	if !result {
		return st.state.CompareAndSwap(uint32(ConnectingState), uint32(ClosingState))
	}

	return result
}

func (st *AtomicConnState) ToDisconnected() bool {
	if st.IsDisconnected() {
		return true
	}

	return st.state.CompareAndSwap(uint32(ClosingState), uint32(DisconnectedState))
}
