// Package session implements the Kodak Step and Canon Ivy 2 protocol
// state machines (§4.4, §4.5): connect/initialize/status/print, the
// chunked image transfer, and the shared ACK discipline and recovery
// sequencing.
package session

import "zinkdriver/zerr"

// State is one of the five session states shared by both families (§3).
type State int

const (
	Disconnected State = iota
	Connected
	Initialized
	Printing
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connected:
		return "Connected"
	case Initialized:
		return "Initialized"
	case Printing:
		return "Printing"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// stateMachine is embedded by both session types and enforces the
// transition guard §9 calls for: "reject out-of-order operations with
// InvalidState rather than silently misbehaving."
type stateMachine struct {
	state State
}

func (m *stateMachine) require(allowed ...State) error {
	for _, s := range allowed {
		if m.state == s {
			return nil
		}
	}
	return zerr.New(zerr.KindInvalidState, "operation not valid in state "+m.state.String())
}

func (m *stateMachine) set(s State) {
	m.state = s
}

func (m *stateMachine) get() State {
	return m.state
}
