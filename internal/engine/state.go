package engine

import "fmt"

// State enumerates the scoring engine states.
type State int

const (
	StateUncalibrated State = iota
	StateCalibrating
	StateReady
	StateActive
)

func (s State) String() string {
	switch s {
	case StateUncalibrated:
		return "uncalibrated"
	case StateCalibrating:
		return "calibrating"
	case StateReady:
		return "ready"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	for _, st := range []State{StateUncalibrated, StateCalibrating, StateReady, StateActive} {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}
