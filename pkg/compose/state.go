package compose

// State tracks the composer's progress through the template sequence.
// Each state is gated on successful completion of the previous one; any
// fatal error leaves the returned result at the last completed state and
// no piclet is produced.
type State int

// Composition states, in template order.
const (
	StateInit State = iota
	StateLaserPlaced
	StateHeaterConnected
	StatePadsRouted
	StateSubmissionResolved
	StateSplitterConnected
	StateReferenceConnected
	StateDone
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateLaserPlaced:
		return "LaserPlaced"
	case StateHeaterConnected:
		return "HeaterPlaced+Connected"
	case StatePadsRouted:
		return "PadsPlaced+Routed"
	case StateSubmissionResolved:
		return "SubmissionResolved"
	case StateSplitterConnected:
		return "SplitterPlaced+Connected"
	case StateReferenceConnected:
		return "ReferencePathPlaced+Connected"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}
