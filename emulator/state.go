package emulator

// State is the execution state of an Emulator.
type State int

//go:generate go tool stringer -linecomment -type=State
const (
	STATE_READY   = State(iota) // Ready
	STATE_RUNNING               // Running
	STATE_WAITING               // Waiting
)
