package poller

// Mode tells a task whether it runs the silent first cycle or a regular one.
type Mode int

const (
	// Bootstrap is the first cycle after start. Tasks record what they see
	// without notifying anyone.
	Bootstrap Mode = iota
	// Live is every cycle after the first.
	Live
)

func (m Mode) String() string {
	switch m {
	case Bootstrap:
		return "bootstrap"
	case Live:
		return "live"
	default:
		return "unknown"
	}
}
