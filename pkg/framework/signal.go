package framework

import "fmt"

// Signal is the kind of event a pipeline delivers to its nodes. Each
// invocation carries exactly one signal.
type Signal string

const (
	SignalAlert  Signal = "alert"
	SignalReset  Signal = "reset"
	SignalRevoke Signal = "revoke"
	SignalReport Signal = "report"
)

// Signals returns every signal kind in a fixed order.
func Signals() []Signal {
	return []Signal{SignalAlert, SignalReset, SignalRevoke, SignalReport}
}

// ParseSignal converts a configuration or wire string to a Signal.
func ParseSignal(s string) (Signal, error) {
	switch sig := Signal(s); sig {
	case SignalAlert, SignalReset, SignalRevoke, SignalReport:
		return sig, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownSignal, s)
}

func (s Signal) String() string { return string(s) }
