package models

// ProcessStep enumerates the stages of the weekly procurement pipeline.
type ProcessStep int

const (
	StepIdle        ProcessStep = 1
	StepCollecting  ProcessStep = 2
	StepReconciling ProcessStep = 3
	StepQuoting     ProcessStep = 4
	StepFinalizing  ProcessStep = 5
	StepClosed      ProcessStep = 6
)

// String returns a stable label for logs and API payloads.
func (s ProcessStep) String() string {
	switch s {
	case StepIdle:
		return "IDLE"
	case StepCollecting:
		return "COLLECTING"
	case StepReconciling:
		return "RECONCILING"
	case StepQuoting:
		return "QUOTING"
	case StepFinalizing:
		return "FINALIZING"
	case StepClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// ProcessState is the global singleton tracking the active procurement run.
// Version guards every write: a stale version means another session already
// moved the process and the caller must refresh.
type ProcessState struct {
	Active     bool        `db:"active" json:"active"`
	Step       ProcessStep `db:"step" json:"step"`
	WeekNumber *int        `db:"week_number" json:"weekNumber,omitempty"`
	OrderID    *string     `db:"order_id" json:"orderId,omitempty"`
	Version    int64       `db:"version" json:"version"`
}
