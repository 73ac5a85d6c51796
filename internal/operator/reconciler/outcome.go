package reconciler

// Action is what a successful reconciliation did to the cluster.
type Action string

const (
	ActionNone    Action = ""
	ActionSubmit  Action = "submit"
	ActionUpgrade Action = "upgrade"
	ActionSuspend Action = "suspend"
	ActionResume  Action = "resume"
)

// Outcome is the result of one mode reconciliation.
type Outcome struct {
	// Succeeded commits the spec to status.spec.
	Succeeded bool

	// PersistProgress asks for the status to be written even though the
	// reconciliation failed, without advancing status.spec. It is set once a
	// job has been stopped so the next cycle resumes instead of stopping again.
	PersistProgress bool

	// Action describes what was done, for events and metrics.
	Action Action
}

func success(action Action) Outcome {
	return Outcome{Succeeded: true, Action: action}
}

func failure(action Action) Outcome {
	return Outcome{Action: action}
}
