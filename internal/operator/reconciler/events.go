package reconciler

// Event reasons emitted by the mode reconcilers.
const (
	EventReasonSubmitted        = "Submitted"
	EventReasonSubmitFailed     = "SubmitFailed"
	EventReasonIngressFailed    = "IngressFailed"
	EventReasonUpgrading        = "Upgrading"
	EventReasonUpgradeFailed    = "UpgradeFailed"
	EventReasonSuspended        = "Suspended"
	EventReasonSuspendFailed    = "SuspendFailed"
	EventReasonResumed          = "Resumed"
	EventReasonSavepointMissing = "SavepointMissing"
)
