package rest

// Job states reported by Flink.
const (
	JobStateRunning    = "RUNNING"
	JobStateFinished   = "FINISHED"
	JobStateCanceled   = "CANCELED"
	JobStateFailed     = "FAILED"
	JobStateCreated    = "CREATED"
	JobStateRestarting = "RESTARTING"
)

// Savepoint operation states.
const (
	SavepointInProgress = "IN_PROGRESS"
	SavepointCompleted  = "COMPLETED"
)

// ClusterOverview is the response of GET /overview.
type ClusterOverview struct {
	TaskManagers   int32  `json:"taskmanagers"`
	SlotsTotal     int32  `json:"slots-total"`
	SlotsAvailable int32  `json:"slots-available"`
	JobsRunning    int32  `json:"jobs-running"`
	JobsFinished   int32  `json:"jobs-finished"`
	JobsCancelled  int32  `json:"jobs-cancelled"`
	JobsFailed     int32  `json:"jobs-failed"`
	FlinkVersion   string `json:"flink-version"`
	FlinkCommit    string `json:"flink-commit"`
}

// JobOverview is one entry of GET /jobs/overview.
type JobOverview struct {
	ID               string `json:"jid"`
	Name             string `json:"name"`
	State            string `json:"state"`
	StartTime        int64  `json:"start-time"`
	EndTime          int64  `json:"end-time"`
	Duration         int64  `json:"duration"`
	LastModification int64  `json:"last-modification"`
}

// SavepointInfo is the flattened state of a savepoint operation.
type SavepointInfo struct {
	Status       string
	Location     string
	FailureCause string
}

type jobsOverviewResponse struct {
	Jobs []JobOverview `json:"jobs"`
}

type stopRequest struct {
	TargetDirectory string `json:"targetDirectory,omitempty"`
	Drain           bool   `json:"drain"`
}

type triggerResponse struct {
	RequestID string `json:"request-id"`
}

type savepointStatusResponse struct {
	Status struct {
		ID string `json:"id"`
	} `json:"status"`
	Operation *struct {
		Location     string `json:"location"`
		FailureCause *struct {
			Class      string `json:"class"`
			StackTrace string `json:"stack-trace"`
		} `json:"failure-cause"`
	} `json:"operation"`
}
