// Package rest is a minimal client for the Flink JobManager REST API.
//
// It covers what the operator needs to observe a cluster and to stop jobs:
// the cluster overview, the job overview, cancellation and
// stop-with-savepoint including polling the savepoint to completion.
package rest
