// Package controller implements the Kubernetes controller for FlinkDeployment
// custom resources.
//
// Every cycle derives the effective Flink configuration, observes the live
// cluster into a copy of the resource and dispatches to the session or the
// job reconciler depending on whether spec.job is set. The reconciled spec is
// committed to status.spec only when the cycle succeeded, so a failed cycle
// is retried from the same starting point. Cycles are rescheduled after a
// fixed interval regardless of their outcome.
//
// Deletion is guarded by a finalizer that removes the Flink cluster and its
// ingress before the resource goes away.
package controller
