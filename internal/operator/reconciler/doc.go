// Package reconciler contains the two mode reconcilers of a FlinkDeployment.
//
// [SessionReconciler] manages a cluster that accepts independently
// submitted jobs, [JobReconciler] an application cluster bound to the job in
// spec.job. Both compare the desired spec with the last committed one and
// decide between a no-op and a destructive redeploy.
//
// Collaborator failures are transient: they are logged, reported as an event
// and returned as an unsuccessful [Outcome]. Only invariant violations, such
// as switching between the two modes, are returned as errors.
package reconciler
