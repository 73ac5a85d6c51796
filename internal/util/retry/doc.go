// Package retry runs an operation with bounded exponential backoff.
//
// The operator uses [WithExponentialBackoff] when deleting the Kubernetes
// objects of a Flink cluster during finalizer cleanup. Errors wrapped with
// [Fatal] stop the loop immediately.
package retry
