// Package async runs independent operations concurrently.
//
// [RunParallel] is used to delete the Kubernetes objects of a Flink cluster
// at once and by flinkctl to query several JobManagers in parallel.
package async
