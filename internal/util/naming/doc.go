// Package naming provides consistent names for the Kubernetes objects of a Flink cluster.
//
// Objects follow the pattern {deployment} for the JobManager and its RPC
// service, {deployment}-{role} for the TaskManager and REST service, and
// flink-config-{deployment} for the configuration ConfigMap.
package naming
