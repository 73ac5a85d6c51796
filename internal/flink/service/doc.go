// Package service runs Flink clusters as native Kubernetes objects.
//
// A cluster consists of a ConfigMap holding flink-conf.yaml, a JobManager
// Deployment with its RPC and REST Services, and a TaskManager Deployment.
// All objects are owned by the FlinkDeployment so Kubernetes garbage
// collection removes them when the resource disappears. Jobs are stopped
// through the JobManager REST API.
package service
