// Package ingress exposes the REST endpoint of Flink clusters through a
// networking/v1 Ingress named after the deployment.
package ingress
