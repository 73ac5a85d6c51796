// Package labels provides consistent labels for the Kubernetes objects of a Flink cluster.
//
// Labels follow the app.kubernetes.io recommended keys and a builder
// pattern for adding the component and the owning operator namespace.
package labels
