// Package conf derives the effective Flink configuration of a FlinkDeployment.
//
// The effective configuration is recomputed on every reconciliation from
// built-in defaults, operator-level defaults, the user's flinkConfiguration
// and the structured fields of the spec. It is never persisted on the
// resource; the cluster receives it as flink-conf.yaml in a ConfigMap.
package conf
