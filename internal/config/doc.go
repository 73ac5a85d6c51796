// Package config loads the operator-level settings.
//
// [LoadOperator] reads the [Operator] settings from FLINK_OPERATOR_*
// environment variables, which command-line flags of the operator binary
// may override. [LoadFlinkDefaults] reads an optional flink-conf.yaml whose
// entries become the lowest-precedence layer of every derived Flink
// configuration.
package config
