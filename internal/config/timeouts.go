package config

import (
	"os"
	"strconv"
	"time"
)

// DefaultRescheduleInterval is the fixed delay between two reconciliation cycles of a deployment.
const DefaultRescheduleInterval = 5 * time.Second

// Operator holds the operator-level settings.
// These values can be customized via environment variables and overridden by CLI flags.
type Operator struct {
	Namespace          string        // Namespace the operator runs in, recorded on managed ingresses
	RescheduleInterval time.Duration // Fixed requeue delay after every cycle, success or failure
	RESTTimeout        time.Duration // Timeout of a single Flink REST call
	SavepointTimeout   time.Duration // Maximum time to wait for a savepoint to complete
	SavepointPoll      time.Duration // Poll interval while waiting for a savepoint
	DeleteMaxRetries   int           // Retries of cluster deletion within one cleanup attempt
	DeleteInitialDelay time.Duration // Initial backoff between deletion retries
	DefaultsFile       string        // Optional flink-conf.yaml with operator-level defaults
	S3                 S3
}

// S3 holds the object storage settings used to verify savepoints.
type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Enabled reports whether savepoint verification against S3 is configured.
func (s S3) Enabled() bool {
	return s.Endpoint != "" && s.AccessKey != "" && s.SecretKey != ""
}

// LoadOperator loads the operator configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - FLINK_OPERATOR_NAMESPACE (default: POD_NAMESPACE, then "default")
//   - FLINK_OPERATOR_RESCHEDULE_INTERVAL (default: 5s)
//   - FLINK_OPERATOR_REST_TIMEOUT (default: 10s)
//   - FLINK_OPERATOR_SAVEPOINT_TIMEOUT (default: 5m)
//   - FLINK_OPERATOR_SAVEPOINT_POLL (default: 2s)
//   - FLINK_OPERATOR_DELETE_MAX_RETRIES (default: 3)
//   - FLINK_OPERATOR_DELETE_INITIAL_DELAY (default: 1s)
//   - FLINK_OPERATOR_DEFAULTS_FILE (default: none)
//   - FLINK_OPERATOR_S3_ENDPOINT, FLINK_OPERATOR_S3_REGION (default: us-east-1)
//   - AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
func LoadOperator() *Operator {
	return &Operator{
		Namespace:          parseString("FLINK_OPERATOR_NAMESPACE", parseString("POD_NAMESPACE", "default")),
		RescheduleInterval: parseDuration("FLINK_OPERATOR_RESCHEDULE_INTERVAL", DefaultRescheduleInterval),
		RESTTimeout:        parseDuration("FLINK_OPERATOR_REST_TIMEOUT", 10*time.Second),
		SavepointTimeout:   parseDuration("FLINK_OPERATOR_SAVEPOINT_TIMEOUT", 5*time.Minute),
		SavepointPoll:      parseDuration("FLINK_OPERATOR_SAVEPOINT_POLL", 2*time.Second),
		DeleteMaxRetries:   parseInt("FLINK_OPERATOR_DELETE_MAX_RETRIES", 3),
		DeleteInitialDelay: parseDuration("FLINK_OPERATOR_DELETE_INITIAL_DELAY", 1*time.Second),
		DefaultsFile:       os.Getenv("FLINK_OPERATOR_DEFAULTS_FILE"),
		S3: S3{
			Endpoint:  os.Getenv("FLINK_OPERATOR_S3_ENDPOINT"),
			Region:    parseString("FLINK_OPERATOR_S3_REGION", "us-east-1"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, not positive, or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}

func parseString(envVar, defaultVal string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultVal
}
