package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadOperator_Defaults(t *testing.T) {
	clearOperatorEnvVars(t)

	cfg := LoadOperator()

	if cfg.Namespace != "default" {
		t.Errorf("Expected Namespace default %q, got %q", "default", cfg.Namespace)
	}
	if cfg.RescheduleInterval != 5*time.Second {
		t.Errorf("Expected RescheduleInterval default 5s, got %v", cfg.RescheduleInterval)
	}
	if cfg.RESTTimeout != 10*time.Second {
		t.Errorf("Expected RESTTimeout default 10s, got %v", cfg.RESTTimeout)
	}
	if cfg.SavepointTimeout != 5*time.Minute {
		t.Errorf("Expected SavepointTimeout default 5m, got %v", cfg.SavepointTimeout)
	}
	if cfg.SavepointPoll != 2*time.Second {
		t.Errorf("Expected SavepointPoll default 2s, got %v", cfg.SavepointPoll)
	}
	if cfg.DeleteMaxRetries != 3 {
		t.Errorf("Expected DeleteMaxRetries default 3, got %d", cfg.DeleteMaxRetries)
	}
	if cfg.DeleteInitialDelay != 1*time.Second {
		t.Errorf("Expected DeleteInitialDelay default 1s, got %v", cfg.DeleteInitialDelay)
	}
	if cfg.DefaultsFile != "" {
		t.Errorf("Expected empty DefaultsFile, got %q", cfg.DefaultsFile)
	}
	if cfg.S3.Region != "us-east-1" {
		t.Errorf("Expected S3 region default us-east-1, got %q", cfg.S3.Region)
	}
	if cfg.S3.Enabled() {
		t.Error("Expected S3 to be disabled without endpoint and credentials")
	}
}

func TestLoadOperator_CustomValues(t *testing.T) {
	clearOperatorEnvVars(t)

	t.Setenv("FLINK_OPERATOR_NAMESPACE", "flink-system")
	t.Setenv("FLINK_OPERATOR_RESCHEDULE_INTERVAL", "30s")
	t.Setenv("FLINK_OPERATOR_REST_TIMEOUT", "3s")
	t.Setenv("FLINK_OPERATOR_SAVEPOINT_TIMEOUT", "10m")
	t.Setenv("FLINK_OPERATOR_DELETE_MAX_RETRIES", "7")
	t.Setenv("FLINK_OPERATOR_DELETE_INITIAL_DELAY", "250ms")
	t.Setenv("FLINK_OPERATOR_DEFAULTS_FILE", "/etc/flink-operator/flink-conf.yaml")
	t.Setenv("FLINK_OPERATOR_S3_ENDPOINT", "https://s3.example.com")
	t.Setenv("FLINK_OPERATOR_S3_REGION", "eu-central")
	t.Setenv("AWS_ACCESS_KEY_ID", "access")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg := LoadOperator()

	if cfg.Namespace != "flink-system" {
		t.Errorf("Expected Namespace flink-system, got %q", cfg.Namespace)
	}
	if cfg.RescheduleInterval != 30*time.Second {
		t.Errorf("Expected RescheduleInterval 30s, got %v", cfg.RescheduleInterval)
	}
	if cfg.RESTTimeout != 3*time.Second {
		t.Errorf("Expected RESTTimeout 3s, got %v", cfg.RESTTimeout)
	}
	if cfg.SavepointTimeout != 10*time.Minute {
		t.Errorf("Expected SavepointTimeout 10m, got %v", cfg.SavepointTimeout)
	}
	if cfg.DeleteMaxRetries != 7 {
		t.Errorf("Expected DeleteMaxRetries 7, got %d", cfg.DeleteMaxRetries)
	}
	if cfg.DeleteInitialDelay != 250*time.Millisecond {
		t.Errorf("Expected DeleteInitialDelay 250ms, got %v", cfg.DeleteInitialDelay)
	}
	if cfg.DefaultsFile != "/etc/flink-operator/flink-conf.yaml" {
		t.Errorf("Unexpected DefaultsFile %q", cfg.DefaultsFile)
	}
	if !cfg.S3.Enabled() {
		t.Error("Expected S3 to be enabled")
	}
	if cfg.S3.Region != "eu-central" {
		t.Errorf("Expected S3 region eu-central, got %q", cfg.S3.Region)
	}
}

func TestLoadOperator_NamespaceFallsBackToPodNamespace(t *testing.T) {
	clearOperatorEnvVars(t)
	t.Setenv("POD_NAMESPACE", "from-downward-api")

	cfg := LoadOperator()

	if cfg.Namespace != "from-downward-api" {
		t.Errorf("Expected Namespace from POD_NAMESPACE, got %q", cfg.Namespace)
	}
}

func TestLoadOperator_InvalidValues(t *testing.T) {
	clearOperatorEnvVars(t)

	t.Setenv("FLINK_OPERATOR_RESCHEDULE_INTERVAL", "soon")
	t.Setenv("FLINK_OPERATOR_REST_TIMEOUT", "-1s")
	t.Setenv("FLINK_OPERATOR_DELETE_MAX_RETRIES", "many")

	cfg := LoadOperator()

	if cfg.RescheduleInterval != DefaultRescheduleInterval {
		t.Errorf("Expected default RescheduleInterval for invalid value, got %v", cfg.RescheduleInterval)
	}
	if cfg.RESTTimeout != 10*time.Second {
		t.Errorf("Expected default RESTTimeout for negative value, got %v", cfg.RESTTimeout)
	}
	if cfg.DeleteMaxRetries != 3 {
		t.Errorf("Expected default DeleteMaxRetries for invalid value, got %d", cfg.DeleteMaxRetries)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal time.Duration
		expected   time.Duration
	}{
		{"empty value", "", 5 * time.Second, 5 * time.Second},
		{"valid seconds", "30s", 5 * time.Second, 30 * time.Second},
		{"valid minutes", "2m", 5 * time.Second, 2 * time.Minute},
		{"invalid format", "abc", 5 * time.Second, 5 * time.Second},
		{"zero", "0s", 5 * time.Second, 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.envValue)

			result := parseDuration("TEST_DURATION", tt.defaultVal)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"empty value", "", 3, 3},
		{"valid", "10", 3, 10},
		{"zero", "0", 3, 0},
		{"negative", "-2", 3, 3},
		{"invalid", "ten", 3, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_INT", tt.envValue)

			result := parseInt("TEST_INT", tt.defaultVal)
			if result != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func clearOperatorEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"FLINK_OPERATOR_NAMESPACE",
		"POD_NAMESPACE",
		"FLINK_OPERATOR_RESCHEDULE_INTERVAL",
		"FLINK_OPERATOR_REST_TIMEOUT",
		"FLINK_OPERATOR_SAVEPOINT_TIMEOUT",
		"FLINK_OPERATOR_SAVEPOINT_POLL",
		"FLINK_OPERATOR_DELETE_MAX_RETRIES",
		"FLINK_OPERATOR_DELETE_INITIAL_DELAY",
		"FLINK_OPERATOR_DEFAULTS_FILE",
		"FLINK_OPERATOR_S3_ENDPOINT",
		"FLINK_OPERATOR_S3_REGION",
		"AWS_ACCESS_KEY_ID",
		"AWS_SECRET_ACCESS_KEY",
	}
	for _, v := range vars {
		// t.Setenv registers the restore, Unsetenv makes the variable absent
		t.Setenv(v, "")
		_ = os.Unsetenv(v)
	}
}
