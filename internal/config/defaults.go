package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// LoadFlinkDefaults reads operator-level Flink configuration defaults from a
// flink-conf.yaml style file. An empty path yields no defaults.
func LoadFlinkDefaults(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults file: %w", err)
	}

	return ParseFlinkDefaults(data)
}

// ParseFlinkDefaults parses flat "key: value" YAML into string values.
// Nested mappings are rejected since flink-conf.yaml keys are dotted, not nested.
func ParseFlinkDefaults(data []byte) (map[string]string, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	defaults := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			defaults[key] = ""
		case string:
			defaults[key] = v
		case bool:
			defaults[key] = strconv.FormatBool(v)
		case int:
			defaults[key] = strconv.Itoa(v)
		case float64:
			defaults[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case []interface{}:
			// Flink accepts list values separated by ';'
			s := ""
			for i, item := range v {
				if i > 0 {
					s += ";"
				}
				s += fmt.Sprint(item)
			}
			defaults[key] = s
		default:
			return nil, fmt.Errorf("unsupported value for key %q: nested values are not allowed", key)
		}
	}

	return defaults, nil
}
