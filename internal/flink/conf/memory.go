package conf

import (
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Flink memory units are binary: "1024m" is 1024 MiB.
var memoryUnits = []struct {
	suffixes   []string
	multiplier int64
}{
	{[]string{"tebibytes", "tb", "t"}, 1 << 40},
	{[]string{"gibibytes", "gb", "g"}, 1 << 30},
	{[]string{"mebibytes", "mb", "m"}, 1 << 20},
	{[]string{"kibibytes", "kb", "k"}, 1 << 10},
	{[]string{"bytes", "b"}, 1},
}

// ParseMemorySize parses a Flink memory size such as "2048m", "2 gb" or "1073741824".
func ParseMemorySize(s string) (int64, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return 0, fmt.Errorf("empty memory size")
	}

	multiplier := int64(1)
	number := text
	for _, unit := range memoryUnits {
		matched := false
		for _, suffix := range unit.suffixes {
			if strings.HasSuffix(text, suffix) {
				number = strings.TrimSpace(strings.TrimSuffix(text, suffix))
				multiplier = unit.multiplier
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}

	value, err := strconv.ParseInt(number, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("invalid memory size %q", s)
	}
	if value > 0 && multiplier > (1<<62)/value {
		return 0, fmt.Errorf("memory size %q overflows", s)
	}
	return value * multiplier, nil
}

// MemoryQuantity converts a Flink memory size into a Kubernetes quantity.
func MemoryQuantity(s string) (resource.Quantity, error) {
	bytes, err := ParseMemorySize(s)
	if err != nil {
		return resource.Quantity{}, err
	}
	return *resource.NewQuantity(bytes, resource.BinarySI), nil
}
