//go:build kind

package kind

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
)

var fw *Framework

func TestMain(m *testing.M) {
	fw = NewFramework()

	if err := fw.Setup(context.Background()); err != nil {
		// Skip gracefully for common issues
		for _, reason := range []string{"kind not found", "docker not running", "kubectl not found"} {
			if strings.Contains(err.Error(), reason) {
				fmt.Printf("SKIP: %s\n", reason)
				os.Exit(0)
			}
		}
		fmt.Printf("Setup failed: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	fw.Teardown()
	os.Exit(code)
}
