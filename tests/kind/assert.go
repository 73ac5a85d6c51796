//go:build kind

package kind

import (
	"strings"
	"testing"
)

// AssertResourcesExist verifies that every named resource of kind exists.
func (f *Framework) AssertResourcesExist(t *testing.T, kind, namespace string, names ...string) {
	t.Helper()
	for _, name := range names {
		if !f.ResourceExists(kind, namespace, name) {
			t.Errorf("%s %s/%s not found", kind, namespace, name)
		}
	}
}

// AssertField verifies a JSONPath of a resource.
func (f *Framework) AssertField(t *testing.T, kind, namespace, name, path, want string) {
	t.Helper()
	output, err := f.JSONPath(kind, namespace, name, path)
	if err != nil {
		t.Errorf("%s %s/%s: %v", kind, namespace, name, err)
		return
	}
	if strings.TrimSpace(output) != want {
		t.Errorf("%s %s/%s %s = %q, want %q", kind, namespace, name, path, output, want)
	}
}

// AssertConfigContains verifies the rendered flink-conf.yaml of a cluster.
func (f *Framework) AssertConfigContains(t *testing.T, namespace, configMap string, lines ...string) {
	t.Helper()
	output, err := f.JSONPath("configmap", namespace, configMap, `{.data.flink-conf\.yaml}`)
	if err != nil {
		t.Errorf("configmap %s/%s: %v", namespace, configMap, err)
		return
	}
	for _, line := range lines {
		if !strings.Contains(output, line+"\n") {
			t.Errorf("configmap %s/%s missing %q", namespace, configMap, line)
		}
	}
}

// AssertOwnedBy verifies the controller owner reference of a resource.
func (f *Framework) AssertOwnedBy(t *testing.T, kind, namespace, name, ownerKind, ownerName string) {
	t.Helper()
	f.AssertField(t, kind, namespace, name, "{.metadata.ownerReferences[0].kind}/{.metadata.ownerReferences[0].name}", ownerKind+"/"+ownerName)
}
