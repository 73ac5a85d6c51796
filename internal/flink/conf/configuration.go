package conf

import (
	"sort"
	"strconv"
	"strings"
)

// Configuration keys the operator reads or manages.
const (
	KeyClusterID            = "kubernetes.cluster-id"
	KeyNamespace            = "kubernetes.namespace"
	KeyContainerImage       = "kubernetes.container.image"
	KeyImagePullPolicy      = "kubernetes.container.image.pull-policy"
	KeyServiceAccount       = "kubernetes.service-account"
	KeyJobManagerCPU        = "kubernetes.jobmanager.cpu"
	KeyJobManagerReplicas   = "kubernetes.jobmanager.replicas"
	KeyTaskManagerCPU       = "kubernetes.taskmanager.cpu"
	KeyTaskManagerReplicas  = "kubernetes.taskmanager.replicas"
	KeyExecutionTarget      = "execution.target"
	KeyRPCAddress           = "jobmanager.rpc.address"
	KeyRPCPort              = "jobmanager.rpc.port"
	KeyBlobPort             = "blob.server.port"
	KeyRESTPort             = "rest.port"
	KeyJobManagerMemory     = "jobmanager.memory.process.size"
	KeyTaskManagerMemory    = "taskmanager.memory.process.size"
	KeyTaskSlots            = "taskmanager.numberOfTaskSlots"
	KeyParallelism          = "parallelism.default"
	KeyPipelineJars         = "pipeline.jars"
	KeyApplicationMainClass = "$internal.application.main"
	KeyApplicationArgs      = "$internal.application.program-args"
	KeySavepointPath        = "execution.savepoint.path"
	KeySavepointDir         = "state.savepoints.dir"
	KeyHighAvailability     = "high-availability"
)

// Execution targets of a cluster.
const (
	TargetSession     = "kubernetes-session"
	TargetApplication = "kubernetes-application"
)

// Configuration is an effective Flink configuration: a flat set of string keys and values.
type Configuration map[string]string

// Get returns the value of key, or an empty string.
func (c Configuration) Get(key string) string {
	return c[key]
}

// GetInt returns key parsed as an integer, or defaultVal when missing or malformed.
func (c Configuration) GetInt(key string, defaultVal int) int {
	v, ok := c[key]
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultVal
	}
	return i
}

// GetInt32 is GetInt narrowed for Kubernetes replica and port fields.
func (c Configuration) GetInt32(key string, defaultVal int32) int32 {
	return int32(c.GetInt(key, int(defaultVal))) // #nosec G115
}

// Set stores value under key; empty values are ignored.
func (c Configuration) Set(key, value string) {
	if value == "" {
		return
	}
	c[key] = value
}

// Clone returns an independent copy.
func (c Configuration) Clone() Configuration {
	out := make(Configuration, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Keys returns the keys in lexical order.
func (c Configuration) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render produces flink-conf.yaml content. Flink reads this file line by line
// as "key: value" pairs, so values are written verbatim.
func (c Configuration) Render() string {
	var b strings.Builder
	for _, k := range c.Keys() {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(c[k])
		b.WriteString("\n")
	}
	return b.String()
}

// Accessors used by the cluster service.

func (c Configuration) ClusterID() string { return c[KeyClusterID] }

func (c Configuration) Namespace() string { return c[KeyNamespace] }

func (c Configuration) Image() string { return c[KeyContainerImage] }

func (c Configuration) RESTPort() int32 { return c.GetInt32(KeyRESTPort, DefaultRESTPort) }

func (c Configuration) RPCPort() int32 { return c.GetInt32(KeyRPCPort, DefaultRPCPort) }

func (c Configuration) BlobPort() int32 { return c.GetInt32(KeyBlobPort, DefaultBlobPort) }

// HAEnabled reports whether Flink high availability is configured.
func (c Configuration) HAEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(c[KeyHighAvailability]))
	return v != "" && v != "none" && v != "disabled"
}
