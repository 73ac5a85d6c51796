package conf

import (
	"strconv"
	"strings"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/util/naming"
)

// Default ports and sizes applied before any override.
const (
	DefaultRPCPort  int32 = 6123
	DefaultBlobPort int32 = 6124
	DefaultRESTPort int32 = 8081

	DefaultJobManagerMemory  = "1600m"
	DefaultTaskManagerMemory = "1728m"
)

// builtinDefaults are the lowest-precedence entries of every effective configuration.
var builtinDefaults = map[string]string{
	KeyJobManagerMemory:  DefaultJobManagerMemory,
	KeyTaskManagerMemory: DefaultTaskManagerMemory,
	KeyTaskSlots:         "1",
	KeyParallelism:       "1",
	KeyRPCPort:           strconv.Itoa(int(DefaultRPCPort)),
	KeyBlobPort:          strconv.Itoa(int(DefaultBlobPort)),
	KeyRESTPort:          strconv.Itoa(int(DefaultRESTPort)),
}

// Deriver computes the effective configuration of a deployment.
type Deriver struct {
	defaults map[string]string
}

// NewDeriver creates a Deriver layering the given operator defaults over the built-in ones.
func NewDeriver(defaults map[string]string) *Deriver {
	d := &Deriver{defaults: make(map[string]string, len(defaults))}
	for k, v := range defaults {
		d.defaults[k] = v
	}
	return d
}

// Derive returns the effective configuration of deployment. It is a pure
// function of the operator defaults and deployment.Spec.
//
// Precedence, lowest first: built-in defaults, operator defaults, the user's
// flinkConfiguration, structured spec fields, and the keys the operator
// manages (cluster id, namespace, image, RPC address, execution target).
func (d *Deriver) Derive(deployment *flinkv1alpha1.FlinkDeployment) Configuration {
	cfg := make(Configuration, len(builtinDefaults)+len(d.defaults)+len(deployment.Spec.FlinkConfiguration)+16)
	for k, v := range builtinDefaults {
		cfg[k] = v
	}
	for k, v := range d.defaults {
		cfg[k] = v
	}
	for k, v := range deployment.Spec.FlinkConfiguration {
		cfg[k] = v
	}

	spec := &deployment.Spec
	cfg.Set(KeyJobManagerMemory, spec.JobManager.Resource.Memory)
	cfg.Set(KeyJobManagerCPU, spec.JobManager.Resource.CPU)
	if spec.JobManager.Replicas > 0 {
		cfg.Set(KeyJobManagerReplicas, strconv.Itoa(int(spec.JobManager.Replicas)))
	}
	cfg.Set(KeyTaskManagerMemory, spec.TaskManager.Resource.Memory)
	cfg.Set(KeyTaskManagerCPU, spec.TaskManager.Resource.CPU)
	if spec.TaskManager.TaskSlots > 0 {
		cfg.Set(KeyTaskSlots, strconv.Itoa(int(spec.TaskManager.TaskSlots)))
	}
	if spec.TaskManager.Replicas > 0 {
		cfg.Set(KeyTaskManagerReplicas, strconv.Itoa(int(spec.TaskManager.Replicas)))
	}
	cfg.Set(KeyServiceAccount, spec.ServiceAccount)
	cfg.Set(KeyImagePullPolicy, string(spec.ImagePullPolicy))

	if job := spec.Job; job != nil {
		cfg[KeyExecutionTarget] = TargetApplication
		cfg.Set(KeyPipelineJars, job.JarURI)
		cfg.Set(KeyApplicationMainClass, job.EntryClass)
		if len(job.Args) > 0 {
			cfg[KeyApplicationArgs] = strings.Join(job.Args, ";")
		}
		if job.Parallelism > 0 {
			cfg[KeyParallelism] = strconv.Itoa(int(job.Parallelism))
		}
	} else {
		cfg[KeyExecutionTarget] = TargetSession
	}

	cfg[KeyClusterID] = naming.ClusterID(deployment.Name)
	cfg[KeyNamespace] = deployment.Namespace
	cfg[KeyRPCAddress] = naming.RPCService(deployment.Name)
	cfg.Set(KeyContainerImage, spec.Image)

	return cfg
}
