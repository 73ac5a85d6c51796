package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/util/labels"
	"github.com/imamik/flink-operator/internal/util/naming"
)

const (
	flinkConfFile   = "flink-conf.yaml"
	log4jFile       = "log4j-console.properties"
	confVolumeName  = "flink-config-volume"
	confMountPath   = "/opt/flink/conf"
	configHashKey   = "flink.apache.org/config-hash"
	taskManagerData = int32(6121)
	taskManagerRPC  = int32(6122)
)

// log4jConsole is the logging configuration mounted next to flink-conf.yaml.
const log4jConsole = `rootLogger.level = INFO
rootLogger.appenderRef.console.ref = ConsoleAppender
appender.console.name = ConsoleAppender
appender.console.type = CONSOLE
appender.console.layout.type = PatternLayout
appender.console.layout.pattern = %d{yyyy-MM-dd HH:mm:ss,SSS} %-5p %-60c %x - %m%n
logger.netty.name = org.apache.flink.shaded.akka.org.jboss.netty.channel.DefaultChannelPipeline
logger.netty.level = OFF
`

// configHash identifies the rendered configuration so pods restart when it changes.
func configHash(cfg conf.Configuration) string {
	sum := sha256.Sum256([]byte(cfg.Render()))
	return hex.EncodeToString(sum[:8])
}

func mutateConfigMap(cm *corev1.ConfigMap, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) {
	cm.Labels = labels.NewLabelBuilder(d.Name).Merge(cm.Labels).Build()
	cm.Data = map[string]string{
		flinkConfFile: cfg.Render(),
		log4jFile:     log4jConsole,
	}
}

func mutateRPCService(svc *corev1.Service, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) {
	svc.Labels = labels.NewLabelBuilder(d.Name).WithComponent(labels.ComponentJobManager).Build()
	svc.Spec.Type = corev1.ServiceTypeClusterIP
	svc.Spec.Selector = labels.Selector(d.Name, labels.ComponentJobManager)
	svc.Spec.Ports = []corev1.ServicePort{
		{Name: "rpc", Port: cfg.RPCPort(), TargetPort: intstr.FromString("rpc"), Protocol: corev1.ProtocolTCP},
		{Name: "blob", Port: cfg.BlobPort(), TargetPort: intstr.FromString("blob"), Protocol: corev1.ProtocolTCP},
	}
}

func mutateRESTService(svc *corev1.Service, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) {
	svc.Labels = labels.NewLabelBuilder(d.Name).WithComponent(labels.ComponentJobManager).Build()
	if svc.Spec.Type == "" {
		svc.Spec.Type = corev1.ServiceTypeClusterIP
	}
	svc.Spec.Selector = labels.Selector(d.Name, labels.ComponentJobManager)
	svc.Spec.Ports = []corev1.ServicePort{
		{Name: "rest", Port: cfg.RESTPort(), TargetPort: intstr.FromString("rest"), Protocol: corev1.ProtocolTCP},
	}
}

// jobManagerArgs returns the docker entrypoint arguments of the JobManager.
func jobManagerArgs(d *flinkv1alpha1.FlinkDeployment, savepoint string) []string {
	job := d.Spec.Job
	if job == nil {
		return []string{"jobmanager"}
	}

	args := []string{"standalone-job"}
	if job.EntryClass != "" {
		args = append(args, "--job-classname", job.EntryClass)
	}
	if savepoint != "" {
		args = append(args, "--fromSavepoint", savepoint)
	}
	return append(args, job.Args...)
}

func mutateJobManager(dep *appsv1.Deployment, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) error {
	res, err := containerResources(cfg.Get(conf.KeyJobManagerCPU), cfg.Get(conf.KeyJobManagerMemory))
	if err != nil {
		return fmt.Errorf("invalid jobmanager resources: %w", err)
	}

	container := corev1.Container{
		Name:            labels.ComponentJobManager,
		Image:           d.Spec.Image,
		ImagePullPolicy: d.Spec.ImagePullPolicy,
		Args:            jobManagerArgs(d, savepoint),
		Ports: []corev1.ContainerPort{
			{Name: "rpc", ContainerPort: cfg.RPCPort(), Protocol: corev1.ProtocolTCP},
			{Name: "blob", ContainerPort: cfg.BlobPort(), Protocol: corev1.ProtocolTCP},
			{Name: "rest", ContainerPort: cfg.RESTPort(), Protocol: corev1.ProtocolTCP},
		},
		Resources: res,
		ReadinessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{Path: "/overview", Port: intstr.FromString("rest")},
			},
			InitialDelaySeconds: 10,
			PeriodSeconds:       5,
		},
		LivenessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				TCPSocket: &corev1.TCPSocketAction{Port: intstr.FromString("rpc")},
			},
			InitialDelaySeconds: 30,
			PeriodSeconds:       60,
		},
		VolumeMounts: []corev1.VolumeMount{{Name: confVolumeName, MountPath: confMountPath}},
	}

	replicas := cfg.GetInt32(conf.KeyJobManagerReplicas, 1)
	mutateDeployment(dep, d, cfg, labels.ComponentJobManager, replicas, container)
	dep.Spec.Strategy = appsv1.DeploymentStrategy{Type: appsv1.RecreateDeploymentStrategyType}
	return nil
}

func mutateTaskManager(dep *appsv1.Deployment, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
	res, err := containerResources(cfg.Get(conf.KeyTaskManagerCPU), cfg.Get(conf.KeyTaskManagerMemory))
	if err != nil {
		return fmt.Errorf("invalid taskmanager resources: %w", err)
	}

	container := corev1.Container{
		Name:            labels.ComponentTaskManager,
		Image:           d.Spec.Image,
		ImagePullPolicy: d.Spec.ImagePullPolicy,
		Args:            []string{"taskmanager"},
		Ports: []corev1.ContainerPort{
			{Name: "data", ContainerPort: taskManagerData, Protocol: corev1.ProtocolTCP},
			{Name: "rpc", ContainerPort: taskManagerRPC, Protocol: corev1.ProtocolTCP},
		},
		Resources: res,
		LivenessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				TCPSocket: &corev1.TCPSocketAction{Port: intstr.FromString("rpc")},
			},
			InitialDelaySeconds: 30,
			PeriodSeconds:       60,
		},
		VolumeMounts: []corev1.VolumeMount{{Name: confVolumeName, MountPath: confMountPath}},
	}

	replicas := cfg.GetInt32(conf.KeyTaskManagerReplicas, 1)
	mutateDeployment(dep, d, cfg, labels.ComponentTaskManager, replicas, container)
	return nil
}

func mutateDeployment(dep *appsv1.Deployment, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration,
	component string, replicas int32, container corev1.Container) {
	podLabels := labels.NewLabelBuilder(d.Name).WithComponent(component).Build()

	dep.Labels = podLabels
	dep.Spec.Replicas = ptr.To(replicas)
	// Selectors are immutable after creation
	if dep.Spec.Selector == nil {
		dep.Spec.Selector = &metav1.LabelSelector{MatchLabels: labels.Selector(d.Name, component)}
	}
	dep.Spec.Template = corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{
			Labels:      podLabels,
			Annotations: map[string]string{configHashKey: configHash(cfg)},
		},
		Spec: corev1.PodSpec{
			ServiceAccountName: d.Spec.ServiceAccount,
			Containers:         []corev1.Container{container},
			SecurityContext: &corev1.PodSecurityContext{
				RunAsUser:  ptr.To(int64(9999)),
				RunAsGroup: ptr.To(int64(9999)),
				FSGroup:    ptr.To(int64(9999)),
			},
			Volumes: []corev1.Volume{{
				Name: confVolumeName,
				VolumeSource: corev1.VolumeSource{
					ConfigMap: &corev1.ConfigMapVolumeSource{
						LocalObjectReference: corev1.LocalObjectReference{Name: naming.ConfigMap(d.Name)},
						Items: []corev1.KeyToPath{
							{Key: flinkConfFile, Path: flinkConfFile},
							{Key: log4jFile, Path: log4jFile},
						},
					},
				},
			}},
		},
	}
}

// containerResources converts a Kubernetes CPU quantity and a Flink memory
// size into equal requests and limits.
func containerResources(cpu, memory string) (corev1.ResourceRequirements, error) {
	list := corev1.ResourceList{}
	if cpu != "" {
		q, err := resource.ParseQuantity(cpu)
		if err != nil {
			return corev1.ResourceRequirements{}, fmt.Errorf("invalid cpu %q: %w", cpu, err)
		}
		list[corev1.ResourceCPU] = q
	}
	if memory != "" {
		q, err := conf.MemoryQuantity(memory)
		if err != nil {
			return corev1.ResourceRequirements{}, err
		}
		list[corev1.ResourceMemory] = q
	}
	if len(list) == 0 {
		return corev1.ResourceRequirements{}, nil
	}
	return corev1.ResourceRequirements{Requests: list, Limits: list.DeepCopy()}, nil
}
