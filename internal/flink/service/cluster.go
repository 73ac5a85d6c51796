package service

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/util/async"
	"github.com/imamik/flink-operator/internal/util/naming"
)

// SubmitSessionCluster creates or updates the objects of a session cluster.
func (s *FlinkService) SubmitSessionCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
	if d.Spec.Job != nil {
		return fmt.Errorf("deployment %s/%s defines a job and cannot run as a session cluster", d.Namespace, d.Name)
	}
	log.FromContext(ctx).Info("Submitting session cluster", "deployment", d.Name, "namespace", d.Namespace)
	return s.deployCluster(ctx, d, cfg, "")
}

// SubmitApplicationCluster creates or updates the objects of an application
// cluster. A non-empty savepoint restores the job from it.
func (s *FlinkService) SubmitApplicationCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) error {
	if d.Spec.Job == nil {
		return fmt.Errorf("deployment %s/%s has no job and cannot run as an application cluster", d.Namespace, d.Name)
	}
	log.FromContext(ctx).Info("Submitting application cluster",
		"deployment", d.Name, "namespace", d.Namespace, "savepoint", savepoint)
	return s.deployCluster(ctx, d, cfg, savepoint)
}

// StopSessionCluster removes the objects of a session cluster. Jobs submitted
// to the session are lost; high availability data is left in place.
func (s *FlinkService) StopSessionCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, _ conf.Configuration) error {
	log.FromContext(ctx).Info("Stopping session cluster", "deployment", d.Name, "namespace", d.Namespace)
	return s.DeleteCluster(ctx, d)
}

// DeleteCluster removes every object of the cluster. Missing objects are ignored.
func (s *FlinkService) DeleteCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) error {
	objects := []struct {
		kind string
		obj  client.Object
	}{
		{"jobmanager deployment", &appsv1.Deployment{ObjectMeta: objectMeta(d.Namespace, naming.JobManager(d.Name))}},
		{"taskmanager deployment", &appsv1.Deployment{ObjectMeta: objectMeta(d.Namespace, naming.TaskManager(d.Name))}},
		{"rpc service", &corev1.Service{ObjectMeta: objectMeta(d.Namespace, naming.RPCService(d.Name))}},
		{"rest service", &corev1.Service{ObjectMeta: objectMeta(d.Namespace, naming.RESTService(d.Name))}},
		{"configmap", &corev1.ConfigMap{ObjectMeta: objectMeta(d.Namespace, naming.ConfigMap(d.Name))}},
	}

	tasks := make([]async.Task, 0, len(objects))
	for _, o := range objects {
		tasks = append(tasks, async.Task{
			Name: o.kind,
			Func: func(ctx context.Context) error {
				err := s.client.Delete(ctx, o.obj, client.PropagationPolicy(metav1.DeletePropagationBackground))
				return client.IgnoreNotFound(err)
			},
		})
	}

	if err := async.RunParallel(ctx, tasks); err != nil {
		return fmt.Errorf("failed to delete cluster %s/%s: %w", d.Namespace, d.Name, err)
	}
	log.FromContext(ctx).V(1).Info("Deleted cluster objects", "deployment", d.Name, "namespace", d.Namespace)
	return nil
}

// JobManagerStatus reports whether the JobManager Deployment exists and is available.
func (s *FlinkService) JobManagerStatus(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) (flinkv1alpha1.JobManagerDeploymentStatus, error) {
	dep := &appsv1.Deployment{}
	err := s.client.Get(ctx, types.NamespacedName{Namespace: d.Namespace, Name: naming.JobManager(d.Name)}, dep)
	if apierrors.IsNotFound(err) {
		return flinkv1alpha1.JobManagerDeploymentMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get jobmanager deployment: %w", err)
	}

	if dep.DeletionTimestamp == nil && dep.Status.ReadyReplicas > 0 && deploymentAvailable(dep) {
		return flinkv1alpha1.JobManagerDeploymentReady, nil
	}
	return flinkv1alpha1.JobManagerDeploymentDeploying, nil
}

func deploymentAvailable(dep *appsv1.Deployment) bool {
	for _, c := range dep.Status.Conditions {
		if c.Type == appsv1.DeploymentAvailable {
			return c.Status == corev1.ConditionTrue
		}
	}
	return false
}

func (s *FlinkService) deployCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) error {
	cm := &corev1.ConfigMap{ObjectMeta: objectMeta(d.Namespace, naming.ConfigMap(d.Name))}
	if err := s.apply(ctx, d, cm, func() error {
		mutateConfigMap(cm, d, cfg)
		return nil
	}); err != nil {
		return err
	}

	rpc := &corev1.Service{ObjectMeta: objectMeta(d.Namespace, naming.RPCService(d.Name))}
	if err := s.apply(ctx, d, rpc, func() error {
		mutateRPCService(rpc, d, cfg)
		return nil
	}); err != nil {
		return err
	}

	restSvc := &corev1.Service{ObjectMeta: objectMeta(d.Namespace, naming.RESTService(d.Name))}
	if err := s.apply(ctx, d, restSvc, func() error {
		mutateRESTService(restSvc, d, cfg)
		return nil
	}); err != nil {
		return err
	}

	jm := &appsv1.Deployment{ObjectMeta: objectMeta(d.Namespace, naming.JobManager(d.Name))}
	if err := s.apply(ctx, d, jm, func() error {
		return mutateJobManager(jm, d, cfg, savepoint)
	}); err != nil {
		return err
	}

	tm := &appsv1.Deployment{ObjectMeta: objectMeta(d.Namespace, naming.TaskManager(d.Name))}
	return s.apply(ctx, d, tm, func() error {
		return mutateTaskManager(tm, d, cfg)
	})
}

// apply creates or updates obj and makes the deployment its controller.
func (s *FlinkService) apply(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, obj client.Object, mutate func() error) error {
	result, err := controllerutil.CreateOrUpdate(ctx, s.client, obj, func() error {
		if err := mutate(); err != nil {
			return err
		}
		return controllerutil.SetControllerReference(d, obj, s.scheme)
	})
	if err != nil {
		return fmt.Errorf("failed to apply %s %s: %w", kindOf(obj), obj.GetName(), err)
	}
	log.FromContext(ctx).V(1).Info("Applied cluster object",
		"kind", kindOf(obj), "name", obj.GetName(), "result", result)
	return nil
}

func kindOf(obj client.Object) string {
	switch obj.(type) {
	case *appsv1.Deployment:
		return "deployment"
	case *corev1.Service:
		return "service"
	case *corev1.ConfigMap:
		return "configmap"
	default:
		return fmt.Sprintf("%T", obj)
	}
}

func objectMeta(namespace, name string) metav1.ObjectMeta {
	return metav1.ObjectMeta{Namespace: namespace, Name: name}
}
