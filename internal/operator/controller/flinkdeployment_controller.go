package controller

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/tools/record"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/predicate"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/config"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/flink/service"
	"github.com/imamik/flink-operator/internal/ingress"
	"github.com/imamik/flink-operator/internal/operator/observer"
	"github.com/imamik/flink-operator/internal/operator/reconciler"
)

// Event reasons emitted by the dispatcher.
const (
	EventReasonReconcileError = "ReconcileError"
	EventReasonCleanupFailed  = "CleanupFailed"
	EventReasonDeleted        = "Deleted"
)

// FlinkDeploymentReconciler reconciles a FlinkDeployment object.
type FlinkDeploymentReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	deriver  configDeriver
	observer deploymentObserver
	session  reconciler.ModeReconciler
	job      reconciler.ModeReconciler
	deleter  clusterDeleter
	ingress  reconciler.IngressManager
	flink    *service.FlinkService

	reconcilerOpts     []reconciler.Option
	operatorNamespace  string
	rescheduleInterval time.Duration
	deleteMaxRetries   int
	deleteInitialDelay time.Duration
	enableMetrics      bool
	now                func() time.Time
}

// Option configures a FlinkDeploymentReconciler.
type Option func(*FlinkDeploymentReconciler)

// WithFlinkService sets the FlinkService the default collaborators are built on.
func WithFlinkService(s *service.FlinkService) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.flink = s
	}
}

// WithReconcilerOptions passes options to the default mode reconcilers.
func WithReconcilerOptions(opts ...reconciler.Option) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.reconcilerOpts = append(r.reconcilerOpts, opts...)
	}
}

// WithDeriver sets the configuration deriver.
func WithDeriver(d configDeriver) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.deriver = d
	}
}

// WithObserver sets the observer.
func WithObserver(o deploymentObserver) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.observer = o
	}
}

// WithSessionReconciler sets the reconciler for deployments without a job.
func WithSessionReconciler(m reconciler.ModeReconciler) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.session = m
	}
}

// WithJobReconciler sets the reconciler for application deployments.
func WithJobReconciler(m reconciler.ModeReconciler) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.job = m
	}
}

// WithClusterDeleter sets the component that removes clusters on deletion.
func WithClusterDeleter(d clusterDeleter) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.deleter = d
	}
}

// WithIngressManager sets the ingress manager used on deletion.
func WithIngressManager(m reconciler.IngressManager) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.ingress = m
	}
}

// WithRescheduleInterval sets the delay between two cycles of a deployment.
func WithRescheduleInterval(d time.Duration) Option {
	return func(r *FlinkDeploymentReconciler) {
		if d > 0 {
			r.rescheduleInterval = d
		}
	}
}

// WithOperatorNamespace sets the namespace the operator runs in.
func WithOperatorNamespace(namespace string) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.operatorNamespace = namespace
	}
}

// WithDeleteRetry sets the retry policy of cluster deletion within one cycle.
func WithDeleteRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.deleteMaxRetries = maxRetries
		r.deleteInitialDelay = initialDelay
	}
}

// WithMetrics enables or disables Prometheus metrics.
func WithMetrics(enable bool) Option {
	return func(r *FlinkDeploymentReconciler) {
		r.enableMetrics = enable
	}
}

// NewFlinkDeploymentReconciler creates a new FlinkDeploymentReconciler.
// Collaborators not set through options are built on the native Kubernetes
// FlinkService using the given client.
func NewFlinkDeploymentReconciler(c client.Client, scheme *runtime.Scheme, recorder record.EventRecorder, opts ...Option) *FlinkDeploymentReconciler {
	r := &FlinkDeploymentReconciler{
		Client:             c,
		Scheme:             scheme,
		Recorder:           recorder,
		rescheduleInterval: config.DefaultRescheduleInterval,
		deleteMaxRetries:   3,
		deleteInitialDelay: time.Second,
		enableMetrics:      true,
		now:                time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.setDefaults()
	return r
}

func (r *FlinkDeploymentReconciler) setDefaults() {
	flink := func() *service.FlinkService {
		if r.flink == nil {
			r.flink = service.NewFlinkService(r.Client, r.Scheme)
		}
		return r.flink
	}

	if r.deriver == nil {
		r.deriver = conf.NewDeriver(nil)
	}
	if r.ingress == nil {
		r.ingress = ingress.NewManager(r.Client, r.Scheme)
	}
	if r.observer == nil {
		r.observer = observer.New(flink())
	}
	if r.deleter == nil {
		r.deleter = flink()
	}

	opts := []reconciler.Option{
		reconciler.WithRecorder(r.Recorder),
		reconciler.WithOperatorNamespace(r.operatorNamespace),
	}
	opts = append(opts, r.reconcilerOpts...)
	if r.session == nil {
		r.session = reconciler.NewSessionReconciler(flink(), r.ingress, opts...)
	}
	if r.job == nil {
		r.job = reconciler.NewJobReconciler(flink(), r.ingress, opts...)
	}
}

// +kubebuilder:rbac:groups=flink.apache.org,resources=flinkdeployments,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=flink.apache.org,resources=flinkdeployments/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=flink.apache.org,resources=flinkdeployments/finalizers,verbs=update
// +kubebuilder:rbac:groups=apps,resources=deployments,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=services;configmaps,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=networking.k8s.io,resources=ingresses,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile handles one reconciliation cycle of a FlinkDeployment.
func (r *FlinkDeploymentReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx).WithValues("deployment", req.Name, "namespace", req.Namespace)
	ctx = log.IntoContext(ctx, logger)
	start := r.now()

	deployment := &flinkv1alpha1.FlinkDeployment{}
	if err := r.Get(ctx, req.NamespacedName, deployment); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		logger.Error(err, "unable to fetch FlinkDeployment")
		return ctrl.Result{}, err
	}

	if !deployment.DeletionTimestamp.IsZero() {
		return r.cleanup(ctx, deployment)
	}

	if !controllerutil.ContainsFinalizer(deployment, flinkv1alpha1.FinalizerCleanup) {
		controllerutil.AddFinalizer(deployment, flinkv1alpha1.FinalizerCleanup)
		if err := r.Update(ctx, deployment); err != nil {
			return ctrl.Result{}, fmt.Errorf("failed to add finalizer: %w", err)
		}
	}

	result, err := r.reconcile(ctx, deployment)
	r.recordReconcile(deployment.Name, result, r.now().Sub(start).Seconds())
	if err != nil {
		return ctrl.Result{}, err
	}
	return ctrl.Result{RequeueAfter: r.rescheduleInterval}, nil
}

// reconcile runs observe and dispatch on a copy of deployment and reports
// the result label used for metrics.
func (r *FlinkDeploymentReconciler) reconcile(ctx context.Context, deployment *flinkv1alpha1.FlinkDeployment) (string, error) {
	logger := log.FromContext(ctx)

	cfg := r.deriver.Derive(deployment)

	observed := deployment.DeepCopy()
	if !r.observer.Observe(ctx, observed, cfg) {
		logger.V(1).Info("observation failed, skipping reconciliation")
		r.recordObserveFailure(deployment.Name)
		return resultObserveFailed, nil
	}

	mode := observed.Spec.Mode()
	modeReconciler := r.session
	if mode == flinkv1alpha1.ClusterModeApplication {
		modeReconciler = r.job
	}

	outcome, err := modeReconciler.Reconcile(ctx, observed, cfg)
	if err != nil {
		err = fmt.Errorf("error while reconciling deployment change for %s/%s: %w", deployment.Namespace, deployment.Name, err)
		logger.Error(err, "fatal reconciliation error", "mode", mode)
		r.Recorder.Event(deployment, corev1.EventTypeWarning, EventReasonReconcileError, err.Error())
		if deployment.Status != nil {
			r.setErrorStatus(observed, err)
			if statusErr := r.Status().Update(ctx, observed); statusErr != nil {
				logger.Error(statusErr, "failed to persist reconciliation error")
			}
		}
		return resultError, err
	}

	if !outcome.Succeeded {
		if outcome.PersistProgress {
			logger.Info("persisting progress of unfinished reconciliation", "action", outcome.Action)
			if err := r.Status().Update(ctx, observed); err != nil {
				return resultError, fmt.Errorf("failed to persist reconciliation progress: %w", err)
			}
		}
		return resultFailure, nil
	}

	switch outcome.Action {
	case reconciler.ActionSubmit:
		r.recordSubmission(deployment.Name, mode)
	case reconciler.ActionUpgrade:
		r.recordUpgrade(deployment.Name, mode)
	}

	r.commit(deployment, observed)
	if err := r.Status().Update(ctx, observed); err != nil {
		if apierrors.IsConflict(err) {
			// The resource changed while reconciling; the next cycle starts from the new version
			logger.V(1).Info("status update conflict, retrying next cycle")
			return resultFailure, nil
		}
		return resultError, fmt.Errorf("failed to update status: %w", err)
	}
	r.recordJobRunning(observed)

	return resultSuccess, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *FlinkDeploymentReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&flinkv1alpha1.FlinkDeployment{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		Complete(r)
}
