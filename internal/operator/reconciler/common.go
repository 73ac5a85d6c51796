package reconciler

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/equality"
	"k8s.io/client-go/tools/record"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// Option configures a mode reconciler.
type Option func(*base)

// WithRecorder sets the event recorder.
func WithRecorder(recorder record.EventRecorder) Option {
	return func(b *base) {
		b.recorder = recorder
	}
}

// WithOperatorNamespace sets the namespace recorded on ingress rules.
func WithOperatorNamespace(namespace string) Option {
	return func(b *base) {
		b.operatorNamespace = namespace
	}
}

// WithSavepointStore verifies savepoints before restoring from them.
func WithSavepointStore(store SavepointStore) Option {
	return func(b *base) {
		b.savepoints = store
	}
}

type base struct {
	ingress           IngressManager
	recorder          record.EventRecorder
	operatorNamespace string
	savepoints        SavepointStore
}

func newBase(ingress IngressManager, opts []Option) base {
	b := base{ingress: ingress}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) event(d *flinkv1alpha1.FlinkDeployment, eventType, reason, format string, args ...any) {
	if b.recorder == nil {
		return
	}
	b.recorder.Eventf(d, eventType, reason, format, args...)
}

func (b *base) warning(d *flinkv1alpha1.FlinkDeployment, reason, format string, args ...any) {
	b.event(d, corev1.EventTypeWarning, reason, format, args...)
}

func (b *base) normal(d *flinkv1alpha1.FlinkDeployment, reason, format string, args ...any) {
	b.event(d, corev1.EventTypeNormal, reason, format, args...)
}

// refreshIngress updates the ingress rules of a cluster that was already
// resubmitted. Failures are reported as a warning and never fail the cycle.
func (b *base) refreshIngress(ctx context.Context, logger logr.Logger, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) {
	if err := b.ingress.UpdateIngressRules(ctx, d, cfg, b.operatorNamespace, false); err != nil {
		logger.Error(err, "Failed to update ingress rules")
		b.warning(d, EventReasonIngressFailed, "Failed to update ingress rules: %v", err)
	}
}

// deployed reports whether a spec was committed for d before.
func deployed(d *flinkv1alpha1.FlinkDeployment) bool {
	return d.Status != nil && d.Status.Spec != nil
}

// specChanged compares the desired spec with the last committed one.
// Empty and nil collections are treated as equal.
func specChanged(d *flinkv1alpha1.FlinkDeployment) bool {
	return !equality.Semantic.DeepEqual(d.Spec, *d.Status.Spec)
}

// specDiff renders the change between the committed and the desired spec for logging.
func specDiff(d *flinkv1alpha1.FlinkDeployment) string {
	return cmp.Diff(*d.Status.Spec, d.Spec)
}
