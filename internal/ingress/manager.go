package ingress

import (
	"context"
	"fmt"

	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/log"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/util/labels"
	"github.com/imamik/flink-operator/internal/util/naming"
)

// Manager maintains one Ingress per FlinkDeployment with an ingressDomain.
type Manager struct {
	client    client.Client
	scheme    *runtime.Scheme
	className string
}

// Option configures a Manager.
type Option func(*Manager)

// WithIngressClass sets spec.ingressClassName on managed ingresses.
func WithIngressClass(name string) Option {
	return func(m *Manager) {
		m.className = name
	}
}

// NewManager creates an ingress Manager.
func NewManager(c client.Client, scheme *runtime.Scheme, opts ...Option) *Manager {
	m := &Manager{client: c, scheme: scheme}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// UpdateIngressRules creates or updates the ingress of d, or deletes it when
// remove is set. Deployments without an ingressDomain get no ingress; a
// previously created one is removed. The ingress lives in the deployment's
// namespace and records operatorNamespace as a label.
func (m *Manager) UpdateIngressRules(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error {
	ing := &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{Namespace: d.Namespace, Name: naming.Ingress(d.Name)},
	}

	if remove || d.Spec.IngressDomain == "" {
		if err := client.IgnoreNotFound(m.client.Delete(ctx, ing)); err != nil {
			return fmt.Errorf("failed to delete ingress %s/%s: %w", ing.Namespace, ing.Name, err)
		}
		return nil
	}

	host := naming.IngressHost(d.Name, d.Namespace, d.Spec.IngressDomain)
	pathType := networkingv1.PathTypePrefix

	result, err := controllerutil.CreateOrUpdate(ctx, m.client, ing, func() error {
		ing.Labels = labels.NewLabelBuilder(d.Name).
			WithComponent(labels.ComponentIngress).
			WithOperatorNamespace(operatorNamespace).
			Build()
		if m.className != "" {
			ing.Spec.IngressClassName = ptr.To(m.className)
		}
		ing.Spec.Rules = []networkingv1.IngressRule{{
			Host: host,
			IngressRuleValue: networkingv1.IngressRuleValue{
				HTTP: &networkingv1.HTTPIngressRuleValue{
					Paths: []networkingv1.HTTPIngressPath{{
						Path:     "/",
						PathType: &pathType,
						Backend: networkingv1.IngressBackend{
							Service: &networkingv1.IngressServiceBackend{
								Name: naming.RESTService(d.Name),
								Port: networkingv1.ServiceBackendPort{Number: cfg.RESTPort()},
							},
						},
					}},
				},
			},
		}}
		return controllerutil.SetControllerReference(d, ing, m.scheme)
	})
	if err != nil {
		return fmt.Errorf("failed to apply ingress %s/%s: %w", ing.Namespace, ing.Name, err)
	}

	log.FromContext(ctx).V(1).Info("Applied ingress", "host", host, "result", result)
	return nil
}
