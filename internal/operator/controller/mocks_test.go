package controller

import (
	"context"
	"sync"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/operator/reconciler"
)

// MockObserver is a mock implementation of deploymentObserver.
type MockObserver struct {
	mu sync.Mutex

	ObserveFunc func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool

	Calls int
}

func (m *MockObserver) Observe(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.ObserveFunc != nil {
		return m.ObserveFunc(ctx, d, cfg)
	}
	return true
}

// MockModeReconciler is a mock implementation of reconciler.ModeReconciler.
type MockModeReconciler struct {
	mu sync.Mutex

	ReconcileFunc func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) (reconciler.Outcome, error)

	Calls   int
	Configs []conf.Configuration
}

func (m *MockModeReconciler) Reconcile(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) (reconciler.Outcome, error) {
	m.mu.Lock()
	m.Calls++
	m.Configs = append(m.Configs, cfg)
	m.mu.Unlock()
	if m.ReconcileFunc != nil {
		return m.ReconcileFunc(ctx, d, cfg)
	}
	if d.Status == nil {
		d.Status = &flinkv1alpha1.FlinkDeploymentStatus{}
	}
	return reconciler.Outcome{Succeeded: true, Action: reconciler.ActionSubmit}, nil
}

// MockClusterDeleter is a mock implementation of clusterDeleter.
type MockClusterDeleter struct {
	mu sync.Mutex

	DeleteClusterFunc func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) error

	DeleteClusterCalls []string
}

func (m *MockClusterDeleter) DeleteCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) error {
	m.mu.Lock()
	m.DeleteClusterCalls = append(m.DeleteClusterCalls, d.Name)
	m.mu.Unlock()
	if m.DeleteClusterFunc != nil {
		return m.DeleteClusterFunc(ctx, d)
	}
	return nil
}

// MockIngressManager is a mock implementation of reconciler.IngressManager.
type MockIngressManager struct {
	mu sync.Mutex

	UpdateIngressRulesFunc func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error

	Updates  []string
	Removals []string
}

func (m *MockIngressManager) UpdateIngressRules(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error {
	m.mu.Lock()
	if remove {
		m.Removals = append(m.Removals, d.Name)
	} else {
		m.Updates = append(m.Updates, d.Name)
	}
	m.mu.Unlock()
	if m.UpdateIngressRulesFunc != nil {
		return m.UpdateIngressRulesFunc(ctx, d, cfg, operatorNamespace, remove)
	}
	return nil
}
