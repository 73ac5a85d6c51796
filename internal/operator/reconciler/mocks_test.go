package reconciler

import (
	"context"
	"sync"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// MockClusterService is a mock implementation of SessionClusterService and
// ApplicationClusterService. Every call is appended to Calls in order.
type MockClusterService struct {
	mu sync.Mutex

	SubmitSessionClusterFunc     func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error
	StopSessionClusterFunc       func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error
	SubmitApplicationClusterFunc func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) error
	CancelJobFunc                func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, mode flinkv1alpha1.UpgradeMode) (string, error)

	Calls          []string
	Configs        []conf.Configuration
	Savepoints     []string
	CancelledModes []flinkv1alpha1.UpgradeMode
}

func (m *MockClusterService) record(call string, cfg conf.Configuration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	m.Configs = append(m.Configs, cfg)
}

func (m *MockClusterService) SubmitSessionCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
	m.record("submit-session", cfg)
	if m.SubmitSessionClusterFunc != nil {
		return m.SubmitSessionClusterFunc(ctx, d, cfg)
	}
	return nil
}

func (m *MockClusterService) StopSessionCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) error {
	m.record("stop-session", cfg)
	if m.StopSessionClusterFunc != nil {
		return m.StopSessionClusterFunc(ctx, d, cfg)
	}
	return nil
}

func (m *MockClusterService) SubmitApplicationCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, savepoint string) error {
	m.record("submit-application", cfg)
	m.mu.Lock()
	m.Savepoints = append(m.Savepoints, savepoint)
	m.mu.Unlock()
	if m.SubmitApplicationClusterFunc != nil {
		return m.SubmitApplicationClusterFunc(ctx, d, cfg, savepoint)
	}
	return nil
}

func (m *MockClusterService) CancelJob(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, mode flinkv1alpha1.UpgradeMode) (string, error) {
	m.record("cancel-job", cfg)
	m.mu.Lock()
	m.CancelledModes = append(m.CancelledModes, mode)
	m.mu.Unlock()
	if m.CancelJobFunc != nil {
		return m.CancelJobFunc(ctx, d, cfg, mode)
	}
	return "", nil
}

// MockIngressManager is a mock implementation of IngressManager.
type MockIngressManager struct {
	UpdateIngressRulesFunc func(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error

	Updates            int
	Removals           int
	OperatorNamespaces []string
}

func (m *MockIngressManager) UpdateIngressRules(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration, operatorNamespace string, remove bool) error {
	if remove {
		m.Removals++
	} else {
		m.Updates++
	}
	m.OperatorNamespaces = append(m.OperatorNamespaces, operatorNamespace)
	if m.UpdateIngressRulesFunc != nil {
		return m.UpdateIngressRulesFunc(ctx, d, cfg, operatorNamespace, remove)
	}
	return nil
}

// MockSavepointStore is a mock implementation of SavepointStore.
type MockSavepointStore struct {
	ExistsFunc func(ctx context.Context, location string) (bool, error)

	Checked []string
}

func (m *MockSavepointStore) Exists(ctx context.Context, location string) (bool, error) {
	m.Checked = append(m.Checked, location)
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, location)
	}
	return true, nil
}
