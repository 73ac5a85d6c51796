package service

import (
	"context"
	"sync"
	"time"

	"github.com/imamik/flink-operator/internal/flink/rest"
)

// MockRESTClient is a mock implementation of RESTClient for testing.
type MockRESTClient struct {
	mu sync.Mutex

	ClusterOverviewFunc   func(ctx context.Context) (*rest.ClusterOverview, error)
	ListJobsFunc          func(ctx context.Context) ([]rest.JobOverview, error)
	CancelJobFunc         func(ctx context.Context, jobID string) error
	StopWithSavepointFunc func(ctx context.Context, jobID, targetDirectory string) (string, error)
	WaitForSavepointFunc  func(ctx context.Context, jobID, triggerID string, timeout, poll time.Duration) (string, error)

	CancelledJobs    []string
	StoppedJobs      []string
	SavepointTargets []string
}

func (m *MockRESTClient) ClusterOverview(ctx context.Context) (*rest.ClusterOverview, error) {
	if m.ClusterOverviewFunc != nil {
		return m.ClusterOverviewFunc(ctx)
	}
	return &rest.ClusterOverview{}, nil
}

func (m *MockRESTClient) ListJobs(ctx context.Context) ([]rest.JobOverview, error) {
	if m.ListJobsFunc != nil {
		return m.ListJobsFunc(ctx)
	}
	return nil, nil
}

func (m *MockRESTClient) CancelJob(ctx context.Context, jobID string) error {
	m.mu.Lock()
	m.CancelledJobs = append(m.CancelledJobs, jobID)
	m.mu.Unlock()
	if m.CancelJobFunc != nil {
		return m.CancelJobFunc(ctx, jobID)
	}
	return nil
}

func (m *MockRESTClient) StopWithSavepoint(ctx context.Context, jobID, targetDirectory string) (string, error) {
	m.mu.Lock()
	m.StoppedJobs = append(m.StoppedJobs, jobID)
	m.SavepointTargets = append(m.SavepointTargets, targetDirectory)
	m.mu.Unlock()
	if m.StopWithSavepointFunc != nil {
		return m.StopWithSavepointFunc(ctx, jobID, targetDirectory)
	}
	return "trigger", nil
}

func (m *MockRESTClient) WaitForSavepoint(ctx context.Context, jobID, triggerID string, timeout, poll time.Duration) (string, error) {
	if m.WaitForSavepointFunc != nil {
		return m.WaitForSavepointFunc(ctx, jobID, triggerID, timeout, poll)
	}
	return "s3://savepoints/" + jobID, nil
}
