package service

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/flink/rest"
	"github.com/imamik/flink-operator/internal/util/naming"
)

// RESTClient is the part of the Flink REST API the service uses.
type RESTClient interface {
	ClusterOverview(ctx context.Context) (*rest.ClusterOverview, error)
	ListJobs(ctx context.Context) ([]rest.JobOverview, error)
	CancelJob(ctx context.Context, jobID string) error
	StopWithSavepoint(ctx context.Context, jobID, targetDirectory string) (string, error)
	WaitForSavepoint(ctx context.Context, jobID, triggerID string, timeout, poll time.Duration) (string, error)
}

// RESTClientFactory returns a REST client for a JobManager endpoint.
type RESTClientFactory func(endpoint string) RESTClient

// FlinkService manages the Kubernetes objects and jobs of Flink clusters.
type FlinkService struct {
	client           client.Client
	scheme           *runtime.Scheme
	newRESTClient    RESTClientFactory
	endpointFor      func(cfg conf.Configuration) string
	savepointTimeout time.Duration
	savepointPoll    time.Duration
}

// Option configures a FlinkService.
type Option func(*FlinkService)

// WithRESTClientFactory overrides how REST clients are created.
func WithRESTClientFactory(factory RESTClientFactory) Option {
	return func(s *FlinkService) {
		s.newRESTClient = factory
	}
}

// WithRESTTimeout sets the timeout of the default REST clients.
func WithRESTTimeout(timeout time.Duration) Option {
	return func(s *FlinkService) {
		s.newRESTClient = func(endpoint string) RESTClient {
			return rest.NewClient(endpoint, timeout)
		}
	}
}

// WithEndpointResolver overrides how the REST endpoint of a cluster is computed.
// flinkctl uses it to reach clusters through a port-forward or ingress.
func WithEndpointResolver(fn func(cfg conf.Configuration) string) Option {
	return func(s *FlinkService) {
		s.endpointFor = fn
	}
}

// WithSavepointTimeout sets how long stop-with-savepoint is awaited and how often it is polled.
func WithSavepointTimeout(timeout, poll time.Duration) Option {
	return func(s *FlinkService) {
		if timeout > 0 {
			s.savepointTimeout = timeout
		}
		if poll > 0 {
			s.savepointPoll = poll
		}
	}
}

// NewFlinkService creates a FlinkService.
func NewFlinkService(c client.Client, scheme *runtime.Scheme, opts ...Option) *FlinkService {
	s := &FlinkService{
		client: c,
		scheme: scheme,
		newRESTClient: func(endpoint string) RESTClient {
			return rest.NewClient(endpoint, rest.DefaultTimeout)
		},
		endpointFor:      InClusterEndpoint,
		savepointTimeout: 5 * time.Minute,
		savepointPoll:    2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InClusterEndpoint returns the REST URL of the cluster's REST Service.
func InClusterEndpoint(cfg conf.Configuration) string {
	return naming.RESTURL(cfg.ClusterID(), cfg.Namespace(), int(cfg.RESTPort()))
}

func (s *FlinkService) restClient(cfg conf.Configuration) RESTClient {
	return s.newRESTClient(s.endpointFor(cfg))
}
