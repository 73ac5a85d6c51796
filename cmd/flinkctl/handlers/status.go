package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"k8s.io/apimachinery/pkg/api/equality"
	"sigs.k8s.io/controller-runtime/pkg/client"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/rest"
	"github.com/imamik/flink-operator/internal/util/async"
	"github.com/imamik/flink-operator/internal/util/naming"
)

const liveTimeout = 5 * time.Second

// StatusOptions are the inputs of the status command.
type StatusOptions struct {
	Kubeconfig    string
	Namespace     string
	Name          string
	AllNamespaces bool
	Watch         bool
	Interval      time.Duration
	JSON          bool
	Live          bool
}

// DeploymentStatus is the summary of one FlinkDeployment.
type DeploymentStatus struct {
	Name         string      `json:"name"`
	Namespace    string      `json:"namespace"`
	Mode         string      `json:"mode"`
	Image        string      `json:"image"`
	Ingress      string      `json:"ingress,omitempty"`
	JobManager   string      `json:"jobManager"`
	DesiredState string      `json:"desiredState,omitempty"`
	JobState     string      `json:"jobState,omitempty"`
	UpgradeMode  string      `json:"upgradeMode,omitempty"`
	Savepoint    string      `json:"savepoint,omitempty"`
	Reconciled   bool        `json:"reconciled"`
	Error        string      `json:"error,omitempty"`
	Live         *LiveStatus `json:"live,omitempty"`
}

// LiveStatus is cluster data read from the Flink REST API.
type LiveStatus struct {
	Endpoint       string `json:"endpoint"`
	FlinkVersion   string `json:"flinkVersion,omitempty"`
	TaskManagers   int32  `json:"taskManagers"`
	SlotsTotal     int32  `json:"slotsTotal"`
	SlotsAvailable int32  `json:"slotsAvailable"`
	JobsRunning    int32  `json:"jobsRunning"`
	Error          string `json:"error,omitempty"`
}

type overviewClient interface {
	ClusterOverview(ctx context.Context) (*rest.ClusterOverview, error)
}

// newOverviewClient is replaced in tests.
var newOverviewClient = func(endpoint string) overviewClient {
	return rest.NewClient(endpoint, liveTimeout)
}

// Status handles the status command.
func Status(ctx context.Context, out io.Writer, opts StatusOptions) error {
	k8sClient, namespace, err := connect(opts.Kubeconfig, opts.Namespace)
	if err != nil {
		return err
	}
	if opts.AllNamespaces {
		namespace = ""
	}

	if opts.Watch {
		return watchStatus(ctx, out, k8sClient, namespace, opts)
	}
	return showStatus(ctx, out, k8sClient, namespace, opts)
}

// showStatus displays the deployments once.
func showStatus(ctx context.Context, out io.Writer, k8sClient client.Client, namespace string, opts StatusOptions) error {
	statuses, err := collectStatus(ctx, k8sClient, namespace, opts.Name)
	if err != nil {
		return err
	}
	if opts.Live {
		// Unreachable clusters are shown per row; only cancellation aborts
		if err := fetchLive(ctx, statuses); err != nil && ctx.Err() != nil {
			return err
		}
	}

	switch {
	case opts.JSON:
		return printStatusJSON(out, statuses)
	case isInteractiveTTY():
		printStatusStyled(out, statuses)
	default:
		printStatusPlain(out, statuses)
	}
	return nil
}

// watchStatus continuously displays the deployments.
func watchStatus(ctx context.Context, out io.Writer, k8sClient client.Client, namespace string, opts StatusOptions) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := showStatus(ctx, out, k8sClient, namespace, opts); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !opts.JSON {
				fmt.Fprint(out, "\033[H\033[2J")
			}
			if err := showStatus(ctx, out, k8sClient, namespace, opts); err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
			}
		}
	}
}

// collectStatus lists the deployments of namespace, or only the named one.
func collectStatus(ctx context.Context, k8sClient client.Client, namespace, name string) ([]DeploymentStatus, error) {
	if name != "" {
		deployment := &flinkv1alpha1.FlinkDeployment{}
		if err := k8sClient.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, deployment); err != nil {
			return nil, fmt.Errorf("failed to get FlinkDeployment %s/%s: %w", namespace, name, err)
		}
		return []DeploymentStatus{buildDeploymentStatus(deployment)}, nil
	}

	list := &flinkv1alpha1.FlinkDeploymentList{}
	var listOpts []client.ListOption
	if namespace != "" {
		listOpts = append(listOpts, client.InNamespace(namespace))
	}
	if err := k8sClient.List(ctx, list, listOpts...); err != nil {
		return nil, fmt.Errorf("failed to list FlinkDeployments: %w", err)
	}

	statuses := make([]DeploymentStatus, 0, len(list.Items))
	for i := range list.Items {
		statuses = append(statuses, buildDeploymentStatus(&list.Items[i]))
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Namespace != statuses[j].Namespace {
			return statuses[i].Namespace < statuses[j].Namespace
		}
		return statuses[i].Name < statuses[j].Name
	})
	return statuses, nil
}

// buildDeploymentStatus summarises a deployment. A deployment counts as
// reconciled when the operator's last committed spec equals the current spec.
func buildDeploymentStatus(d *flinkv1alpha1.FlinkDeployment) DeploymentStatus {
	s := DeploymentStatus{
		Name:       d.Name,
		Namespace:  d.Namespace,
		Mode:       string(d.Spec.Mode()),
		Image:      d.Spec.Image,
		JobManager: string(flinkv1alpha1.JobManagerDeploymentMissing),
	}
	if d.Spec.IngressDomain != "" {
		s.Ingress = naming.IngressHost(d.Name, d.Namespace, d.Spec.IngressDomain)
	}
	if d.Spec.Job != nil {
		s.DesiredState = string(d.Spec.Job.DesiredState())
		s.UpgradeMode = string(d.Spec.Job.EffectiveUpgradeMode())
	}

	st := d.Status
	if st == nil {
		return s
	}
	if st.JobManagerDeploymentStatus != "" {
		s.JobManager = string(st.JobManagerDeploymentStatus)
	}
	if st.JobStatus != nil {
		s.JobState = st.JobStatus.State
		s.Savepoint = st.JobStatus.SavepointLocation
	}
	s.Error = st.Error
	s.Reconciled = st.Spec != nil && equality.Semantic.DeepEqual(*st.Spec, d.Spec)
	return s
}

// fetchLive reads the cluster overview of every deployment with an ingress
// in parallel. Failures are recorded per deployment and returned joined.
func fetchLive(ctx context.Context, statuses []DeploymentStatus) error {
	var tasks []async.Task
	for i := range statuses {
		s := &statuses[i]
		if s.Ingress == "" {
			continue
		}
		endpoint := "http://" + s.Ingress
		s.Live = &LiveStatus{Endpoint: endpoint}

		tasks = append(tasks, async.Task{
			Name: s.Name,
			Func: func(ctx context.Context) error {
				overview, err := newOverviewClient(endpoint).ClusterOverview(ctx)
				if err != nil {
					s.Live.Error = err.Error()
					return err
				}
				s.Live.FlinkVersion = overview.FlinkVersion
				s.Live.TaskManagers = overview.TaskManagers
				s.Live.SlotsTotal = overview.SlotsTotal
				s.Live.SlotsAvailable = overview.SlotsAvailable
				s.Live.JobsRunning = overview.JobsRunning
				return nil
			},
		})
	}
	return async.RunParallel(ctx, tasks)
}

// printStatusJSON outputs the statuses as JSON.
func printStatusJSON(out io.Writer, statuses []DeploymentStatus) error {
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
