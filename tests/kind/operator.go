//go:build kind

package kind

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/flink/service"
	"github.com/imamik/flink-operator/internal/operator/controller"
)

const operatorNamespace = "flink-operator-e2e"

var crdOnce sync.Once

// InstallCRD applies the FlinkDeployment CRD once per test binary and waits
// until the API server serves it.
func (f *Framework) InstallCRD(t *testing.T) {
	t.Helper()
	crdOnce.Do(func() {
		manifest, err := os.ReadFile(filepath.Join("..", "..", "config", "crd", "bases", "flink.apache.org_flinkdeployments.yaml"))
		if err != nil {
			t.Fatalf("read CRD: %v", err)
		}
		f.KubectlApply(t, string(manifest))
		f.WaitForField(t, "crd", "", "flinkdeployments.flink.apache.org",
			`{.status.conditions[?(@.type=="Established")].status}`, "True", time.Minute)
	})
}

// endpoints maps a cluster id to a port-forwarded REST address. Clusters
// without an entry resolve to their in-cluster URL, which is unreachable
// from the test process.
type endpoints struct {
	mu    sync.RWMutex
	addrs map[string]string
}

func (e *endpoints) set(clusterID, addr string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addrs[clusterID] = addr
}

func (e *endpoints) resolve(cfg conf.Configuration) string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if addr, ok := e.addrs[cfg.ClusterID()]; ok {
		return "http://" + addr
	}
	return service.InClusterEndpoint(cfg)
}

// StartOperator runs the FlinkDeployment controller in the test process
// against the kind cluster until the test ends.
func (f *Framework) StartOperator(t *testing.T) *endpoints {
	t.Helper()

	restConfig, err := clientcmd.BuildConfigFromFlags("", f.KubeconfigPath())
	if err != nil {
		t.Fatalf("load kubeconfig: %v", err)
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(flinkv1alpha1.AddToScheme(scheme))

	ctrl.SetLogger(zap.New(zap.UseDevMode(true)))

	mgr, err := ctrl.NewManager(restConfig, ctrl.Options{
		Scheme:  scheme,
		Metrics: metricsserver.Options{BindAddress: "0"},
	})
	if err != nil {
		t.Fatalf("create manager: %v", err)
	}

	eps := &endpoints{addrs: map[string]string{}}
	flinkService := service.NewFlinkService(mgr.GetClient(), mgr.GetScheme(),
		service.WithRESTTimeout(5*time.Second),
		service.WithEndpointResolver(eps.resolve),
	)

	if err := controller.NewFlinkDeploymentReconciler(
		mgr.GetClient(),
		mgr.GetScheme(),
		mgr.GetEventRecorderFor("flink-operator"),
		controller.WithFlinkService(flinkService),
		controller.WithOperatorNamespace(operatorNamespace),
		controller.WithRescheduleInterval(2*time.Second),
		controller.WithMetrics(false),
	).SetupWithManager(mgr); err != nil {
		t.Fatalf("setup controller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := mgr.Start(ctx); err != nil {
			t.Errorf("manager stopped: %v", err)
		}
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	return eps
}
