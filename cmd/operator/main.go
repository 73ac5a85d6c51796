// Package main is the entrypoint for the flink-operator.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/config"
	"github.com/imamik/flink-operator/internal/flink/conf"
	"github.com/imamik/flink-operator/internal/flink/service"
	"github.com/imamik/flink-operator/internal/ingress"
	"github.com/imamik/flink-operator/internal/operator/controller"
	"github.com/imamik/flink-operator/internal/operator/reconciler"
	"github.com/imamik/flink-operator/internal/platform/s3"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")

	// Version is set at build time
	Version = "dev"
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(flinkv1alpha1.AddToScheme(scheme))
}

type options struct {
	metricsAddr          string
	probeAddr            string
	enableLeaderElection bool
	leaderElectionID     string
	namespace            string
	rescheduleInterval   time.Duration
	defaultsFile         string
	ingressClass         string
}

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cfg := config.LoadOperator()
	opts := options{
		namespace:          cfg.Namespace,
		rescheduleInterval: cfg.RescheduleInterval,
		defaultsFile:       cfg.DefaultsFile,
	}
	zapOpts := zap.Options{
		Development: os.Getenv("DEBUG") == "true",
	}

	cmd := &cobra.Command{
		Use:           "flink-operator",
		Short:         "Kubernetes operator for Apache Flink deployments",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&zapOpts)))

			cfg.Namespace = opts.namespace
			cfg.RescheduleInterval = opts.rescheduleInterval
			cfg.DefaultsFile = opts.defaultsFile

			return run(ctrl.SetupSignalHandler(), cfg, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flags.StringVar(&opts.probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flags.BoolVar(&opts.enableLeaderElection, "leader-elect", true, "Enable leader election for controller manager.")
	flags.StringVar(&opts.leaderElectionID, "leader-election-id", "flink-operator", "The name of the leader election resource.")
	flags.StringVar(&opts.namespace, "namespace", opts.namespace, "Namespace the operator runs in, recorded on managed ingresses.")
	flags.DurationVar(&opts.rescheduleInterval, "reschedule-interval", opts.rescheduleInterval, "Delay before a deployment is reconciled again.")
	flags.StringVar(&opts.defaultsFile, "defaults-file", opts.defaultsFile, "Path to a flink-conf.yaml with operator-level defaults.")
	flags.StringVar(&opts.ingressClass, "ingress-class", "", "IngressClass set on managed ingresses.")

	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	zapOpts.BindFlags(goFlags)
	flags.AddGoFlagSet(goFlags)

	return cmd
}

func run(ctx context.Context, cfg *config.Operator, opts options) error {
	setupLog.Info("starting flink-operator", "version", Version, "namespace", cfg.Namespace)

	defaults, err := config.LoadFlinkDefaults(cfg.DefaultsFile)
	if err != nil {
		return fmt.Errorf("unable to load flink defaults: %w", err)
	}

	mgr, err := ctrl.NewManager(ctrl.GetConfigOrDie(), ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: opts.metricsAddr,
		},
		HealthProbeBindAddress: opts.probeAddr,
		LeaderElection:         opts.enableLeaderElection,
		LeaderElectionID:       opts.leaderElectionID,
		// The binary exits as soon as the manager stops, so stepping down early is safe.
		LeaderElectionReleaseOnCancel: true,
	})
	if err != nil {
		return fmt.Errorf("unable to create manager: %w", err)
	}

	flinkService := service.NewFlinkService(
		mgr.GetClient(),
		mgr.GetScheme(),
		service.WithRESTTimeout(cfg.RESTTimeout),
		service.WithSavepointTimeout(cfg.SavepointTimeout, cfg.SavepointPoll),
	)

	var ingressOpts []ingress.Option
	if opts.ingressClass != "" {
		ingressOpts = append(ingressOpts, ingress.WithIngressClass(opts.ingressClass))
	}

	var reconcilerOpts []reconciler.Option
	if cfg.S3.Enabled() {
		store, err := s3.NewClient(ctx, cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
		if err != nil {
			return fmt.Errorf("unable to create savepoint store: %w", err)
		}
		reconcilerOpts = append(reconcilerOpts, reconciler.WithSavepointStore(store))
		setupLog.Info("savepoint verification enabled", "endpoint", cfg.S3.Endpoint)
	}

	if err := controller.NewFlinkDeploymentReconciler(
		mgr.GetClient(),
		mgr.GetScheme(),
		mgr.GetEventRecorderFor("flink-operator"),
		controller.WithFlinkService(flinkService),
		controller.WithDeriver(conf.NewDeriver(defaults)),
		controller.WithIngressManager(ingress.NewManager(mgr.GetClient(), mgr.GetScheme(), ingressOpts...)),
		controller.WithReconcilerOptions(reconcilerOpts...),
		controller.WithRescheduleInterval(cfg.RescheduleInterval),
		controller.WithOperatorNamespace(cfg.Namespace),
		controller.WithDeleteRetry(cfg.DeleteMaxRetries, cfg.DeleteInitialDelay),
	).SetupWithManager(mgr); err != nil {
		return fmt.Errorf("unable to create controller FlinkDeployment: %w", err)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up ready check: %w", err)
	}

	setupLog.Info("starting manager")
	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("problem running manager: %w", err)
	}
	return nil
}
