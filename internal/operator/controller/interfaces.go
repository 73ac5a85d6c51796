package controller

import (
	"context"

	flinkv1alpha1 "github.com/imamik/flink-operator/api/v1alpha1"
	"github.com/imamik/flink-operator/internal/flink/conf"
)

// deploymentObserver refreshes the status of a deployment from the live cluster.
type deploymentObserver interface {
	Observe(ctx context.Context, d *flinkv1alpha1.FlinkDeployment, cfg conf.Configuration) bool
}

// configDeriver computes the effective Flink configuration of a deployment.
type configDeriver interface {
	Derive(d *flinkv1alpha1.FlinkDeployment) conf.Configuration
}

// clusterDeleter removes every cluster resource of a deployment.
type clusterDeleter interface {
	DeleteCluster(ctx context.Context, d *flinkv1alpha1.FlinkDeployment) error
}
