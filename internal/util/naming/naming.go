package naming

import "fmt"

// Names of the Kubernetes objects that make up a Flink cluster.
// Every object is derived from the FlinkDeployment name so the operator can
// find and delete them without bookkeeping.

// ClusterID is the Flink kubernetes.cluster-id of a deployment.
func ClusterID(deployment string) string {
	return deployment
}

func JobManager(deployment string) string {
	return deployment
}

func TaskManager(deployment string) string {
	return fmt.Sprintf("%s-taskmanager", deployment)
}

func ConfigMap(deployment string) string {
	return fmt.Sprintf("flink-config-%s", deployment)
}

// RPCService exposes the JobManager RPC and blob server ports to TaskManagers.
func RPCService(deployment string) string {
	return deployment
}

func RESTService(deployment string) string {
	return fmt.Sprintf("%s-rest", deployment)
}

func Ingress(deployment string) string {
	return deployment
}

// IngressHost is the virtual host routed to the REST service.
func IngressHost(deployment, namespace, domain string) string {
	return fmt.Sprintf("%s.%s.%s", deployment, namespace, domain)
}

// RESTURL is the in-cluster base URL of the JobManager REST API.
func RESTURL(deployment, namespace string, port int) string {
	return fmt.Sprintf("http://%s.%s.svc:%d", RESTService(deployment), namespace, port)
}
