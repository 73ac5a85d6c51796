package labels

// Label keys set on every object the operator creates for a Flink cluster.
const (
	KeyName      = "app.kubernetes.io/name"
	KeyInstance  = "app.kubernetes.io/instance"
	KeyComponent = "app.kubernetes.io/component"
	KeyManagedBy = "app.kubernetes.io/managed-by"

	// KeyOperatorNamespace records which operator instance owns an ingress rule.
	KeyOperatorNamespace = "flink.apache.org/operator-namespace"
)

// Component values
const (
	ComponentJobManager  = "jobmanager"
	ComponentTaskManager = "taskmanager"
	ComponentIngress     = "ingress"
)

const (
	NameFlink         = "flink"
	ManagedByOperator = "flink-operator"
)

// LabelBuilder builds the label set of one Flink cluster object.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a builder with the name, instance and manager labels pre-set.
func NewLabelBuilder(deployment string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyName:      NameFlink,
			KeyInstance:  deployment,
			KeyManagedBy: ManagedByOperator,
		},
	}
}

// WithComponent adds the component label (jobmanager, taskmanager, ingress).
func (lb *LabelBuilder) WithComponent(component string) *LabelBuilder {
	lb.labels[KeyComponent] = component
	return lb
}

// WithOperatorNamespace records the namespace of the operator managing the object.
func (lb *LabelBuilder) WithOperatorNamespace(namespace string) *LabelBuilder {
	if namespace != "" {
		lb.labels[KeyOperatorNamespace] = namespace
	}
	return lb
}

// Merge adds all labels from the provided map.
func (lb *LabelBuilder) Merge(extra map[string]string) *LabelBuilder {
	for k, v := range extra {
		lb.labels[k] = v
	}
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

// Selector returns the pod selector of one component. It only uses labels
// that never change, since Deployment selectors are immutable.
func Selector(deployment, component string) map[string]string {
	return map[string]string{
		KeyName:      NameFlink,
		KeyInstance:  deployment,
		KeyComponent: component,
	}
}
