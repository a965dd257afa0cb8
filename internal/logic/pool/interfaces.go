package pool

import (
	"context"
	"errors"
)

// Repository is the port interface for cluster pod operations.
// Implementations are provided by adapters in the outbound layer.
type Repository interface {
	// CreatePodCommand submits a pod and returns its cluster UID.
	CreatePodCommand(ctx context.Context, params CreatePodParams) (string, error)

	// GetPodStatusQuery reads the current phase and readiness of a pod.
	// A missing pod is reported through the not-found error classification.
	GetPodStatusQuery(ctx context.Context, name string) (*PodStatus, error)

	// PatchPodLabelsCommand merges the given labels into the pod metadata.
	PatchPodLabelsCommand(ctx context.Context, name string, labels map[string]string) error

	// DeletePodCommand deletes a pod. Deleting an already-deleted pod is success.
	DeletePodCommand(ctx context.Context, name string, gracePeriodSeconds int64) error

	// ListPodsQuery lists pods matching the label selector.
	ListPodsQuery(ctx context.Context, labelSelector string) ([]PodInfo, error)
}

// AuditSink receives structured lifecycle events. Implementations must be
// fire-and-forget: the pool never blocks on the sink and never reacts to
// sink failures.
type AuditSink interface {
	Log(ctx context.Context, event AuditEvent)
}

// notFound is a private interface for checking "not found" errors
// without importing the adapter package.
type notFound interface {
	IsNotFound()
}

func isNotFound(err error) bool {
	var target notFound

	return errors.As(err, &target)
}
