package k8s

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/kubernetes"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

// Adapter implements the pool Repository port on top of client-go, plus the
// live pod usage query backed by the metrics API.
type Adapter struct {
	logger           *slog.Logger
	clientset        kubernetes.Interface
	metricsClientset metricsv.Interface
	namespace        string
}

// New creates a new K8s adapter scoped to one namespace.
func New(
	logger *slog.Logger,
	clientset kubernetes.Interface,
	metricsClientset metricsv.Interface,
	namespace string,
) *Adapter {
	return &Adapter{
		logger:           logger,
		clientset:        clientset,
		metricsClientset: metricsClientset,
		namespace:        namespace,
	}
}

var _ pool.Repository = (*Adapter)(nil)

// CreatePodCommand submits the sandbox pod and returns its UID.
func (a *Adapter) CreatePodCommand(
	ctx context.Context,
	params pool.CreatePodParams,
) (string, error) {
	created, err := a.clientset.CoreV1().Pods(a.namespace).Create(
		ctx,
		buildPodSpec(a.namespace, params),
		metav1.CreateOptions{},
	)
	if err != nil {
		return "", fmt.Errorf("create pod: %w", err)
	}

	return string(created.UID), nil
}

// GetPodStatusQuery reads the pod phase and readiness.
func (a *Adapter) GetPodStatusQuery(
	ctx context.Context,
	name string,
) (*pool.PodStatus, error) {
	found, err := a.clientset.CoreV1().Pods(a.namespace).Get(
		ctx,
		name,
		metav1.GetOptions{},
	)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("get pod status: %w", errPodNotFound)
		}

		return nil, fmt.Errorf("get pod status: %w", err)
	}

	return toDomainPodStatus(found), nil
}

// PatchPodLabelsCommand merges the labels into the pod metadata.
func (a *Adapter) PatchPodLabelsCommand(
	ctx context.Context,
	name string,
	labels map[string]string,
) error {
	patch := map[string]any{
		"metadata": map[string]any{
			"labels": labels,
		},
	}

	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal label patch: %w", err)
	}

	_, err = a.clientset.CoreV1().Pods(a.namespace).Patch(
		ctx,
		name,
		types.MergePatchType,
		patchBytes,
		metav1.PatchOptions{},
	)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return fmt.Errorf("patch pod labels: %w", errPodNotFound)
		}

		return fmt.Errorf("patch pod labels: %w", err)
	}

	return nil
}

// DeletePodCommand deletes the pod. A not-found response is success.
func (a *Adapter) DeletePodCommand(
	ctx context.Context,
	name string,
	gracePeriodSeconds int64,
) error {
	err := a.clientset.CoreV1().Pods(a.namespace).Delete(
		ctx,
		name,
		metav1.DeleteOptions{
			GracePeriodSeconds: &gracePeriodSeconds,
		},
	)
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete pod: %w", err)
	}

	return nil
}

// ListPodsQuery lists pods matching the label selector.
func (a *Adapter) ListPodsQuery(
	ctx context.Context,
	labelSelector string,
) ([]pool.PodInfo, error) {
	podList, err := a.clientset.CoreV1().Pods(a.namespace).List(
		ctx,
		metav1.ListOptions{
			LabelSelector: labelSelector,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}

	pods := make([]pool.PodInfo, 0, len(podList.Items))
	for i := range podList.Items {
		pods = append(pods, toDomainPodInfo(&podList.Items[i]))
	}

	return pods, nil
}

// PodUsageQuery reads live CPU and memory usage from the metrics API.
func (a *Adapter) PodUsageQuery(
	ctx context.Context,
	name string,
) (*pool.PodUsage, error) {
	podMetrics, err := a.metricsClientset.MetricsV1beta1().PodMetricses(a.namespace).Get(
		ctx,
		name,
		metav1.GetOptions{},
	)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("get pod usage: %w", errPodNotFound)
		}

		return nil, fmt.Errorf("get pod usage: %w", err)
	}

	return toDomainPodUsage(ctx, a.logger, podMetrics), nil
}
