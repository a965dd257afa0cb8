package k8s

import (
	"context"
	"log/slog"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"

	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

const (
	sandboxContainerName = "sandbox"

	mebibyte = int64(1024 * 1024)

	milliPerCore = 1000

	// requestDivisor halves the limits to produce the resource requests.
	requestDivisor = 2
)

// imagePullWaitingReasons are the container waiting reasons that mean the
// image can never be pulled as configured.
var imagePullWaitingReasons = map[string]struct{}{
	"ImagePullBackOff": {},
	"ErrImagePull":     {},
	"InvalidImageName": {},
}

// buildPodSpec produces the sandbox pod: an idle long-lived command under
// hardened security defaults (non-root, no capabilities, no privilege
// escalation, restricted seccomp) that the cluster's pod security validation
// is expected to accept. Requests are half of the configured limits.
func buildPodSpec(namespace string, params pool.CreatePodParams) *corev1.Pod {
	memLimit := params.MemoryMb * mebibyte
	cpuLimitMilli := int64(params.CPUCores * milliPerCore)

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      params.Name,
			Namespace: namespace,
			Labels:    params.Labels,
		},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{
				{
					Name:    sandboxContainerName,
					Image:   params.Image,
					Command: []string{"sleep", "infinity"},
					Resources: corev1.ResourceRequirements{
						Limits: corev1.ResourceList{
							corev1.ResourceMemory: *resource.NewQuantity(memLimit, resource.BinarySI),
							corev1.ResourceCPU:    *resource.NewMilliQuantity(cpuLimitMilli, resource.DecimalSI),
						},
						Requests: corev1.ResourceList{
							corev1.ResourceMemory: *resource.NewQuantity(memLimit/requestDivisor, resource.BinarySI),
							corev1.ResourceCPU:    *resource.NewMilliQuantity(cpuLimitMilli/requestDivisor, resource.DecimalSI),
						},
					},
					SecurityContext: &corev1.SecurityContext{
						RunAsNonRoot:             ptrTo(true),
						AllowPrivilegeEscalation: ptrTo(false),
						Capabilities: &corev1.Capabilities{
							Drop: []corev1.Capability{"ALL"},
						},
						SeccompProfile: &corev1.SeccompProfile{
							Type: corev1.SeccompProfileTypeRuntimeDefault,
						},
					},
				},
			},
		},
	}
}

func toDomainPodStatus(pod *corev1.Pod) *pool.PodStatus {
	ready := len(pod.Status.ContainerStatuses) > 0
	imagePullBackoff := false

	for i := range pod.Status.ContainerStatuses {
		cs := &pod.Status.ContainerStatuses[i]

		if !cs.Ready {
			ready = false
		}

		if cs.State.Waiting != nil {
			if _, bad := imagePullWaitingReasons[cs.State.Waiting.Reason]; bad {
				imagePullBackoff = true
			}
		}
	}

	return &pool.PodStatus{
		Phase:            pool.PodPhase(pod.Status.Phase),
		Ready:            ready,
		ImagePullBackoff: imagePullBackoff,
	}
}

func toDomainPodInfo(pod *corev1.Pod) pool.PodInfo {
	image := ""
	if len(pod.Spec.Containers) > 0 {
		image = pod.Spec.Containers[0].Image
	}

	return pool.PodInfo{
		Name:      pod.Name,
		UID:       string(pod.UID),
		Labels:    pod.Labels,
		Image:     image,
		CreatedAt: pod.CreationTimestamp.Time,
	}
}

func toDomainPodUsage(
	ctx context.Context,
	logger *slog.Logger,
	podMetrics *metricsv1beta1.PodMetrics,
) *pool.PodUsage {
	cpuUsage := resource.NewMilliQuantity(0, resource.DecimalSI)
	memoryUsage := resource.NewQuantity(0, resource.BinarySI)

	for i := range podMetrics.Containers {
		container := &podMetrics.Containers[i]

		if cpu := container.Usage.Cpu(); cpu != nil {
			cpuUsage.Add(*cpu)
		}

		if memory := container.Usage.Memory(); memory != nil {
			memoryUsage.Add(*memory)
		} else {
			logger.WarnContext(ctx, "container memory usage is nil, skipping",
				"pod", podMetrics.Name,
				"container", container.Name,
			)
		}
	}

	return &pool.PodUsage{
		CPUUsage:    cpuUsage,
		MemoryUsage: memoryUsage,
	}
}

func ptrTo[T any](v T) *T {
	return &v
}
