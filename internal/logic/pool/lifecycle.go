package pool

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// lifecycleManager creates sandbox pods and shepherds them to readiness.
type lifecycleManager struct {
	logger *slog.Logger
	repo   Repository
	cfg    Config
}

func newLifecycleManager(logger *slog.Logger, repo Repository, cfg Config) *lifecycleManager {
	return &lifecycleManager{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
	}
}

// generatePodName returns a fresh pool-unique pod name. Names are generated
// rather than negotiated with the apiserver, so creations never collide.
func (m *lifecycleManager) generatePodName() string {
	return podNamePrefix + uuid.NewString()[:podNameSuffixLen]
}

func (m *lifecycleManager) warmLabels() map[string]string {
	return map[string]string{
		LabelSandbox:    LabelTrue,
		LabelPoolMember: LabelTrue,
		LabelState:      StateLabelWarm,
		LabelPoolID:     m.cfg.PoolID,
	}
}

// createWarmPod submits a new sandbox pod and waits until it is running and
// ready. On a startup failure after submission the pod is deleted best-effort
// so a broken pod is never left behind; it is never handed to the pool.
func (m *lifecycleManager) createWarmPod(ctx context.Context) (warmPod, error) {
	name := m.generatePodName()
	createdAt := time.Now()

	uid, err := m.repo.CreatePodCommand(ctx, CreatePodParams{
		Name:     name,
		Image:    m.cfg.DefaultImage,
		MemoryMb: m.cfg.DefaultMemoryMb,
		CPUCores: m.cfg.DefaultCPUCores,
		Labels:   m.warmLabels(),
	})
	if err != nil {
		return warmPod{}, fmt.Errorf("%w: %s: %w", ErrPodCreationFailed, name, err)
	}

	if err := m.waitForRunning(ctx, name, m.cfg.StartupTimeout); err != nil {
		if deleteErr := m.deletePod(ctx, name); deleteErr != nil {
			m.logger.ErrorContext(ctx, "failed to clean up pod after startup failure",
				"pod", name,
				"reason", deleteErr,
			)
		}

		return warmPod{}, err
	}

	return warmPod{
		name:      name,
		uid:       uid,
		image:     m.cfg.DefaultImage,
		createdAt: createdAt,
		warmAt:    time.Now(),
	}, nil
}

// waitForRunning polls the pod at a fixed interval until it is running with
// all containers ready, or classifies the failure. The timeout is a hard
// cutoff, never a silent continuation.
func (m *lifecycleManager) waitForRunning(ctx context.Context, name string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		status, err := m.repo.GetPodStatusQuery(ctx, name)

		switch {
		case err != nil && isNotFound(err):
			// A concurrent deletion raced the wait.
			return fmt.Errorf("wait for pod %s: %w", name, ErrPodNotFound)
		case err != nil:
			// Transient read error: keep polling until the deadline decides.
			m.logger.WarnContext(ctx, "pod status read failed, retrying",
				"pod", name,
				"reason", err,
			)
		case status.ImagePullBackoff:
			return fmt.Errorf("wait for pod %s: %w", name, ErrImagePullBackoff)
		case status.Phase == PodPhaseFailed || status.Phase == PodPhaseSucceeded:
			return fmt.Errorf("wait for pod %s: terminal phase %s: %w", name, status.Phase, ErrPodNotRunning)
		case status.Phase == PodPhaseRunning && status.Ready:
			return nil
		}

		if !time.Now().Before(deadline) {
			return fmt.Errorf("wait for pod %s: %s elapsed: %w", name, timeout, ErrPodStartupTimeout)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for pod %s: %w", name, ctx.Err())
		case <-time.After(readinessPollInterval):
		}
	}
}

// deletePod deletes a pod. Deleting a pod that is already gone is success.
func (m *lifecycleManager) deletePod(ctx context.Context, name string) error {
	err := m.repo.DeletePodCommand(ctx, name, deleteGracePeriodSeconds)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete pod %s: %w", name, err)
	}

	return nil
}
