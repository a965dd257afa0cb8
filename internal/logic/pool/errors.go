package pool

import "errors"

var (
	// ErrInvalidConfig is returned at construction time when a pool config
	// invariant is violated. It is fatal: the service is never created with
	// a clamped or partially accepted config.
	ErrInvalidConfig = errors.New("invalid pool config")

	// ErrPodCreationFailed is returned when the cluster rejects a pod submission.
	ErrPodCreationFailed = errors.New("pod creation failed")

	// ErrPodNotRunning is returned when a pod reaches a terminal phase
	// (Failed or Succeeded) while waiting for readiness.
	ErrPodNotRunning = errors.New("pod not running")

	// ErrImagePullBackoff is returned when a container cannot pull its image.
	// This is a configuration bug, not a transient failure.
	ErrImagePullBackoff = errors.New("image pull backoff")

	// ErrPodNotFound is returned when a pod disappears mid-wait, meaning a
	// concurrent deletion raced the readiness wait.
	ErrPodNotFound = errors.New("pod not found")

	// ErrPodStartupTimeout is returned when the readiness deadline elapses
	// with the pod still not running. The deadline is a hard cutoff.
	ErrPodStartupTimeout = errors.New("pod startup timeout")

	// ErrDiscoveryFailed is returned from Start when existing pool pods cannot
	// be listed. It propagates: starting with an empty view would silently
	// orphan live cluster resources.
	ErrDiscoveryFailed = errors.New("warm pool discovery failed")
)
