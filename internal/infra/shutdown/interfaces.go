package shutdown

import (
	"context"
	"os"
)

// Shutdowner is implemented by every long-lived component that must be
// stopped during graceful shutdown.
type Shutdowner interface {
	Name() string
	Shutdown(ctx context.Context) error
}

type quiter interface {
	Quit() <-chan os.Signal
}
