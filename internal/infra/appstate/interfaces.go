package appstate

import (
	"context"

	"github.com/sandboxlabs/warmpool-controller/internal/infra/pinger"
	"github.com/sandboxlabs/warmpool-controller/internal/infra/shutdown"
)

// pingerServer is an internal interface for pinger management
type pingerServer interface {
	Start(ctx context.Context) error
	Ready() <-chan struct{}
	shutdown.Shutdowner
	Register(pinger pinger.Pinger) error
	GetAllStats() map[string]*pinger.Statistics
}
