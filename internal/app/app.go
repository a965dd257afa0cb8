package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/sandboxlabs/warmpool-controller/internal/adapters/outbound/audit"
	"github.com/sandboxlabs/warmpool-controller/internal/adapters/outbound/k8s"
	"github.com/sandboxlabs/warmpool-controller/internal/config"
	"github.com/sandboxlabs/warmpool-controller/internal/httpserver"
	"github.com/sandboxlabs/warmpool-controller/internal/infra/cronparser"
	"github.com/sandboxlabs/warmpool-controller/internal/infra/pinger"
	"github.com/sandboxlabs/warmpool-controller/internal/infra/shutdown"
	"github.com/sandboxlabs/warmpool-controller/internal/logic/pool"
)

// App holds the wired application components.
type App struct {
	logger   *slog.Logger
	appState appstater

	pingers       *pinger.Service
	pool          *pool.Service
	scheduler     *pool.PrewarmScheduler
	httpServer    appServer
	metricsServer appServer
}

// New creates a new application instance with all dependencies wired.
func New(logger *slog.Logger, cfg *config.Config, appState appstater, pingers *pinger.Service) (*App, error) {
	kubeConfig, err := clientcmd.BuildConfigFromFlags(
		cfg.KubeMaster,
		cfg.KubeConfig,
	)
	if err != nil {
		return nil, fmt.Errorf("build k8s config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create clientset: %w", err)
	}

	metricsClientset, err := metricsv.NewForConfig(kubeConfig)
	if err != nil {
		return nil, fmt.Errorf("create metrics clientset: %w", err)
	}

	// Secondary adapter (K8s adapter)
	k8sRepo := k8s.New(logger, clientset, metricsClientset, cfg.Namespace)

	var auditSink pool.AuditSink = audit.NewSlogSink(logger)
	if cfg.AuditWebhookURL != "" {
		auditSink = audit.NewWebhookSink(logger, cfg.AuditWebhookURL)
	}

	// Logic service (inject repository adapter)
	poolService, err := pool.New(logger, k8sRepo, auditSink, cfg.PoolConfig())
	if err != nil {
		return nil, fmt.Errorf("create pool service: %w", err)
	}

	var scheduler *pool.PrewarmScheduler

	if cfg.PrewarmSchedule != "" {
		cron := cronparser.New()

		if err := cron.Validate(cfg.PrewarmSchedule, cfg.PrewarmScheduleTZ); err != nil {
			return nil, fmt.Errorf("validate prewarm schedule: %w", err)
		}

		scheduler = pool.NewPrewarmScheduler(
			logger,
			poolService,
			cron,
			cfg.PrewarmSchedule,
			cfg.PrewarmScheduleTZ,
			cfg.PrewarmCount,
		)
	}

	httpServer := httpserver.New(logger, appState, poolService, k8sRepo, cfg.HTTPPort)
	metricsServer := httpserver.NewMetricsServer(logger, cfg.MetricsPort)

	return &App{
		logger:        logger,
		appState:      appState,
		pingers:       pingers,
		pool:          poolService,
		scheduler:     scheduler,
		httpServer:    httpServer,
		metricsServer: metricsServer,
	}, nil
}

// Run starts all components and blocks until a termination signal arrives,
// then shuts everything down in reverse start order.
func (a *App) Run(originCtx context.Context) error {
	ctx, cancel := context.WithCancel(originCtx)
	defer cancel()

	if err := a.appState.SetStarting(ctx); err != nil {
		return fmt.Errorf("set starting application state: %w", err)
	}

	signalHandler := shutdown.New(a.logger, a.appState)
	go signalHandler.HandleSignals(ctx, cancel)

	if err := a.start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-allChannelsClose(ctx, a.logger, a.readyChannels()...):
		if err := a.appState.SetRunning(ctx); err != nil {
			return fmt.Errorf("set running application state: %w", err)
		}

		a.logger.InfoContext(ctx, "application is running")

		<-ctx.Done()
	}

	a.logger.InfoContext(ctx, "application context done, shutting down")

	if err := a.appState.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown application: %w", err)
	}

	return nil
}

// start brings components up in dependency order and registers them for
// shutdown in the same order. GracefulShutdown walks the list in reverse, so
// the HTTP surface stops taking traffic before the pool is drained.
func (a *App) start(ctx context.Context) error {
	if err := a.pingers.Start(ctx); err != nil {
		return fmt.Errorf("start pingers: %w", err)
	}

	if err := a.appState.RegisterShutdowner(a.pingers); err != nil {
		return fmt.Errorf("register pingers shutdowner: %w", err)
	}

	if err := a.metricsServer.Start(ctx); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	if err := a.appState.RegisterShutdowner(a.metricsServer); err != nil {
		return fmt.Errorf("register metrics server shutdowner: %w", err)
	}

	// Discovery runs synchronously inside Start. A pool that cannot see the
	// cluster must not come up.
	if err := a.pool.Start(ctx); err != nil {
		return fmt.Errorf("start warm pool: %w", err)
	}

	if err := a.appState.RegisterShutdowner(a.pool); err != nil {
		return fmt.Errorf("register pool shutdowner: %w", err)
	}

	if a.scheduler != nil {
		if err := a.scheduler.Start(ctx); err != nil {
			return fmt.Errorf("start prewarm scheduler: %w", err)
		}

		if err := a.appState.RegisterShutdowner(a.scheduler); err != nil {
			return fmt.Errorf("register scheduler shutdowner: %w", err)
		}
	}

	if err := a.httpServer.Start(ctx); err != nil {
		return fmt.Errorf("start http server: %w", err)
	}

	if err := a.appState.RegisterShutdowner(a.httpServer); err != nil {
		return fmt.Errorf("register http server shutdowner: %w", err)
	}

	for _, p := range []pinger.Pinger{a.pool, a.httpServer, a.metricsServer} {
		if err := a.appState.RegisterPinger(p); err != nil {
			return fmt.Errorf("register pinger %s: %w", p.Name(), err)
		}
	}

	return nil
}

func (a *App) readyChannels() []<-chan struct{} {
	return []<-chan struct{}{
		a.pingers.Ready(),
		a.metricsServer.Ready(),
		a.pool.Ready(),
		a.httpServer.Ready(),
	}
}

// allChannelsClose returns a channel that closes once every input channel has
// closed or the context is cancelled.
func allChannelsClose(ctx context.Context, logger *slog.Logger, chans ...<-chan struct{}) <-chan struct{} {
	out := make(chan struct{})

	var wg sync.WaitGroup

	for _, ch := range chans {
		wg.Add(1)

		go func() {
			defer wg.Done()

			select {
			case <-ctx.Done():
				logger.DebugContext(ctx, "context done while waiting for readiness")
			case <-ch:
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
