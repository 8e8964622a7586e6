package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Duffman2k/duffvouchbot/internal/bot"
	"github.com/Duffman2k/duffvouchbot/internal/controllers"
	"github.com/Duffman2k/duffvouchbot/internal/providers"
	"github.com/Duffman2k/duffvouchbot/internal/scheduler/interfaces"
	"github.com/Duffman2k/duffvouchbot/internal/storage"
	"github.com/Duffman2k/duffvouchbot/internal/structures"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Runner is a long-lived component with an explicit start and stop.
type Runner interface {
	Start() error
	Close() error
}

type App struct {
	WebServer *http.Server
	conf      *structures.Config
	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
	bot       Runner
	store     storage.RecordStore
}

func newMux(conf *structures.Config, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface, healthController *controllers.HealthController) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	for _, route := range router.GetRoutes() {
		mux.Handle(route.Url, providers.MetricsMiddleware(metrics, route.Url, route.Handler))
	}
	return mux
}

func NewApp(conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface, healthController *controllers.HealthController, scheduler interfaces.SchedulerInterface, discord *bot.Bot, store storage.RecordStore) *App {
	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      newMux(conf, router, metrics, healthController),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		conf:      conf,
		logger:    logger,
		scheduler: scheduler,
		bot:       discord,
		store:     store,
	}
}

// Run blocks until ctx is cancelled or a component fails, then shuts
// everything down and writes the final snapshot.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof(providers.TypeApp, "Starting %s", a.conf.AppName)
	if err := a.scheduler.Restore(); err != nil {
		a.logger.Errorf(providers.TypeApp, "Restore error: %s", err)
	}

	if err := a.bot.Start(); err != nil {
		return fmt.Errorf("start bot: %w", err)
	}
	a.scheduler.Init()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", a.WebServer.Addr)
		if err := a.WebServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Infof(providers.TypeApp, "Shutdown signal received")
		return a.shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

func (a *App) shutdown() error {
	a.scheduler.Stop()

	var errs []error
	if err := a.bot.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bot: %w", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.WebServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := a.scheduler.Persist(); err != nil {
		errs = append(errs, err)
	}
	if err := a.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	return errors.Join(errs...)
}
