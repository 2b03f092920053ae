package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/trio/internal/adapters/http/api"
	app "github.com/okian/trio/internal/app"
	"github.com/okian/trio/internal/config"
	"github.com/okian/trio/pkg/logger"
	"github.com/okian/trio/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// SIGINT/SIGTERM end the game early; the table is cleared and the
	// winners are announced as for an exhausted deck.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, stop); err != nil {
		logger.Get().Error(ctx, "trio exited", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

// run plays one game and serves the API until the game is over or ctx is
// cancelled.
func run(ctx context.Context, stop context.CancelFunc) error {
	log := logger.Get()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	metrics.GetRegistry().MustRegister(collectors.NewBuildInfoCollector())
	go startSystemMetricsUpdater(ctx)

	srv := newHTTPServer(ctx, cfg.Addr, svc)
	go func() {
		log.Info(ctx, "serving game API", logger.String("addr", cfg.Addr), logger.String("game_id", svc.GameID()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	if winners, err := svc.Wait(ctx); err == nil {
		log.Info(ctx, "game over", logger.Ints("winners", winners))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}

func newHTTPServer(ctx context.Context, addr string, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(ctx, mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// newService maps the configuration onto service options.
func newService(cfg *config.Config, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l),
		app.WithPlayers(cfg.HumanPlayers, cfg.ComputerPlayers),
		app.WithTableSize(cfg.TableSize),
		app.WithFeatures(cfg.FeatureCount, cfg.FeatureSize),
		app.WithDeckSize(cfg.DeckSize),
		app.WithTurnTimeout(cfg.TurnTimeout(), cfg.TurnTimeoutWarning()),
		app.WithFreezes(cfg.PointFreeze(), cfg.PenaltyFreeze()),
		app.WithTableDelay(cfg.TableDelay()),
		app.WithTick(cfg.Tick()),
		app.WithComputerDelay(cfg.ComputerDelay()),
		app.WithHints(cfg.Hints),
	)
}

// startSystemMetricsUpdater samples the runtime until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
