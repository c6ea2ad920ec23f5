package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/tarefa360/tarefa360/api"
	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/activity"
	activityRepository "github.com/tarefa360/tarefa360/internal/activity/postgres"
	"github.com/tarefa360/tarefa360/internal/association"
	associationRepository "github.com/tarefa360/tarefa360/internal/association/postgres"
	"github.com/tarefa360/tarefa360/internal/auth"
	"github.com/tarefa360/tarefa360/internal/core/events"
	"github.com/tarefa360/tarefa360/internal/dashboard"
	"github.com/tarefa360/tarefa360/internal/notify"
	"github.com/tarefa360/tarefa360/internal/period"
	periodRepository "github.com/tarefa360/tarefa360/internal/period/postgres"
	"github.com/tarefa360/tarefa360/internal/transport"
	"github.com/tarefa360/tarefa360/internal/transport/middleware"
	"github.com/tarefa360/tarefa360/internal/transport/rest"
	"github.com/tarefa360/tarefa360/internal/user"
	userRepository "github.com/tarefa360/tarefa360/internal/user/postgres"
)

var httpServerCmd = &cobra.Command{
	Use:   "http",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer(cmd.Context())
	},
}

type Dependencies struct {
	Config   *internal.Config
	Store    *Store
	Bus      *events.EventBus
	Router   *chi.Mux
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(ctx, deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "driver", deps.Store.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed to start", "error", err)
			_ = deps.Store.Close()
			os.Exit(1)
		}
	}

	// let in-flight notifications drain before the pool goes away
	deps.Bus.Wait()
	if err := deps.Store.Close(); err != nil {
		deps.Logger.Error("Database close error", "error", err)
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(ctx context.Context, deps *Dependencies) error {
	base := transport.NewBaseHandler(deps.Logger)
	validator, err := middleware.NewRequestValidator(ctx, api.Spec, rest.APIPrefix, base)
	if err != nil {
		return fmt.Errorf("failed to load openapi document: %w", err)
	}

	sqlDB := deps.Store.SQLX.DB
	rest.RegisterAllRoutes(deps.Router, deps.Handlers, rest.Options{
		DB:             sqlDB,
		Driver:         deps.Store.Driver,
		Spec:           api.Spec,
		Validator:      validator,
		AllowedOrigins: deps.Config.Server.Origins(),
		RequestTimeout: deps.Config.Server.RequestTimeout,
		AvatarDir:      deps.Config.Storage.AvatarDir,
	}, deps.Logger)
	return nil
}

// newEventBus builds the bus every service publishes to, with notification logging and
// the debug audit trail attached.
func newEventBus(lg *slog.Logger) *events.EventBus {
	bus := events.NewEventBus(lg)
	bus.Subscribe(events.EventTypeNotification, notify.LogSubscriber(lg))
	bus.Subscribe(events.AllEvents, notify.AuditSubscriber(lg))
	return bus
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := setupLogger(config)

	store, err := openStore(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := newEventBus(lg)
	notifier := notify.NewBusNotifier(bus, lg)
	base := transport.NewBaseHandler(lg)

	associationService := association.NewService(
		associationRepository.NewAssociationRepository(store.Gorm), notifier, bus, lg.With("module", "association"))

	fallback := config.Security.FallbackAdmin
	var fallbackAdmin *user.User
	if fallback.PasswordHash != "" {
		fallbackAdmin = user.FallbackAdmin(fallback.CPF, fallback.Name, fallback.NomeDeGuerra, fallback.Email, fallback.PasswordHash)
	} else {
		lg.Warn("no fallback admin password hash configured; logins fail while the store is unreachable")
	}

	userService := user.NewService(
		userRepository.NewUserRepository(store.Gorm),
		associationService,
		notifier,
		bus,
		user.Options{BCryptCost: config.Security.BCryptCost, FallbackAdmin: fallbackAdmin},
		lg.With("module", "user"),
	)

	activityService := activity.NewService(
		activityRepository.NewActivityRepository(store.Gorm), userService, notifier, bus, lg.With("module", "activity"))

	periodService := period.NewService(
		periodRepository.NewPeriodRepository(store.Gorm), notifier, bus, lg.With("module", "period"))

	authService := auth.NewService(
		userService,
		auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.AccessTokenDuration),
		lg.With("module", "auth"),
	)

	dashboardService := dashboard.NewService(dashboard.NewRepository(store.SQLX), lg.With("module", "dashboard"))

	avatars := user.NewAvatarStore(config.Storage.AvatarDir, config.Storage.AvatarSize)
	if err := os.MkdirAll(config.Storage.AvatarDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare avatar directory: %w", err)
	}

	return &Dependencies{
		Config: config,
		Store:  store,
		Bus:    bus,
		Router: chi.NewRouter(),
		Handlers: rest.Handlers{
			Auth:        auth.NewHandler(base, authService),
			User:        user.NewHandler(base, userService, avatars, config.Storage.MaxUpload),
			Association: association.NewHandler(base, associationService),
			Activity:    activity.NewHandler(base, activityService),
			Period:      period.NewHandler(base, periodService),
			Dashboard:   dashboard.NewHandler(base, dashboardService),
		},
		Logger: lg,
	}, nil
}
