package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	adminv1alpha1 "github.com/KirkDiggler/room-server/internal/handlers/admin/v1alpha1"
	"github.com/KirkDiggler/room-server/internal/orchestrators/rooms"
	"github.com/KirkDiggler/room-server/internal/pkg/clock"
	"github.com/KirkDiggler/room-server/internal/pkg/idgen"
	"github.com/KirkDiggler/room-server/internal/repositories/items"
	"github.com/KirkDiggler/room-server/internal/repositories/templates"
	"github.com/KirkDiggler/room-server/internal/transport/websocket"
)

var (
	grpcPort      int
	wsAddr        string
	templatesPath string
	logLevel      string
	pingInterval  time.Duration
	tickInterval  time.Duration
	castInterval  time.Duration
	writeQueue    int
	writeTimeout  time.Duration
	shutdownGrace time.Duration
	trustUserID   bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the room server",
	Long: `Start the room server: the websocket gateway for clients and the admin
gRPC service. A flag not given on the command line is read from its
environment variable: --ws-addr from ROOMSERVER_WS_ADDR, and so on. The
gRPC port also answers to ROOMSERVER_GRPC_PORT.`,
	PreRunE: func(cmd *cobra.Command, _ []string) error {
		return bindEnv(cmd)
	},
	RunE: runServer,
}

func init() {
	f := serverCmd.Flags()
	f.IntVar(&grpcPort, "port", 50051, "admin gRPC port")
	f.StringVar(&wsAddr, "ws-addr", ":8080", "websocket listen address")
	f.StringVar(&templatesPath, "templates", "configs/templates.json", "furniture template catalogue")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	f.DurationVar(&pingInterval, "ping-interval", websocket.DefaultPingInterval, "client ping sweep interval")
	f.DurationVar(&tickInterval, "tick", 0, "room tick interval (0 uses the engine default)")
	f.DurationVar(&castInterval, "cast-interval", 0, "special cast interval (0 uses the engine default)")
	f.IntVar(&writeQueue, "write-queue", items.DefaultQueueSize, "item write-behind queue size")
	f.DurationVar(&writeTimeout, "write-timeout", 5*time.Second, "timeout of one queued item write")
	f.DurationVar(&shutdownGrace, "shutdown-grace", 30*time.Second, "graceful shutdown budget")
	f.BoolVar(&trustUserID, "trust-user-param", false, "take client user ids from the ?user= parameter; only behind an authenticating proxy")
	addStoreFlags(serverCmd)
}

func runServer(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, gracefully stopping...")
		cancel()
	}()

	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	store, err := openStores(ctx)
	if err != nil {
		return err
	}
	defer store.close()

	itemRepo, err := items.NewWriteBehind(&items.WriteBehindConfig{
		Repository:   store.items,
		QueueSize:    writeQueue,
		WriteTimeout: writeTimeout,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create item write-behind: %w", err)
	}

	catalogue, err := templates.LoadFile(templatesPath)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	log.Printf("Loaded %d furniture templates from %s", len(catalogue), templatesPath)

	bus := events.NewBus()
	clk := clock.New()

	var identify func(*http.Request) (int, error)
	if trustUserID {
		identify = websocket.QueryIdentity
	} else {
		logger.Warn("client identity is not configured; every client joins as a guest")
	}

	gateway, err := websocket.NewGateway(&websocket.Config{
		EventBus:     bus,
		Clock:        clk,
		IDGenerator:  idgen.NewUUID("session"),
		PingInterval: pingInterval,
		Identify:     identify,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create websocket gateway: %w", err)
	}

	manager, err := rooms.NewOrchestrator(&rooms.Config{
		RoomRepo:            store.rooms,
		ItemRepo:            itemRepo,
		Templates:           catalogue,
		Transport:           gateway,
		EventBus:            bus,
		Wallets:             store.wallets,
		Clock:               clk,
		Roller:              dice.DefaultRoller,
		TickInterval:        tickInterval,
		SpecialCastInterval: castInterval,
		Logger:              logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create room manager: %w", err)
	}

	adminHandler, err := adminv1alpha1.NewHandler(&adminv1alpha1.HandlerConfig{RoomService: manager})
	if err != nil {
		return fmt.Errorf("failed to create admin handler: %w", err)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", grpcPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	grpcLogger := grpcLogFunc(logger)
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(grpcLogger),
			grpc_recovery.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(grpcLogger),
			grpc_recovery.StreamServerInterceptor(),
		),
	)
	adminv1alpha1.RegisterAdminServiceServer(srv, adminHandler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(adminv1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	mux := http.NewServeMux()
	mux.Handle("/ws", gateway.Handler(manager))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	httpSrv := &http.Server{
		Addr:              wsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go gateway.Run(ctx)

	errChan := make(chan error, 2)
	go func() {
		log.Printf("gRPC admin server starting on port %d...", grpcPort)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve grpc: %w", err)
		}
	}()
	go func() {
		log.Printf("Websocket gateway starting on %s...", wsAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("failed to serve websocket: %w", err)
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errChan:
		cancel()
	}

	log.Println("Shutting down room server...")
	healthServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()

	// clients first, so rooms empty out before they are stopped
	gateway.Close()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Websocket shutdown: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()
	select {
	case <-shutdownCtx.Done():
		log.Println("Graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
	}

	if err := manager.Shutdown(shutdownCtx); err != nil {
		log.Printf("Room manager shutdown: %v", err)
	}
	if err := itemRepo.Close(shutdownCtx); err != nil {
		log.Printf("Item writes lost on shutdown: %v", err)
	}

	log.Println("Server stopped")
	return serveErr
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// grpcLogFunc adapts slog to the middleware logger. The middleware levels
// share slog's numbering.
func grpcLogFunc(logger *slog.Logger) grpc_logging.Logger {
	return grpc_logging.LoggerFunc(func(ctx context.Context, level grpc_logging.Level, msg string, fields ...any) {
		logger.Log(ctx, slog.Level(level), msg, fields...)
	})
}
