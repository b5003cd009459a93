package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"personafeed/internal/config"
	"personafeed/internal/logger"
	"personafeed/internal/server"
	"personafeed/internal/wire"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "personafeed.ContentService"

func main() {
	// Step 1: configuration and logging
	cfg := config.LoadConfig()
	lg, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer lg.Sync()
	ctx := context.Background()

	if cfg.Auth.JWTSecret == "" {
		lg.Error(ctx, "JWT_SECRET is required")
		os.Exit(1)
	}

	// Step 2: dependencies
	app, cleanup, err := wire.InitializeApplication(cfg, lg)
	if err != nil {
		lg.Error(ctx, "failed to initialize application", logger.Err(err))
		os.Exit(1)
	}
	defer cleanup()

	checks := map[string]server.Checker{
		"mysql": func(ctx context.Context) error {
			sqlDB, err := app.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if app.Mongo != nil {
		checks["mongodb"] = func(ctx context.Context) error {
			return app.Mongo.Client.Ping(ctx, nil)
		}
	}

	// Step 3: HTTP API
	handler := server.NewHTTPServer(app.Log, app.Metrics, app.JWT, checks, app.Feed, app.Content, app.Persona)
	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Step 4: gRPC health for the orchestrator
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(loggingUnaryInterceptor(lg)))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", ":"+cfg.Server.HealthPort)
	if err != nil {
		lg.Error(ctx, "failed to listen for grpc health", logger.F("port", cfg.Server.HealthPort), logger.Err(err))
		os.Exit(1)
	}

	go func() {
		lg.Info(ctx, "grpc health running", logger.F("port", cfg.Server.HealthPort))
		if err := grpcServer.Serve(lis); err != nil {
			lg.Error(ctx, "grpc serve failed", logger.Err(err))
		}
	}()
	go func() {
		lg.Info(ctx, "content service running", logger.F("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error(ctx, "http serve failed", logger.Err(err))
			os.Exit(1)
		}
	}()
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	// Step 5: wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info(ctx, "shutting down content service")
	healthSrv.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		lg.Warn(ctx, "http shutdown", logger.Err(err))
	}
	grpcServer.GracefulStop()
	lg.Info(ctx, "content service stopped")
}

func loggingUnaryInterceptor(lg logger.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		fields := []logger.Field{
			logger.F("method", info.FullMethod),
			logger.F("duration", time.Since(start).String()),
		}
		if err != nil {
			lg.Warn(ctx, "grpc call failed", append(fields, logger.Err(err))...)
		} else {
			lg.Debug(ctx, "grpc call", fields...)
		}
		return resp, err
	}
}
