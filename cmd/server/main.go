package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/rl1809/shop/internal/adapter/handler"
	"github.com/rl1809/shop/internal/app"
	"github.com/rl1809/shop/internal/config"
	"github.com/rl1809/shop/internal/logging"
)

func main() {
	configPath := flag.String("c", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.Init(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application := app.NewApplication(cfg)
	if err := application.Init(ctx); err != nil {
		zap.S().Fatalf("failed to init application: %v", err)
	}
	defer application.Release()

	// Initialize gRPC server
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		handler.LoggingInterceptor(),
		handler.AuthInterceptor(application.Auth),
	))
	handler.RegisterOrderServiceServer(grpcServer,
		handler.NewGRPCHandler(application.Orders, application.Lifecycle))

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		zap.S().Fatalf("failed to listen: %v", err)
	}

	go func() {
		zap.S().Infof("gRPC server listening on %s", cfg.Server.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			zap.S().Errorf("gRPC server error: %v", err)
		}
	}()

	// Initialize HTTP server
	httpHandler := handler.NewHTTPHandler(application.Products, application.Orders,
		application.Lifecycle, application.Auth)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: handler.NewRouter(httpHandler),
	}

	go func() {
		zap.S().Infof("HTTP server listening on %s", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			zap.S().Errorf("HTTP server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.S().Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zap.S().Errorf("HTTP shutdown error: %v", err)
	}
	zap.S().Info("HTTP server stopped")

	grpcServer.GracefulStop()
	zap.S().Info("gRPC server stopped")
}
