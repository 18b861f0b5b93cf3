package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the chat backend.
// The empty name reports the overall server status.
const ServiceName = "chat-live"

// OpsServer exposes the standard gRPC health service on its own port so
// orchestrators can probe the process without touching the HTTP API.
type OpsServer struct {
	log    *slog.Logger
	server *grpc.Server
	health *health.Server
}

func NewOpsServer(log *slog.Logger) *OpsServer {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(log)))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)
	h.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &OpsServer{log: log, server: s, health: h}
}

// Health is the status setter used by the health probe worker.
func (o *OpsServer) Health() *health.Server {
	return o.health
}

// Serve blocks until the listener fails or Stop is called.
func (o *OpsServer) Serve(listener net.Listener) error {
	o.log.Info("Starting gRPC ops server", "address", listener.Addr().String(), "at", time.Now().UTC())
	for serviceName := range o.server.GetServiceInfo() {
		o.log.Debug("gRPC exposed services", "name", serviceName)
	}
	if err := o.server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC server error: %w", err)
	}
	return nil
}

// Stop flips every service to NOT_SERVING then drains in-flight calls.
func (o *OpsServer) Stop(ctx context.Context) {
	o.health.Shutdown()
	stopped := make(chan struct{})
	go func() {
		o.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		o.server.Stop()
	}
}
