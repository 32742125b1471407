package grpc_control

import (
	"context"
	"errors"
	"net"
	"time"

	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// SessionService is the health service name that tracks the xAPI login.
const SessionService = "xapi.Session"

// HealthService publishes the standard gRPC health protocol. The process
// itself ("") is SERVING while it runs; SessionService is SERVING only while
// the client holds a session.
type HealthService struct {
	server   *health.Server
	client   interfaces.IXapiClient
	interval time.Duration
	Logger   *logger.Logger
}

func NewHealthService(client interfaces.IXapiClient, interval time.Duration, log *logger.Logger) *HealthService {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	h := &HealthService{
		server:   health.NewServer(),
		client:   client,
		interval: interval,
		Logger:   log,
	}
	h.Refresh()
	return h
}

// -----------------------------------------------------------------------------

// Refresh re-reads the session state and reports whether it is SERVING.
func (h *HealthService) Refresh() bool {
	loggedIn := h.client.IsLoggedIn()
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if loggedIn {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.server.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.server.SetServingStatus(SessionService, status)
	return loggedIn
}

// Check answers a health request in-process.
func (h *HealthService) Check(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.server.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

// -----------------------------------------------------------------------------

// Serve registers the health and reflection services on lis and keeps the
// session status fresh until ctx is done.
func (h *HealthService) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, h.server)
	reflection.Register(srv)

	errCh := make(chan error, 1)
	go func() {
		h.Logger.Info("gRPC health listening on %s", lis.Addr())
		errCh <- srv.Serve(lis)
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	last := h.Refresh()

	for {
		select {
		case <-ctx.Done():
			h.server.Shutdown()
			srv.GracefulStop()
			if err := <-errCh; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return err
			}
			return nil
		case err := <-errCh:
			return err
		case <-ticker.C:
			if now := h.Refresh(); now != last {
				h.Logger.Info("Session health changed: logged_in=%v", now)
				last = now
			}
		}
	}
}
