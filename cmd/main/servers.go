package main

import (
	"context"
	"fmt"
	"net"

	"xapi-connector/src/config"
	"xapi-connector/src/grpc_control"
	"xapi-connector/src/interfaces"
	"xapi-connector/src/logger"

	"golang.org/x/sync/errgroup"
)

// -----------------------------------------------------------------------------

// startServers runs the HTTP gateway and the gRPC health endpoint in g. Both
// stop when ctx is done; either failing cancels the group.
func startServers(
	ctx context.Context,
	g *errgroup.Group,
	srv interfaces.IDataExchanger,
	health *grpc_control.HealthService,
	config *config.Config,
	appLogger *logger.Logger,
) {
	// 1. HTTP gateway
	g.Go(func() error {
		if err := srv.Start(); err != nil {
			return fmt.Errorf("gateway server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return srv.Stop()
	})

	// 2. gRPC health
	port := config.GrpcPort
	if port == 0 {
		port = 50051
	}
	addr := fmt.Sprintf("%s:%d", config.GrpcHost, port)
	g.Go(func() error {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("failed to listen for gRPC on %s: %w", addr, err)
		}
		appLogger.Info("Starting gRPC health server on %s", addr)
		return health.Serve(ctx, lis)
	})
}
