package main

import (
	"context"
	"time"

	"xapi-connector/src/helpers"
	"xapi-connector/src/logger"
	"xapi-connector/src/metrics"
	"xapi-connector/src/models"
	"xapi-connector/src/xapi"
)

const (
	retryBaseDelay = 2 * time.Second
	logoutTimeout  = 5 * time.Second
)

// -----------------------------------------------------------------------------

// connectAndLogin (re)opens the connection when it is gone and logs in,
// with backoff. A rejected login is not retried.
func connectAndLogin(ctx context.Context, client *xapi.Client, config *models.MConfig, appLogger *logger.Logger) error {
	x := config.Xapi
	return helpers.RetryWithBackoff(ctx, appLogger, "xAPI login", x.MaxRetries, retryBaseDelay, func(ctx context.Context) error {
		if !client.IsConnected() {
			client.Session().Clear()
			if err := client.Connect(ctx); err != nil {
				return err
			}
			appLogger.Info("Connected to %s", client.Address())
		}
		_, err := client.Login(ctx, x.User, x.Password, x.AppName)
		return err
	})
}

// -----------------------------------------------------------------------------

// keepSessionAlive pings the command connection; xAPI drops idle sessions.
// A lost session is reopened on the next tick.
func keepSessionAlive(ctx context.Context, client *xapi.Client, config *models.MConfig, m *metrics.CommandMetrics, appLogger *logger.Logger) {
	ticker := time.NewTicker(time.Duration(config.Xapi.KeepAliveSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if client.IsLoggedIn() {
			_, err := client.Ping(ctx)
			if err == nil {
				m.SetLoggedIn(true)
				continue
			}
			if ctx.Err() != nil {
				return
			}
			appLogger.Warning("Keep-alive ping failed (%s): %v", helpers.ErrorKind(err), err)
		}

		m.SetLoggedIn(false)
		if err := connectAndLogin(ctx, client, config, appLogger); err != nil {
			if ctx.Err() != nil {
				return
			}
			appLogger.Error("Session recovery failed: %v", err)
			continue
		}
		appLogger.Info("Session recovered")
		m.SetLoggedIn(true)
	}
}

// -----------------------------------------------------------------------------

// closeSession logs out and closes; runs after the main context is gone.
func closeSession(client *xapi.Client, m *metrics.CommandMetrics, appLogger *logger.Logger) {
	m.SetLoggedIn(false)
	if !client.IsConnected() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), logoutTimeout)
	defer cancel()
	if client.IsLoggedIn() {
		if _, err := client.Logout(ctx); err != nil {
			appLogger.Warning("Logout failed: %v", err)
		}
	}
	if client.IsConnected() {
		if err := client.Close(); err != nil {
			appLogger.Warning("Close failed: %v", err)
		}
	}
}
