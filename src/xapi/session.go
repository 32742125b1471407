package xapi

import (
	"context"
	"sync"

	"xapi-connector/src/models"
)

// -----------------------------------------------------------------------------

// Session is the authentication state of one Client.
type Session struct {
	mu              sync.RWMutex
	authenticated   bool
	user            string
	streamSessionID string
}

func (s *Session) set(user, streamSessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = true
	s.user = user
	s.streamSessionID = streamSessionID
}

// Clear forgets the login.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = false
	s.user = ""
	s.streamSessionID = ""
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) User() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// StreamSessionID returns the token issued at login, if any.
func (s *Session) StreamSessionID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.streamSessionID, s.authenticated && s.streamSessionID != ""
}

// -----------------------------------------------------------------------------
// Login / Logout
// -----------------------------------------------------------------------------

// Login authenticates on an open connection. appName may be empty.
func (c *Client) Login(ctx context.Context, user, password, appName string) (models.MLoginResult, error) {
	resp, err := c.run(ctx, CmdLogin, []any{user, password, omitEmpty(appName)}, nil)
	if err != nil {
		return models.MLoginResult{}, err
	}
	c.session.set(user, resp.StreamSessionID)
	c.logger.Info("Logged in as %s", user)
	return models.MLoginResult{Status: resp.Status, StreamSessionID: resp.StreamSessionID}, nil
}

// -----------------------------------------------------------------------------

// Logout ends the session. The local session is cleared whatever the server
// answers, including when the exchange itself fails.
func (c *Client) Logout(ctx context.Context) (models.MLogoutResult, error) {
	defer c.session.Clear()

	resp, err := c.run(ctx, CmdLogout, nil, nil)
	if err != nil {
		return models.MLogoutResult{}, err
	}
	c.logger.Info("Logged out")
	return models.MLogoutResult{Status: resp.Status}, nil
}
