package client

import (
	"context"
	"sync"

	"github.com/postdeck/postdeck/models"
	"github.com/postdeck/postdeck/utils"
)

// Session holds the access token and profile snapshot in volatile memory.
// It is the TokenSource for the API client.
type Session struct {
	mu          sync.RWMutex
	accessToken string
	user        *models.UserDto
}

// AccessToken returns the current bearer token, or "" when logged out.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// CurrentUser returns the profile snapshot, or nil when logged out.
func (s *Session) CurrentUser() *models.UserDto {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a session is established.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

func (s *Session) set(accessToken string, user models.UserDto) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.user = &user
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.user = nil
}

// AuthManager drives login, silent refresh and logout, keeping the session,
// the keystore and the sync loop consistent with each other.
type AuthManager struct {
	api      *APIClient
	session  *Session
	keystore Keystore
	sync     *SyncLoop
	notifier *Notifier
}

// NewAuthManager wires the session flow together.
func NewAuthManager(api *APIClient, session *Session, keystore Keystore, syncLoop *SyncLoop, notifier *Notifier) *AuthManager {
	return &AuthManager{api: api, session: session, keystore: keystore, sync: syncLoop, notifier: notifier}
}

// HasLocalSession reports whether a persisted refresh token exists.
func (m *AuthManager) HasLocalSession() bool {
	_, ok := m.keystore.RefreshToken()
	return ok
}

// Login authenticates and populates the session. The refresh token is
// persisted only when rememberMe is set; otherwise any stored token is removed.
func (m *AuthManager) Login(ctx context.Context, login, password string, rememberMe bool) error {
	resp, err := m.api.Login(ctx, login, password)
	if err != nil {
		utils.Sugar.Errorf("login failed for %s: %v", login, err)
		return err
	}
	m.applyAuth(resp, rememberMe)
	utils.Sugar.Infof("login successful for user: %s", resp.User.Username)
	return nil
}

// SilentRefresh re-establishes a session from the persisted refresh token
// without prompting for credentials. On any failure all session state is
// cleared so the caller lands on the login screen (fail-closed).
func (m *AuthManager) SilentRefresh(ctx context.Context) bool {
	token, ok := m.keystore.RefreshToken()
	if !ok {
		utils.Sugar.Warn("cannot perform silent refresh, no refresh token available")
		return false
	}

	resp, err := m.api.RefreshToken(ctx, token)
	if err != nil {
		utils.Sugar.Errorf("silent refresh failed, clearing invalid session: %v", err)
		m.Logout()
		return false
	}

	m.applyAuth(resp, true)
	return true
}

// Logout stops the sync loop, clears the session and removes the persisted
// refresh token.
func (m *AuthManager) Logout() {
	if m.sync != nil {
		m.sync.Stop()
	}
	m.session.clear()
	if err := m.keystore.Clear(); err != nil {
		utils.Sugar.Errorf("failed to clear keystore: %v", err)
	}
	if m.notifier != nil {
		m.notifier.Info("Logged out")
	}
	utils.Sugar.Info("user logged out and application state reset")
}

func (m *AuthManager) applyAuth(resp *AuthResponse, saveRefreshToken bool) {
	m.session.set(resp.AccessToken, resp.User)

	if saveRefreshToken {
		if err := m.keystore.SaveRefreshToken(resp.RefreshToken); err != nil {
			utils.Sugar.Errorf("failed to persist refresh token: %v", err)
		}
	} else if err := m.keystore.Clear(); err != nil {
		utils.Sugar.Errorf("failed to clear keystore: %v", err)
	}
}
