package auth

import (
	"context"
	"database/sql"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/threedev/studio/internal/config"
	"github.com/threedev/studio/internal/entities"
)

// Session data keys
const (
	SessionKeyUserID   = "user_id"
	SessionKeyUsername = "username"
	SessionKeyLoginAt  = "login_at"
)

// How often expired rows are purged from the sessions table.
const sessionCleanupInterval = 5 * time.Minute

var ErrNotSignedIn = errors.New("not signed in")

func init() {
	gob.Register(time.Time{})
}

// SessionManager keeps the signed-in user across invocations of the shell.
// Session data lives in the sessions table; the token that points at it is
// stored in a private file instead of a cookie.
type SessionManager struct {
	sm        *scs.SessionManager
	store     *sqlite3store.SQLite3Store
	tokenPath string
}

// SessionData is the signed-in user as recorded at sign-in.
type SessionData struct {
	UserID   uint
	Username string
	LoginAt  time.Time
}

// NewSessionManager creates a session manager on the store's sessions table.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Session) *SessionManager {
	store := sqlite3store.NewWithCleanupInterval(sqlDB, sessionCleanupInterval)

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = cfg.Lifetime

	return &SessionManager{sm: sm, store: store, tokenPath: cfg.TokenPath}
}

// SignIn starts a new session for user, replacing any existing one.
func (m *SessionManager) SignIn(ctx context.Context, user *entities.User) error {
	ctx, err := m.load(ctx)
	if err != nil {
		return err
	}

	// New token so an old token file can never resume this session
	if err := m.sm.RenewToken(ctx); err != nil {
		return fmt.Errorf("failed to renew session token: %w", err)
	}

	m.sm.Put(ctx, SessionKeyUserID, int(user.ID))
	m.sm.Put(ctx, SessionKeyUsername, user.Username)
	m.sm.Put(ctx, SessionKeyLoginAt, time.Now())

	token, _, err := m.sm.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return m.writeToken(token)
}

// Current returns the signed-in user, or ErrNotSignedIn.
func (m *SessionManager) Current(ctx context.Context) (*SessionData, error) {
	ctx, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	userID := m.sm.GetInt(ctx, SessionKeyUserID)
	if userID == 0 {
		return nil, ErrNotSignedIn
	}
	loginAt, _ := m.sm.Get(ctx, SessionKeyLoginAt).(time.Time)

	return &SessionData{
		UserID:   uint(userID),
		Username: m.sm.GetString(ctx, SessionKeyUsername),
		LoginAt:  loginAt,
	}, nil
}

// Refresh updates the cached username after an account rename.
func (m *SessionManager) Refresh(ctx context.Context, user *entities.User) error {
	ctx, err := m.load(ctx)
	if err != nil {
		return err
	}
	if m.sm.GetInt(ctx, SessionKeyUserID) != int(user.ID) {
		return ErrNotSignedIn
	}
	m.sm.Put(ctx, SessionKeyUsername, user.Username)
	if _, _, err := m.sm.Commit(ctx); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// SignOut destroys the session and removes the token file.
// Signing out without a session is not an error.
func (m *SessionManager) SignOut(ctx context.Context) error {
	ctx, err := m.load(ctx)
	if err != nil {
		return err
	}
	if err := m.sm.Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	if err := os.Remove(m.tokenPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session token: %w", err)
	}
	return nil
}

// Close stops the background cleanup of expired sessions.
func (m *SessionManager) Close() {
	m.store.StopCleanup()
}

func (m *SessionManager) load(ctx context.Context) (context.Context, error) {
	token, err := m.readToken()
	if err != nil {
		return nil, err
	}
	ctx, err = m.sm.Load(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return ctx, nil
}

func (m *SessionManager) readToken() (string, error) {
	data, err := os.ReadFile(m.tokenPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (m *SessionManager) writeToken(token string) error {
	if err := os.MkdirAll(filepath.Dir(m.tokenPath), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(m.tokenPath, []byte(token), 0o600); err != nil {
		return fmt.Errorf("failed to write session token: %w", err)
	}
	return nil
}
