package services

import (
	"context"

	"github.com/threedev/studio/internal/auth"
	"github.com/threedev/studio/internal/entities"
)

// UserManager is the account surface used by the sign-up, sign-in and
// account screens.
type UserManager struct {
	accounts AccountStore
}

// NewUserManager creates a new UserManager.
func NewUserManager(accounts AccountStore) *UserManager {
	return &UserManager{accounts: accounts}
}

// ValidateSignUp checks sign-up input, including whether the username is taken.
func (m *UserManager) ValidateSignUp(ctx context.Context, username, password, confirm string) (auth.Result, error) {
	return auth.ValidateSignUp(ctx, m.accounts, username, password, confirm)
}

func (m *UserManager) CreateUser(ctx context.Context, username, credential string) (*entities.User, error) {
	return m.accounts.CreateUser(ctx, username, credential)
}

// GetUser returns the security section of the account.
func (m *UserManager) GetUser(ctx context.Context, username string) (*entities.User, error) {
	return m.accounts.GetUserByUsername(ctx, username)
}

func (m *UserManager) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	return m.accounts.GetUserByID(ctx, id)
}

func (m *UserManager) Authenticate(ctx context.Context, username, credential string) (*entities.User, error) {
	return m.accounts.Authenticate(ctx, username, credential)
}

// UpdateCredentials changes the username and/or credential. An empty string
// means the field was not supplied; with neither supplied nothing is written
// and false is returned.
func (m *UserManager) UpdateCredentials(ctx context.Context, userID uint, newUsername, newCredential string) (bool, error) {
	var update entities.CredentialUpdate
	if newUsername != "" {
		update.Username = &newUsername
	}
	if newCredential != "" {
		update.Credential = &newCredential
	}
	return m.accounts.UpdateCredentials(ctx, userID, update)
}

func (m *UserManager) DeleteUser(ctx context.Context, userID uint) error {
	return m.accounts.DeleteUser(ctx, userID)
}

func (m *UserManager) CountUsers(ctx context.Context) (int64, error) {
	return m.accounts.CountUsers(ctx)
}
