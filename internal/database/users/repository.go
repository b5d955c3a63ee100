// Package users provides database operations for accounts.
//
// Creating a user also creates its default preference rows in the same
// transaction, so every account always has a complete settings set.
//
// # Usage
//
//	repo := users.NewRepository(db, auth.NewBcryptHasher(cfg.BcryptCost))
//	user, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
//	if errors.Is(err, users.ErrUserExists) {
//		// username taken
//	}
package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/threedev/studio/internal/entities"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// CredentialHasher turns a plaintext credential into its stored form and back-checks it.
type CredentialHasher interface {
	Hash(credential string) (string, error)
	Compare(hash, credential string) error
}

// Repository handles all user database operations.
type Repository struct {
	db     *gorm.DB
	hasher CredentialHasher
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB, hasher CredentialHasher) *Repository {
	return &Repository{db: db, hasher: hasher}
}

// CreateUser inserts the user with its default preferences and render configuration.
// A taken username rolls everything back and returns ErrUserExists.
func (r *Repository) CreateUser(ctx context.Context, username, credential string) (*entities.User, error) {
	hash, err := r.hasher.Hash(credential)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	user := &entities.User{
		Username:       username,
		CredentialHash: hash,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		prefs := entities.DefaultUserPreferences(user.ID)
		if err := tx.Create(&prefs).Error; err != nil {
			return fmt.Errorf("failed to create preferences: %w", err)
		}
		render := entities.DefaultRenderPreferences(user.ID)
		if err := tx.Create(&render).Error; err != nil {
			return fmt.Errorf("failed to create render preferences: %w", err)
		}
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByUsername retrieves a user by username. Usernames are case-sensitive.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UsernameExists reports whether the username is registered.
func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return count > 0, nil
}

// Authenticate looks up the user and checks the credential against the stored hash.
func (r *Repository) Authenticate(ctx context.Context, username, credential string) (*entities.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := r.hasher.Compare(user.CredentialHash, credential); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// UpdateCredentials changes the username and/or credential. It returns false
// without writing when neither is supplied. A taken username leaves the row
// untouched and returns ErrUserExists.
func (r *Repository) UpdateCredentials(ctx context.Context, userID uint, update entities.CredentialUpdate) (bool, error) {
	if update.IsEmpty() {
		return false, nil
	}

	cols := map[string]any{"updated_at": time.Now().UTC()}
	if update.Username != nil {
		cols["username"] = *update.Username
	}
	if update.Credential != nil {
		hash, err := r.hasher.Hash(*update.Credential)
		if err != nil {
			return false, fmt.Errorf("failed to hash credential: %w", err)
		}
		cols["credential"] = hash
	}

	result := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("id = ?", userID).
		Updates(cols)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return false, ErrUserExists
		}
		return false, fmt.Errorf("failed to update credentials: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, ErrUserNotFound
	}
	return true, nil
}

// DeleteUser removes the user. Preference rows are removed by cascade.
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Delete(&entities.User{}, userID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CountUsers returns the number of registered accounts.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
