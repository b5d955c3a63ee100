package users

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/threedev/studio/internal/auth"
	"github.com/threedev/studio/internal/database"
	"github.com/threedev/studio/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB, auth.NewBcryptHasher(4)), db.DB
}

func strPtr(s string) *string { return &s }

func TestRepository_CreateUser(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "X7!kP9zq", user.CredentialHash)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestRepository_CreateUser_CreatesDefaults(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	var prefs []entities.UserPreferences
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&prefs).Error)
	require.Len(t, prefs, 1)
	assert.Equal(t, entities.ThemeLight, prefs[0].Theme)
	assert.False(t, prefs[0].AutoSave)

	var render []entities.RenderPreferences
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&render).Error)
	require.Len(t, render, 1)
	assert.Equal(t, entities.DefaultRenderName, render[0].Name)
	assert.Equal(t, 1920, render[0].ImageWidth)
	assert.Equal(t, 16.0/9.0, render[0].AspectRatio)
	assert.Equal(t, 10.0, render[0].FocusDistance)
	assert.Equal(t, 1.8, render[0].Aperture)
	assert.Equal(t, 50, render[0].MaxDepth)
	assert.Equal(t, 100, render[0].SamplesPerPixel)
}

func TestRepository_CreateUser_Conflict(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, "alice", "Q1!mN2wr")
	assert.ErrorIs(t, err, ErrUserExists)

	var count int64
	require.NoError(t, db.Model(&entities.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// First row is unmodified and still accepts the original credential
	stored, err := repo.Authenticate(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, first.CredentialHash, stored.CredentialHash)

	// No orphan preference rows from the rolled back attempt
	var prefCount, renderCount int64
	require.NoError(t, db.Model(&entities.UserPreferences{}).Count(&prefCount).Error)
	require.NoError(t, db.Model(&entities.RenderPreferences{}).Count(&renderCount).Error)
	assert.Equal(t, int64(1), prefCount)
	assert.Equal(t, int64(1), renderCount)
}

func TestRepository_CreateUser_RollsBackOnLaterFailure(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(`CREATE TRIGGER fail_render_insert BEFORE INSERT ON render_preferences
		BEGIN SELECT RAISE(ABORT, 'boom'); END`).Error)

	_, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserExists)
	assert.Contains(t, err.Error(), "boom")

	var userCount, prefCount int64
	require.NoError(t, db.Model(&entities.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&entities.UserPreferences{}).Count(&prefCount).Error)
	assert.Zero(t, userCount)
	assert.Zero(t, prefCount)

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRepository_CreateUser_CaseSensitive(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "Alice", "X7!kP9zq")
	assert.NoError(t, err)
}

func TestRepository_CreateUser_EmptyCredential(t *testing.T) {
	repo, _ := setupTestDB(t)

	_, err := repo.CreateUser(context.Background(), "alice", "")
	assert.ErrorIs(t, err, auth.ErrEmptyPassword)
}

func TestRepository_GetUser(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	byName, err := repo.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byID, err := repo.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = repo.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRepository_UsernameExists(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	exists, err := repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	exists, err = repo.UsernameExists(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRepository_Authenticate(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	tests := []struct {
		name       string
		username   string
		credential string
		wantErr    error
	}{
		{"valid", "alice", "X7!kP9zq", nil},
		{"wrong credential", "alice", "wrong!!pass", ErrInvalidCredentials},
		{"unknown user", "bob", "X7!kP9zq", ErrUserNotFound},
		{"wrong case", "ALICE", "X7!kP9zq", ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.Authenticate(ctx, tt.username, tt.credential)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "alice", user.Username)
		})
	}
}

func TestRepository_UpdateCredentials(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	t.Run("no fields is a no-op", func(t *testing.T) {
		ok, err := repo.UpdateCredentials(ctx, user.ID, entities.CredentialUpdate{})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("rename", func(t *testing.T) {
		ok, err := repo.UpdateCredentials(ctx, user.ID, entities.CredentialUpdate{Username: strPtr("alicia")})
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := repo.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "alicia", got.Username)
		assert.True(t, got.UpdatedAt.After(user.UpdatedAt) || got.UpdatedAt.Equal(user.UpdatedAt))
	})

	t.Run("new credential is hashed", func(t *testing.T) {
		ok, err := repo.UpdateCredentials(ctx, user.ID, entities.CredentialUpdate{Credential: strPtr("N3w!pass#")})
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = repo.Authenticate(ctx, "alicia", "X7!kP9zq")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		got, err := repo.Authenticate(ctx, "alicia", "N3w!pass#")
		require.NoError(t, err)
		assert.NotEqual(t, "N3w!pass#", got.CredentialHash)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.UpdateCredentials(ctx, 9999, entities.CredentialUpdate{Username: strPtr("ghost")})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestRepository_UpdateCredentials_Conflict(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	alice, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, "bob", "Q1!mN2wr")
	require.NoError(t, err)

	ok, err := repo.UpdateCredentials(ctx, alice.ID, entities.CredentialUpdate{
		Username:   strPtr("bob"),
		Credential: strPtr("N3w!pass#"),
	})
	assert.ErrorIs(t, err, ErrUserExists)
	assert.False(t, ok)

	// Neither field was written
	got, err := repo.Authenticate(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)
}

func TestRepository_DeleteUser(t *testing.T) {
	repo, db := setupTestDB(t)
	ctx := context.Background()

	user, err := repo.CreateUser(ctx, "alice", "X7!kP9zq")
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(ctx, user.ID))

	_, err = repo.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	var prefs entities.UserPreferences
	err = db.Where("user_id = ?", user.ID).First(&prefs).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	var render entities.RenderPreferences
	err = db.Where("user_id = ?", user.ID).First(&render).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	assert.ErrorIs(t, repo.DeleteUser(ctx, user.ID), ErrUserNotFound)
}

func TestRepository_CountUsers(t *testing.T) {
	repo, _ := setupTestDB(t)
	ctx := context.Background()

	count, err := repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := repo.CreateUser(ctx, name, "X7!kP9zq")
		require.NoError(t, err)
	}

	count, err = repo.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
