package jsondb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronkov42/backoffice/internal/models"
)

func newTestDB(t *testing.T) (*JSONDB, string) {
	t.Helper()

	fileName := filepath.Join(t.TempDir(), "db_test.json")

	db, err := New(fileName)
	require.NoError(t, err)

	return db, fileName
}

func TestNewCreatesMissingFile(t *testing.T) {
	db, fileName := newTestDB(t)

	_, err := os.Stat(fileName)
	require.NoError(t, err)

	categories, err := db.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestDataSurvivesReopen(t *testing.T) {
	db, fileName := newTestDB(t)
	ctx := context.Background()

	usr, err := db.CreateUser(ctx, &models.User{Mail: "admin@example.com", Password: "digest"})
	require.NoError(t, err)

	created, err := db.InsertCategory(ctx, &models.Category{Name: "Travel"})
	require.NoError(t, err)

	deletedAt := time.Now().UTC()
	created.DeletedAt = &deletedAt
	require.NoError(t, db.UpdateCategory(ctx, created))

	require.NoError(t, db.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	foundUser, err := reopened.GetUserByMail(ctx, usr.Mail)
	require.NoError(t, err)
	assert.Equal(t, usr.ID, foundUser.ID)

	foundCategory, err := reopened.GetCategoryByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, foundCategory.Deleted)
	require.NotNil(t, foundCategory.DeletedAt)
	assert.Equal(t, deletedAt.Unix(), foundCategory.DeletedAt.Unix())
}

func TestIDsKeepGrowingAfterReopen(t *testing.T) {
	db, fileName := newTestDB(t)
	ctx := context.Background()

	first, err := db.InsertCategory(ctx, &models.Category{Name: "Groceries"})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	reopened, err := New(fileName)
	require.NoError(t, err)

	second, err := reopened.InsertCategory(ctx, &models.Category{Name: "Travel"})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
}

func TestSessionsRoundTrip(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	session := &models.Session{
		ID:        "11111111-2222-3333-4444-555555555555",
		UserID:    7,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	require.NoError(t, db.CreateSession(ctx, session))

	found, err := db.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.UserID, found.UserID)

	require.NoError(t, db.DeleteSession(ctx, session.ID))
	_, err = db.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)

	// A second delete of the same session must not fail.
	require.NoError(t, db.DeleteSession(ctx, session.ID))
}
