package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronkov42/backoffice/internal/db/memorystorage"
	"github.com/avoronkov42/backoffice/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db)
}

func TestCreateRejectsBlankName(t *testing.T) {
	svc := newTestService(t)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), name)
		assert.ErrorIs(t, err, models.ErrEmptyName)
	}
}

func TestCreateAssignsIDAndAppearsInList(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Create(context.Background(), "Groceries")
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.False(t, created.Deleted)
	assert.Nil(t, created.DeletedAt)

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "Groceries", listed[0].Name)
}

func TestSearchByNameIsCaseInsensitive(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Groceries", "Travel", "Travel expenses"} {
		_, err := svc.Create(ctx, name)
		require.NoError(t, err)
	}

	found, err := svc.SearchByName(ctx, "tRaV")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Travel", found[0].Name)
	assert.Equal(t, "Travel expenses", found[1].Name)
}

func TestGetByIDUnknown(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSoftDeleteHidesFromListAndSearchButNotFromGet(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Travel")
	require.NoError(t, err)

	deleted, err := svc.SoftDelete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	require.NotNil(t, deleted.DeletedAt)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	found, err := svc.SearchByName(ctx, "Travel")
	require.NoError(t, err)
	assert.Empty(t, found)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Deleted)
	assert.Equal(t, deleted.DeletedAt.Unix(), fetched.DeletedAt.Unix())
}

func TestSoftDeleteIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Travel")
	require.NoError(t, err)

	first, err := svc.SoftDelete(ctx, created.ID)
	require.NoError(t, err)

	second, err := svc.SoftDelete(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, first.DeletedAt, second.DeletedAt)
}

func TestUpdateRules(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Travel")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "")
	assert.ErrorIs(t, err, models.ErrEmptyName)

	_, err = svc.Update(ctx, 999, "Trips")
	assert.ErrorIs(t, err, models.ErrNotFound)

	updated, err := svc.Update(ctx, created.ID, "Trips")
	require.NoError(t, err)
	assert.Equal(t, "Trips", updated.Name)

	_, err = svc.SoftDelete(ctx, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, "Journeys")
	assert.ErrorIs(t, err, models.ErrCategoryDeleted)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Trips", fetched.Name)
}

func TestFullLifecycleScenario(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, "Travel")
	require.NoError(t, err)

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Travel", fetched.Name)
	assert.False(t, fetched.Deleted)

	updated, err := svc.Update(ctx, created.ID, "Trips")
	require.NoError(t, err)
	assert.Equal(t, "Trips", updated.Name)

	deleted, err := svc.SoftDelete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)

	listed, err := svc.List(ctx)
	require.NoError(t, err)
	for _, category := range listed {
		assert.NotEqual(t, created.ID, category.ID)
	}

	fetched, err = svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.True(t, fetched.Deleted)
}
