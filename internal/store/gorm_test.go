package store_test

import (
	"context"
	"testing"

	"cgpa-backend/internal/database"
	"cgpa-backend/internal/model"
	"cgpa-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGormStore(t *testing.T) *store.GormStore {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	st := store.NewGormStore(db)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testRecord(rollKey, name string, cgpa float64) *model.StudentRecord {
	return &model.StudentRecord{
		RollKey:   rollKey,
		Name:      name,
		Roll:      rollKey,
		Semester:  3,
		SGPA1:     cgpa,
		SGPA2:     cgpa,
		CGPA:      cgpa,
		CreatedAt: "2025-01-02 08:34:05",
	}
}

// exerciseStore runs the behaviour every Store implementation shares.
func exerciseStore(t *testing.T, st store.Store) {
	ctx := context.Background()

	_, err := st.FindByRollKey(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	rec := testRecord("k1", "First", 8)
	require.NoError(t, st.Create(ctx, rec))
	assert.NotZero(t, rec.ID)

	err = st.Create(ctx, testRecord("k1", "Second", 9))
	assert.ErrorIs(t, err, store.ErrDuplicate)

	got, err := st.FindByRollKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
	assert.Equal(t, rec.ID, got.ID)

	got.Name = "Updated"
	got.CGPA = 9.25
	got.CreatedAt = "2025-02-01 05:30:00"
	require.NoError(t, st.Update(ctx, got))

	got, err = st.FindByRollKey(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Name)
	assert.Equal(t, 9.25, got.CGPA)
	assert.Equal(t, "k1", got.Roll)
	assert.Equal(t, "2025-02-01 05:30:00", got.CreatedAt)

	err = st.Update(ctx, testRecord("nobody", "Ghost", 1))
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.Create(ctx, testRecord("k2", "Beta", 6)))
	require.NoError(t, st.Create(ctx, testRecord("k3", "alpha", 7)))

	list, total, err := st.List(ctx, store.ListQuery{SortBy: "cgpa", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"k1", "k3", "k2"}, []string{list[0].RollKey, list[1].RollKey, list[2].RollKey})

	list, total, err = st.List(ctx, store.ListQuery{Name: "ALPHA"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "k3", list[0].RollKey)

	list, total, err = st.List(ctx, store.ListQuery{Page: 3, Limit: 1, SortBy: "roll_key"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 1)
	assert.Equal(t, "k3", list[0].RollKey)

	list, _, err = st.List(ctx, store.ListQuery{Page: 9, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.NoError(t, st.Ping(ctx))
}

func TestGormStore(t *testing.T) {
	exerciseStore(t, setupGormStore(t))
}

func TestListQueryNormalize(t *testing.T) {
	q := store.ListQuery{Page: -1, Limit: -3, SortBy: "id; --", SortOrder: "DESC"}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 0, q.Limit)
	assert.Equal(t, "name", q.SortBy)
	assert.Equal(t, "asc", q.SortOrder)
}
