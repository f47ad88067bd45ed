package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/catalog"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/schema"
	"github.com/roach88/insight/internal/testutil"
)

// Store must satisfy the catalog's persistence interface.
var _ catalog.Persister = (*Store)(nil)

func TestSaveAndLoadDataset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	ds := testutil.CoursesDataset("ubc", testutil.SampleSections()...)

	require.NoError(t, s.SaveDataset(ctx, ds))

	got, err := s.LoadDataset(ctx, "ubc")
	require.NoError(t, err)
	assert.Equal(t, ds, got)
}

func TestSaveDataset_PreservesMixedValueTypes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	ds := &ir.Dataset{ID: "ubc", Kind: schema.KindCourses, Records: []ir.Record{
		{"Year": ir.String("2015"), "id": ir.Number(31379), "Avg": ir.Number(0.1)},
		{},
	}}

	require.NoError(t, s.SaveDataset(ctx, ds))
	got, err := s.LoadDataset(ctx, "ubc")
	require.NoError(t, err)
	assert.Equal(t, ds.Records, got.Records)
}

func TestSaveDataset_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	ds := testutil.RoomsDataset("rooms", testutil.SampleRooms()...)

	require.NoError(t, s.SaveDataset(ctx, ds))
	require.NoError(t, s.SaveDataset(ctx, ds))

	infos, err := s.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestSaveDataset_Conflict(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.SaveDataset(ctx, testutil.RoomsDataset("x", testutil.SampleRooms()...)))
	err := s.SaveDataset(ctx, testutil.CoursesDataset("x", testutil.SampleSections()...))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSaveDataset_RejectsUnknownKind(t *testing.T) {
	s := openTestStore(t)
	err := s.SaveDataset(context.Background(), &ir.Dataset{ID: "x", Kind: "buildings"})
	assert.Error(t, err)
}

func TestLoadDataset_NotFound(t *testing.T) {
	_, err := openTestStore(t).LoadDataset(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadDataset_DetectsTampering(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.SaveDataset(ctx, testutil.CoursesDataset("ubc", testutil.SampleSections()...)))

	_, err := s.db.Exec(`UPDATE datasets SET records = '[]' WHERE id = 'ubc'`)
	require.NoError(t, err)

	_, err = s.LoadDataset(ctx, "ubc")
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.LoadDatasets(ctx)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestListAndLoadDatasets_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	infos, err := s.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
	assert.NotNil(t, infos)

	require.NoError(t, s.SaveDataset(ctx, testutil.RoomsDataset("zeta", testutil.SampleRooms()...)))
	require.NoError(t, s.SaveDataset(ctx, testutil.CoursesDataset("alpha", testutil.SampleSections()...)))

	infos, err = s.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.DatasetInfo{
		{ID: "zeta", Kind: schema.KindRooms, NumRows: 4},
		{ID: "alpha", Kind: schema.KindCourses, NumRows: 5},
	}, infos)

	all, err := s.LoadDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "zeta", all[0].ID)
	assert.Equal(t, "alpha", all[1].ID)
}

func TestDeleteDataset(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.SaveDataset(ctx, testutil.CoursesDataset("ubc")))

	require.NoError(t, s.DeleteDataset(ctx, "ubc"))
	_, err := s.LoadDataset(ctx, "ubc")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.ErrorIs(t, s.DeleteDataset(ctx, "ubc"), ErrNotFound)
}

func TestStore_BacksCatalogAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.db")

	s1, err := Open(path)
	require.NoError(t, err)
	c1 := catalog.New(catalog.WithPersister(s1))
	_, err = c1.Add(ctx, testutil.CoursesDataset("ubc", testutil.SampleSections()...))
	require.NoError(t, err)
	_, err = c1.Add(ctx, testutil.RoomsDataset("rooms", testutil.SampleRooms()...))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	c2 := catalog.New(catalog.WithPersister(s2))
	require.NoError(t, c2.Load(ctx))
	assert.Equal(t, c1.List(), c2.List())

	ds, ok := c2.Dataset("ubc")
	require.True(t, ok)
	assert.Equal(t, testutil.CoursesDataset("ubc", testutil.SampleSections()...).Records, ds.Records)
}
