package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/insight/internal/engine"
	"github.com/roach88/insight/internal/ir"
	"github.com/roach88/insight/internal/schema"
	"github.com/roach88/insight/internal/testutil"
)

// Catalog must satisfy the engine's lookup interface.
var _ engine.Catalog = (*Catalog)(nil)

type memPersister struct {
	mu      sync.Mutex
	saved   map[string]*ir.Dataset
	order   []string
	failErr error
}

func newMemPersister() *memPersister {
	return &memPersister{saved: make(map[string]*ir.Dataset)}
}

func (p *memPersister) SaveDataset(_ context.Context, ds *ir.Dataset) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return p.failErr
	}
	p.saved[ds.ID] = ds
	p.order = append(p.order, ds.ID)
	return nil
}

func (p *memPersister) DeleteDataset(_ context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil {
		return p.failErr
	}
	delete(p.saved, id)
	return nil
}

func (p *memPersister) LoadDatasets(context.Context) ([]*ir.Dataset, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*ir.Dataset
	for _, id := range p.order {
		if ds, ok := p.saved[id]; ok {
			out = append(out, ds)
		}
	}
	return out, p.failErr
}

func TestAdd_ReturnsIDsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	c := New()

	ids, err := c.Add(ctx, testutil.RoomsDataset("rooms", testutil.SampleRooms()...))
	require.NoError(t, err)
	assert.Equal(t, []string{"rooms"}, ids)

	ids, err = c.Add(ctx, testutil.CoursesDataset("courses", testutil.SampleSections()...))
	require.NoError(t, err)
	assert.Equal(t, []string{"rooms", "courses"}, ids)

	assert.Equal(t, []ir.DatasetInfo{
		{ID: "rooms", Kind: schema.KindRooms, NumRows: 4},
		{ID: "courses", Kind: schema.KindCourses, NumRows: 5},
	}, c.List())
}

func TestAdd_RejectsInvalidIDs(t *testing.T) {
	c := New()
	for _, id := range []string{"", "   ", "ubc_courses", "_"} {
		_, err := c.Add(context.Background(), testutil.CoursesDataset(id))
		assert.True(t, IsInvalidID(err), "id %q: %v", id, err)
	}
	assert.Empty(t, c.IDs())
}

func TestAdd_RejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	c := New()
	_, err := c.Add(ctx, testutil.CoursesDataset("ubc"))
	require.NoError(t, err)

	_, err = c.Add(ctx, testutil.RoomsDataset("ubc"))
	assert.True(t, IsDuplicate(err))
	assert.Len(t, c.List(), 1)
}

func TestAdd_RejectsUnknownKind(t *testing.T) {
	_, err := New().Add(context.Background(), &ir.Dataset{ID: "x", Kind: "buildings"})
	var ce *Error
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, ErrCodeInvalidKind, ce.Code)
}

func TestAdd_NormalizesAndCopies(t *testing.T) {
	ds := &ir.Dataset{ID: "ubc", Kind: schema.KindCourses, Records: []ir.Record{
		{"Professor": ir.String("e\u0301mile")},
	}}
	c := New()
	_, err := c.Add(context.Background(), ds)
	require.NoError(t, err)

	got, ok := c.Dataset("ubc")
	require.True(t, ok)
	assert.Equal(t, ir.String("\u00e9mile"), got.Records[0].Get("Professor"))

	ds.Records[0]["Professor"] = ir.String("changed")
	assert.Equal(t, ir.String("\u00e9mile"), got.Records[0].Get("Professor"))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c := New()
	_, err := c.Add(ctx, testutil.CoursesDataset("a"))
	require.NoError(t, err)
	_, err = c.Add(ctx, testutil.CoursesDataset("b"))
	require.NoError(t, err)

	id, err := c.Remove(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	assert.Equal(t, []string{"b"}, c.IDs())

	_, ok := c.Dataset("a")
	assert.False(t, ok)

	_, err = c.Remove(ctx, "a")
	assert.True(t, IsNotFound(err))

	_, err = c.Remove(ctx, "bad_id")
	assert.True(t, IsInvalidID(err))
}

func TestPersister_WriteThroughAndLoad(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	c := New(WithPersister(p))

	_, err := c.Add(ctx, testutil.CoursesDataset("ubc", testutil.SampleSections()...))
	require.NoError(t, err)
	_, err = c.Add(ctx, testutil.RoomsDataset("rooms", testutil.SampleRooms()...))
	require.NoError(t, err)
	_, err = c.Remove(ctx, "ubc")
	require.NoError(t, err)

	fresh := New(WithPersister(p))
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []string{"rooms"}, fresh.IDs())
	assert.Equal(t, c.List(), fresh.List())
}

func TestPersister_FailureLeavesCatalogUnchanged(t *testing.T) {
	ctx := context.Background()
	p := newMemPersister()
	c := New(WithPersister(p))
	_, err := c.Add(ctx, testutil.CoursesDataset("keep"))
	require.NoError(t, err)

	p.failErr = errors.New("disk full")

	_, err = c.Add(ctx, testutil.CoursesDataset("new"))
	require.Error(t, err)
	assert.ErrorIs(t, err, p.failErr)
	assert.Equal(t, []string{"keep"}, c.IDs())

	_, err = c.Remove(ctx, "keep")
	require.Error(t, err)
	assert.Equal(t, []string{"keep"}, c.IDs())

	assert.Error(t, c.Load(ctx))
}

func TestLoad_WithoutPersisterIsNoop(t *testing.T) {
	c := New()
	_, err := c.Add(context.Background(), testutil.CoursesDataset("ubc"))
	require.NoError(t, err)
	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, []string{"ubc"}, c.IDs())
}

func TestCatalog_ServesEngine(t *testing.T) {
	c := New()
	_, err := c.Add(context.Background(), testutil.CoursesDataset("ubc", testutil.SampleSections()...))
	require.NoError(t, err)

	e := engine.New(c, engine.WithIDGenerator(testutil.NewConstantGenerator("q")))
	res, err := e.Query(testutil.Query(t, `{
		"WHERE": {"IS": {"ubc_dept": "math"}},
		"OPTIONS": {"COLUMNS": ["ubc_title"]}
	}`))
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{{"ubc_title": "diff calculus"}}, ir.RowMaps(res.Rows))
}

func TestCatalog_QueryIDsFollowGenerator(t *testing.T) {
	c := New()
	_, err := c.Add(context.Background(), testutil.RoomsDataset("rooms", testutil.SampleRooms()...))
	require.NoError(t, err)

	e := engine.New(c, engine.WithIDGenerator(testutil.NewSequenceGenerator("rq")))
	doc := `{"WHERE": {"GT": {"rooms_seats": 100}}, "OPTIONS": {"COLUMNS": ["rooms_name"], "ORDER": "rooms_name"}}`

	first, err := e.Query(testutil.Query(t, doc))
	require.NoError(t, err)
	second, err := e.Query(testutil.Query(t, doc))
	require.NoError(t, err)

	assert.Equal(t, "rq-1", first.QueryID)
	assert.Equal(t, "rq-2", second.QueryID)
	assert.Equal(t, "rooms", second.DatasetID)
	assert.Equal(t, []map[string]any{{"rooms_name": "DMP_110"}, {"rooms_name": "WOOD_2"}}, ir.RowMaps(second.Rows))
}

func TestCatalog_ConcurrentReaders(t *testing.T) {
	ctx := context.Background()
	c := New()
	_, err := c.Add(ctx, testutil.CoursesDataset("ubc", testutil.GenerateSections(100)...))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rows, err := engine.Evaluate(map[string]any{
				"WHERE":   map[string]any{},
				"OPTIONS": map[string]any{"COLUMNS": []any{"ubc_uuid"}},
			}, mustDataset(c, "ubc"))
			assert.NoError(t, err)
			assert.Len(t, rows, 100)
			_ = c.List()
		}()
	}
	wg.Wait()
}

func mustDataset(c *Catalog, id string) *ir.Dataset {
	ds, _ := c.Dataset(id)
	return ds
}
