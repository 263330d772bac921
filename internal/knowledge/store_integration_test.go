package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/corpushq/corpus/db"
	"github.com/corpushq/corpus/internal/ingest"
	"github.com/corpushq/corpus/internal/log"
)

// setupTestDB starts a disposable pgvector-enabled PostgreSQL container,
// runs the migrations and returns a connected pool.
func setupTestDB(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()

	container, err := tcpostgres.Run(ctx, "pgvector/pgvector:pg17",
		tcpostgres.WithDatabase("corpus_test"),
		tcpostgres.WithUsername("corpus"),
		tcpostgres.WithPassword("corpus"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "starting postgres container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("terminating container: %v", err)
		}
	})

	connURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.Migrate(connURL), "running migrations")

	poolCfg, err := pgxpool.ParseConfig(connURL)
	require.NoError(t, err)
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return pool
}

// testVector produces a deterministic unit-ish vector whose direction is
// controlled by seed, so cosine ordering in tests is predictable.
func testVector(seed int) []float32 {
	vec := make([]float32, VectorDimension)
	for i := range vec {
		vec[i] = 0.001
	}
	vec[seed%VectorDimension] = 1
	return vec
}

func testDocument(id, name string, kind ingest.Kind) Document {
	return Document{
		ID:        id,
		Name:      name,
		Kind:      kind,
		SizeBytes: 42,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestStore_IndexAndSearch_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t, ctx)
	store := NewStore(pool, log.NewNop())

	err := store.IndexDocument(ctx, testDocument("doc-1", "france.txt", ingest.KindText), []Record{
		{Index: 0, Content: "Paris is the capital of France.", Embedding: testVector(1)},
		{Index: 1, Content: "France borders Spain and Italy.", Embedding: testVector(2)},
	})
	require.NoError(t, err)

	err = store.IndexDocument(ctx, testDocument("doc-2", "japan.txt", ingest.KindText), []Record{
		{Index: 0, Content: "Tokyo is the capital of Japan.", Embedding: testVector(3)},
	})
	require.NoError(t, err)

	// Query nearest to doc-1 chunk 0.
	hits, err := store.Search(ctx, testVector(1), 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "Paris is the capital of France.", hits[0].Content)
	assert.Equal(t, "doc-1", hits[0].DocumentID)
	assert.Equal(t, "france.txt", hits[0].DocumentName)
	assert.Equal(t, ingest.KindText, hits[0].Kind)
	assert.Equal(t, 0, hits[0].ChunkIndex)
	assert.Less(t, hits[0].Distance, hits[1].Distance, "results ordered by increasing distance")
}

func TestStore_SearchSmallIndex_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t, ctx)
	store := NewStore(pool, log.NewNop())

	// Empty index: no error, no hits.
	hits, err := store.Search(ctx, testVector(1), 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Fewer records than k: return what exists.
	err = store.IndexDocument(ctx, testDocument("doc-1", "one.txt", ingest.KindText), []Record{
		{Index: 0, Content: "only chunk", Embedding: testVector(1)},
	})
	require.NoError(t, err)

	hits, err = store.Search(ctx, testVector(1), 5)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestStore_IndexDocument_Atomic_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t, ctx)
	store := NewStore(pool, log.NewNop())
	registry := NewRegistry(pool, log.NewNop())

	// Second record has a wrong dimensionality: the whole batch must fail
	// and the document must not become visible.
	err := store.IndexDocument(ctx, testDocument("doc-bad", "bad.txt", ingest.KindText), []Record{
		{Index: 0, Content: "ok", Embedding: testVector(1)},
		{Index: 1, Content: "bad", Embedding: []float32{1, 2, 3}},
	})
	require.Error(t, err)

	docs, err := registry.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs, "failed ingestion must not leave a registry entry")

	count, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Zero(t, count, "failed ingestion must not leave chunk records")
}

func TestRegistry_ListAndRemove_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t, ctx)
	store := NewStore(pool, log.NewNop())
	registry := NewRegistry(pool, log.NewNop())

	for i, id := range []string{"doc-a", "doc-b", "doc-c"} {
		err := store.IndexDocument(ctx, testDocument(id, id+".txt", ingest.KindText), []Record{
			{Index: 0, Content: "content " + id, Embedding: testVector(i + 1)},
		})
		require.NoError(t, err)
	}

	// Insertion order preserved.
	docs, err := registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, "doc-c", docs[2].ID)

	// Remove the middle document: registry entry and chunks both go.
	found, err := registry.Remove(ctx, "doc-b")
	require.NoError(t, err)
	assert.True(t, found)

	docs, err = registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 2)

	count, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count, "doc-b chunks must be gone from the index")

	// Removing an unknown id reports not-found without error and without
	// touching anything.
	found, err = registry.Remove(ctx, "doc-b")
	require.NoError(t, err)
	assert.False(t, found)

	// DeleteByDocument on its own clears the remaining chunks of a document.
	deleted, err := store.DeleteByDocument(ctx, "doc-a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)
	count, err = store.CountChunks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestRegistry_Get_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := setupTestDB(t, ctx)
	store := NewStore(pool, log.NewNop())
	registry := NewRegistry(pool, log.NewNop())

	want := testDocument("doc-1", "readme.txt", ingest.KindText)
	err := store.IndexDocument(ctx, want, []Record{
		{Index: 0, Content: "hello", Embedding: testVector(1)},
	})
	require.NoError(t, err)

	got, err := registry.Get(ctx, "doc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Kind, got.Kind)

	missing, err := registry.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
