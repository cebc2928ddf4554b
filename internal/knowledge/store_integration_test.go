package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/testutil"
)

const schemaDimension = 1536

// axisVector builds a unit vector along the given axis so cosine distances
// between test chunks are deterministic.
func axisVector(axis int) []float32 {
	v := make([]float32, schemaDimension)
	v[axis] = 1
	return v
}

func storeContent(topic string) string {
	return fmt.Sprintf("Detailed immigration guidance about %s with enough text to pass the minimum length filter.", topic)
}

func TestStore_CreateChunk_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := testutil.SetupTestDB(t)
	store := NewStore(pool, schemaDimension, log.NewNop())

	chunk := Chunk{
		ID:         "uscis_h1b_guide-0",
		DocumentID: "uscis_h1b_guide",
		Content:    storeContent("the H-1B specialty occupation visa"),
		Embedding:  axisVector(0),
		Metadata: map[string]string{
			MetaSource:   "USCIS",
			MetaCategory: "work_visa",
		},
	}

	require.NoError(t, store.CreateChunk(ctx, chunk))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Same id again is a duplicate.
	err = store.CreateChunk(ctx, chunk)
	require.ErrorIs(t, err, ErrDuplicateChunk)
	require.ErrorIs(t, err, ErrPersistence)
}

func TestStore_SearchByEmbedding_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := testutil.SetupTestDB(t)
	store := NewStore(pool, schemaDimension, log.NewNop())

	chunks := []Chunk{
		{
			ID:         "h1b-0",
			DocumentID: "h1b",
			Content:    storeContent("H-1B registration and the annual cap"),
			Embedding:  axisVector(0),
			Metadata:   map[string]string{MetaSource: "USCIS"},
		},
		{
			ID:         "opt-0",
			DocumentID: "opt",
			Content:    storeContent("OPT employment authorization for F-1 students"),
			Embedding:  axisVector(1),
			Metadata:   map[string]string{MetaSource: "USCIS"},
		},
		{
			ID:         "greencard-0",
			DocumentID: "greencard",
			Content:    storeContent("employment-based green card categories"),
			Embedding:  axisVector(2),
			Metadata:   map[string]string{MetaSource: "Department of State"},
		},
	}
	for _, c := range chunks {
		require.NoError(t, store.CreateChunk(ctx, c))
	}

	// Query vector closest to the OPT chunk.
	query := make([]float32, schemaDimension)
	query[1] = 1
	query[0] = 0.1

	results, err := store.SearchByEmbedding(ctx, query, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "opt-0", results[0].ID, "nearest chunk should rank first")
	assert.Equal(t, "h1b-0", results[1].ID)
	assert.Equal(t, "USCIS", results[0].Metadata[MetaSource])
	assert.False(t, results[0].CreatedAt.IsZero())
}

func TestStore_SearchByText_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := testutil.SetupTestDB(t)
	store := NewStore(pool, schemaDimension, log.NewNop())

	require.NoError(t, store.CreateChunk(ctx, Chunk{
		ID:         "h1b-0",
		DocumentID: "h1b",
		Content:    storeContent("the H-1B lottery and registration process"),
		Embedding:  axisVector(0),
		Metadata:   map[string]string{MetaSource: "USCIS"},
	}))
	require.NoError(t, store.CreateChunk(ctx, Chunk{
		ID:         "asylum-0",
		DocumentID: "asylum",
		Content:    storeContent("affirmative asylum filing procedures"),
		Embedding:  axisVector(1),
		Metadata:   map[string]string{MetaSource: "USCIS"},
	}))

	// Match is case-insensitive.
	results, err := store.SearchByText(ctx, "h-1b LOTTERY", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "h1b-0", results[0].ID)

	results, err = store.SearchByText(ctx, "naturalization", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_DeleteDocument_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pool := testutil.SetupTestDB(t)
	store := NewStore(pool, schemaDimension, log.NewNop())

	for i := range 3 {
		require.NoError(t, store.CreateChunk(ctx, Chunk{
			ID:         fmt.Sprintf("doomed-%d", i),
			DocumentID: "doomed",
			Content:    storeContent(strings.Repeat("visa bulletin retrogression ", i+1)),
			Embedding:  axisVector(i),
			Metadata:   map[string]string{MetaSource: "USCIS"},
		}))
	}
	require.NoError(t, store.CreateChunk(ctx, Chunk{
		ID:         "survivor-0",
		DocumentID: "survivor",
		Content:    storeContent("adjustment of status interviews"),
		Embedding:  axisVector(5),
		Metadata:   map[string]string{MetaSource: "USCIS"},
	}))

	deleted, err := store.DeleteDocument(ctx, "doomed")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Unknown document is a no-op, not an error.
	deleted, err = store.DeleteDocument(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	if errors.Is(err, ErrPersistence) {
		t.Fatal("no-op delete should not report a persistence error")
	}
}
