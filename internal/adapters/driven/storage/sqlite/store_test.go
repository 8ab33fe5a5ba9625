package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docent-labs/docent/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create a temporary directory for the test database
	tempDir, err := os.MkdirTemp("", "docent-test-*")
	require.NoError(t, err)

	// Create store in temp directory
	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	// Return cleanup function
	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// testDocument builds a registry entry with sensible defaults.
func testDocument(id string) *domain.Document {
	return &domain.Document{
		ID:            id,
		Title:         "Test Document " + id,
		Filename:      id + ".pdf",
		Pages:         3,
		ChunksTotal:   9,
		ChunksIndexed: 9,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	// Test with invalid path (should fail to create directory)
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "docent-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify database file was created
	dbPath := filepath.Join(tempDir, "registry.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)

	// Verify database connection is working
	err = store.db.Ping()
	assert.NoError(t, err)
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "docent-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Create store in a nested directory that doesn't exist yet
	nestedDir := filepath.Join(tempDir, "nested", "path", "to", "db")
	store, err := NewStore(nestedDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	// Verify all directories were created
	assert.DirExists(t, nestedDir)
}

func TestNewStore_Migrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Verify schema_migrations table exists and records a version
	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Greater(t, count, 0, "should have at least one migration")

	// Verify the documents table exists
	var tableExists int
	err = store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
		"documents",
	).Scan(&tableExists)
	require.NoError(t, err)
	assert.Equal(t, 1, tableExists)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "docent-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	// Opening the same directory twice must not re-run migrations
	store1, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	var count int
	err = store2.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_Close(t *testing.T) {
	store, cleanup := setupTestStore(t)

	err := store.Close()
	assert.NoError(t, err)

	// Cleanup will try to close again; SQLite tolerates double close
	_ = cleanup
}

// ==================== Document Store Tests ====================

func TestDocumentStore_SaveAndGetDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	docStore := store.DocumentStore()
	doc := &domain.Document{
		ID:            "doc-1",
		Title:         "handbook",
		Filename:      "handbook.pdf",
		Pages:         12,
		ChunksTotal:   40,
		ChunksIndexed: 37,
		ChunksSkipped: 2,
		ChunksFailed:  1,
		CreatedAt:     time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	err := docStore.SaveDocument(ctx, doc)
	require.NoError(t, err)

	saved, err := docStore.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", saved.ID)
	assert.Equal(t, "handbook", saved.Title)
	assert.Equal(t, "handbook.pdf", saved.Filename)
	assert.Equal(t, 12, saved.Pages)
	assert.Equal(t, 40, saved.ChunksTotal)
	assert.Equal(t, 37, saved.ChunksIndexed)
	assert.Equal(t, 2, saved.ChunksSkipped)
	assert.Equal(t, 1, saved.ChunksFailed)
	assert.True(t, saved.CreatedAt.Equal(doc.CreatedAt))
}

func TestDocumentStore_SaveDocument_Update(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	docStore := store.DocumentStore()
	doc := testDocument("doc-1")
	require.NoError(t, docStore.SaveDocument(ctx, doc))

	doc.Title = "renamed"
	doc.ChunksIndexed = 5
	require.NoError(t, docStore.SaveDocument(ctx, doc))

	saved, err := docStore.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", saved.Title)
	assert.Equal(t, 5, saved.ChunksIndexed)

	// Still a single row
	docs, err := docStore.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestDocumentStore_SaveDocument_ZeroCreatedAt(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	docStore := store.DocumentStore()
	doc := &domain.Document{ID: "doc-1", Title: "untimed"}
	require.NoError(t, docStore.SaveDocument(ctx, doc))

	saved, err := docStore.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero(), "store should stamp a creation time")
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	doc, err := store.DocumentStore().GetDocument(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, doc)
}

func TestDocumentStore_ListDocuments_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	docs, err := store.DocumentStore().ListDocuments(context.Background())

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_ListDocuments_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	docStore := store.DocumentStore()
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	docs := []*domain.Document{
		{ID: "doc-old", Title: "old", CreatedAt: base},
		{ID: "doc-new", Title: "new", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "doc-mid", Title: "mid", CreatedAt: base.Add(time.Hour)},
	}
	for _, doc := range docs {
		require.NoError(t, docStore.SaveDocument(ctx, doc))
	}

	listed, err := docStore.ListDocuments(ctx)

	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "doc-new", listed[0].ID)
	assert.Equal(t, "doc-mid", listed[1].ID)
	assert.Equal(t, "doc-old", listed[2].ID)
}

func TestDocumentStore_DeleteDocument(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	docStore := store.DocumentStore()
	require.NoError(t, docStore.SaveDocument(ctx, testDocument("doc-1")))

	err := docStore.DeleteDocument(ctx, "doc-1")
	require.NoError(t, err)

	_, err = docStore.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument_NonExistent(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	err := store.DocumentStore().DeleteDocument(context.Background(), "nonexistent")
	assert.NoError(t, err)
}

func TestDocumentStore_PersistsAcrossReopen(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "docent-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store1, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store1.DocumentStore().SaveDocument(context.Background(), testDocument("doc-1")))
	require.NoError(t, store1.Close())

	store2, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store2.Close()

	saved, err := store2.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Test Document doc-1", saved.Title)
}
