package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "ailab")

	_, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.DirExists(t, dir)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("completion.endpoint", "https://example.openai.azure.com"))

	val, ok := store.Get("completion.endpoint")
	assert.True(t, ok)
	assert.Equal(t, "https://example.openai.azure.com", val)
	assert.Equal(t, "https://example.openai.azure.com", store.GetString("completion.endpoint"))

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("completion.endpoint", "https://x"))
	require.NoError(t, store.Set("rag.top_k", 5))

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[completion]")
	assert.Contains(t, string(data), "[rag]")
	assert.NotContains(t, string(data), "'completion.endpoint'")
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	first, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set("index.name", "kb"))
	require.NoError(t, first.Set("rag.top_k", 7))
	require.NoError(t, first.Set("rag.temperature", 0.5))

	second, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "kb", second.GetString("index.name"))
	assert.Equal(t, 7, second.GetInt("rag.top_k"))
	val, ok := second.Get("rag.temperature")
	require.True(t, ok)
	assert.InDelta(t, 0.5, val, 1e-9)
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[completion]
provider = "azure"
endpoint = "https://res.openai.azure.com"

[index]
backend = "sqlite"
tags = ["a", "b"]
top_k = 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "azure", store.GetString("completion.provider"))
	assert.Equal(t, "https://res.openai.azure.com", store.GetString("completion.endpoint"))
	assert.Equal(t, "sqlite", store.GetString("index.backend"))
	assert.Equal(t, 3, store.GetInt("index.top_k"))
	tags, ok := store.Get("index.tags")
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, tags)
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)

	assert.Error(t, err)
}

func TestConfigStore_TypeMismatch(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("n", "12"))
	require.NoError(t, store.Set("s", 3))

	assert.Equal(t, 12, store.GetInt("n"))
	assert.Empty(t, store.GetString("s"))
	assert.Zero(t, store.GetInt("missing"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("completion.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SetLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("index.name", "kb"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ConfigFile, entries[0].Name())
}

func TestConfigStore_SetFailureKeepsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("index.name", "kb"))

	store.path = filepath.Join(dir, "missing", ConfigFile)
	assert.Error(t, store.Set("index.name", "other"))
	assert.Error(t, store.Set("index.path", "/tmp/x"))

	assert.Equal(t, "kb", store.GetString("index.name"))
	_, ok := store.Get("index.path")
	assert.False(t, ok)
}

func TestFlattenAndUnflatten(t *testing.T) {
	nested := map[string]any{
		"completion": map[string]any{"endpoint": "e", "api_key": "k"},
		"top":        1,
	}

	flat := make(map[string]any)
	flattenInto(flat, "", nested)
	assert.Equal(t, map[string]any{"completion.endpoint": "e", "completion.api_key": "k", "top": 1}, flat)
	assert.Equal(t, nested, unflatten(flat))
}
