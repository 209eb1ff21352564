package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_Success(t *testing.T) {
	store, dir := setupTestStore(t)
	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".preciar", FileName), store.Path())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nested)
	require.NoError(t, err)
	require.NotNil(t, store)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("not toml {{[["), 0o600))

	store, err := NewConfigStore(dir)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := setupTestStore(t)

	require.NoError(t, store.Set("dataset.base", "entrenamiento"))
	require.NoError(t, store.Set("training.rf_trees", int64(150)))
	require.NoError(t, store.Set("training.gb_learning_rate", 0.1))
	require.NoError(t, store.Set("scheduler.enabled", true))
	require.NoError(t, store.Set("cleaning.drop", []string{"l1", "l2"}))

	assert.Equal(t, "entrenamiento", store.GetString("dataset.base"))
	assert.Equal(t, 150, store.GetInt("training.rf_trees"))
	assert.InDelta(t, 150.0, store.GetFloat("training.rf_trees"), 1e-9, "integers widen")
	assert.InDelta(t, 0.1, store.GetFloat("training.gb_learning_rate"), 1e-9)
	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, []string{"l1", "l2"}, store.GetStringSlice("cleaning.drop"))

	t.Run("wrong types return zero values", func(t *testing.T) {
		assert.Empty(t, store.GetString("training.rf_trees"))
		assert.Zero(t, store.GetInt("dataset.base"))
		assert.Zero(t, store.GetFloat("dataset.base"))
		assert.False(t, store.GetBool("dataset.base"))
		assert.Nil(t, store.GetStringSlice("dataset.base"))
	})

	t.Run("missing keys return zero values", func(t *testing.T) {
		_, ok := store.Get("missing")
		assert.False(t, ok)
		assert.Empty(t, store.GetString("missing"))
		assert.Zero(t, store.GetFloat("missing"))
	})
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	store, dir := setupTestStore(t)

	require.NoError(t, store.Set("training.rf_trees", int64(120)))
	require.NoError(t, store.Set("training.gb_subsample", 0.7))
	require.NoError(t, store.Set("serving.addr", ":9000"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[training]")
	assert.Contains(t, string(data), "[serving]")

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 120, reloaded.GetInt("training.rf_trees"))
	assert.InDelta(t, 0.7, reloaded.GetFloat("training.gb_subsample"), 1e-9)
	assert.Equal(t, ":9000", reloaded.GetString("serving.addr"))
	assert.Equal(t, []string{"serving.addr", "training.gb_subsample", "training.rf_trees"}, reloaded.Keys())
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[paths]
models_dir = "/srv/models"

[training]
test_size = 0.25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/models", store.GetString("paths.models_dir"))
	assert.InDelta(t, 0.25, store.GetFloat("training.test_size"), 1e-9)
}

func TestConfigStore_Set_Errors(t *testing.T) {
	store, _ := setupTestStore(t)

	assert.Error(t, store.Set("", "x"))

	require.NoError(t, store.Set("log", "text"))
	err := store.Set("log.format", "json")
	require.Error(t, err)
	_, ok := store.Get("log.format")
	assert.False(t, ok, "failed set is rolled back")

	err = store.Set("channel", make(chan int))
	assert.Error(t, err)
	_, ok = store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Set_WriteError(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.Set("a", "1"))

	// A directory in place of the file makes the rename fail.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0o700))

	assert.Error(t, store.Set("a", "2"))
	assert.Equal(t, "1", store.GetString("a"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := setupTestStore(t)
	require.NoError(t, store.Set("a", "b"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestConfigStore_Load_CommentOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("# nothing\n"), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := setupTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("workers.count", int64(n))
			_ = store.GetInt("workers.count")
			_ = store.Keys()
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("workers.count")
	assert.True(t, ok)
}

func TestUnflattenMap(t *testing.T) {
	nested, err := unflattenMap(map[string]any{"a.b.c": 1, "a.d": 2, "e": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 1}, "d": 2},
		"e": 3,
	}, nested)

	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": 2, "e": 3}, flattenMap(nested, ""))
}
