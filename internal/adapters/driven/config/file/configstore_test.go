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

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	store, err := NewConfigStore("")

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(home, ".runlog", "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(KeyOutputRoot, "/tmp/export")
	require.NoError(t, err)

	val, ok := store.Get(KeyOutputRoot)
	assert.True(t, ok)
	assert.Equal(t, "/tmp/export", val)
}

func TestConfigStore_GetString(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(KeyBaseURL, "http://example.com")
	require.NoError(t, err)

	assert.Equal(t, "http://example.com", store.GetString(KeyBaseURL))

	// Non-existent key
	assert.Equal(t, "", store.GetString("nonexistent"))

	// Wrong type
	err = store.Set(KeyConcurrency, 5)
	require.NoError(t, err)
	assert.Equal(t, "", store.GetString(KeyConcurrency))
}

func TestConfigStore_GetInt(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(KeyConcurrency, 8)
	require.NoError(t, err)

	assert.Equal(t, 8, store.GetInt(KeyConcurrency))

	// Non-existent key
	assert.Equal(t, 0, store.GetInt("nonexistent"))

	// Wrong type
	err = store.Set(KeyBaseURL, "not an int")
	require.NoError(t, err)
	assert.Equal(t, 0, store.GetInt(KeyBaseURL))
}

func TestConfigStore_GetInt_Int64Type(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	// Simulate the TOML decoder's int64
	store.mu.Lock()
	store.data[KeyRetryAttempts] = int64(9)
	store.mu.Unlock()

	assert.Equal(t, 9, store.GetInt(KeyRetryAttempts))
}

func TestConfigStore_GetFloat(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(KeyRatePerSecond, 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, store.GetFloat(KeyRatePerSecond))

	// TOML integers widen to float
	store.mu.Lock()
	store.data["whole"] = int64(3)
	store.mu.Unlock()
	assert.Equal(t, 3.0, store.GetFloat("whole"))

	// Non-existent key
	assert.Equal(t, 0.0, store.GetFloat("nonexistent"))

	// Wrong type
	err = store.Set(KeyBaseURL, "fast")
	require.NoError(t, err)
	assert.Equal(t, 0.0, store.GetFloat(KeyBaseURL))
}

func TestConfigStore_GetBool(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set("verbose", true)
	require.NoError(t, err)
	assert.True(t, store.GetBool("verbose"))

	err = store.Set("quiet", false)
	require.NoError(t, err)
	assert.False(t, store.GetBool("quiet"))

	// Non-existent key
	assert.False(t, store.GetBool("nonexistent"))

	// Wrong type
	err = store.Set(KeyBaseURL, "true")
	require.NoError(t, err)
	assert.False(t, store.GetBool(KeyBaseURL))
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store1.Set(KeyBaseURL, "http://example.com"))
	require.NoError(t, store1.Set(KeyConcurrency, 3))
	require.NoError(t, store1.Set(KeyRatePerSecond, 1.5))
	require.NoError(t, store1.Set("verbose", true))

	// A fresh instance loads from the same file
	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com", store2.GetString(KeyBaseURL))
	assert.Equal(t, 3, store2.GetInt(KeyConcurrency))
	assert.Equal(t, 1.5, store2.GetFloat(KeyRatePerSecond))
	assert.True(t, store2.GetBool("verbose"))
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Load_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("[site]\nbase_url = \"http://example.com\"\n\n[rate]\nper_second = 2.0\nburst = 4\n")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com", store.GetString(KeyBaseURL))
	assert.Equal(t, 2.0, store.GetFloat(KeyRatePerSecond))
	assert.Equal(t, 4, store.GetInt(KeyRateBurst))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	err = store.Set(KeyBaseURL, "http://example.com")
	require.NoError(t, err)

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	val, ok := store.Get("any_key")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	corrupted := []byte("this is not valid TOML {{{[[")
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), corrupted, 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_OverwriteValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyOutputRoot, "original"))
	assert.Equal(t, "original", store.GetString(KeyOutputRoot))

	require.NoError(t, store.Set(KeyOutputRoot, "updated"))
	assert.Equal(t, "updated", store.GetString(KeyOutputRoot))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_, _ = store.Get(key)
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	nestedPath := filepath.Join(t.TempDir(), "nested", "deep", "path")

	store, err := NewConfigStore(nestedPath)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(nestedPath, "config.toml"), store.Path())

	info, err := os.Stat(nestedPath)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}
