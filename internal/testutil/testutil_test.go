package testutil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/lepinkainen/booklist/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnvPathStaysInSandbox(t *testing.T) {
	env := NewTestEnv(t)

	p := env.Path("a", "b.txt")
	assert.Equal(t, filepath.Join(env.RootDir(), "a", "b.txt"), p)
	assert.True(t, env.isWithinSandbox(p))
	assert.False(t, env.isWithinSandbox(filepath.Join(env.RootDir(), "..", "escape")))
}

func TestTestEnvWriteFile(t *testing.T) {
	env := NewTestEnv(t)

	env.WriteFileString("nested/dir/file.txt", "hello")

	require.True(t, env.FileExists("nested/dir/file.txt"))
	content, err := os.ReadFile(env.Path("nested", "dir", "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
	assert.False(t, env.FileExists("missing.txt"))
}

func TestChdirRestoresWorkingDirectory(t *testing.T) {
	orig, err := os.Getwd()
	require.NoError(t, err)

	t.Run("inner", func(t *testing.T) {
		env := NewTestEnv(t)
		env.WriteFileString("sub/.keep", "")
		env.Chdir("sub")

		wd, err := os.Getwd()
		require.NoError(t, err)
		resolved, err := filepath.EvalSymlinks(env.Path("sub"))
		require.NoError(t, err)
		wdResolved, err := filepath.EvalSymlinks(wd)
		require.NoError(t, err)
		assert.Equal(t, resolved, wdResolved)
	})

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, orig, wd)
}

func TestResetConfigRestoresState(t *testing.T) {
	config.GoogleBooksAPIKey = "outer"
	t.Cleanup(func() { config.GoogleBooksAPIKey = "" })

	t.Run("inner", func(t *testing.T) {
		ResetConfig(t)
		assert.Equal(t, "", config.GoogleBooksAPIKey)
		assert.Equal(t, config.DefaultWebAddr, config.WebAddr)
		config.GoogleBooksAPIKey = "inner"
	})

	assert.Equal(t, "outer", config.GoogleBooksAPIKey)
}

func TestSetupTestCache(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	env := NewTestEnv(t)

	path := SetupTestCache(t, env)

	assert.Equal(t, path, viper.GetString("cache.dbfile"))
	assert.Equal(t, "1h", viper.GetString("cache.ttl"))
}

func TestGoldenHelper(t *testing.T) {
	env := NewTestEnv(t)
	env.WriteFileString("golden/plain.txt", "line one\n")
	env.WriteFileString("golden/data.json", `{"a": 1, "b": [1, 2]}`)

	t.Setenv("UPDATE_GOLDEN", "")
	g := NewGoldenHelper(t, env.Path("golden"))

	g.AssertGoldenString("plain.txt", "line one\n")
	g.AssertGoldenJSON("data.json", []byte(`{"b":[1,2],"a":1}`))
}

func TestNewIPv4TestServer(t *testing.T) {
	server := NewIPv4TestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	}))

	resp, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
