package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mattter-gateway/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	fs := NewFileStore(path)

	creds := Credentials{Token: "tok", User: &domain.UserRecord{ID: 5, Username: "ana", Role: domain.RoleCatalyst}}
	require.NoError(t, fs.Save(creds))

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", loaded.Token)
	require.NotNil(t, loaded.User)
	assert.Equal(t, domain.RoleCatalyst, loaded.User.Role)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))
	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded.Token)
	assert.Nil(t, loaded.User)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	fs := NewFileStore(path)
	loaded, err := fs.Load()
	require.NoError(t, err, "corruption degrades to no credentials")
	assert.Empty(t, loaded.Token)
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	fs := NewFileStore(path)
	require.NoError(t, fs.Save(Credentials{Token: "tok"}))

	require.NoError(t, fs.Clear())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, fs.Clear(), "clearing twice is fine")
}
