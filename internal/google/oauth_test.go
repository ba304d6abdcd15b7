package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	t.Run("fills defaults", func(t *testing.T) {
		cfg := Config{}.Normalize()
		assert.NotEmpty(t, cfg.ClientID)
		assert.NotEmpty(t, cfg.ClientSecret)
		assert.Contains(t, cfg.TokenFile, "inboxtidy")
		assert.NotEmpty(t, cfg.Scopes)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		cfg := Config{
			ClientID:  "client",
			TokenFile: "/tmp/custom.token",
			Scopes:    []string{"scope-a"},
		}.Normalize()
		assert.Equal(t, "client", cfg.ClientID)
		assert.Equal(t, "/tmp/custom.token", cfg.TokenFile)
		assert.Equal(t, []string{"scope-a"}, cfg.Scopes)
	})
}

func TestHasToken(t *testing.T) {
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "google.token")
	cfg := Config{TokenFile: tokenFile}

	assert.False(t, HasToken(cfg))

	require.NoError(t, os.WriteFile(tokenFile, []byte("access refresh"), 0600))
	assert.True(t, HasToken(cfg))
}

func TestGetTokenSourceErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := Config{TokenFile: filepath.Join(t.TempDir(), "missing.token")}
		_, err := GetTokenSource(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "inboxtidy auth")
	})

	t.Run("malformed token file", func(t *testing.T) {
		tokenFile := filepath.Join(t.TempDir(), "google.token")
		require.NoError(t, os.WriteFile(tokenFile, []byte("only-one-field"), 0600))

		_, err := GetTokenSource(context.Background(), Config{TokenFile: tokenFile})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token format")
	})
}

func TestGetAuthURL(t *testing.T) {
	url := GetAuthURL(Config{ClientID: "test-client"})
	assert.Contains(t, url, "test-client")
	assert.Contains(t, url, "accounts.google.com")
}
