package creds_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/quickmart/shelfsync/internal/creds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config.json")

	require.NoError(t, creds.Encode(path, &creds.Credentials{
		ClientID:     "my-client",
		ClientSecret: "s3cret",
	}))

	// The file on disk never contains the plaintext secret.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "s3cret")

	got, err := creds.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "my-client", got.ClientID)
	assert.Equal(t, "s3cret", got.ClientSecret)
	assert.Equal(t, creds.DefaultGrantType, got.GrantType)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := creds.Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadRejectsBadBase64(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"client_id":"!!!","client_secret":"!!!"}`), 0o600))

	_, err := creds.Load(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestLoadRequiresIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	_, err := creds.Load(path)
	assert.Error(t, err)
}
