package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func sampleCredentials(profile string) *Credentials {
	return &Credentials{
		Profile:           profile,
		ConsumerKey:       "consumer_key_12345",
		ConsumerSecret:    "consumer_secret_67890",
		AccessToken:       "access_token_abcdef",
		AccessTokenSecret: "access_token_secret_ghijkl",
	}
}

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvConsumerKey, EnvConsumerSecret, EnvAccessToken, EnvAccessTokenSecret} {
		t.Setenv(name, "")
	}
}

func TestCredentialsValidate(t *testing.T) {
	assert.NoError(t, sampleCredentials("default").Validate())

	creds := sampleCredentials("default")
	creds.AccessTokenSecret = ""
	creds.ConsumerKey = ""
	err := creds.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "consumer key is required")
	assert.Contains(t, err.Error(), "access token secret is required")
}

func TestCredentialsSessions(t *testing.T) {
	creds := sampleCredentials("default")

	session := creds.UserSession()
	assert.Equal(t, creds.ConsumerKey, session.ConsumerKey)
	assert.Equal(t, creds.AccessTokenSecret, session.AccessTokenSecret)

	app := creds.AppCredentials()
	assert.Equal(t, creds.ConsumerKey, app.ConsumerKey)
	assert.Equal(t, creds.ConsumerSecret, app.ConsumerSecret)
}

func TestCredentialManager(t *testing.T) {
	manager, mockStore := NewMockManager()

	creds := sampleCredentials("")
	require.NoError(t, manager.Store(creds))
	assert.Equal(t, DefaultProfile, creds.Profile)
	assert.False(t, creds.LastModified.IsZero())

	retrieved, err := manager.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, creds.ConsumerSecret, retrieved.ConsumerSecret)

	require.NoError(t, manager.Store(sampleCredentials("work")))
	list, err := manager.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "default", list[0].Profile)
	assert.Equal(t, "work", list[1].Profile)

	require.NoError(t, manager.Delete("work"))
	_, err = manager.Retrieve("work")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.Equal(t, 1, mockStore.Count())

	err = manager.Delete("work")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerStoreRejectsIncomplete(t *testing.T) {
	manager, mockStore := NewMockManager()

	creds := sampleCredentials("default")
	creds.ConsumerSecret = ""
	assert.ErrorIs(t, manager.Store(creds), ErrInvalidCredentials)
	assert.Equal(t, 0, mockStore.Count())
}

func TestManagerStoreFallsBack(t *testing.T) {
	failing := NewMockStore()
	failing.StoreError = errors.New("keychain locked")
	fallback := NewMockStore()

	manager := NewManagerWithStores(failing, fallback)
	require.NoError(t, manager.Store(sampleCredentials("default")))
	assert.True(t, fallback.Exists("default"))
	assert.False(t, failing.Exists("default"))
}

func TestManagerResolve(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv(EnvConsumerKey, "env_ck")
		t.Setenv(EnvConsumerSecret, "env_cs")
		t.Setenv(EnvAccessToken, "env_at")
		t.Setenv(EnvAccessTokenSecret, "env_ats")

		store := NewMockStore()
		require.NoError(t, store.Store(sampleCredentials("default")))
		manager := NewManagerWithStores(store, NewEnvironmentStore())

		creds, err := manager.Resolve("default")
		require.NoError(t, err)
		assert.Equal(t, "env_ck", creds.ConsumerKey)
	})

	t.Run("partial environment is an error", func(t *testing.T) {
		clearCredentialEnv(t)
		t.Setenv(EnvConsumerKey, "env_ck")

		store := NewMockStore()
		require.NoError(t, store.Store(sampleCredentials("default")))
		manager := NewManagerWithStores(store, NewEnvironmentStore())

		_, err := manager.Resolve("default")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("stored profile", func(t *testing.T) {
		clearCredentialEnv(t)

		store := NewMockStore()
		require.NoError(t, store.Store(sampleCredentials("work")))
		manager := NewManagerWithStores(store, NewEnvironmentStore())

		creds, err := manager.Resolve("work")
		require.NoError(t, err)
		assert.Equal(t, "work", creds.Profile)

		_, err = manager.Resolve("default")
		assert.ErrorIs(t, err, ErrCredentialsNotFound)
	})
}

func TestEnvironmentStore(t *testing.T) {
	clearCredentialEnv(t)
	store := NewEnvironmentStore()

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
	assert.False(t, store.Exists(""))

	t.Setenv(EnvConsumerKey, "ck")
	t.Setenv(EnvConsumerSecret, "cs")
	t.Setenv(EnvAccessToken, "at")
	t.Setenv(EnvAccessTokenSecret, "ats")

	creds, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile, creds.Profile)
	assert.Equal(t, "ats", creds.AccessTokenSecret)

	list, err := store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "env", list[0].Profile)

	assert.ErrorIs(t, store.Store(creds), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("default"), ErrStoreUnavailable)
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	creds := sampleCredentials("default")
	require.NoError(t, store.Store(creds))
	require.NoError(t, store.Store(sampleCredentials("work")))

	retrieved, err := store.Retrieve("default")
	require.NoError(t, err)
	assert.Equal(t, creds.AccessTokenSecret, retrieved.AccessTokenSecret)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(content, []byte(creds.ConsumerSecret)), "file holds plaintext secret")
	assert.False(t, bytes.Contains(content, []byte(creds.AccessToken)), "file holds plaintext token")

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete("work"))
	require.NoError(t, store.Delete("default"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file should be removed with the last profile")
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(PassphraseEnv, "right")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(sampleCredentials("default")))

	t.Setenv(PassphraseEnv, "wrong")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = other.Retrieve("default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decrypt")
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	store, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	require.NoError(t, store.Store(sampleCredentials("default")))

	info, err := os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// A second store over the same directory reads the same passphrase
	again, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)
	assert.True(t, again.Exists("default"))
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(sampleCredentials("default")))
	require.NoError(t, store.Store(sampleCredentials("work")))
	assert.True(t, store.Exists("work"))

	list, err := store.List()
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, store.Delete("work"))
	assert.ErrorIs(t, store.Delete("work"), ErrCredentialsNotFound)

	list, err = store.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "default", list[0].Profile)
}

func TestSanitizeCredentials(t *testing.T) {
	creds := sampleCredentials("default")
	sanitized := SanitizeCredentials(creds)

	assert.Equal(t, "default", sanitized.Profile)
	assert.Equal(t, "cons...2345", sanitized.ConsumerKey)
	assert.NotEqual(t, creds.AccessTokenSecret, sanitized.AccessTokenSecret)
	assert.Equal(t, "********", maskString("short"))
	assert.Nil(t, SanitizeCredentials(nil))
}

func TestShowCredentialsGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowCredentialsGuide(&buf)
	assert.Contains(t, buf.String(), EnvAccessTokenSecret)
}
