package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"twfollowers/pkg/twitter"
)

// DefaultProfile is the profile used when none is named
const DefaultProfile = "default"

// Credentials are the four API secrets of one Twitter app and its owner
type Credentials struct {
	Profile           string    `json:"profile"`
	ConsumerKey       string    `json:"consumer_key"`
	ConsumerSecret    string    `json:"consumer_secret"`
	AccessToken       string    `json:"access_token"`
	AccessTokenSecret string    `json:"access_token_secret"`
	LastModified      time.Time `json:"last_modified"`
}

// Validate requires all four secrets
func (c *Credentials) Validate() error {
	var errs []error
	if c.ConsumerKey == "" {
		errs = append(errs, errors.New("consumer key is required"))
	}
	if c.ConsumerSecret == "" {
		errs = append(errs, errors.New("consumer secret is required"))
	}
	if c.AccessToken == "" {
		errs = append(errs, errors.New("access token is required"))
	}
	if c.AccessTokenSecret == "" {
		errs = append(errs, errors.New("access token secret is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, errors.Join(errs...))
	}
	return nil
}

// UserSession returns the user-context session used for account lookups
func (c *Credentials) UserSession() twitter.UserSession {
	return twitter.UserSession{
		ConsumerKey:       c.ConsumerKey,
		ConsumerSecret:    c.ConsumerSecret,
		AccessToken:       c.AccessToken,
		AccessTokenSecret: c.AccessTokenSecret,
	}
}

// AppCredentials returns the consumer pair used for the token exchange
func (c *Credentials) AppCredentials() twitter.AppCredentials {
	return twitter.AppCredentials{
		ConsumerKey:    c.ConsumerKey,
		ConsumerSecret: c.ConsumerSecret,
	}
}

// CredentialStore is the interface for storing and retrieving credentials
type CredentialStore interface {
	// Store saves credentials under their profile name
	Store(creds *Credentials) error

	// Retrieve gets credentials for a profile
	Retrieve(profile string) (*Credentials, error)

	// List returns all stored profiles
	List() ([]*Credentials, error)

	// Delete removes credentials for a profile
	Delete(profile string) error

	// Exists checks if credentials exist for a profile
	Exists(profile string) bool
}

// Manager handles credential storage with fallback mechanisms
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a credential manager over the keychain, the encrypted
// file and the environment, in that order
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a Manager over the given stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store validates creds and saves them in the first store that accepts them
func (m *Manager) Store(creds *Credentials) error {
	if creds == nil {
		return ErrInvalidCredentials
	}
	if creds.Profile == "" {
		creds.Profile = DefaultProfile
	}
	if err := creds.Validate(); err != nil {
		return err
	}

	creds.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(creds)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve gets credentials from the first store that has the profile
func (m *Manager) Retrieve(profile string) (*Credentials, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	for _, store := range m.stores {
		if creds, err := store.Retrieve(profile); err == nil && creds != nil {
			return creds, nil
		}
	}
	return nil, fmt.Errorf("%w for profile: %s", ErrCredentialsNotFound, profile)
}

// Resolve returns validated credentials for profile. A complete set in the
// environment wins over stored profiles; a partial set is an error.
func (m *Manager) Resolve(profile string) (*Credentials, error) {
	for _, store := range m.stores {
		env, ok := store.(*EnvironmentStore)
		if !ok {
			continue
		}
		creds, err := env.Retrieve(profile)
		if err == nil {
			return creds, nil
		}
		if !errors.Is(err, ErrCredentialsNotFound) {
			return nil, err
		}
	}

	creds, err := m.Retrieve(profile)
	if err != nil {
		return nil, err
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// List returns all profiles known to any store, sorted by name
func (m *Manager) List() ([]*Credentials, error) {
	byProfile := make(map[string]*Credentials)

	for _, store := range m.stores {
		list, err := store.List()
		if err != nil {
			continue
		}
		for _, creds := range list {
			// Use the most recently modified version
			if existing, ok := byProfile[creds.Profile]; !ok || creds.LastModified.After(existing.LastModified) {
				byProfile[creds.Profile] = creds
			}
		}
	}

	result := make([]*Credentials, 0, len(byProfile))
	for _, creds := range byProfile {
		result = append(result, creds)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Profile < result[j].Profile })

	return result, nil
}

// Delete removes the profile from every store that has it
func (m *Manager) Delete(profile string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(profile); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w for profile: %s", ErrCredentialsNotFound, profile)
}

// getConfigDir returns the per-user configuration directory
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "twfollowers")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "twfollowers")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "twfollowers")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "twfollowers")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeCredentials returns a copy with every secret masked
func SanitizeCredentials(creds *Credentials) *Credentials {
	if creds == nil {
		return nil
	}

	return &Credentials{
		Profile:           creds.Profile,
		ConsumerKey:       maskString(creds.ConsumerKey),
		ConsumerSecret:    maskString(creds.ConsumerSecret),
		AccessToken:       maskString(creds.AccessToken),
		AccessTokenSecret: maskString(creds.AccessTokenSecret),
		LastModified:      creds.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
