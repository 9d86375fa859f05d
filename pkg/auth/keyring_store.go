package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "twfollowers"
	keyringPrefix  = "profile_"

	// keyringIndex lists stored profile names; go-keyring cannot enumerate
	keyringIndex = "profiles"
)

// KeyringStore implements CredentialStore using the system keychain
type KeyringStore struct{}

// NewKeyringStore probes the keychain and fails when it cannot be written
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves credentials to the system keychain
func (k *KeyringStore) Store(creds *Credentials) error {
	if creds == nil || creds.Profile == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+creds.Profile, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return k.updateIndex(func(names map[string]bool) { names[creds.Profile] = true })
}

// Retrieve gets credentials from the system keychain
func (k *KeyringStore) Retrieve(profile string) (*Credentials, error) {
	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+profile)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credentials: %w", err)
	}

	return &creds, nil
}

// List returns every profile recorded in the index
func (k *KeyringStore) List() ([]*Credentials, error) {
	names, err := k.readIndex()
	if err != nil {
		return nil, err
	}

	list := make([]*Credentials, 0, len(names))
	for name := range names {
		creds, err := k.Retrieve(name)
		if err != nil {
			continue
		}
		list = append(list, creds)
	}
	return list, nil
}

// Delete removes credentials from the system keychain
func (k *KeyringStore) Delete(profile string) error {
	if profile == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+profile); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return k.updateIndex(func(names map[string]bool) { delete(names, profile) })
}

// Exists checks if credentials exist in the keychain
func (k *KeyringStore) Exists(profile string) bool {
	if profile == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+profile)
	return err == nil
}

func (k *KeyringStore) readIndex() (map[string]bool, error) {
	names := make(map[string]bool)

	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return names, nil
		}
		return nil, fmt.Errorf("failed to read keyring index: %w", err)
	}

	var list []string
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("failed to parse keyring index: %w", err)
	}
	for _, name := range list {
		names[name] = true
	}
	return names, nil
}

func (k *KeyringStore) updateIndex(update func(names map[string]bool)) error {
	names, err := k.readIndex()
	if err != nil {
		return err
	}
	update(names)

	list := make([]string, 0, len(names))
	for name := range names {
		list = append(list, name)
	}
	sort.Strings(list)

	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to write keyring index: %w", err)
	}
	return nil
}
