package auth

import (
	"os"
	"time"
)

// Environment variable names holding the API secrets
const (
	EnvConsumerKey       = "CONSUMER_KEY"
	EnvConsumerSecret    = "CONSUMER_SECRET"
	EnvAccessToken       = "ACCESS_TOKEN"
	EnvAccessTokenSecret = "ACCESS_TOKEN_SECRET"
)

// EnvironmentStore reads credentials from the process environment. It is
// read-only and answers for any profile name.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(creds *Credentials) error {
	return ErrStoreUnavailable
}

// Retrieve returns ErrCredentialsNotFound when none of the variables are
// set and a validation error when only some of them are
func (e *EnvironmentStore) Retrieve(profile string) (*Credentials, error) {
	creds := &Credentials{
		Profile:           profile,
		ConsumerKey:       os.Getenv(EnvConsumerKey),
		ConsumerSecret:    os.Getenv(EnvConsumerSecret),
		AccessToken:       os.Getenv(EnvAccessToken),
		AccessTokenSecret: os.Getenv(EnvAccessTokenSecret),
		LastModified:      time.Now(),
	}
	if creds.Profile == "" {
		creds.Profile = DefaultProfile
	}

	if creds.ConsumerKey == "" && creds.ConsumerSecret == "" && creds.AccessToken == "" && creds.AccessTokenSecret == "" {
		return nil, ErrCredentialsNotFound
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	return creds, nil
}

// List returns the environment set as a profile named "env"
func (e *EnvironmentStore) List() ([]*Credentials, error) {
	creds, err := e.Retrieve("env")
	if err != nil {
		return []*Credentials{}, nil
	}
	return []*Credentials{creds}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(profile string) error {
	return ErrStoreUnavailable
}

// Exists checks if a complete set is present in the environment
func (e *EnvironmentStore) Exists(profile string) bool {
	_, err := e.Retrieve(profile)
	return err == nil
}
