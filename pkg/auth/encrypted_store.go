package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/pbkdf2"
)

// PassphraseEnv overrides the generated passphrase of the encrypted store
const PassphraseEnv = "TWFOLLOWERS_PASSPHRASE"

const (
	saltSize   = 32
	keySize    = 32
	iterations = 100000
)

// EncryptedFileStore keeps every profile in one AES-GCM encrypted file
type EncryptedFileStore struct {
	filepath   string
	passphrase string
	mu         sync.RWMutex
}

// envelope is the on-disk layout of the encrypted file
type envelope struct {
	Salt      string    `json:"salt"`
	Encrypted string    `json:"encrypted"`
	Version   int       `json:"version"`
	Modified  time.Time `json:"modified"`
}

type profiles map[string]Credentials

// NewEncryptedFileStore creates a new encrypted file-based credential store
func NewEncryptedFileStore(filePath string) (*EncryptedFileStore, error) {
	dir := filepath.Dir(filePath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	passphrase, err := loadPassphrase(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}

	return &EncryptedFileStore{
		filepath:   filePath,
		passphrase: passphrase,
	}, nil
}

// Store saves credentials to the encrypted file
func (e *EncryptedFileStore) Store(creds *Credentials) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if creds == nil || creds.Profile == "" {
		return ErrInvalidCredentials
	}

	salt, all, err := e.load()
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load existing data: %w", err)
	}
	if all == nil {
		all = make(profiles)
	}

	all[creds.Profile] = *creds
	return e.save(salt, all)
}

// Retrieve gets credentials from the encrypted file
func (e *EncryptedFileStore) Retrieve(profile string) (*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if profile == "" {
		return nil, ErrInvalidCredentials
	}

	_, all, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	creds, ok := all[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &creds, nil
}

// List returns all stored profiles
func (e *EncryptedFileStore) List() ([]*Credentials, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, all, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return []*Credentials{}, nil
		}
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	list := make([]*Credentials, 0, len(all))
	for _, creds := range all {
		c := creds
		list = append(list, &c)
	}
	return list, nil
}

// Delete removes a profile; the file goes away with the last one
func (e *EncryptedFileStore) Delete(profile string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if profile == "" {
		return ErrInvalidCredentials
	}

	salt, all, err := e.load()
	if err != nil {
		if os.IsNotExist(err) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to load data: %w", err)
	}

	if _, ok := all[profile]; !ok {
		return ErrCredentialsNotFound
	}
	delete(all, profile)

	if len(all) == 0 {
		return os.Remove(e.filepath)
	}
	return e.save(salt, all)
}

// Exists checks if credentials exist
func (e *EncryptedFileStore) Exists(profile string) bool {
	creds, err := e.Retrieve(profile)
	return err == nil && creds != nil
}

// load reads and decrypts the file, returning its salt and contents
func (e *EncryptedFileStore) load() ([]byte, profiles, error) {
	content, err := os.ReadFile(e.filepath)
	if err != nil {
		return nil, nil, err
	}

	var env envelope
	if err := json.Unmarshal(content, &env); err != nil {
		return nil, nil, fmt.Errorf("failed to parse file: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(env.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode salt: %w", err)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Encrypted)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode encrypted data: %w", err)
	}

	plaintext, err := decrypt(ciphertext, deriveKey(e.passphrase, salt))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decrypt data: %w", err)
	}

	var all profiles
	if err := json.Unmarshal(plaintext, &all); err != nil {
		return nil, nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	return salt, all, nil
}

// save encrypts all and replaces the file, generating a salt on first write
func (e *EncryptedFileStore) save(salt []byte, all profiles) error {
	if len(salt) == 0 {
		salt = make([]byte, saltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}
	}

	plaintext, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to marshal profiles: %w", err)
	}

	ciphertext, err := encrypt(plaintext, deriveKey(e.passphrase, salt))
	if err != nil {
		return fmt.Errorf("failed to encrypt data: %w", err)
	}

	content, err := json.MarshalIndent(envelope{
		Salt:      base64.StdEncoding.EncodeToString(salt),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
		Version:   1,
		Modified:  time.Now(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal file data: %w", err)
	}

	tempFile := e.filepath + ".tmp"
	if err := os.WriteFile(tempFile, content, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return os.Rename(tempFile, e.filepath)
}

func deriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, keySize, sha256.New)
}

// loadPassphrase reads PassphraseEnv, then dir/.passphrase, generating the
// file on first use
func loadPassphrase(dir string) (string, error) {
	if pass := os.Getenv(PassphraseEnv); pass != "" {
		return pass, nil
	}

	passphraseFile := filepath.Join(dir, ".passphrase")
	if content, err := os.ReadFile(passphraseFile); err == nil && len(content) > 0 {
		return string(content), nil
	}

	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	passphrase := base64.URLEncoding.EncodeToString(b)

	if err := os.WriteFile(passphraseFile, []byte(passphrase), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return passphrase, nil
}

// encrypt encrypts data using AES-GCM
func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt decrypts data using AES-GCM
func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
