package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dredimura/surface/pkg/domain"
	"github.com/dredimura/surface/pkg/ports"
)

// encryptedPrefix marks an activation code field holding a sealed record.
const encryptedPrefix = "enc:v1:"

var (
	// ErrInvalidKey is returned for keys that are not 32 bytes long.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes (AES-256)")
	// ErrNotEncrypted is returned when loading a record that was stored in the clear.
	ErrNotEncrypted = errors.New("activation record is not encrypted")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new records.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot open a record,
	// so keys can be rotated without losing activations.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.ActivationStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals activation records with AES-GCM.
// The stored record keeps only the machine id in the clear.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, ErrInvalidKey
	}
	for _, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key: %w", ErrInvalidKey)
		}
	}
	return func(next ports.ActivationStore) ports.ActivationStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, info domain.ActivationInfo) error {
	// 1. Serialize the real record
	plainText, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal activation: %w", err)
	}

	// 2. Encrypt, binding the ciphertext to the machine
	ciphertext, err := encrypt(plainText, m.config.ActiveKey, []byte(info.MachineID))
	if err != nil {
		return fmt.Errorf("failed to encrypt activation: %w", err)
	}

	// 3. Store an envelope that hides the code and license terms
	envelope := domain.ActivationInfo{
		MachineID:      info.MachineID,
		ActivationCode: encryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Save(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, machineID string) (*domain.ActivationInfo, error) {
	envelope, err := m.next.Load(ctx, machineID)
	if err != nil {
		return nil, err
	}

	sealed, ok := strings.CutPrefix(envelope.ActivationCode, encryptedPrefix)
	if !ok {
		return nil, ErrNotEncrypted
	}
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, []byte(machineID), m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt activation: %w", err)
	}

	var info domain.ActivationInfo
	if err := json.Unmarshal(plainText, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted activation: %w", err)
	}
	return &info, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, machineID string) error {
	return m.next.Delete(ctx, machineID)
}

// Helpers

func encrypt(plaintext, key, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, aad), nil
}

func decryptWithRotation(ciphertext, aad, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey, aad); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key, aad); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, aad)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
