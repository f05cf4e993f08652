// Package crypto implements the at-rest message cipher.
//
// Bodies are sealed with ChaCha20-Poly1305 under a single process-wide
// key derived from the configured secret. There is no key rotation:
// changing the secret makes all prior ciphertexts permanently
// undecryptable, which is the documented behaviour of this logger.
package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	keyInfo   = "chatlogger-msg-v1"
	nonceSize = chacha20poly1305.NonceSize
	keySize   = chacha20poly1305.KeySize
)

// DecryptFailedPlaceholder is returned in place of a body that could
// not be decrypted (wrong key, corrupted record, legacy plaintext).
// The read path renders it per message instead of failing a listing.
const DecryptFailedPlaceholder = "[decryption failed]"

var errCiphertextTooShort = errors.New("ciphertext too short")

// Cipher encrypts and decrypts message bodies. It is stateless given
// its key and safe for concurrent use.
type Cipher struct {
	key []byte
}

// NewCipher derives the sealing key from the configured secret using
// HKDF-SHA256, so any passphrase length yields a valid 32-byte key.
func NewCipher(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("encryption secret must not be empty")
	}

	key := make([]byte, keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, err
	}
	return &Cipher{key: key}, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
// The empty string maps to the empty string: empty sends are rejected
// upstream, and this keeps re-encryption of blank legacy rows a no-op.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	wire := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(wire), nil
}

// Decrypt opens a ciphertext produced by Encrypt. It never returns an
// error: any cryptographic failure is isolated to this one record and
// surfaced as DecryptFailedPlaceholder so a single bad row cannot
// abort a whole listing.
func (c *Cipher) Decrypt(ciphertext string) string {
	if ciphertext == "" {
		return ""
	}
	plaintext, err := c.open(ciphertext)
	if err != nil {
		return DecryptFailedPlaceholder
	}
	return plaintext
}

func (c *Cipher) open(ciphertext string) (string, error) {
	wire, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	if len(wire) < nonceSize+chacha20poly1305.Overhead {
		return "", errCiphertextTooShort
	}

	aead, err := chacha20poly1305.New(c.key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Open(nil, wire[:nonceSize], wire[nonceSize:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
