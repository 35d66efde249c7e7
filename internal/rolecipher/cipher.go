// Package rolecipher encrypts the compact role-claim payload carried inside
// the bearer token's subject field. The cipher is AES-256-CBC with a fixed
// IV and PKCS#7 padding; ciphertext travels base64url-encoded.
package rolecipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gatehouse-io/gatehouse/internal/apperr"
)

const (
	// KeySize selects AES-256.
	KeySize = 32
	// IVSize is one AES block.
	IVSize = aes.BlockSize
)

// Claim is the payload hidden inside the bearer token's subject.
type Claim struct {
	UserRole string `json:"user_role"`
}

// Cipher performs symmetric encrypt/decrypt of a Claim. Key and IV are
// immutable after construction; the zero value is not usable.
type Cipher struct {
	block cipher.Block
	iv    []byte
}

// New builds a Cipher from externally provided key material. Losing the key
// invalidates every outstanding bearer token's role claim, so deployments
// that must survive restarts load key and IV from configuration.
func New(key, iv []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("rolecipher: key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("rolecipher: iv must be %d bytes, got %d", IVSize, len(iv))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return &Cipher{block: block, iv: append([]byte(nil), iv...)}, nil
}

// NewEphemeral generates fresh key material for the lifetime of the
// process. Bearer tokens issued by a previous process cannot be decrypted
// afterwards; callers accept mass session invalidation on restart.
func NewEphemeral() (*Cipher, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	return New(key, iv)
}

// EncryptClaim serializes and encrypts the role claim.
func (c *Cipher) EncryptClaim(claim Claim) (string, error) {
	plaintext, err := json.Marshal(claim)
	if err != nil {
		return "", err
	}

	padded := pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, c.iv).CryptBlocks(out, padded)

	return base64.RawURLEncoding.EncodeToString(out), nil
}

// DecryptClaim reverses EncryptClaim. Every failure mode — bad encoding,
// truncated ciphertext, wrong key, corrupt padding, malformed JSON — is
// reported as the typed InvalidToken error, never as a raw cipher error.
func (c *Cipher) DecryptClaim(encoded string) (Claim, error) {
	var claim Claim

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return claim, apperr.Wrap(apperr.ErrInvalidToken, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return claim, apperr.Wrap(apperr.ErrInvalidToken, errors.New("ciphertext not block aligned"))
	}

	plain := make([]byte, len(raw))
	cipher.NewCBCDecrypter(c.block, c.iv).CryptBlocks(plain, raw)

	unpadded, err := unpad(plain, aes.BlockSize)
	if err != nil {
		return claim, apperr.Wrap(apperr.ErrInvalidToken, err)
	}

	if err := json.Unmarshal(unpadded, &claim); err != nil {
		return claim, apperr.Wrap(apperr.ErrInvalidToken, err)
	}

	return claim, nil
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty plaintext")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
