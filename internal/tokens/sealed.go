package tokens

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// Sealer encrypts and authenticates token values before they leave the process.
type Sealer struct {
	codec *securecookie.SecureCookie
}

// NewSealer derives an HMAC key and an AES-256 key from secret.
func NewSealer(secret string, maxAge time.Duration) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}

	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("vibex-storefront token sealing"))
	hashKey := make([]byte, 64)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("derive hash key: %w", err)
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, fmt.Errorf("derive block key: %w", err)
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(int(maxAge / time.Second))
	codec.MaxLength(16 * 1024)
	return &Sealer{codec: codec}, nil
}

// Seal binds value to name so a sealed access token cannot be replayed as a refresh token.
func (s *Sealer) Seal(name, value string) (string, error) {
	return s.codec.Encode(name, value)
}

func (s *Sealer) Open(name, sealed string) (string, error) {
	var value string
	if err := s.codec.Decode(name, sealed, &value); err != nil {
		return "", err
	}
	return value, nil
}

type sealedStore struct {
	inner  Store
	sealer *Sealer
}

// Sealed wraps a store so only sealed values reach it. Values that fail to
// open are reported as missing.
func Sealed(inner Store, sealer *Sealer) Store {
	return &sealedStore{inner: inner, sealer: sealer}
}

func (s *sealedStore) Get(ctx context.Context, sessionID, name string) (string, error) {
	sealed, err := s.inner.Get(ctx, sessionID, name)
	if err != nil {
		return "", err
	}
	value, err := s.sealer.Open(name, sealed)
	if err != nil {
		return "", ErrNotFound
	}
	return value, nil
}

func (s *sealedStore) Set(ctx context.Context, sessionID, name, value string, ttl time.Duration) error {
	sealed, err := s.sealer.Seal(name, value)
	if err != nil {
		return fmt.Errorf("seal %s: %w", name, err)
	}
	return s.inner.Set(ctx, sessionID, name, sealed, ttl)
}

func (s *sealedStore) Delete(ctx context.Context, sessionID string, names ...string) error {
	return s.inner.Delete(ctx, sessionID, names...)
}
