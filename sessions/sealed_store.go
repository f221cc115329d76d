package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealKeySize   = 32
	sealNonceSize = 24
)

// ErrUnsealable is returned when a sealed value cannot be opened with the store key.
var ErrUnsealable = errors.New("sealed value cannot be opened")

var _ Store = (*SealedStore)(nil)

// SealedStore encrypts values with NaCl secretbox before handing them to the inner store.
type SealedStore struct {
	inner Store
	key   [sealKeySize]byte
}

func NewSealedStore(inner Store, key [sealKeySize]byte) *SealedStore {
	return &SealedStore{inner: inner, key: key}
}

// ParseSealKey decodes a hex encoded 32 byte key.
func ParseSealKey(hexKey string) ([sealKeySize]byte, error) {
	var key [sealKeySize]byte
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return key, fmt.Errorf("seal key is not hex: %w", err)
	}
	if len(raw) != sealKeySize {
		return key, fmt.Errorf("seal key must be %d bytes, got %d", sealKeySize, len(raw))
	}
	copy(key[:], raw)
	return key, nil
}

func (s *SealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < sealNonceSize {
		return nil, ErrUnsealable
	}
	var nonce [sealNonceSize]byte
	copy(nonce[:], sealed[:sealNonceSize])
	opened, ok := secretbox.Open(nil, sealed[sealNonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrUnsealable
	}
	return opened, nil
}

func (s *SealedStore) Set(ctx context.Context, key string, value []byte) error {
	var nonce [sealNonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.inner.Set(ctx, key, secretbox.Seal(nonce[:], value, &nonce, &s.key))
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
