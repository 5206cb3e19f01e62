package metadata

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/signpanel/internal/cryptox"
)

// SaltKey holds the plaintext key-derivation salt next to the sealed values.
const SaltKey = "_sealer_salt"

// SealedRepository encrypts every value before handing it to the wrapped
// repository. Each value is bound to its key, so a ciphertext copied under
// another key fails to open. The salt entry is hidden from List.
type SealedRepository struct {
	inner  Repository
	sealer *cryptox.Sealer
	salt   []byte
}

// NewSealedRepository derives the sealing key from passphrase and the salt
// stored in inner, creating the salt on first use.
func NewSealedRepository(ctx context.Context, inner Repository, passphrase string) (*SealedRepository, error) {
	salt, err := inner.Get(ctx, SaltKey)
	if err != nil {
		return nil, err
	}
	if len(salt) == 0 {
		if salt, err = cryptox.NewSalt(); err != nil {
			return nil, err
		}
		if err := inner.Set(ctx, SaltKey, salt); err != nil {
			return nil, err
		}
	}

	pw := []byte(passphrase)
	key := cryptox.DeriveKey(pw, salt)
	cryptox.Wipe(pw)
	sealer, err := cryptox.NewSealer(key)
	cryptox.Wipe(key)
	if err != nil {
		return nil, err
	}
	return &SealedRepository{inner: inner, sealer: sealer, salt: salt}, nil
}

func (r *SealedRepository) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.inner.Get(ctx, key)
	if err != nil || v == nil {
		return v, err
	}
	plain, err := r.sealer.Open(v, []byte(key))
	if err != nil {
		return nil, fmt.Errorf("open metadata[%s]: %w", key, err)
	}
	return plain, nil
}

func (r *SealedRepository) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := r.sealer.Seal(value, []byte(key))
	if err != nil {
		return err
	}
	return r.inner.Set(ctx, key, sealed)
}

func (r *SealedRepository) Delete(ctx context.Context, key string) error {
	return r.inner.Delete(ctx, key)
}

func (r *SealedRepository) Update(ctx context.Context, set map[string][]byte, del []string) error {
	sealed := make(map[string][]byte, len(set))
	for k, v := range set {
		s, err := r.sealer.Seal(v, []byte(k))
		if err != nil {
			return err
		}
		sealed[k] = s
	}
	return r.inner.Update(ctx, sealed, del)
}

func (r *SealedRepository) List(ctx context.Context) (map[string][]byte, error) {
	all, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	delete(all, SaltKey)
	for k, v := range all {
		plain, err := r.sealer.Open(v, []byte(k))
		if err != nil {
			return nil, fmt.Errorf("open metadata[%s]: %w", k, err)
		}
		all[k] = plain
	}
	return all, nil
}

// Clear wipes every entry but keeps the salt so the current key stays valid.
func (r *SealedRepository) Clear(ctx context.Context) error {
	if err := r.inner.Clear(ctx); err != nil {
		return err
	}
	return r.inner.Set(ctx, SaltKey, r.salt)
}

func (r *SealedRepository) Close() error {
	return r.inner.Close()
}
