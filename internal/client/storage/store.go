// Package storage is the typed credential store used by the session holders.
// It sits on a metadata.Repository and knows the encoding of every key.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/signpanel/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/signpanel/internal/logging"
)

var ErrUnknownKey = errors.New("key is not part of the store schema")

type Store struct {
	repo metadata.Repository
	log  logging.Logger
}

func New(repo metadata.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{repo: repo, log: log}
}

func checkKey(k Key) error {
	if _, ok := Schema[k]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, k)
	}
	return nil
}

// String returns the value of k, or "" when unset.
func (s *Store) String(ctx context.Context, k Key) (string, error) {
	if err := checkKey(k); err != nil {
		return "", err
	}
	v, err := s.repo.Get(ctx, string(k))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) SetString(ctx context.Context, k Key, v string) error {
	if err := checkKey(k); err != nil {
		return err
	}
	return s.repo.Set(ctx, string(k), []byte(v))
}

// SetStrings writes several keys together.
func (s *Store) SetStrings(ctx context.Context, values map[Key]string) error {
	set := make(map[string][]byte, len(values))
	for k, v := range values {
		if err := checkKey(k); err != nil {
			return err
		}
		set[string(k)] = []byte(v)
	}
	return s.repo.Update(ctx, set, nil)
}

func (s *Store) Delete(ctx context.Context, keys ...Key) error {
	del := make([]string, 0, len(keys))
	for _, k := range keys {
		if err := checkKey(k); err != nil {
			return err
		}
		del = append(del, string(k))
	}
	return s.repo.Update(ctx, nil, del)
}

// TokenMap decodes KeyBaseTokens. A corrupt value is logged and treated as
// empty, so one bad write cannot lock the user out.
func (s *Store) TokenMap(ctx context.Context) (map[string]string, error) {
	raw, err := s.repo.Get(ctx, string(KeyBaseTokens))
	if err != nil {
		return nil, err
	}
	tokens := map[string]string{}
	if len(raw) == 0 {
		return tokens, nil
	}
	if err := json.Unmarshal(raw, &tokens); err != nil {
		s.log.Warn(ctx, "discarding unreadable token map", "key", KeyBaseTokens, "error", err)
		return map[string]string{}, nil
	}
	return tokens, nil
}

// SetTokenMap replaces KeyBaseTokens; an empty map removes the key.
func (s *Store) SetTokenMap(ctx context.Context, tokens map[string]string) error {
	if len(tokens) == 0 {
		return s.repo.Delete(ctx, string(KeyBaseTokens))
	}
	raw, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("encode token map: %w", err)
	}
	return s.repo.Set(ctx, string(KeyBaseTokens), raw)
}

// Time decodes a unix-millisecond key. ok is false when unset.
func (s *Store) Time(ctx context.Context, k Key) (t time.Time, ok bool, err error) {
	str, err := s.String(ctx, k)
	if err != nil || str == "" {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(str, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("decode %s: %w", k, err)
	}
	return time.UnixMilli(ms), true, nil
}

// FormatTime encodes t for a unix-millisecond key.
func FormatTime(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Clear removes every stored value.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Clear(ctx)
}

func (s *Store) Close() error {
	return s.repo.Close()
}
