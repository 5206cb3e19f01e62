package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/repositories/metadata"
)

func newStore(t *testing.T) (*Store, metadata.Repository) {
	t.Helper()
	repo, err := metadata.Open(context.Background(), metadata.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, nil), repo
}

func TestStore_StringsAndDelete(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	v, err := s.String(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.SetStrings(ctx, map[Key]string{
		KeyAdminUsername: "root",
		KeyAdminToken:    "pw",
	}))
	v, err = s.String(ctx, KeyAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, "root", v)

	require.NoError(t, s.Delete(ctx, KeyAdminUsername, KeyAdminToken))
	v, err = s.String(ctx, KeyAdminToken)
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestStore_RejectsUnknownKeys(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.ErrorIs(t, s.SetString(ctx, Key("random"), "x"), ErrUnknownKey)
	_, err := s.String(ctx, Key("random"))
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestStore_TokenMap(t *testing.T) {
	s, repo := newStore(t)
	ctx := context.Background()

	m, err := s.TokenMap(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	require.NoError(t, s.SetTokenMap(ctx, map[string]string{"app1": "t1"}))
	m, err = s.TokenMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"app1": "t1"}, m)

	require.NoError(t, s.SetTokenMap(ctx, nil))
	raw, err := repo.Get(ctx, string(KeyBaseTokens))
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, repo.Set(ctx, string(KeyBaseTokens), []byte("{not json")))
	m, err = s.TokenMap(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestStore_Time(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, ok, err := s.Time(ctx, KeyPluginJWTExpiry)
	require.NoError(t, err)
	assert.False(t, ok)

	at := time.UnixMilli(1_700_000_000_123)
	require.NoError(t, s.SetString(ctx, KeyPluginJWTExpiry, FormatTime(at)))

	got, ok, err := s.Time(ctx, KeyPluginJWTExpiry)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, at.Equal(got))
}

func TestMigrate_DropsLegacyTokenWithoutTable(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetString(ctx, KeyLegacyBaseToken, "old"))
	require.NoError(t, s.Migrate(ctx, ""))

	v, err := s.String(ctx, KeyLegacyBaseToken)
	require.NoError(t, err)
	assert.Equal(t, "", v)

	m, err := s.TokenMap(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)

	ver, err := s.String(ctx, KeySchemaVersion)
	require.NoError(t, err)
	assert.Equal(t, "1", ver)
}

func TestMigrate_FoldsLegacyTokenIntoConfiguredTable(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetTokenMap(ctx, map[string]string{"other": "keep"}))
	require.NoError(t, s.SetString(ctx, KeyLegacyBaseToken, "old"))

	require.NoError(t, s.Migrate(ctx, "app1"))

	m, err := s.TokenMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"other": "keep", "app1": "old"}, m)
}

func TestMigrate_DoesNotOverwriteExistingTableToken(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetTokenMap(ctx, map[string]string{"app1": "current"}))
	require.NoError(t, s.SetString(ctx, KeyLegacyBaseToken, "old"))

	require.NoError(t, s.Migrate(ctx, "app1"))

	m, err := s.TokenMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "current", m["app1"])
}

func TestMigrate_IsIdempotent(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx, ""))
	require.NoError(t, s.SetString(ctx, KeyLegacyBaseToken, "written-later"))
	require.NoError(t, s.Migrate(ctx, ""))

	v, err := s.String(ctx, KeyLegacyBaseToken)
	require.NoError(t, err)
	assert.Equal(t, "written-later", v)
}
