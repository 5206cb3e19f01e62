package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
)

func TestAdminSession_LoginPersistsBothKeys(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	s, err := NewAdminSession(ctx, store, nil)
	require.NoError(t, err)
	assert.False(t, s.Authorized())

	require.NoError(t, s.Login(ctx, "root", "pw"))
	assert.True(t, s.LoggedIn())

	h := http.Header{}
	s.Apply(h)
	assert.Equal(t, "root", h.Get(client.HeaderAdminUsername))
	assert.Equal(t, "pw", h.Get(client.HeaderAdminToken))

	reloaded, err := NewAdminSession(ctx, store, nil)
	require.NoError(t, err)
	assert.Equal(t, "root", reloaded.Username())
	assert.Equal(t, "pw", reloaded.Token())
}

func TestAdminSession_TokenOnly(t *testing.T) {
	ctx := context.Background()
	s, err := NewAdminSession(ctx, newStore(t), nil)
	require.NoError(t, err)

	require.NoError(t, s.SetToken(ctx, "pw"))
	h := http.Header{}
	s.Apply(h)
	assert.Empty(t, h.Values(client.HeaderAdminUsername))
	assert.Equal(t, "pw", h.Get(client.HeaderAdminToken))
}

func TestAdminSession_ClearCredentialsLogsOut(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	s, err := NewAdminSession(ctx, store, nil)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "root", "pw"))

	require.NoError(t, s.ClearCredentials(ctx))
	assert.False(t, s.LoggedIn())
	assert.Equal(t, "", s.Username())

	for _, k := range []storage.Key{storage.KeyAdminUsername, storage.KeyAdminToken} {
		v, err := store.String(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, "", v, k)
	}
}
