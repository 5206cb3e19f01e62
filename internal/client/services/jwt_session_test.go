package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/client"
	"github.com/dmitrijs2005/signpanel/internal/client/models"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
)

type fakeIniter struct {
	res   *models.UserInit
	err   error
	calls int
	got   models.Identity
}

func (f *fakeIniter) InitUser(_ context.Context, id models.Identity) (*models.UserInit, error) {
	f.calls++
	f.got = id
	return f.res, f.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "u1"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return s
}

func fixClock(t *testing.T, now time.Time) {
	t.Helper()
	old := timeNow
	timeNow = func() time.Time { return now }
	t.Cleanup(func() { timeNow = old })
}

var testIdentity = models.Identity{OpenID: "ou_1", TenantKey: "t1"}

func TestTokenExpiry(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)
	got, err := TokenExpiry(signedToken(t, exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))

	got, err = TokenExpiry(signedToken(t, time.Time{}))
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = TokenExpiry("not-a-jwt")
	require.Error(t, err)
}

func TestJWTSession_RefreshUsesExpiresIn(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fixClock(t, now)
	ctx := context.Background()
	store := newStore(t)

	s, err := NewJWTSession(ctx, store, testIdentity, nil)
	require.NoError(t, err)
	assert.False(t, s.Authorized())

	ini := &fakeIniter{res: &models.UserInit{Token: "opaque", ExpiresIn: 3600}}
	s.Attach(ini)
	require.NoError(t, s.Refresh(ctx))

	assert.Equal(t, testIdentity, ini.got)
	assert.Equal(t, "opaque", s.Token())
	assert.True(t, s.Expiry().Equal(now.Add(time.Hour)))
	assert.True(t, s.Authorized())

	h := http.Header{}
	s.Apply(h)
	assert.Equal(t, "Bearer opaque", h.Get(client.HeaderAuthorization))

	reloaded, err := NewJWTSession(ctx, store, testIdentity, nil)
	require.NoError(t, err)
	assert.Equal(t, "opaque", reloaded.Token())
	assert.True(t, reloaded.Expiry().Equal(now.Add(time.Hour)))
}

func TestJWTSession_RefreshFallsBackToExpClaim(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fixClock(t, now)
	ctx := context.Background()

	exp := now.Add(2 * time.Hour)
	s, err := NewJWTSession(ctx, newStore(t), testIdentity, nil)
	require.NoError(t, err)
	s.Attach(&fakeIniter{res: &models.UserInit{Token: signedToken(t, exp)}})

	require.NoError(t, s.Refresh(ctx))
	assert.True(t, s.Expiry().Equal(exp))
}

func TestJWTSession_ExpiredTokenIsNotAuthorized(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	past := time.Unix(1_600_000_000, 0)
	require.NoError(t, store.SetString(ctx, storage.KeyPluginJWT, signedToken(t, past)))

	fixClock(t, past.Add(time.Minute))
	s, err := NewJWTSession(ctx, store, testIdentity, nil)
	require.NoError(t, err)
	assert.True(t, s.Expiry().Equal(past), "expiry read from the token when not stored")
	assert.False(t, s.Authorized())
}

func TestJWTSession_RefreshErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("no issuer", func(t *testing.T) {
		s, err := NewJWTSession(ctx, newStore(t), testIdentity, nil)
		require.NoError(t, err)
		require.ErrorIs(t, s.Refresh(ctx), client.ErrUnauthorized)
	})

	t.Run("invalid identity makes no call", func(t *testing.T) {
		s, err := NewJWTSession(ctx, newStore(t), models.Identity{OpenID: "anonymous"}, nil)
		require.NoError(t, err)
		ini := &fakeIniter{}
		s.Attach(ini)
		require.ErrorIs(t, s.Refresh(ctx), ErrInvalidParams)
		assert.Equal(t, 0, ini.calls)
	})

	t.Run("backend failure", func(t *testing.T) {
		s, err := NewJWTSession(ctx, newStore(t), testIdentity, nil)
		require.NoError(t, err)
		boom := errors.New("boom")
		s.Attach(&fakeIniter{err: boom})

		var n toastLog
		require.ErrorIs(t, s.StartAuth(ctx, &n), boom)
		assert.Equal(t, ToastError, n.last().Kind)
	})

	t.Run("empty token", func(t *testing.T) {
		s, err := NewJWTSession(ctx, newStore(t), testIdentity, nil)
		require.NoError(t, err)
		s.Attach(&fakeIniter{res: &models.UserInit{}})
		require.ErrorIs(t, s.Refresh(ctx), client.ErrUnauthorized)
	})
}

func TestJWTSession_ResetClearsBothKeys(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	s, err := NewJWTSession(ctx, store, testIdentity, nil)
	require.NoError(t, err)
	s.Attach(&fakeIniter{res: &models.UserInit{Token: "opaque", ExpiresIn: 60}})
	require.NoError(t, s.Refresh(ctx))

	require.NoError(t, s.ClearCredentials(ctx))
	assert.Equal(t, "", s.Token())
	assert.True(t, s.Expiry().IsZero())

	for _, k := range []storage.Key{storage.KeyPluginJWT, storage.KeyPluginJWTExpiry} {
		v, err := store.String(ctx, k)
		require.NoError(t, err)
		assert.Equal(t, "", v, k)
	}
}
