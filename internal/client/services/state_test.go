package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
)

func TestState_Close(t *testing.T) {
	repo, err := metadata.Open(context.Background(), metadata.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)

	cb := NewCallbackServer("", nil)
	require.NoError(t, cb.Start())

	st := &State{Store: storage.New(repo, nil), Callback: cb}
	require.NoError(t, st.Close(context.Background()))
	require.Equal(t, "", cb.URL())

	require.NoError(t, (&State{}).Close(context.Background()))
}
