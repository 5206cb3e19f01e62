package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/models"
)

func TestHandshake_FirstDoneMessageResolves(t *testing.T) {
	h := NewHandshake()
	assert.Equal(t, HandshakeAwaiting, h.State())

	assert.False(t, h.Deliver(models.AuthMessage{Type: "something-else", SessionID: "x"}))
	assert.False(t, h.Deliver(models.AuthMessage{Type: models.AuthMessageDone}))
	assert.Equal(t, HandshakeAwaiting, h.State(), "foreign messages are ignored")

	assert.True(t, h.Deliver(models.AuthMessage{Type: models.AuthMessageDone, SessionID: "s1"}))
	assert.False(t, h.Deliver(models.AuthMessage{Type: models.AuthMessageDone, SessionID: "s2"}))
	assert.Equal(t, HandshakeResolved, h.State())

	id, err := h.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)
}

func TestHandshake_Timeout(t *testing.T) {
	h := NewHandshake()
	_, err := h.Wait(context.Background(), 10*time.Millisecond)
	require.ErrorIs(t, err, ErrHandshakeTimeout)
	assert.Equal(t, HandshakeResolved, h.State())
	assert.Equal(t, "resolved", h.State().String())

	assert.False(t, h.Deliver(models.AuthMessage{Type: models.AuthMessageDone, SessionID: "late"}))
}

func TestHandshake_ContextCancelled(t *testing.T) {
	h := NewHandshake()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Wait(ctx, time.Hour)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHandshake_ConcurrentDeliveries(t *testing.T) {
	h := NewHandshake()
	var wg sync.WaitGroup
	wins := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- h.Deliver(models.AuthMessage{Type: models.AuthMessageDone, SessionID: "s"})
		}()
	}
	wg.Wait()
	close(wins)

	n := 0
	for w := range wins {
		if w {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestCallbackServer_Routes(t *testing.T) {
	cb := NewCallbackServer("", nil)
	ts := httptest.NewServer(cb.Router())
	defer ts.Close()

	post := func(body string) int {
		resp, err := http.Post(ts.URL+"/auth/message", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	// nothing attached yet
	assert.Equal(t, http.StatusNoContent, post(`{"type":"feishu-auth-done","session_id":"s0"}`))

	h := NewHandshake()
	cb.Attach(h)

	assert.Equal(t, http.StatusBadRequest, post(`not json`))
	assert.Equal(t, http.StatusNoContent, post(`{"type":"other","session_id":"s1"}`))
	assert.Equal(t, HandshakeAwaiting, h.State())
	assert.Equal(t, http.StatusAccepted, post(`{"type":"feishu-auth-done","session_id":"s1"}`))

	id, err := h.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "s1", id)

	resp, err := http.Get(ts.URL + "/auth/done")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/auth/message")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCallbackServer_DonePageResolves(t *testing.T) {
	cb := NewCallbackServer("", nil)
	ts := httptest.NewServer(cb.Router())
	defer ts.Close()

	h := NewHandshake()
	cb.Attach(h)

	resp, err := http.Get(ts.URL + "/auth/done?session_id=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	id, err := h.Wait(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestCallbackServer_StartAndShutdown(t *testing.T) {
	cb := NewCallbackServer("127.0.0.1:0", nil)
	assert.Equal(t, "", cb.URL())

	require.NoError(t, cb.Start())
	require.NoError(t, cb.Start(), "second start is a no-op")
	u := cb.URL()
	require.True(t, strings.HasPrefix(u, "http://127.0.0.1:"))

	resp, err := http.Get(u + "/auth/done")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, cb.Shutdown(ctx))
	require.NoError(t, cb.Shutdown(ctx))
	assert.Equal(t, "", cb.URL())
}
