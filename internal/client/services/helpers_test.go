package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/signpanel/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/signpanel/internal/client/storage"
)

func newStore(t *testing.T) *storage.Store {
	t.Helper()
	repo, err := metadata.Open(context.Background(), metadata.Options{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	s := storage.New(repo, nil)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// toastLog records notifications.
type toastLog struct {
	mu     sync.Mutex
	toasts []Toast
}

func (l *toastLog) Notify(t Toast) {
	l.mu.Lock()
	l.toasts = append(l.toasts, t)
	l.mu.Unlock()
}

func (l *toastLog) all() []Toast {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Toast(nil), l.toasts...)
}

func (l *toastLog) messages() []string {
	var out []string
	for _, t := range l.all() {
		out = append(out, t.Message)
	}
	return out
}

func (l *toastLog) last() Toast {
	all := l.all()
	if len(all) == 0 {
		return Toast{}
	}
	return all[len(all)-1]
}

// renderLog records rendered toasts.
type renderLog struct {
	toastLog
}

func (r *renderLog) Render(t Toast) { r.Notify(t) }
