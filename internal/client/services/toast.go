package services

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

type ToastKind string

const (
	ToastSuccess ToastKind = "success"
	ToastError   ToastKind = "error"
	ToastWarning ToastKind = "warning"
	ToastInfo    ToastKind = "info"
)

// DefaultToastDuration applies when a toast has no duration.
const DefaultToastDuration = 2 * time.Second

// Toast is a short-lived user notification. Count is the number of
// identical toasts grouped into this one.
type Toast struct {
	Message  string
	Kind     ToastKind
	Duration time.Duration
	Count    int
}

func (t Toast) normalized() Toast {
	if t.Kind == "" {
		t.Kind = ToastInfo
	}
	if t.Duration <= 0 {
		t.Duration = DefaultToastDuration
	}
	if t.Count < 1 {
		t.Count = 1
	}
	return t
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(t Toast)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(t Toast)

func (f NotifyFunc) Notify(t Toast) { f(t) }

// notify tolerates a nil Notifier.
func notify(n Notifier, kind ToastKind, msg string) {
	notifyFor(n, kind, msg, 0)
}

func notifyFor(n Notifier, kind ToastKind, msg string, d time.Duration) {
	if n == nil {
		return
	}
	n.Notify(Toast{Message: msg, Kind: kind, Duration: d})
}

// Renderer displays a toast.
type Renderer interface {
	Render(t Toast)
}

// ColorRenderer prints one coloured line per toast.
type ColorRenderer struct {
	W io.Writer
}

var toastColors = map[ToastKind]*color.Color{
	ToastSuccess: color.New(color.FgGreen),
	ToastError:   color.New(color.FgRed),
	ToastWarning: color.New(color.FgYellow),
	ToastInfo:    color.New(color.FgCyan),
}

func (r ColorRenderer) Render(t Toast) {
	c, ok := toastColors[t.Kind]
	if !ok {
		c = toastColors[ToastInfo]
	}
	msg := t.Message
	if t.Count > 1 {
		msg = fmt.Sprintf("%s (x%d)", msg, t.Count)
	}
	_, _ = c.Fprintf(r.W, "[%s] %s\n", t.Kind, msg)
}

// Toaster keeps at most one active toast; a new one replaces it.
type Toaster struct {
	renderer Renderer

	mu      sync.Mutex
	current Toast
	active  bool
	seq     uint64
}

func NewToaster(r Renderer) *Toaster {
	return &Toaster{renderer: r}
}

// Show replaces the active toast and clears it after d.
func (t *Toaster) Show(msg string, kind ToastKind, d time.Duration) {
	toast := Toast{Message: msg, Kind: kind, Duration: d}.normalized()

	t.mu.Lock()
	t.seq++
	seq := t.seq
	t.current = toast
	t.active = true
	if t.renderer != nil {
		t.renderer.Render(toast)
	}
	t.mu.Unlock()

	time.AfterFunc(toast.Duration, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.seq == seq {
			t.active = false
		}
	})
}

func (t *Toaster) Notify(toast Toast) {
	t.Show(toast.Message, toast.Kind, toast.Duration)
}

// Current returns the active toast, if any.
func (t *Toaster) Current() (Toast, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.active
}

func (t *Toaster) Clear() {
	t.mu.Lock()
	t.seq++
	t.active = false
	t.mu.Unlock()
}

// ToastQueue renders every toast as it arrives and tracks which one is
// active, with the rest waiting in FIFO order. A toast identical (kind and
// message) to the active or a waiting one increments that toast's count and
// is rendered again with the new count. Expiry timers only advance the
// queue; they never render.
type ToastQueue struct {
	renderer Renderer

	mu      sync.Mutex
	active  *Toast
	pending []Toast
	seq     uint64
}

func NewToastQueue(r Renderer) *ToastQueue {
	return &ToastQueue{renderer: r}
}

func sameToast(a, b Toast) bool {
	return a.Kind == b.Kind && a.Message == b.Message
}

func (q *ToastQueue) Notify(t Toast) {
	t = t.normalized()

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.active != nil && sameToast(*q.active, t) {
		q.active.Count++
		q.render(*q.active)
		return
	}
	for i := range q.pending {
		if sameToast(q.pending[i], t) {
			q.pending[i].Count++
			q.render(q.pending[i])
			return
		}
	}
	q.render(t)
	if q.active == nil {
		q.activate(t)
		return
	}
	q.pending = append(q.pending, t)
}

func (q *ToastQueue) render(t Toast) {
	if q.renderer != nil {
		q.renderer.Render(t)
	}
}

// activate must be called with q.mu held.
func (q *ToastQueue) activate(t Toast) {
	q.seq++
	seq := q.seq
	q.active = &t
	time.AfterFunc(t.Duration, func() { q.expire(seq) })
}

func (q *ToastQueue) expire(seq uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.seq != seq {
		return
	}
	q.active = nil
	if len(q.pending) == 0 {
		return
	}
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.activate(next)
}

// Active returns the most recent toast still within its duration, if any.
func (q *ToastQueue) Active() (Toast, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.active == nil {
		return Toast{}, false
	}
	return *q.active, true
}

// Pending returns a copy of the waiting toasts in display order.
func (q *ToastQueue) Pending() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]Toast(nil), q.pending...)
}

// Clear drops the active and queued toasts.
func (q *ToastQueue) Clear() {
	q.mu.Lock()
	q.seq++
	q.active = nil
	q.pending = nil
	q.mu.Unlock()
}
