package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/dmitrijs2005/signpanel/internal/logging"
)

var (
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	ErrNotTerminal          = errors.New("output is not a terminal")
)

const (
	msgCopied     = "link copied to clipboard"
	msgCopyFailed = "copy failed, please copy manually"
)

// ClipboardWriter puts text on a clipboard.
type ClipboardWriter interface {
	WriteText(ctx context.Context, text string) error
}

var (
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
	clipboardWriteAll    = clipboard.WriteAll
)

// SystemClipboard writes through the platform clipboard utility.
type SystemClipboard struct{}

func (SystemClipboard) WriteText(_ context.Context, text string) error {
	if clipboardUnsupported() {
		return ErrClipboardUnavailable
	}
	if err := clipboardWriteAll(text); err != nil {
		return fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}
	return nil
}

// OSC52Clipboard asks the terminal emulator to set the clipboard with an
// OSC 52 escape sequence. It refuses to write to anything but a terminal.
type OSC52Clipboard struct {
	W          io.Writer
	IsTerminal func() bool
}

func NewOSC52Clipboard(f *os.File) OSC52Clipboard {
	return OSC52Clipboard{
		W:          f,
		IsTerminal: func() bool { return term.IsTerminal(int(f.Fd())) },
	}
}

func (c OSC52Clipboard) WriteText(_ context.Context, text string) error {
	if c.W == nil || c.IsTerminal == nil || !c.IsTerminal() {
		return ErrNotTerminal
	}
	_, err := fmt.Fprintf(c.W, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}

// Clipboard tries the primary writer, then the fallback, and reports the
// outcome through the notifier.
type Clipboard struct {
	primary  ClipboardWriter
	fallback ClipboardWriter
	log      logging.Logger
}

func NewClipboard(primary, fallback ClipboardWriter, log logging.Logger) *Clipboard {
	if log == nil {
		log = logging.Nop()
	}
	return &Clipboard{primary: primary, fallback: fallback, log: log}
}

// NewSystemClipboard uses the platform clipboard with an OSC 52 fallback
// on out.
func NewSystemClipboard(out *os.File, log logging.Logger) *Clipboard {
	return NewClipboard(SystemClipboard{}, NewOSC52Clipboard(out), log)
}

func (c *Clipboard) Copy(ctx context.Context, text string, n Notifier) bool {
	for _, w := range []ClipboardWriter{c.primary, c.fallback} {
		if w == nil {
			continue
		}
		err := w.WriteText(ctx, text)
		if err == nil {
			notify(n, ToastSuccess, msgCopied)
			return true
		}
		c.log.Debug(ctx, "clipboard writer failed", "writer", fmt.Sprintf("%T", w), "error", err)
	}
	notify(n, ToastError, msgCopyFailed)
	return false
}
