package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
)

// Window is a handle to whatever displays the authorization page.
type Window interface {
	Close() error
}

// Opener shows an authorization URL to the user.
type Opener interface {
	Open(ctx context.Context, url string) (Window, error)
}

type noWindow struct{}

func (noWindow) Close() error { return nil }

// startCommand launches a detached process; swapped in tests.
var startCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// BrowserOpener hands the URL to the desktop's default browser. The
// browser tab cannot be closed from here, so Close is a no-op.
type BrowserOpener struct{}

func (BrowserOpener) Open(_ context.Context, url string) (Window, error) {
	var err error
	switch runtime.GOOS {
	case "darwin":
		err = startCommand("open", url)
	case "windows":
		err = startCommand("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		err = startCommand("xdg-open", url)
	}
	if err != nil {
		return nil, fmt.Errorf("open browser: %w", err)
	}
	return noWindow{}, nil
}

// PrintOpener asks the user to open the URL by hand.
type PrintOpener struct {
	W io.Writer
}

func (o PrintOpener) Open(_ context.Context, url string) (Window, error) {
	if _, err := fmt.Fprintf(o.W, "Open this address to authorize:\n  %s\n", url); err != nil {
		return nil, err
	}
	return noWindow{}, nil
}

// FallbackOpener tries each opener in turn.
type FallbackOpener []Opener

func (f FallbackOpener) Open(ctx context.Context, url string) (Window, error) {
	var errs []error
	for _, o := range f {
		w, err := o.Open(ctx, url)
		if err == nil {
			return w, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no opener configured")
	}
	return nil, errors.Join(errs...)
}
