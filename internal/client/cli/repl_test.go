package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingShell(out *bytes.Buffer, got *[][]string) *Shell {
	return NewShell(out, func() string { return "test> " },
		Command{
			Name:    "echo",
			Aliases: []string{"say"},
			Usage:   "echo <text>...",
			Help:    "print the arguments",
			Run: func(_ context.Context, args []string) error {
				*got = append(*got, args)
				return Need(args, 1)
			},
		},
		Command{
			Name:  "fail",
			Usage: "fail",
			Run: func(context.Context, []string) error {
				return errors.New("boom")
			},
		},
		Command{
			Name:  "num",
			Usage: "num <n>",
			Run: func(_ context.Context, args []string) error {
				_, err := ArgInt(args, 0, 0)
				return err
			},
		},
	)
}

func TestShell_ExecSplitsWithQuoting(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)

	quit := s.Exec(context.Background(), `echo "Q3 contract" 'a b' c`)

	assert.False(t, quit)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Q3 contract", "a b", "c"}, got[0])
}

func TestShell_Exec(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantQuit bool
		wantOut  string
	}{
		{name: "blank line", line: "   ", wantOut: ""},
		{name: "exit", line: "exit", wantQuit: true, wantOut: "Bye!\n"},
		{name: "quit", line: "quit", wantQuit: true, wantOut: "Bye!\n"},
		{name: "unknown", line: "frobnicate", wantOut: "Unknown command: frobnicate\n"},
		{name: "usage error", line: "echo", wantOut: "Usage: echo <text>...\n"},
		{name: "wrapped usage error", line: "num x", wantOut: "Usage: num <n>\n"},
		{name: "other error", line: "fail", wantOut: "error: boom\n"},
		{name: "alias", line: "say hi", wantOut: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			var got [][]string
			s := recordingShell(&out, &got)

			quit := s.Exec(context.Background(), tt.line)

			assert.Equal(t, tt.wantQuit, quit)
			assert.Equal(t, tt.wantOut, out.String())
		})
	}
}

func TestShell_ExecUnbalancedQuote(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)

	s.Exec(context.Background(), `echo "open`)

	assert.Empty(t, got)
	assert.Contains(t, out.String(), "cannot parse line")
}

func TestShell_Help(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)

	s.Exec(context.Background(), "help")
	listing := out.String()
	assert.Contains(t, listing, "echo <text>...")
	assert.Contains(t, listing, "exit | quit")
	assert.Less(t, strings.Index(listing, "echo"), strings.Index(listing, "fail"))

	out.Reset()
	s.Exec(context.Background(), "? echo")
	assert.Contains(t, out.String(), "Usage: echo <text>...")
	assert.Contains(t, out.String(), "print the arguments")
}

func TestShell_RegisterReplaces(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)
	called := false

	s.Register(Command{Name: "echo", Usage: "echo", Run: func(context.Context, []string) error {
		called = true
		return nil
	}})
	s.Exec(context.Background(), "say")

	assert.True(t, called)
	assert.Empty(t, got)
}

func TestShell_RunUntilExit(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)

	s.Run(context.Background(), bufio.NewReader(strings.NewReader("echo one\r\necho two\nexit\necho three\n")))

	assert.Equal(t, [][]string{{"one"}, {"two"}}, got)
	assert.Equal(t, 3, strings.Count(out.String(), "test> "))
}

func TestShell_RunLastLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)

	s.Run(context.Background(), bufio.NewReader(strings.NewReader("echo one\necho tail")))

	assert.Equal(t, [][]string{{"one"}, {"tail"}}, got)
}

func TestShell_RunStopsOnCancel(t *testing.T) {
	var out bytes.Buffer
	var got [][]string
	s := recordingShell(&out, &got)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.Run(ctx, bufio.NewReader(strings.NewReader("echo one\n")))

	assert.Empty(t, got)
}

func TestArgHelpers(t *testing.T) {
	n, err := ArgInt([]string{"7"}, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = ArgInt(nil, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = ArgInt([]string{"seven"}, 0, 1)
	assert.True(t, errors.Is(err, ErrUsage))

	assert.Equal(t, "b", ArgString([]string{"a", "b"}, 1, "x"))
	assert.Equal(t, "x", ArgString([]string{"a"}, 1, "x"))

	assert.NoError(t, Need([]string{"a"}, 1))
	assert.ErrorIs(t, Need(nil, 1), ErrUsage)

	assert.Equal(t, "a b", JoinArgs([]string{" a", "b "}))
	assert.Equal(t, "", JoinArgs(nil))
}

func ExampleShell_Exec() {
	var out bytes.Buffer
	s := NewShell(&out, nil, Command{
		Name:  "greet",
		Usage: "greet <name>",
		Run: func(_ context.Context, args []string) error {
			if err := Need(args, 1); err != nil {
				return err
			}
			_, err := fmt.Fprintln(&out, "hello,", args[0])
			return err
		},
	})
	s.Exec(context.Background(), `greet "Ada Lovelace"`)
	s.Exec(context.Background(), "greet")
	fmt.Print(out.String())
	// Output:
	// hello, Ada Lovelace
	// Usage: greet <name>
}
