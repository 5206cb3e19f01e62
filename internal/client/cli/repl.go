package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// ErrUsage marks a command invoked with the wrong arguments; the shell
// prints the command's usage instead of the error.
var ErrUsage = errors.New("usage")

// Command is one console command. Args exclude the command name.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Help    string
	Run     func(ctx context.Context, args []string) error
}

// Shell is a read-eval-print loop over a command table. Lines are split
// with shell quoting rules, so `name "Q3 contract"` passes one argument.
type Shell struct {
	Out    Printer
	Prompt func() string

	commands []Command
	index    map[string]int
}

func NewShell(w io.Writer, prompt func() string, commands ...Command) *Shell {
	s := &Shell{Out: Printer{W: w}, Prompt: prompt, index: map[string]int{}}
	for _, c := range commands {
		s.Register(c)
	}
	return s
}

// Register adds c, replacing an earlier command with the same name.
func (s *Shell) Register(c Command) {
	if i, ok := s.index[c.Name]; ok {
		s.commands[i] = c
	} else {
		s.commands = append(s.commands, c)
		i = len(s.commands) - 1
		s.index[c.Name] = i
	}
	for _, a := range c.Aliases {
		s.index[a] = s.index[c.Name]
	}
}

// Lookup finds a command by name or alias.
func (s *Shell) Lookup(name string) (Command, bool) {
	i, ok := s.index[name]
	if !ok {
		return Command{}, false
	}
	return s.commands[i], true
}

// Exec runs one input line and reports whether the shell should stop.
func (s *Shell) Exec(ctx context.Context, line string) (quit bool) {
	parts, err := shellquote.Split(line)
	if err != nil {
		s.Out.Error(fmt.Errorf("cannot parse line: %w", err))
		return false
	}
	if len(parts) == 0 {
		return false
	}

	name, args := parts[0], parts[1:]
	switch name {
	case "exit", "quit":
		s.Out.Line("Bye!")
		return true
	case "help", "?":
		s.help(args)
		return false
	}

	cmd, ok := s.Lookup(name)
	if !ok {
		s.Out.Line("Unknown command:", name)
		return false
	}
	if err := cmd.Run(ctx, args); err != nil {
		if errors.Is(err, ErrUsage) {
			s.Out.Line("Usage:", cmd.Usage)
			return false
		}
		s.Out.Error(err)
	}
	return false
}

func (s *Shell) help(args []string) {
	if len(args) > 0 {
		if c, ok := s.Lookup(args[0]); ok {
			s.Out.Line("Usage:", c.Usage)
			if c.Help != "" {
				s.Out.Hint(c.Help)
			}
			return
		}
	}
	cmds := append([]Command(nil), s.commands...)
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	rows := make([][]string, 0, len(cmds)+1)
	for _, c := range cmds {
		rows = append(rows, []string{c.Usage, c.Help})
	}
	rows = append(rows, []string{"exit | quit", "leave the console"})
	s.Out.Table([]string{"COMMAND", "DESCRIPTION"}, rows)
}

// Run reads commands from r until EOF, exit or cancellation. Commands that
// prompt for more input should read from the same r.
func (s *Shell) Run(ctx context.Context, r *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		prompt := "> "
		if s.Prompt != nil {
			prompt = s.Prompt()
		}
		fmt.Fprint(s.Out.W, prompt)
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			s.Out.Line()
			return
		}
		if s.Exec(ctx, strings.TrimRight(line, "\r\n")) {
			return
		}
		if err != nil {
			s.Out.Line()
			return
		}
	}
}

// ArgInt parses args[i] as an int, returning def when it is absent.
func ArgInt(args []string, i, def int) (int, error) {
	if i >= len(args) {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrUsage, args[i])
	}
	return n, nil
}

// ArgString returns args[i], or def when it is absent.
func ArgString(args []string, i int, def string) string {
	if i >= len(args) {
		return def
	}
	return args[i]
}

// Need returns ErrUsage unless args has at least n items.
func Need(args []string, n int) error {
	if len(args) < n {
		return ErrUsage
	}
	return nil
}

// JoinArgs rejoins free-text arguments.
func JoinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
