package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/hpungsan/sicon/internal/ops"
)

const shellPrompt = "sicon> "

// shellCommands are the commands reachable from the shell.
var shellCommands = []string{"download", "exit", "help", "history", "info", "resolve", "search"}

// slugCommands take a slug or icon name as their first argument.
var slugCommands = map[string]bool{"download": true, "info": true, "resolve": true}

// shellCmd creates the shell command.
func shellCmd(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive session; tab completes commands and slugs",
		Action: func(c *cli.Context) error {
			svc, err := rt.service()
			if err != nil {
				return outputError(rt, err)
			}

			fd := int(os.Stdin.Fd())
			if !term.IsTerminal(fd) {
				return runShell(rt, svc, bufio.NewScanner(os.Stdin), rt.out)
			}

			oldState, err := term.MakeRaw(fd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("shell: %v", err), 1)
			}
			defer term.Restore(fd, oldState)

			t := term.NewTerminal(struct {
				io.Reader
				io.Writer
			}{os.Stdin, os.Stdout}, shellPrompt)
			t.AutoCompleteCallback = autoComplete(slugSource(c.Context, svc))

			fmt.Fprintln(t, "sicon shell. Tab completes commands and slugs; 'exit' or Ctrl-D quits.")
			return runShell(rt, svc, &terminalLines{t: t}, t)
		},
	}
}

// lineSource yields input lines; Scan returns false at end of input.
type lineSource interface {
	Scan() bool
	Text() string
}

// terminalLines adapts term.Terminal to lineSource.
type terminalLines struct {
	t    *term.Terminal
	line string
}

func (l *terminalLines) Scan() bool {
	line, err := l.t.ReadLine()
	if err != nil {
		return false
	}
	l.line = line
	return true
}

func (l *terminalLines) Text() string { return l.line }

// runShell reads command lines and dispatches each into a CLI app that shares
// the session's service. Output goes to w. Global --json and --quiet carry over.
func runShell(rt *runtime, svc *ops.Service, lines lineSource, w io.Writer) error {
	for lines.Scan() {
		args := splitArgs(lines.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "exit", "quit":
			return nil
		case "shell":
			fmt.Fprintln(w, "already in a shell")
			continue
		}
		if !cliCommands[args[0]] {
			fmt.Fprintf(w, "unknown command %q; try 'help'\n", args[0])
			continue
		}

		sub := &runtime{
			baseDir: rt.baseDir,
			cfg:     rt.cfg,
			out:     w,
			errOut:  w,
			svc:     svc,
			logger:  rt.logger,
		}
		argv := []string{"sicon"}
		if rt.p != nil && rt.p.JSON {
			argv = append(argv, "--json")
		}
		if rt.p != nil && rt.p.Quiet {
			argv = append(argv, "--quiet")
		}
		if err := newCLIApp(sub).Run(append(argv, args...)); err != nil {
			fmt.Fprintln(w, err)
		}
	}
	return nil
}

// splitArgs splits a command line on whitespace, honoring single and double quotes.
func splitArgs(line string) []string {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args
}

// slugSource returns the catalog slugs, loading them on first use.
// A load failure yields no candidates and is retried on the next call.
func slugSource(ctx context.Context, svc *ops.Service) func() []string {
	var slugs []string
	return func() []string {
		if slugs != nil {
			return slugs
		}
		cat, _, err := svc.Catalog.Load(ctx)
		if err != nil {
			return nil
		}
		slugs = cat.Slugs()
		return slugs
	}
}

// autoComplete builds a term.Terminal completion callback for the Tab key.
func autoComplete(slugs func() []string) func(line string, pos int, key rune) (string, int, bool) {
	return func(line string, pos int, key rune) (string, int, bool) {
		if key != '\t' {
			return "", 0, false
		}
		runes := []rune(line)
		if pos > len(runes) {
			pos = len(runes)
		}
		head, tail := string(runes[:pos]), string(runes[pos:])
		completed, ok := completeLine(head, slugs)
		if !ok {
			return "", 0, false
		}
		return completed + tail, len(completed), true
	}
}

// completeLine completes the last word of head: a command name in first
// position, or a slug after a command that takes one. A unique candidate is
// completed with a trailing space; several are completed to their common prefix.
func completeLine(head string, slugs func() []string) (string, bool) {
	fields := strings.Fields(head)
	trailingSpace := strings.HasSuffix(head, " ")

	var (
		word       string
		candidates []string
	)
	switch {
	case len(fields) == 0 || (len(fields) == 1 && !trailingSpace):
		if len(fields) == 1 {
			word = fields[0]
		}
		candidates = withPrefix(shellCommands, word)
	case slugCommands[fields[0]] && (len(fields) == 1 || (len(fields) == 2 && !trailingSpace)):
		if len(fields) == 2 {
			word = fields[1]
		}
		if word == "" {
			return "", false
		}
		candidates = withPrefix(slugs(), strings.ToLower(word))
	default:
		return "", false
	}

	if len(candidates) == 0 {
		return "", false
	}
	stem := strings.TrimSuffix(head, word)
	if len(candidates) == 1 {
		return stem + candidates[0] + " ", true
	}
	prefix := commonPrefix(candidates)
	if len(prefix) <= len(word) {
		return "", false
	}
	return stem + prefix, true
}

func withPrefix(options []string, prefix string) []string {
	var out []string
	for _, o := range options {
		if strings.HasPrefix(o, prefix) {
			out = append(out, o)
		}
	}
	sort.Strings(out)
	return out
}

func commonPrefix(words []string) string {
	if len(words) == 0 {
		return ""
	}
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
