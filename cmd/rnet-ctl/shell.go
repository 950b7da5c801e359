package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

func shellCmd(f *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive command prompt",
		Long: `Open a prompt for zone commands. Messages from the system are printed as
they arrive and the connection is re-established when it drops.

` + usage(),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, system, err := f.settings()
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          fmt.Sprintf("rnet %s> ", system.IPAddr),
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return fmt.Errorf("failed to create readline: %w", err)
			}
			closeReadline := sync.OnceFunc(func() { rl.Close() })
			defer closeReadline()

			a, err := newApp(cfg, system, rl.Stdout(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return a.run(cmd.Context(), true, func(ctx context.Context) error {
				stop := context.AfterFunc(ctx, closeReadline)
				defer stop()
				return a.shell(ctx, rl)
			})
		},
	}
}

// shell reads commands until quit, EOF or ctx ends.
func (a *app) shell(ctx context.Context, rl *readline.Instance) error {
	out := rl.Stdout()
	fmt.Fprintln(out, `Type "help" for commands.`)

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}
		switch strings.ToLower(words[0]) {
		case "help", "?":
			fmt.Fprintln(out, usage())
			continue
		case "quit", "exit", "q":
			return nil
		}

		if err := a.shellCommand(ctx, words, out); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

func (a *app) shellCommand(ctx context.Context, words []string, out io.Writer) error {
	act, err := parseCommand(a.conn.Kind(), words)
	if err != nil {
		return err
	}
	return a.execute(ctx, act, out)
}
