// Package cli is the command-line front end for the prompt generator.
//
// Each command builds a gate.Controller over the local store and drives it
// once. The same controller would sit behind any other front end.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/sakif/ui-feedback/internal/client/capture"
	"github.com/sakif/ui-feedback/internal/client/localstore"
	"github.com/sakif/ui-feedback/internal/config"
	"github.com/sakif/ui-feedback/internal/gate"
)

// ErrLocked is returned by commands that need an unlocked gate.
var ErrLocked = errors.New("generator is locked: run `feedback unlock <email>` first")

// App holds what the commands share.
type App struct {
	Config *config.Client
	Logger *slog.Logger

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error

	// Intn overrides the prompt draw; nil uses math/rand/v2.
	Intn func(n int) int

	store *localstore.Store
}

// NewApp creates an App with the system clipboard.
func NewApp(cfg *config.Client, logger *slog.Logger) *App {
	return &App{
		Config:    cfg,
		Logger:    logger,
		Clipboard: clipboard.WriteAll,
	}
}

// Command returns the root cobra command.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedback",
		Short:         "Random UI design prompts, unlocked with your email",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations["store"] == "none" || a.store != nil {
				return nil
			}
			store, err := localstore.Open(a.Config.StatePath)
			if err != nil {
				return err
			}
			a.store = store
			return nil
		},
	}

	root.AddCommand(
		a.statusCmd(),
		a.unlockCmd(),
		a.generateCmd(),
		a.resetCmd(),
		a.usersCmd(),
		a.tokenCmd(),
	)
	return root
}

// Close releases the local store if a command opened it.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func (a *App) controller(ctx context.Context) (*gate.Controller, error) {
	c := gate.New(gate.Options{
		Store:     a.store,
		Capture:   capture.New(a.Config.APIURL, a.Config.HTTPTimeout),
		Clipboard: a.Clipboard,
		Intn:      a.Intn,
		Logger:    a.Logger,
	})
	if err := c.Load(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (a *App) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the generator is unlocked on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.controller(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			if !c.Snapshot().Unlocked {
				fmt.Fprintln(out, "locked")
				return nil
			}
			email, _, err := a.store.Get(ctx, gate.FlagKey)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "unlocked (%s)\n", email)
			return nil
		},
	}
}

func (a *App) unlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock [email]",
		Short: "Submit your email to unlock the generator",
		Long: `Submit your email to unlock the generator.

Without an argument the email is read from standard input. Once accepted,
the generator stays unlocked on this device until "feedback reset".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.controller(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			if c.Snapshot().Unlocked {
				fmt.Fprintln(out, "Already unlocked.")
				return nil
			}

			var email string
			if len(args) == 1 {
				email = args[0]
			} else {
				fmt.Fprint(out, "Your email: ")
				email, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			c.SetEmailInput(email)
			if err := c.Submit(ctx, email); err != nil {
				if msg := c.Snapshot().Error; msg != "" {
					return errors.New(msg)
				}
				return err
			}

			fmt.Fprintln(out, "Unlocked. Run `feedback generate` for a prompt.")
			return nil
		},
	}
}

func (a *App) generateCmd() *cobra.Command {
	var copyOut bool

	cmd := &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Print a random UI feedback prompt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.controller(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			text, ok := c.Generate()
			if !ok {
				return ErrLocked
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, text)
			if copyOut && c.Copy() {
				fmt.Fprintln(out, "Copied!")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "also copy the prompt to the clipboard")
	return cmd
}

func (a *App) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the email stored on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Local state cleared.")
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading email: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
