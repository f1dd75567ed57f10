// Package cli implements the othello-openings command: inspect, edit and
// check games against the openings repertoire.
package cli

import (
	"context"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/park285/othello-trainer/internal/builder"
	appcfg "github.com/park285/othello-trainer/internal/config"
	"github.com/park285/othello-trainer/internal/obslog"
)

// Opener builds the openings dependencies for a command run.
type Opener func(ctx context.Context) (*builder.Deps, error)

// Root returns the command tree backed by the configured store.
func Root() *cobra.Command {
	return NewRoot(func(ctx context.Context) (*builder.Deps, error) {
		cfg, err := appcfg.Load()
		if err != nil {
			return nil, err
		}
		return builder.New(ctx, cfg, obslog.L())
	})
}

func NewRoot(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "othello-openings",
		Short: "Manage the Othello openings repertoire",
		Long: heredoc.Doc(`
			othello-openings reads and edits the repertoire used for training.
			The store is Postgres when DATABASE_URL is set and the JSON file at
			OPENINGS_FILE otherwise.
		`),
		Args: cobra.NoArgs,

		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(Show(open))
	root.AddCommand(Validate(open))
	root.AddCommand(Lines(open))
	root.AddCommand(Set(open))
	root.AddCommand(Import(open))
	root.AddCommand(Check(open))
	return root
}

// withDeps opens the store for the duration of fn.
func withDeps(cmd *cobra.Command, open Opener, fn func(*builder.Deps) error) error {
	deps, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}
