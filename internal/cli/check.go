package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/park285/othello-trainer/internal/builder"
	"github.com/park285/othello-trainer/internal/openings"
	"github.com/park285/othello-trainer/internal/othello"
)

func Check(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "check player path",
		Short: "Compare a player's games with the repertoire",
		Long:  "check reads a game file, or every file in a directory, and reports each of player's moves as correct, wrong or not found.",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			player, path := args[0], args[1]
			files, err := gameFiles(path)
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(d *builder.Deps) error {
				tree, err := d.Source.Tree(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, f := range files {
					if err := checkFile(out, tree, player, f); err != nil {
						return fmt.Errorf("%s: %w", f, err)
					}
				}
				return nil
			})
		},
	}
}

func gameFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func checkFile(out io.Writer, tree *openings.Tree, player, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	game, err := othello.ParseGame(f)
	if err != nil {
		return err
	}

	results, err := tree.Check(game, player)
	switch {
	case errors.Is(err, openings.ErrXOTGame):
		fmt.Fprintf(out, "%s: skipped xot game\n", path)
		return nil
	case errors.Is(err, othello.ErrNotPlaying):
		fmt.Fprintf(out, "%s: %s did not play\n", path, player)
		return nil
	case err != nil:
		return err
	}

	fmt.Fprintf(out, "%s:\n", path)
	for _, r := range results {
		played := othello.IndexToField(game.Moves[r.Move-1])
		line := fmt.Sprintf("  %2d. %s %s", r.Move, played, r.Status)
		if r.Correct != nil {
			if m, ok := r.Board.MoveOf(*r.Correct); ok {
				line += " (expected " + othello.IndexToField(m) + ")"
			}
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
