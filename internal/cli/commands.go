package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/park285/othello-trainer/internal/builder"
	"github.com/park285/othello-trainer/internal/drill"
	"github.com/park285/othello-trainer/internal/openings"
	"github.com/park285/othello-trainer/internal/othello"
)

func Show(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show board_id",
		Short: "Print a board and its repertoire move",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := othello.FromID(args[0])
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(d *builder.Deps) error {
				tree, err := d.Source.Tree(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				board.Show(out)
				fmt.Fprintf(out, "id:         %s\nnormalized: %s\n", board.ID(), board.NormalizedID())
				best, ok := tree.Lookup(board)
				if !ok {
					fmt.Fprintln(out, "best move:  not in repertoire")
					return nil
				}
				if _, move, ok := board.DenormalizeChild(best); ok {
					fmt.Fprintf(out, "best move:  %s\n", othello.IndexToField(move))
				}
				return nil
			})
		},
	}
}

func Validate(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every entry names a legal child",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd, open, func(d *builder.Deps) error {
				tree, err := d.Source.Tree(cmd.Context())
				if err != nil {
					return err
				}
				if err := tree.Validate(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d entries ok\n", tree.Len())
				return nil
			})
		},
	}
}

func Lines(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lines",
		Short: "List the drill lines of one color",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("color")
			color, err := othello.ParseColor(name)
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(d *builder.Deps) error {
				lines, err := d.Lines.Lines(cmd.Context(), color)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, line := range lines {
					moves, err := lineMoves(line)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, strings.Join(moves, " "))
				}
				fmt.Fprintf(out, "%d lines\n", len(lines))
				return nil
			})
		},
	}
	cmd.Flags().StringP("color", "c", "black", "color to list lines for")
	return cmd
}

// lineMoves spells a line as fields: each step's move followed by the reply
// leading to the next step.
func lineMoves(line drill.Opening) ([]string, error) {
	var moves []string
	for i, step := range line {
		board, err := othello.FromID(step.Board)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			for _, m := range prefixMoves(board) {
				moves = append(moves, othello.IndexToField(m))
			}
		}
		child, err := board.DoMove(step.BestChild)
		if err != nil {
			return nil, err
		}
		moves = append(moves, othello.IndexToField(step.BestChild))
		if i+1 < len(line) {
			next, err := othello.FromID(line[i+1].Board)
			if err != nil {
				return nil, err
			}
			reply, ok := child.MoveOf(next)
			if !ok {
				return nil, fmt.Errorf("step %d: %s does not follow %s", i+1, next.ID(), child.ID())
			}
			moves = append(moves, othello.IndexToField(reply))
		}
	}
	return moves, nil
}

// prefixMoves returns the opening move leading to board when it is a child
// of the initial position, as white lines start there.
func prefixMoves(board othello.Board) []int {
	if m, ok := othello.New().MoveOf(board); ok {
		return []int{m}
	}
	return nil
}

func Set(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "set board_id field",
		Short: "Store the repertoire move for a board",
		Args:  cobra.ExactArgs(2),

		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := othello.FromID(args[0])
			if err != nil {
				return err
			}
			move, err := othello.FieldToIndex(args[1])
			if err != nil {
				return err
			}
			child, ok := board.ChildMap()[move]
			if !ok {
				return fmt.Errorf("%s is not a legal move on %s", args[1], board.ID())
			}
			return withDeps(cmd, open, func(d *builder.Deps) error {
				if err := d.Lines.Upsert(cmd.Context(), board, child); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", board.NormalizedID(), child.NormalizedID())
				return nil
			})
		},
	}
}

func Import(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import file",
		Short: "Copy a JSON repertoire into Postgres",
		Long: heredoc.Doc(`
			import reads a repertoire file in the {"openings": {...}} format,
			validates it and upserts every entry into the othello_openings
			table in one transaction. DATABASE_URL must be set.
		`),
		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			tree, err := openings.DecodeTree(raw)
			if err != nil {
				return err
			}
			return withDeps(cmd, open, func(d *builder.Deps) error {
				if d.Repo == nil {
					return errors.New("import needs DATABASE_URL")
				}
				n, err := d.Repo.Import(cmd.Context(), tree)
				if err != nil {
					return err
				}
				d.Lines.Invalidate(cmd.Context())
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", n)
				return nil
			})
		},
	}
}
