package cli

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/wordle-helper/internal/boardfile"
)

func newExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export BOARD OUT",
		Short: "Convert a board file to .xlsx, .yaml or .json",
		Example: `  wordle-helper export board.jsonc board.xlsx
  wordle-helper export board.yaml board.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := boardfile.Load(args[0])
			if err != nil {
				return err
			}
			sess, err := b.Session()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := writeBoard(args[1], sess); err != nil {
				return err
			}
			log.Info().Str("from", args[0]).Str("to", args[1]).Msg("board exported")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[1])
			return nil
		},
	}
}
