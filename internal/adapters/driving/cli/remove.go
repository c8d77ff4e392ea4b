package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [ley_id]",
	Short: "Remove a law from the index",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every law from the index",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(resetCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	if deps.Removal == nil {
		return errors.New("removal service not configured")
	}

	lawID := args[0]
	if !deps.Removal.Remove(context.Background(), lawID) {
		return fmt.Errorf("document %s was not removed", lawID)
	}
	cmd.Printf("Eliminada %s.\n", lawID)
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	if deps.Removal == nil {
		return errors.New("removal service not configured")
	}
	ctx := context.Background()

	count := deps.Removal.Count(ctx)
	if count == 0 {
		cmd.Println("El índice ya está vacío.")
		return nil
	}

	if !resetYes {
		cmd.Printf("Se eliminarán %d documentos. ¿Continuar? [y/N]: ", count)
		var answer string
		_, _ = fmt.Fscanln(cmd.InOrStdin(), &answer)
		if answer != "y" && answer != "Y" {
			cmd.Println("Cancelado.")
			return nil
		}
	}

	removed, err := deps.Removal.RemoveAll(ctx)
	if err != nil {
		return fmt.Errorf("reset index: %w", err)
	}
	cmd.Printf("Eliminados %d documentos.\n", removed)
	return nil
}
