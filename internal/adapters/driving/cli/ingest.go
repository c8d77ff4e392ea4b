package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
)

var (
	ingestConfigPath string
	ingestURL        string
	ingestNombre     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [numero]",
	Short: "Download and index laws",
	Long: `Processes laws into the vector index. With a law number and --url,
ingests a single law; with --config, ingests every law in the
configuration file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestConfigPath, "config", "c", "", "laws configuration file (JSON)")
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "source URL for a single law")
	ingestCmd.Flags().StringVar(&ingestNombre, "nombre", "", "display name for a single law")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if deps.Ingestion == nil {
		return errors.New("ingestion service not configured")
	}
	ctx := context.Background()

	if ingestConfigPath != "" {
		ingested, err := deps.Ingestion.IngestFromConfig(ctx, ingestConfigPath)
		if err != nil {
			return fmt.Errorf("ingest from %s: %w", ingestConfigPath, err)
		}
		cmd.Printf("Ingestadas %d leyes.\n", len(ingested))
		return nil
	}

	if len(args) == 0 || ingestURL == "" {
		return errors.New("either --config or a law number with --url is required")
	}

	doc, err := deps.Ingestion.IngestLaw(ctx, driving.LawConfig{
		Numero: args[0],
		Nombre: ingestNombre,
		URL:    ingestURL,
	})
	if err != nil {
		return fmt.Errorf("ingest law %s: %w", args[0], err)
	}
	cmd.Printf("Ingestada %s: %s\n", doc.ID, doc.Titulo)
	return nil
}
