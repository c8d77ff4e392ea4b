// Package cli implements the leyrag command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/leyrag-labs/leyrag/internal/adapters/driving/httpapi"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driving"
	"github.com/leyrag-labs/leyrag/internal/core/services"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// Dependencies carries the wired services the commands run against.
// The main package builds them; commands fail cleanly when one they
// need is missing.
type Dependencies struct {
	Query     driving.QueryService
	Ingestion driving.IngestionService
	Removal   driving.RemovalService
	Cache     *services.CacheManager
	Sessions  *services.SessionStore
	Index     driven.VectorIndex
	Config    driven.ConfigStore
	Embedder  driven.EmbeddingService
	Generator driven.Generator
	API       *httpapi.Server
}

var deps Dependencies

var verbose bool

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "leyrag",
	Short: "Asistente legal RAG para leyes de seguridad social argentina",
	Long: `leyrag indexa leyes argentinas de seguridad social y responde
consultas sobre ellas con citas a los textos oficiales.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute wires the dependencies into the command tree and runs it.
func Execute(d Dependencies) error {
	deps = d
	return rootCmd.Execute()
}
