package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
)

var (
	queryTopK  int
	queryLawID string
)

var queryCmd = &cobra.Command{
	Use:   "query [pregunta]",
	Short: "Answer a one-shot legal question from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of laws to retrieve")
	queryCmd.Flags().StringVarP(&queryLawID, "ley", "l", "", "answer against a single law id (e.g. ley_24714)")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if deps.Query == nil {
		return errors.New("query service not configured")
	}
	question := strings.Join(args, " ")
	ctx := context.Background()

	var result domain.QueryResult
	if queryLawID != "" {
		result = deps.Query.QueryLaw(ctx, question, queryLawID)
	} else {
		result = deps.Query.Query(ctx, question, queryTopK)
	}

	cmd.Println(result.Answer)
	if len(result.Documents) > 0 {
		cmd.Println()
		cmd.Println(dimStyle.Render("Fuentes:"))
		for _, doc := range result.Documents {
			line := fmt.Sprintf("  %s: %s", doc.ID, doc.Titulo)
			if doc.URL != "" {
				line += " (" + doc.URL + ")"
			}
			cmd.Println(dimStyle.Render(line))
		}
	}
	if verbose {
		cmd.Println(dimStyle.Render(fmt.Sprintf("%.0fms, caché: %v", result.ResponseTimeMs, result.CacheUsed)))
	}
	return nil
}
