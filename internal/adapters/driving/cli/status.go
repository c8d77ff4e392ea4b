package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(18)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index, cache and service status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if deps.Index == nil {
		return errors.New("index not configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd.Println(titleStyle.Render("leyrag"))
	cmd.Println()

	count, err := deps.Index.Count(ctx)
	if err != nil {
		cmd.Println(labelStyle.Render("Documentos:"), errStyle.Render(fmt.Sprintf("error: %v", err)))
	} else {
		cmd.Println(labelStyle.Render("Documentos:"), fmt.Sprintf("%d", count))
	}

	if deps.Removal != nil {
		for _, id := range deps.Removal.ListIDs(ctx) {
			cmd.Println(labelStyle.Render(""), dimStyle.Render(id))
		}
	}

	if deps.Cache != nil {
		sessions, err := deps.Cache.ListActive(ctx)
		if err != nil {
			cmd.Println(labelStyle.Render("Cachés activos:"), errStyle.Render(fmt.Sprintf("error: %v", err)))
		} else {
			cmd.Println(labelStyle.Render("Cachés activos:"), fmt.Sprintf("%d", len(sessions)))
			for _, s := range sessions {
				detail := fmt.Sprintf("%s (hash %s, expira %s)",
					s.LawID, s.HashPrefix(), s.ExpiresAt.Local().Format("2006-01-02 15:04"))
				cmd.Println(labelStyle.Render(""), dimStyle.Render(detail))
			}
		}
	}

	if deps.Sessions != nil {
		cmd.Println(labelStyle.Render("Sesiones chat:"), fmt.Sprintf("%d", deps.Sessions.Count()))
	}

	cmd.Println()
	if deps.Embedder != nil {
		printPing(cmd, "Embeddings", deps.Embedder.ModelName(), deps.Embedder.Ping(ctx))
	} else {
		cmd.Println(labelStyle.Render("Embeddings:"), dimStyle.Render("no configurado"))
	}
	if deps.Generator != nil {
		printPing(cmd, "Generación", deps.Generator.ModelName(), deps.Generator.Ping(ctx))
	} else {
		cmd.Println(labelStyle.Render("Generación:"), dimStyle.Render("no configurado"))
	}
	return nil
}

func printPing(cmd *cobra.Command, label, model string, err error) {
	if err != nil {
		cmd.Println(labelStyle.Render(label+":"), errStyle.Render("inaccesible"), dimStyle.Render(model))
		return
	}
	cmd.Println(labelStyle.Render(label+":"), okStyle.Render("ok"), dimStyle.Render(model))
}
