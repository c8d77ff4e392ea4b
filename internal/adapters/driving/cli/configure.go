package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	geminiembed "github.com/leyrag-labs/leyrag/internal/adapters/driven/embedding/gemini"
	geminillm "github.com/leyrag-labs/leyrag/internal/adapters/driven/llm/gemini"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Configure API credentials and models interactively",
	RunE:  runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, _ []string) error {
	if deps.Config == nil {
		return errors.New("config store not available")
	}
	reader := bufio.NewReader(cmd.InOrStdin())

	current := deps.Config.GetString("gemini.api_key")
	if current != "" {
		cmd.Printf("Clave API de Gemini actual: %s\n", maskAPIKey(current))
	}
	cmd.Print("Clave API de Gemini (enter para mantener): ")
	key := readPassword(reader)
	cmd.Println()
	if key != "" {
		if err := deps.Config.Set("gemini.api_key", key); err != nil {
			return fmt.Errorf("save api key: %w", err)
		}
	} else if current == "" {
		cmd.Println("Sin clave guardada; leyrag usará la variable GEMINI_API_KEY.")
	}

	model := promptDefault(cmd, reader, "Modelo de generación", configOr("gemini.model", geminillm.DefaultModel))
	if err := deps.Config.Set("gemini.model", model); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	embedModel := promptDefault(cmd, reader, "Modelo de embeddings", configOr("gemini.embedding_model", geminiembed.DefaultModel))
	if err := deps.Config.Set("gemini.embedding_model", embedModel); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}

	backend := promptDefault(cmd, reader, "Índice vectorial (memory/chroma)", configOr("vector.backend", "memory"))
	if backend != "memory" && backend != "chroma" {
		cmd.Printf("Backend desconocido %q, usando memory\n", backend)
		backend = "memory"
	}
	if err := deps.Config.Set("vector.backend", backend); err != nil {
		return fmt.Errorf("save vector backend: %w", err)
	}
	if backend == "chroma" {
		url := promptDefault(cmd, reader, "URL de Chroma", configOr("chroma.url", "http://localhost:8000"))
		if err := deps.Config.Set("chroma.url", url); err != nil {
			return fmt.Errorf("save chroma url: %w", err)
		}
	}

	cmd.Println("Configuración guardada.")
	return nil
}

func configOr(key, fallback string) string {
	if v := deps.Config.GetString(key); v != "" {
		return v
	}
	return fallback
}

func promptDefault(cmd *cobra.Command, reader *bufio.Reader, label, def string) string {
	cmd.Printf("%s [%s]: ", label, def)
	if input := readLine(reader); input != "" {
		return input
	}
	return def
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readPassword reads without echo when stdin is a terminal, falling
// back to a plain line read otherwise.
func readPassword(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
