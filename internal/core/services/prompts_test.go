package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/core/ports/driven"
)

// mockPromptStore implements driven.PromptStore from a literal map.
type mockPromptStore struct {
	prompts map[string]string
	loadErr error
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.prompts[name], nil
}

func (m *mockPromptStore) Reload() {}

func TestLoadPrompt_NilStoreUsesDefaults(t *testing.T) {
	prompt := loadPrompt(nil, driven.PromptSystem)

	assert.Equal(t, DefaultPrompts[driven.PromptSystem], prompt)
	assert.Contains(t, prompt, "Seguridad Social")
}

func TestLoadPrompt_StoreOverridesDefault(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{
		driven.PromptSystem: "prompt personalizado",
	}}

	assert.Equal(t, "prompt personalizado", loadPrompt(store, driven.PromptSystem))
}

func TestLoadPrompt_FallsBackOnError(t *testing.T) {
	store := &mockPromptStore{loadErr: assert.AnError}

	assert.Equal(t, DefaultPrompts[driven.PromptTask], loadPrompt(store, driven.PromptTask))
}

func TestLoadPrompt_FallsBackOnEmptyPrompt(t *testing.T) {
	store := &mockPromptStore{prompts: map[string]string{}}

	assert.Equal(t, DefaultPrompts[driven.PromptTaskCached], loadPrompt(store, driven.PromptTaskCached))
}

func TestDefaultPrompts_TemplatePlaceholders(t *testing.T) {
	assert.Equal(t, 2, strings.Count(DefaultPrompts[driven.PromptTask], "%s"))
	assert.Equal(t, 1, strings.Count(DefaultPrompts[driven.PromptTaskCached], "%s"))
	assert.NotContains(t, DefaultPrompts[driven.PromptSystem], "%s")
}

func TestBuildContextBlock(t *testing.T) {
	doc := domain.LawDocument{ID: "ley_24714", Titulo: "Ley 24714"}

	block := buildContextBlock(doc, "Artículo 1...")

	assert.Equal(t, "--- DOCUMENTO: Ley 24714 (ID: ley_24714) ---\nArtículo 1...\n--- FIN: ley_24714 ---", block)
}

func TestLinkifyCitations(t *testing.T) {
	docs := []domain.LawDocument{
		{ID: "ley_24714", URL: "https://example.org/24714"},
		{ID: "ley_19587", URL: "https://example.org/19587"},
	}

	t.Run("range citation", func(t *testing.T) {
		out := linkifyCitations("Ver [ley_24714:L10-L20].", docs)
		assert.Equal(t, "Ver [ley_24714:L10-L20](https://example.org/24714).", out)
	})

	t.Run("single line citation", func(t *testing.T) {
		out := linkifyCitations("Según [ley_19587:L5]", docs)
		assert.Equal(t, "Según [ley_19587:L5](https://example.org/19587)", out)
	})

	t.Run("multiple citations", func(t *testing.T) {
		out := linkifyCitations("[ley_24714:L1] y [ley_19587:L2]", docs)
		require.Contains(t, out, "(https://example.org/24714)")
		require.Contains(t, out, "(https://example.org/19587)")
	})

	t.Run("unknown law left untouched", func(t *testing.T) {
		out := linkifyCitations("Ver [ley_99999:L1-L2].", docs)
		assert.Equal(t, "Ver [ley_99999:L1-L2].", out)
	})

	t.Run("no urls available", func(t *testing.T) {
		out := linkifyCitations("Ver [ley_24714:L1].", []domain.LawDocument{{ID: "ley_24714"}})
		assert.Equal(t, "Ver [ley_24714:L1].", out)
	})

	t.Run("non-citation brackets ignored", func(t *testing.T) {
		out := linkifyCitations("Texto [nota] y [ley_24714] sin líneas.", docs)
		assert.Equal(t, "Texto [nota] y [ley_24714] sin líneas.", out)
	})
}
