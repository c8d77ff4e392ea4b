package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the
// binary, or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptSystem is the legal assistant system instruction.
	// This prompt has no format placeholders.
	PromptSystem = "system"

	// PromptTask wraps each query. The template expects two %s
	// placeholders: the user query and the document context block.
	PromptTask = "task"

	// PromptTaskCached wraps each query answered against a cached
	// context. The template expects one %s placeholder: the user query.
	PromptTaskCached = "task_cached"
)
