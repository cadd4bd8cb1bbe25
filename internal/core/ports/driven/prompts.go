package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to built-in defaults.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names used throughout the application.
const (
	// PromptRouter is the system contract for the router.
	PromptRouter = "router"

	// PromptSQLAgent is the system contract for the SQL agent.
	// The template expects a %s placeholder for the schema text.
	PromptSQLAgent = "sql_agent"

	// PromptRAGAgent is the system contract for the RAG agent.
	// The template expects a %d placeholder for the retrieval cap.
	PromptRAGAgent = "rag_agent"

	// PromptGeneralAgent is the system contract for the general agent.
	PromptGeneralAgent = "general_agent"

	// PromptRerank asks for a 0-10 relevance score.
	// The template expects %s placeholders for the query and the passage.
	PromptRerank = "rerank"
)

// PromptNames returns every well-known prompt name.
func PromptNames() []string {
	return []string{PromptRouter, PromptSQLAgent, PromptRAGAgent, PromptGeneralAgent, PromptRerank}
}
