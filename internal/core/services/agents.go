package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
)

// Ensure the specialists implement the interface.
var (
	_ driving.Agent = (*SQLAgent)(nil)
	_ driving.Agent = (*RAGAgent)(nil)
	_ driving.Agent = (*GeneralAgent)(nil)
)

// Tool names offered to the specialists.
const (
	ToolRunQuery         = "run_query"
	ToolRetrievePolicies = "retrieve_policy_documents"
)

// DefaultRAGMaxRetrievals is the retrieval cap per turn.
const DefaultRAGMaxRetrievals = 2

// noPolicyDocuments is the tool output when retrieval finds nothing.
const noPolicyDocuments = "No relevant policy documents found."

func chatOptions(cfg domain.LLMSettings) driven.ChatOptions {
	return driven.ChatOptions{MaxTokens: cfg.MaxTokens, Temperature: cfg.Temperature}
}

// SQLAgent answers data questions with guarded read-only queries.
type SQLAgent struct {
	tool    *QueryTool
	prompts driven.PromptStore
	loop    toolLoop
}

// NewSQLAgent creates the SQL specialist.
func NewSQLAgent(
	llm driven.LLMService,
	tool *QueryTool,
	prompts driven.PromptStore,
	llmCfg domain.LLMSettings,
	agentCfg domain.AgentSettings,
) *SQLAgent {
	a := &SQLAgent{tool: tool, prompts: prompts}
	a.loop = toolLoop{
		name:     domain.CategorySQL.AgentName(),
		llm:      llm,
		maxSteps: agentCfg.MaxSteps,
		opts:     chatOptions(llmCfg),
		tools: []agentTool{{
			spec: domain.ToolSpec{
				Name:        ToolRunQuery,
				Description: "Run a read-only SQL SELECT query against the customer support database and return the rows.",
				Parameters: []domain.ToolParameter{
					{Name: "query", Type: "string", Description: "A single SQLite SELECT statement", Required: true},
				},
			},
			budget: agentCfg.SQLMaxQueries,
			run:    a.runQuery,
		}},
	}
	return a
}

// Category returns domain.CategorySQL.
func (a *SQLAgent) Category() domain.Category { return domain.CategorySQL }

// Run answers the latest user message from the support database.
func (a *SQLAgent) Run(ctx context.Context, messages []domain.Message) (domain.Message, error) {
	if _, ok := domain.LastUserMessage(messages); !ok {
		return domain.Message{}, nil
	}
	system := fmt.Sprintf(loadPrompt(a.prompts, driven.PromptSQLAgent), a.tool.Schema(ctx))
	return a.loop.run(ctx, system, messages)
}

func (a *SQLAgent) runQuery(ctx context.Context, call domain.ToolCall) (string, error) {
	query, err := requiredString(call, "query")
	if err != nil {
		return "", err
	}
	result, err := a.tool.Run(ctx, query)
	if err != nil {
		return "", err
	}
	return result.Format(), nil
}

// RAGAgent answers policy questions from retrieved document chunks.
// Retrieval is capped per turn; calls beyond the cap are refused.
type RAGAgent struct {
	retriever driving.Retriever
	prompts   driven.PromptStore
	cap       int
	loop      toolLoop
}

// NewRAGAgent creates the policy specialist.
func NewRAGAgent(
	llm driven.LLMService,
	retriever driving.Retriever,
	prompts driven.PromptStore,
	llmCfg domain.LLMSettings,
	agentCfg domain.AgentSettings,
) *RAGAgent {
	limit := agentCfg.RAGMaxRetrievals
	if limit <= 0 {
		limit = DefaultRAGMaxRetrievals
	}
	a := &RAGAgent{retriever: retriever, prompts: prompts, cap: limit}
	a.loop = toolLoop{
		name:     domain.CategoryRAG.AgentName(),
		llm:      llm,
		maxSteps: agentCfg.MaxSteps,
		opts:     chatOptions(llmCfg),
		tools: []agentTool{{
			spec: domain.ToolSpec{
				Name:        ToolRetrievePolicies,
				Description: "Search TechCorp's policy documents and return the most relevant passages with source and page.",
				Parameters: []domain.ToolParameter{
					{Name: "query", Type: "string", Description: "What to look for in the policy documents", Required: true},
				},
			},
			budget: limit,
			run:    a.retrieve,
		}},
	}
	return a
}

// Category returns domain.CategoryRAG.
func (a *RAGAgent) Category() domain.Category { return domain.CategoryRAG }

// Run answers the latest user message from policy documents.
func (a *RAGAgent) Run(ctx context.Context, messages []domain.Message) (domain.Message, error) {
	system := loadPrompt(a.prompts, driven.PromptRAGAgent)
	if strings.Contains(system, "%d") {
		system = fmt.Sprintf(system, a.cap)
	}
	return a.loop.run(ctx, system, messages)
}

func (a *RAGAgent) retrieve(ctx context.Context, call domain.ToolCall) (string, error) {
	query, err := requiredString(call, "query")
	if err != nil {
		return "", err
	}
	result, err := a.retriever.Retrieve(ctx, query, 0)
	if err != nil {
		return "", err
	}
	return FormatSources(result.Chunks), nil
}

// FormatSources renders retrieved chunks as numbered, cited passages.
// Sources are cited by file name.
func FormatSources(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return noPolicyDocuments
	}
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[Source %d: %s, Page %d]\n%s", i+1, filepath.Base(c.Chunk.Source), c.Chunk.Page, c.Chunk.Content)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

// GeneralAgent handles greetings and meta-questions with one completion.
type GeneralAgent struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.ChatOptions
}

// NewGeneralAgent creates the general conversation specialist.
func NewGeneralAgent(llm driven.LLMService, prompts driven.PromptStore, llmCfg domain.LLMSettings) *GeneralAgent {
	return &GeneralAgent{llm: llm, prompts: prompts, opts: chatOptions(llmCfg)}
}

// Category returns domain.CategoryGeneral.
func (a *GeneralAgent) Category() domain.Category { return domain.CategoryGeneral }

// Run makes a single tool-less completion.
func (a *GeneralAgent) Run(ctx context.Context, messages []domain.Message) (domain.Message, error) {
	if _, ok := domain.LastUserMessage(messages); !ok {
		return domain.Message{}, nil
	}
	if a.llm == nil {
		return domain.Message{}, fmt.Errorf("general_agent: %w", domain.ErrLLMUnavailable)
	}

	prompt := make([]domain.Message, 0, len(messages)+1)
	prompt = append(prompt, domain.NewSystemMessage(loadPrompt(a.prompts, driven.PromptGeneralAgent)))
	for _, m := range messages {
		if m.Role == domain.RoleUser || (m.Role == domain.RoleAssistant && m.Content != "") {
			prompt = append(prompt, domain.Message{Role: m.Role, Content: m.Content})
		}
	}

	opts := a.opts
	opts.ToolChoice = driven.ToolChoiceNone
	reply, err := a.llm.Chat(ctx, prompt, opts)
	if err != nil {
		return domain.Message{}, fmt.Errorf("general_agent: %w", err)
	}
	reply.Role = domain.RoleAssistant
	reply.ToolCalls = nil
	return reply, nil
}
