package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driving"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// Ensure Router implements the interface.
var _ driving.Router = (*Router)(nil)

// routeTool is the forced tool whose only argument is the category enum.
const routeTool = "route"

// Router classifies the latest user turn with a single constrained model call.
type Router struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	opts    driven.ChatOptions
}

// NewRouter creates a router. The prompt store may be nil.
func NewRouter(llm driven.LLMService, prompts driven.PromptStore, cfg domain.LLMSettings) *Router {
	return &Router{
		llm:     llm,
		prompts: prompts,
		opts: driven.ChatOptions{
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
		},
	}
}

// routeSpec declares the route tool.
func routeSpec() domain.ToolSpec {
	labels := make([]string, 0, 3)
	for _, c := range domain.AllCategories() {
		labels = append(labels, c.String())
	}
	return domain.ToolSpec{
		Name:        routeTool,
		Description: "Route the user's message to the specialist that should answer it.",
		Parameters: []domain.ToolParameter{
			{
				Name:        "category",
				Type:        "string",
				Description: "sql for customer/ticket/product data, rag for company policies, general for everything else",
				Required:    true,
				Enum:        labels,
			},
		},
	}
}

// Classify returns the category for the most recent user message.
// Without a user message it returns CategoryGeneral and makes no model call.
// Model failures and unparseable output wrap domain.ErrClassification.
func (r *Router) Classify(ctx context.Context, messages []domain.Message) (domain.Category, error) {
	logger.Section("Routing")

	latest, ok := domain.LastUserMessage(messages)
	if !ok || strings.TrimSpace(latest.Content) == "" {
		logger.Debug("No user message, routing to %s", domain.CategoryGeneral)
		return domain.CategoryGeneral, nil
	}
	if r.llm == nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClassification, domain.ErrLLMUnavailable)
	}

	opts := r.opts
	opts.Tools = []domain.ToolSpec{routeSpec()}
	opts.ToolChoice = driven.ForceTool(routeTool)

	prompt := []domain.Message{
		domain.NewSystemMessage(loadPrompt(r.prompts, driven.PromptRouter)),
		domain.NewUserMessage(latest.Content),
	}

	reply, err := r.llm.Chat(ctx, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrClassification, err)
	}

	category, err := categoryFromReply(reply)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}

	logger.Info("Routed to %s", category.AgentName())
	return category, nil
}

// categoryFromReply reads the route tool call, falling back to the text content.
func categoryFromReply(reply domain.Message) (domain.Category, error) {
	for _, call := range reply.ToolCalls {
		if call.Name == routeTool {
			return domain.ParseCategory(call.StringArg("category"))
		}
	}
	return domain.ParseCategory(reply.Content)
}
