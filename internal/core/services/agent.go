package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

// DefaultMaxSteps caps model calls in a tool loop before a final answer is forced.
const DefaultMaxSteps = 10

// finalAnswerInstruction is sent when the step cap is reached.
const finalAnswerInstruction = "Tool use is no longer available for this question. " +
	"Answer now using only the information already gathered, and say clearly if anything could not be found."

// toolHandler executes one tool call and returns its text output.
type toolHandler func(ctx context.Context, call domain.ToolCall) (string, error)

// agentTool binds a tool declaration to its handler and per-turn budget.
type agentTool struct {
	spec   domain.ToolSpec
	budget int // 0 means unlimited
	run    toolHandler
}

// toolLoop runs START -> (tool calls)* -> FINAL_ANSWER for one specialist.
// Tool calls execute sequentially; each tool is withdrawn once its budget
// is spent and any further calls to it are refused without executing.
type toolLoop struct {
	name     string
	llm      driven.LLMService
	tools    []agentTool
	maxSteps int
	opts     driven.ChatOptions
}

// run executes the loop over the thread messages with the given system contract.
func (l *toolLoop) run(ctx context.Context, system string, history []domain.Message) (domain.Message, error) {
	if _, ok := domain.LastUserMessage(history); !ok {
		logger.Debug("%s: no user message, nothing to answer", l.name)
		return domain.Message{}, nil
	}
	if l.llm == nil {
		return domain.Message{}, fmt.Errorf("%s: %w", l.name, domain.ErrLLMUnavailable)
	}

	messages := make([]domain.Message, 0, len(history)+8)
	messages = append(messages, domain.NewSystemMessage(system))
	for _, m := range history {
		if m.Role != domain.RoleSystem {
			messages = append(messages, m)
		}
	}

	maxSteps := l.maxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	used := make(map[string]int, len(l.tools))

	for step := 1; step <= maxSteps; step++ {
		opts := l.opts
		opts.Tools = l.available(used)
		if len(opts.Tools) == 0 {
			opts.ToolChoice = driven.ToolChoiceNone
		}

		reply, err := l.llm.Chat(ctx, messages, opts)
		if err != nil {
			return domain.Message{}, fmt.Errorf("%s: step %d: %w", l.name, step, err)
		}
		reply.Role = domain.RoleAssistant

		if !reply.HasToolCalls() {
			logger.Debug("%s: final answer after %d step(s)", l.name, step)
			return reply, nil
		}

		messages = append(messages, reply)
		for _, call := range reply.ToolCalls {
			messages = append(messages, domain.NewToolResultMessage(call, l.execute(ctx, call, used)))
		}
	}

	logger.Warn("%s: step limit (%d) reached, forcing a final answer", l.name, maxSteps)
	messages = append(messages, domain.NewSystemMessage(finalAnswerInstruction))
	opts := l.opts
	opts.ToolChoice = driven.ToolChoiceNone
	reply, err := l.llm.Chat(ctx, messages, opts)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%s: final answer: %w", l.name, err)
	}
	reply.Role = domain.RoleAssistant
	reply.ToolCalls = nil
	return reply, nil
}

// available returns the tools whose budget is not yet spent.
func (l *toolLoop) available(used map[string]int) []domain.ToolSpec {
	specs := make([]domain.ToolSpec, 0, len(l.tools))
	for _, t := range l.tools {
		if t.budget == 0 || used[t.spec.Name] < t.budget {
			specs = append(specs, t.spec)
		}
	}
	return specs
}

// execute runs one tool call. Every failure becomes tool output for the model.
func (l *toolLoop) execute(ctx context.Context, call domain.ToolCall, used map[string]int) string {
	var tool *agentTool
	for i := range l.tools {
		if l.tools[i].spec.Name == call.Name {
			tool = &l.tools[i]
			break
		}
	}
	if tool == nil {
		logger.Warn("%s: model requested unknown tool %q", l.name, call.Name)
		return fmt.Sprintf("Error: %v: %q", domain.ErrUnknownTool, call.Name)
	}

	if tool.budget > 0 && used[call.Name] >= tool.budget {
		logger.Warn("%s: refused %s call beyond limit of %d", l.name, call.Name, tool.budget)
		return fmt.Sprintf("Error: %v: %s may be called at most %d times per question. "+
			"Answer with the information already retrieved and note what is missing.",
			domain.ErrToolBudgetExhausted, call.Name, tool.budget)
	}
	used[call.Name]++

	logger.Debug("%s: calling %s (%d) with %v", l.name, call.Name, used[call.Name], call.Arguments)
	out, err := tool.run(ctx, call)
	if err != nil {
		logger.Debug("%s: %s failed: %v", l.name, call.Name, err)
		return "Error: " + err.Error()
	}
	return out
}

// requiredString reads a non-blank string argument.
func requiredString(call domain.ToolCall, name string) (string, error) {
	v := strings.TrimSpace(call.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: missing required argument %q", domain.ErrInvalidInput, name)
	}
	return v, nil
}
