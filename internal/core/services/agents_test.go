package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/ports/driven"
)

var testAgentSettings = domain.AgentSettings{RAGMaxRetrievals: 2, SQLMaxQueries: 8, MaxSteps: 10}

func userTurn(text string) []domain.Message {
	return []domain.Message{domain.NewUserMessage(text)}
}

// toolResults returns the tool messages sent in a recorded call.
func toolResults(call chatCall) []domain.Message {
	var out []domain.Message
	for _, m := range call.messages {
		if m.Role == domain.RoleTool {
			out = append(out, m)
		}
	}
	return out
}

func policyResult() *domain.RetrievalResult {
	return &domain.RetrievalResult{
		Strategy: domain.StrategyHybrid,
		Chunks: []domain.ScoredChunk{
			{Chunk: domain.Chunk{ID: "c1", Source: "refund_policy.pdf", Page: 2, Content: "Refunds within 30 days."}, Score: 0.9},
		},
	}
}

func TestRAGAgent_AnswersWithCitations(t *testing.T) {
	llm := newScriptedLLM(
		toolCallReply(callTool("t1", ToolRetrievePolicies, "refund policy")),
		domain.NewAssistantMessage("Refunds are accepted within 30 days (refund_policy.pdf, page 2)."),
	)
	retriever := &mockRetriever{result: policyResult()}
	agent := NewRAGAgent(llm, retriever, nil, domain.LLMSettings{}, testAgentSettings)

	reply, err := agent.Run(context.Background(), userTurn("What is the refund policy?"))

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Contains(t, reply.Content, "30 days")
	assert.Equal(t, []string{"refund policy"}, retriever.queries)

	require.Equal(t, 2, llm.callCount())
	results := toolResults(llm.call(1))
	require.Len(t, results, 1)
	assert.Equal(t, "t1", results[0].ToolCallID)
	assert.Equal(t, "[Source 1: refund_policy.pdf, Page 2]\nRefunds within 30 days.", results[0].Content)

	system := llm.call(0).messages[0]
	assert.Equal(t, domain.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "at most 2")
}

func TestRAGAgent_RetrievalCapUnderAdversarialModel(t *testing.T) {
	llm := newScriptedLLM()
	calls := 0
	llm.respond = func(_ []domain.Message, opts driven.ChatOptions) (domain.Message, error) {
		if len(opts.Tools) == 0 {
			return domain.NewAssistantMessage("final"), nil
		}
		calls++
		// Ask for three retrievals in one step, every step.
		return toolCallReply(
			callTool(fmt.Sprintf("a%d", calls), ToolRetrievePolicies, "q1"),
			callTool(fmt.Sprintf("b%d", calls), ToolRetrievePolicies, "q2"),
			callTool(fmt.Sprintf("c%d", calls), ToolRetrievePolicies, "q3"),
		), nil
	}
	retriever := &mockRetriever{result: policyResult()}
	agent := NewRAGAgent(llm, retriever, nil, domain.LLMSettings{}, testAgentSettings)

	reply, err := agent.Run(context.Background(), userTurn("Tell me every policy"))

	require.NoError(t, err)
	assert.Equal(t, "final", reply.Content)
	assert.Len(t, retriever.queries, 2)

	results := toolResults(llm.call(1))
	require.Len(t, results, 3)
	assert.True(t, strings.HasPrefix(results[2].Content, "Error: "+domain.ErrToolBudgetExhausted.Error()))

	// The tool is withdrawn once the budget is spent.
	assert.Empty(t, llm.call(1).opts.Tools)
	assert.Equal(t, driven.ToolChoiceNone, llm.call(1).opts.ToolChoice)
}

func TestRAGAgent_NoDocuments(t *testing.T) {
	llm := newScriptedLLM(
		toolCallReply(callTool("t1", ToolRetrievePolicies, "moon base policy")),
		domain.NewAssistantMessage("I could not find that in our policies."),
	)
	agent := NewRAGAgent(llm, &mockRetriever{}, nil, domain.LLMSettings{}, testAgentSettings)

	_, err := agent.Run(context.Background(), userTurn("What is the moon base policy?"))

	require.NoError(t, err)
	assert.Equal(t, noPolicyDocuments, toolResults(llm.call(1))[0].Content)
}

func TestRAGAgent_RetrievalErrorBecomesToolOutput(t *testing.T) {
	llm := newScriptedLLM(
		toolCallReply(callTool("t1", ToolRetrievePolicies, "refunds")),
		domain.NewAssistantMessage("Sorry, search is down."),
	)
	retriever := &mockRetriever{err: domain.ErrSearchUnavailable}
	agent := NewRAGAgent(llm, retriever, nil, domain.LLMSettings{}, testAgentSettings)

	reply, err := agent.Run(context.Background(), userTurn("refunds?"))

	require.NoError(t, err)
	assert.Equal(t, "Sorry, search is down.", reply.Content)
	assert.Contains(t, toolResults(llm.call(1))[0].Content, "Error: "+domain.ErrSearchUnavailable.Error())
}

func TestRAGAgent_DefaultCap(t *testing.T) {
	agent := NewRAGAgent(newScriptedLLM(), &mockRetriever{}, nil, domain.LLMSettings{}, domain.AgentSettings{})
	assert.Equal(t, DefaultRAGMaxRetrievals, agent.cap)
}

func TestSQLAgent_RunsGuardedQueries(t *testing.T) {
	store := newMockSupportStore()
	store.result = &domain.QueryResult{Columns: []string{"count(*)"}, Rows: [][]any{{int64(2)}}}
	llm := newScriptedLLM(
		toolCallReply(callTool("q1", ToolRunQuery, "DELETE FROM tickets")),
		toolCallReply(callTool("q2", ToolRunQuery, "SELECT count(*) FROM tickets WHERE status = 'open'")),
		domain.NewAssistantMessage("There are 2 open tickets."),
	)
	agent := NewSQLAgent(llm, NewQueryTool(store), nil, domain.LLMSettings{}, testAgentSettings)

	reply, err := agent.Run(context.Background(), userTurn("How many open tickets?"))

	require.NoError(t, err)
	assert.Equal(t, "There are 2 open tickets.", reply.Content)
	assert.Equal(t, []string{"SELECT count(*) FROM tickets WHERE status = 'open'"}, store.queries)

	refused := toolResults(llm.call(1))[0].Content
	assert.Contains(t, refused, domain.ErrPolicyViolation.Error())
	assert.Equal(t, "count(*)\n2", toolResults(llm.call(2))[1].Content)

	system := llm.call(0).messages[0].Content
	assert.Contains(t, system, "Table customers (")
}

func TestSQLAgent_DatabaseErrorVisibleToModel(t *testing.T) {
	store := newMockSupportStore()
	store.queryErr = errors.New("no such column: nme")
	llm := newScriptedLLM(
		toolCallReply(callTool("q1", ToolRunQuery, "SELECT nme FROM customers")),
		domain.NewAssistantMessage("retrying"),
	)
	agent := NewSQLAgent(llm, NewQueryTool(store), nil, domain.LLMSettings{}, testAgentSettings)

	_, err := agent.Run(context.Background(), userTurn("list names"))

	require.NoError(t, err)
	assert.Equal(t, "Error: no such column: nme", toolResults(llm.call(1))[0].Content)
}

func TestSQLAgent_QueryCap(t *testing.T) {
	store := newMockSupportStore()
	llm := newScriptedLLM()
	llm.respond = func(_ []domain.Message, opts driven.ChatOptions) (domain.Message, error) {
		if len(opts.Tools) == 0 {
			return domain.NewAssistantMessage("done"), nil
		}
		return toolCallReply(callTool("q", ToolRunQuery, "SELECT 1")), nil
	}
	settings := testAgentSettings
	settings.SQLMaxQueries = 3
	agent := NewSQLAgent(llm, NewQueryTool(store), nil, domain.LLMSettings{}, settings)

	reply, err := agent.Run(context.Background(), userTurn("loop forever"))

	require.NoError(t, err)
	assert.Equal(t, "done", reply.Content)
	assert.Len(t, store.queries, 3)
	assert.Equal(t, 4, llm.callCount())
}

func TestToolLoop_StepLimitForcesFinalAnswer(t *testing.T) {
	llm := newScriptedLLM()
	llm.respond = func(_ []domain.Message, opts driven.ChatOptions) (domain.Message, error) {
		if opts.ToolChoice == driven.ToolChoiceNone {
			return domain.Message{Content: "best effort", ToolCalls: []domain.ToolCall{{Name: "x"}}}, nil
		}
		return toolCallReply(callTool("s", "search", "again")), nil
	}
	loop := toolLoop{
		name:     "test_agent",
		llm:      llm,
		maxSteps: 3,
		tools: []agentTool{{
			spec: domain.ToolSpec{Name: "search"},
			run:  func(context.Context, domain.ToolCall) (string, error) { return "nothing", nil },
		}},
	}

	reply, err := loop.run(context.Background(), "system", userTurn("q"))

	require.NoError(t, err)
	assert.Equal(t, "best effort", reply.Content)
	assert.Empty(t, reply.ToolCalls)
	assert.Equal(t, 4, llm.callCount())

	last := llm.call(3).messages
	assert.Equal(t, finalAnswerInstruction, last[len(last)-1].Content)
}

func TestToolLoop_UnknownTool(t *testing.T) {
	llm := newScriptedLLM(
		toolCallReply(domain.ToolCall{ID: "u1", Name: "delete_everything"}),
		domain.NewAssistantMessage("sorry"),
	)
	loop := toolLoop{name: "test_agent", llm: llm, tools: []agentTool{{spec: domain.ToolSpec{Name: "search"}}}}

	reply, err := loop.run(context.Background(), "system", userTurn("q"))

	require.NoError(t, err)
	assert.Equal(t, "sorry", reply.Content)
	assert.Equal(t, `Error: unknown tool: "delete_everything"`, toolResults(llm.call(1))[0].Content)
}

func TestToolLoop_MissingArgument(t *testing.T) {
	llm := newScriptedLLM(
		toolCallReply(domain.ToolCall{ID: "m1", Name: ToolRunQuery}),
		domain.NewAssistantMessage("ok"),
	)
	agent := NewSQLAgent(llm, NewQueryTool(newMockSupportStore()), nil, domain.LLMSettings{}, testAgentSettings)

	_, err := agent.Run(context.Background(), userTurn("q"))

	require.NoError(t, err)
	assert.Contains(t, toolResults(llm.call(1))[0].Content, `missing required argument "query"`)
}

func TestToolLoop_ModelError(t *testing.T) {
	llm := newScriptedLLM()
	llm.errs = []error{errors.New("503 overloaded")}
	agent := NewRAGAgent(llm, &mockRetriever{}, nil, domain.LLMSettings{}, testAgentSettings)

	_, err := agent.Run(context.Background(), userTurn("q"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rag_agent")
	assert.Contains(t, err.Error(), "503 overloaded")
}

func TestToolLoop_NoUserMessage(t *testing.T) {
	llm := newScriptedLLM()
	agent := NewRAGAgent(llm, &mockRetriever{}, nil, domain.LLMSettings{}, testAgentSettings)

	reply, err := agent.Run(context.Background(), []domain.Message{domain.NewAssistantMessage("hi")})

	require.NoError(t, err)
	assert.Empty(t, reply.Content)
	assert.Zero(t, llm.callCount())
}

func TestToolLoop_DropsHistorySystemMessages(t *testing.T) {
	llm := newScriptedLLM(domain.NewAssistantMessage("ok"))
	loop := toolLoop{name: "test_agent", llm: llm}

	_, err := loop.run(context.Background(), "contract", []domain.Message{
		domain.NewSystemMessage("stale"),
		domain.NewUserMessage("q"),
	})

	require.NoError(t, err)
	msgs := llm.call(0).messages
	require.Len(t, msgs, 2)
	assert.Equal(t, "contract", msgs[0].Content)
	assert.Equal(t, driven.ToolChoiceNone, llm.call(0).opts.ToolChoice)
}

func TestGeneralAgent(t *testing.T) {
	llm := newScriptedLLM(domain.Message{Content: "Hello! I can help with accounts and policies."})
	agent := NewGeneralAgent(llm, nil, domain.LLMSettings{})

	history := []domain.Message{
		domain.NewUserMessage("hi"),
		toolCallReply(callTool("x", ToolRunQuery, "SELECT 1")),
		domain.NewToolResultMessage(domain.ToolCall{ID: "x"}, "1"),
		domain.NewAssistantMessage("Hello"),
		domain.NewUserMessage("what can you do?"),
	}
	reply, err := agent.Run(context.Background(), history)

	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Contains(t, reply.Content, "help")

	call := llm.call(0)
	require.Len(t, call.messages, 4)
	assert.Equal(t, domain.RoleSystem, call.messages[0].Role)
	assert.Empty(t, call.opts.Tools)
	assert.Equal(t, driven.ToolChoiceNone, call.opts.ToolChoice)
}

func TestGeneralAgent_Errors(t *testing.T) {
	_, err := NewGeneralAgent(nil, nil, domain.LLMSettings{}).Run(context.Background(), userTurn("hi"))
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)

	llm := newScriptedLLM()
	llm.errs = []error{errors.New("timeout")}
	_, err = NewGeneralAgent(llm, nil, domain.LLMSettings{}).Run(context.Background(), userTurn("hi"))
	assert.ErrorContains(t, err, "timeout")
}

func TestFormatSources(t *testing.T) {
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Source: "a.pdf", Page: 1, Content: "one"}},
		{Chunk: domain.Chunk{Source: "b.pdf", Page: 4, Content: "two"}},
	}

	assert.Equal(t,
		"[Source 1: a.pdf, Page 1]\none\n\n---\n\n[Source 2: b.pdf, Page 4]\ntwo",
		FormatSources(chunks))
	assert.Equal(t, noPolicyDocuments, FormatSources(nil))
}
