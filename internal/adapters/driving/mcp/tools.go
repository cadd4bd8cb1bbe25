package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	ThreadID string `json:"thread_id,omitempty" jsonschema:"conversation thread to continue; omit to start a new one"`
	Message  string `json:"message" jsonschema:"the customer's message"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	ThreadID string `json:"thread_id"`
	Response string `json:"response"`
	Category string `json:"category"`
}

// SearchPoliciesInput is the input schema for the search_policies tool.
type SearchPoliciesInput struct {
	Query string `json:"query" jsonschema:"what to look for in the policy documents"`
	TopN  int    `json:"top_n,omitempty" jsonschema:"maximum number of passages (default from settings)"`
}

// SearchPoliciesOutput is the output schema for the search_policies tool.
type SearchPoliciesOutput struct {
	Strategy string          `json:"strategy"`
	Passages []PolicyPassage `json:"passages"`
}

// PolicyPassage is one retrieved chunk.
type PolicyPassage struct {
	Source  string  `json:"source"`
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Content string  `json:"content"`
}

// LookupCustomerInput is the input schema for the lookup_customer tool.
type LookupCustomerInput struct {
	Name string `json:"name" jsonschema:"full or partial customer name"`
}

// TicketHistoryInput is the input schema for the get_ticket_history tool.
type TicketHistoryInput struct {
	CustomerID int64 `json:"customer_id" jsonschema:"the customer's id"`
}

// CreateTicketInput is the input schema for the create_ticket tool.
type CreateTicketInput struct {
	CustomerID  int64  `json:"customer_id" jsonschema:"the customer's id"`
	Subject     string `json:"subject" jsonschema:"short summary of the issue"`
	Description string `json:"description,omitempty" jsonschema:"details of the issue"`
	Priority    string `json:"priority,omitempty" jsonschema:"low, medium, high or critical (default medium)"`
	Category    string `json:"category,omitempty" jsonschema:"ticket category (default general)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the TechCorp support assistant a question. Data questions, policy questions and general chat are routed to the right specialist.",
	}, s.handleAsk)

	if s.ports.Retriever != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_policies",
			Description: "Search TechCorp policy documents and return ranked passages with source and page",
		}, s.handleSearchPolicies)
	}

	if s.ports.Support != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "lookup_customer",
			Description: "Find customers by full or partial name",
		}, s.handleLookupCustomer)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "get_ticket_history",
			Description: "List a customer's support tickets, newest first",
		}, s.handleTicketHistory)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "create_ticket",
			Description: "Open a new support ticket for an existing customer",
		}, s.handleCreateTicket)
	}
}

func (s *Server) handleAsk(ctx context.Context, _ *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Assistant.Invoke(ctx, input.ThreadID, input.Message)
	if err != nil {
		return nil, AskOutput{}, err
	}
	return nil, AskOutput{
		ThreadID: answer.ThreadID,
		Response: answer.Response,
		Category: answer.Category.String(),
	}, nil
}

func (s *Server) handleSearchPolicies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchPoliciesInput,
) (*mcp.CallToolResult, SearchPoliciesOutput, error) {
	result, err := s.ports.Retriever.Retrieve(ctx, input.Query, input.TopN)
	if err != nil {
		return nil, SearchPoliciesOutput{}, err
	}

	out := SearchPoliciesOutput{
		Strategy: result.Strategy.String(),
		Passages: make([]PolicyPassage, len(result.Chunks)),
	}
	for i, sc := range result.Chunks {
		out.Passages[i] = PolicyPassage{
			Source:  sc.Chunk.Source,
			Page:    sc.Chunk.Page,
			Score:   sc.Score,
			Content: sc.Chunk.Content,
		}
	}
	return nil, out, nil
}

func (s *Server) handleLookupCustomer(ctx context.Context, _ *mcp.CallToolRequest, input LookupCustomerInput) (*mcp.CallToolResult, any, error) {
	text, err := s.ports.Support.LookupCustomer(ctx, input.Name)
	return textResult(text, err)
}

func (s *Server) handleTicketHistory(ctx context.Context, _ *mcp.CallToolRequest, input TicketHistoryInput) (*mcp.CallToolResult, any, error) {
	text, err := s.ports.Support.TicketHistory(ctx, input.CustomerID)
	return textResult(text, err)
}

func (s *Server) handleCreateTicket(ctx context.Context, _ *mcp.CallToolRequest, input CreateTicketInput) (*mcp.CallToolResult, any, error) {
	text, err := s.ports.Support.CreateTicket(ctx, domain.TicketDraft{
		CustomerID:  input.CustomerID,
		Subject:     input.Subject,
		Description: input.Description,
		Priority:    input.Priority,
		Category:    input.Category,
	})
	return textResult(text, err)
}

// textResult wraps plain text output. Service errors become tool errors
// the client can show rather than protocol failures.
func textResult(text string, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)}},
		}, nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}
