package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so other assistants can use
supportdesk as a tool provider.

Tools: ask, search_policies, lookup_customer, get_ticket_history, create_ticket.
Resources: supportdesk://schema, supportdesk://threads/{threadId}.

By default the server speaks JSON-RPC over stdio. Use --port to serve the
streamable HTTP transport instead.

Examples:
  # Stdio mode (default)
  supportdesk mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  supportdesk mcp serve --port 8081

Desktop client configuration:
  {
    "mcpServers": {
      "supportdesk": {
        "command": "/path/to/supportdesk",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Assistant: s.Assistant,
		Retriever: s.Retriever,
		Support:   s.Support,
		Query:     s.Query,
	})
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(commandContext(cmd), addr)
	}

	return server.Run(commandContext(cmd))
}
