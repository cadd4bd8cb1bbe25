package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/adapters/driving/api"
	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the assistant over HTTP.

Endpoints:
  GET    /health
  POST   /v1/chat           {"thread_id": "...", "message": "..."}
  GET    /v1/threads/{id}
  DELETE /v1/threads/{id}
  POST   /v1/retrieve       {"query": "...", "top_n": 5}`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := loadServices(commandContext(cmd))
	if err != nil {
		return err
	}

	handler, err := api.NewRouter(api.Ports{
		Assistant: s.Assistant,
		Retriever: s.Retriever,
	}, logger.Zap())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP API listening on %s\n", serveAddr)
	return api.Run(ctx, serveAddr, handler)
}
