package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

var (
	askThread string
	askJSON   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Ask the assistant a single question",
	Long: `Sends one message to the assistant and prints the answer.

The message is routed to the SQL, policy or general agent. Pass --thread to
continue an earlier conversation; without it a new thread is started and its
id is printed so it can be reused.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askThread, "thread", "t", "", "thread id to continue")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	assistant, err := assistantPort(cmd)
	if err != nil {
		return err
	}

	answer, err := assistant.Invoke(commandContext(cmd), askThread, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswer(cmd, answer)
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, answer *domain.Answer) error {
	data, err := json.MarshalIndent(answer, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Response)
	cmd.Println()
	cmd.Printf("[%s] thread %s\n", answer.Category.AgentName(), answer.ThreadID)
}
