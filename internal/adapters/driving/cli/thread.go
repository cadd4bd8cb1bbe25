package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

var threadJSON bool

var threadCmd = &cobra.Command{
	Use:   "thread",
	Short: "Inspect or clear conversation threads",
}

var threadShowCmd = &cobra.Command{
	Use:   "show [thread-id]",
	Short: "Print the messages of a thread",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadShow,
}

var threadResetCmd = &cobra.Command{
	Use:   "reset [thread-id]",
	Short: "Clear a thread's memory",
	Args:  cobra.ExactArgs(1),
	RunE:  runThreadReset,
}

func init() {
	threadShowCmd.Flags().BoolVar(&threadJSON, "json", false, "output the thread as JSON")
	threadCmd.AddCommand(threadShowCmd)
	threadCmd.AddCommand(threadResetCmd)
	rootCmd.AddCommand(threadCmd)
}

func runThreadShow(cmd *cobra.Command, args []string) error {
	assistant, err := assistantPort(cmd)
	if err != nil {
		return err
	}

	thread, err := assistant.History(commandContext(cmd), args[0])
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("thread %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to load thread: %w", err)
	}

	if threadJSON {
		data, err := json.MarshalIndent(thread, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal thread: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Thread %s", thread.ID)
	if thread.Category != "" {
		cmd.Printf(" (last routed to %s)", thread.Category.AgentName())
	}
	cmd.Println()
	cmd.Println()
	for _, m := range thread.Messages {
		cmd.Printf("%s: %s\n", m.Role, m.Content)
	}
	return nil
}

func runThreadReset(cmd *cobra.Command, args []string) error {
	assistant, err := assistantPort(cmd)
	if err != nil {
		return err
	}
	if err := assistant.Reset(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	cmd.Printf("Thread %s cleared.\n", args[0])
	return nil
}
