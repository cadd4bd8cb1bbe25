package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatThread string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Reads messages line by line and answers each one within a single thread.

Commands:
  /reset   Clear the conversation memory
  /thread  Print the thread id
  /exit    Leave the chat (also /quit or end of input)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatThread, "thread", "t", "", "thread id to continue")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	assistant, err := assistantPort(cmd)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)

	threadID := chatThread
	if threadID == "" {
		threadID = uuid.NewString()
	}

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if interactive {
		cmd.Printf("Thread %s. Type /exit to leave.\n", threadID)
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/thread":
			cmd.Println(threadID)
			continue
		case "/reset":
			if err := assistant.Reset(ctx, threadID); err != nil {
				return fmt.Errorf("reset failed: %w", err)
			}
			cmd.Println("Conversation cleared.")
			continue
		}

		answer, err := assistant.Invoke(ctx, threadID, line)
		if err != nil {
			// A failed turn leaves memory untouched; keep the session open.
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}
		cmd.Printf("[%s] %s\n", answer.Category.AgentName(), answer.Response)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
