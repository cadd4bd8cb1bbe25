package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/RickyT715/Generative-AI-Multi-Agent-System/internal/core/domain"
)

var (
	ticketDescription string
	ticketPriority    string
	ticketCategory    string
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Support ticket commands",
}

var ticketHistoryCmd = &cobra.Command{
	Use:   "history [customer-id]",
	Short: "List a customer's tickets, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketHistory,
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create [customer-id] [subject]",
	Short: "Open a new ticket for a customer",
	Long: `Opens a ticket with status "open" on the chat channel.

Priority is one of low, medium, high or critical (default medium).
Category defaults to general.`,
	Args: cobra.ExactArgs(2),
	RunE: runTicketCreate,
}

func init() {
	ticketCreateCmd.Flags().StringVarP(&ticketDescription, "description", "d", "", "ticket description")
	ticketCreateCmd.Flags().StringVarP(&ticketPriority, "priority", "p", domain.DefaultTicketPriority, "ticket priority")
	ticketCreateCmd.Flags().StringVarP(&ticketCategory, "category", "c", domain.DefaultTicketCategory, "ticket category")
	ticketCmd.AddCommand(ticketHistoryCmd)
	ticketCmd.AddCommand(ticketCreateCmd)
	rootCmd.AddCommand(ticketCmd)
}

func runTicketHistory(cmd *cobra.Command, args []string) error {
	id, err := parseCustomerID(args[0])
	if err != nil {
		return err
	}
	support, err := supportPort(cmd)
	if err != nil {
		return err
	}
	out, err := support.TicketHistory(commandContext(cmd), id)
	if err != nil {
		return fmt.Errorf("ticket history failed: %w", err)
	}
	cmd.Println(out)
	return nil
}

func runTicketCreate(cmd *cobra.Command, args []string) error {
	id, err := parseCustomerID(args[0])
	if err != nil {
		return err
	}
	support, err := supportPort(cmd)
	if err != nil {
		return err
	}
	out, err := support.CreateTicket(commandContext(cmd), domain.TicketDraft{
		CustomerID:  id,
		Subject:     args[1],
		Description: ticketDescription,
		Priority:    ticketPriority,
		Category:    ticketCategory,
	})
	if err != nil {
		return fmt.Errorf("create ticket failed: %w", err)
	}
	cmd.Println(out)
	return nil
}

func parseCustomerID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid customer id %q", domain.ErrInvalidInput, s)
	}
	return id, nil
}
