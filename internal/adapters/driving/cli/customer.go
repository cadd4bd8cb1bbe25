package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var customerCmd = &cobra.Command{
	Use:   "customer",
	Short: "Customer commands",
}

var customerLookupCmd = &cobra.Command{
	Use:   "lookup [name]",
	Short: "Find customers whose name contains the given text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCustomerLookup,
}

func init() {
	customerCmd.AddCommand(customerLookupCmd)
	rootCmd.AddCommand(customerCmd)
}

func runCustomerLookup(cmd *cobra.Command, args []string) error {
	support, err := supportPort(cmd)
	if err != nil {
		return err
	}
	out, err := support.LookupCustomer(commandContext(cmd), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}
	cmd.Println(out)
	return nil
}
