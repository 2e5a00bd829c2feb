// balance.go implements the "ragline balance" command group.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/ledger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show the account balance and recent transactions",
	Args:  cobra.NoArgs,
	RunE:  runBalance,
}

var topUpCmd = &cobra.Command{
	Use:   "top-up <amount>",
	Short: "Add funds to the account",
	Args:  cobra.ExactArgs(1),
	RunE:  runTopUp,
}

var transactionsCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the full transaction history",
	Args:  cobra.NoArgs,
	RunE:  runTransactions,
}

func init() {
	balanceCmd.AddCommand(topUpCmd)
	balanceCmd.AddCommand(transactionsCmd)
}

func runBalance(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx := cmd.Context()
	if err := svcs.requireAuth(ctx); err != nil {
		return err
	}
	if err := svcs.ledger.Refresh(ctx); err != nil {
		return err
	}

	snap, _ := svcs.ledger.Snapshot()
	fmt.Printf("Balance: $%s\n", snap.Balance.StringFixed(2))

	recent := svcs.ledger.Recent(svcs.cfg.Dashboard.TransactionLimit)
	if len(recent) > 0 {
		fmt.Println()
		printTransactions(recent)
	}
	return nil
}

func runTopUp(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	amount, err := ledger.ParseAmount(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := svcs.requireAuth(ctx); err != nil {
		return err
	}
	if err := svcs.ledger.TopUp(ctx, amount); err != nil {
		return err
	}

	fmt.Printf("Added $%s; balance is now $%s\n",
		amount.StringFixed(2), svcs.ledger.Balance().StringFixed(2))
	return nil
}

func runTransactions(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx := cmd.Context()
	if err := svcs.requireAuth(ctx); err != nil {
		return err
	}
	if err := svcs.ledger.Refresh(ctx); err != nil {
		return err
	}

	snap, _ := svcs.ledger.Snapshot()
	if len(snap.Transactions) == 0 {
		fmt.Println("No transactions yet")
		return nil
	}
	printTransactions(snap.Transactions)
	return nil
}

func printTransactions(txs []api.Transaction) {
	for _, tx := range txs {
		sign := "-"
		if tx.Type == api.TransactionTopUp {
			sign = "+"
		}
		fmt.Printf("  %s  %s$%-8s  %s\n",
			tx.Timestamp.Local().Format("2006-01-02 15:04"),
			sign, tx.Amount.Abs().StringFixed(2), tx.Description)
	}
}
