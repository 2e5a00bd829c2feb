// history.go implements the "ragline history" command listing past queries.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ragline-dev/ragline/internal/api"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past queries and their outcomes",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx := cmd.Context()
	if err := svcs.requireAuth(ctx); err != nil {
		return err
	}

	jobs, err := svcs.client.QueryHistory(ctx)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Println("No queries yet")
		return nil
	}

	for _, job := range jobs {
		fmt.Printf("  %-4d  %-10s  doc %-4d  $%-8s  %s\n",
			job.ID, job.Status, job.DocumentID, job.Cost.StringFixed(4), job.Question)
		if job.Status == api.QueryCompleted && job.Answer != nil {
			fmt.Printf("        → %s\n", *job.Answer)
		}
	}
	return nil
}
