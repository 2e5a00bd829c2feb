// ask.go implements the "ragline ask" command: submit one question and
// block until its job reaches a terminal state.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ragline-dev/ragline/internal/api"
	"github.com/ragline-dev/ragline/internal/query"
)

var askDocID int64

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question against a ready document",
	Long: `Submit a question against a document and wait for the answer.
The job is polled until it completes, fails, or the attempt budget runs
out. With a single ready document --doc may be omitted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int64Var(&askDocID, "doc", 0, "Document ID to query (defaults to the only ready document)")
}

func runAsk(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx := cmd.Context()
	if err := svcs.requireAuth(ctx); err != nil {
		return err
	}
	if err := svcs.registry.Refresh(ctx); err != nil {
		return err
	}

	docID := askDocID
	if docID == 0 {
		docID, err = soleReadyDocument(svcs)
		if err != nil {
			return err
		}
	}
	if !svcs.registry.Select(docID) {
		return fmt.Errorf("document %d is not ready for querying", docID)
	}

	res, err := svcs.query.Ask(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	switch res.Outcome {
	case query.OutcomeCompleted:
		fmt.Println(*res.Job.Answer)
		fmt.Println()
		fmt.Printf("cost $%s · %d tokens · %s\n",
			res.Job.Cost.StringFixed(4), res.Job.TotalTokens, res.Elapsed.Round(time.Second))
		return nil
	case query.OutcomeFailed:
		return fmt.Errorf("query failed; balance refreshed, check it with: ragline balance")
	default:
		return fmt.Errorf("query still running after %d polls; check it later with: ragline history", res.Attempts)
	}
}

// soleReadyDocument resolves the implicit target when --doc is omitted.
func soleReadyDocument(svcs *services) (int64, error) {
	var ready []api.Document
	for _, doc := range svcs.registry.Documents() {
		if doc.Status == api.DocumentReady {
			ready = append(ready, doc)
		}
	}
	switch len(ready) {
	case 0:
		return 0, fmt.Errorf("no ready documents; upload one with: ragline docs upload <path>")
	case 1:
		return ready[0].ID, nil
	}

	var ids []string
	for _, doc := range ready {
		ids = append(ids, fmt.Sprintf("%d (%s)", doc.ID, doc.Filename))
	}
	return 0, fmt.Errorf("several ready documents, pick one with --doc: %s", strings.Join(ids, ", "))
}
