// docs.go implements the "ragline docs" command group.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocs,
}

var uploadCmd = &cobra.Command{
	Use:   "upload <path>",
	Short: "Upload a PDF for ingestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func init() {
	docsCmd.AddCommand(uploadCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
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

	docs := svcs.registry.Documents()
	if len(docs) == 0 {
		fmt.Println("No documents uploaded; add one with: ragline docs upload <path>")
		return nil
	}

	for _, doc := range docs {
		fmt.Printf("  %-4d  %-10s  %-40s  %d pages  %.1f MB\n",
			doc.ID, doc.Status, doc.Filename, doc.PageCount, doc.FileSizeMB)
	}
	return nil
}

func runUpload(cmd *cobra.Command, args []string) error {
	svcs, err := newServices()
	if err != nil {
		return err
	}
	defer svcs.Close()

	ctx := cmd.Context()
	if err := svcs.requireAuth(ctx); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}

	resp, err := svcs.registry.Upload(ctx, filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s (id %d, status %s)\n", resp.Filename, resp.ID, resp.Status)
	fmt.Println("Ingestion runs in the background; check progress with: ragline docs")
	return nil
}
