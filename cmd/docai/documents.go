package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Jitesh17/docai/internal/interfaces"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage uploaded documents and the selection",
}

var docsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the signed-in user's uploaded documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		documents, err := application.Registry.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		if len(documents) == 0 {
			fmt.Println("No documents uploaded")
			return nil
		}

		selected := make(map[string]struct{})
		for _, id := range application.Selection.IDs() {
			selected[id] = struct{}{}
		}

		for _, doc := range documents {
			marker := " "
			if _, ok := selected[doc.ID]; ok {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, doc.ID, doc.Name)
		}
		return nil
	},
}

var docsUploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Upload files for text extraction",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := make([]interfaces.UploadFile, 0, len(args))
		for _, path := range args {
			if !application.Uploads.Accepts(path) {
				fmt.Printf("Skipping %s: extension not in %s\n",
					path, strings.Join(config.Upload.AllowedExtensions, ", "))
				continue
			}
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			files = append(files, interfaces.UploadFile{
				Name:    filepath.Base(path),
				Content: content,
			})
		}

		contents, err := application.Uploads.Upload(cmd.Context(), files)
		if err != nil {
			return err
		}

		if err := application.Registry.ApplyUploadResult(cmd.Context(), contents); err != nil {
			return err
		}

		fmt.Printf("Uploaded %d file(s), %d content block(s) extracted\n", len(files), len(contents))
		return nil
	},
}

var docsSelectCmd = &cobra.Command{
	Use:   "select [id]...",
	Short: "Replace the selection with the given document ids (no ids clears it)",
	RunE: func(cmd *cobra.Command, args []string) error {
		application.Selection.SetSelection(args)
		ids := application.Selection.IDs()
		if len(ids) == 0 {
			fmt.Println("Selection cleared")
			return nil
		}
		fmt.Printf("Selected %d document(s): %s\n", len(ids), strings.Join(ids, ", "))
		return nil
	},
}

var docsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete documents from the server",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Registry.Remove(cmd.Context(), args); err != nil {
			return err
		}
		fmt.Printf("Deleted %d document(s)\n", len(args))
		return nil
	},
}

var docsContentsCmd = &cobra.Command{
	Use:   "contents",
	Short: "Show the extracted contents of the latest upload batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		contents := application.Registry.ExtractedContents()
		if len(contents) == 0 {
			fmt.Println("No upload batch in this session")
			return nil
		}
		for i, content := range contents {
			fmt.Printf("--- document %d ---\n%s\n", i+1, content)
		}
		return nil
	},
}

func init() {
	docsCmd.AddCommand(docsListCmd)
	docsCmd.AddCommand(docsUploadCmd)
	docsCmd.AddCommand(docsSelectCmd)
	docsCmd.AddCommand(docsDeleteCmd)
	docsCmd.AddCommand(docsContentsCmd)
}
