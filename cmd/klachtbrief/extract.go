package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Print the text of a PDF or DOCX letter",
	Long:  "Extracts and cleans the text of a PDF or DOCX file the same way uploads are handled.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	text, err := extractFile(a, args[0])
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}
