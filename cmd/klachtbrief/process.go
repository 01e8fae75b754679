package main

import (
	"fmt"
	"os"

	"github.com/jonathan/klachtbrief/internal/extraction"
	"github.com/jonathan/klachtbrief/internal/observability"
	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Rewrite or answer a complaint letter",
	Long: "Runs a complaint letter through the pipeline and prints the generated text. " +
		"The letter is read from a PDF or DOCX file (--file) or given directly (--text).",
	RunE: runProcess,
}

var (
	processMode    string
	processFile    string
	processText    string
	processContext string
	processOutput  string
)

func init() {
	processCmd.Flags().StringVarP(&processMode, "mode", "m", "", `Processing mode: "rewrite" or "response" (required)`)
	processCmd.Flags().StringVarP(&processFile, "file", "f", "", "Path to a PDF or DOCX letter")
	processCmd.Flags().StringVarP(&processText, "text", "t", "", "Letter text")
	processCmd.Flags().StringVarP(&processContext, "context", "c", "", "Additional information to incorporate")
	processCmd.Flags().StringVarP(&processOutput, "out", "o", "", "Write the result to this file instead of stdout")

	if err := processCmd.MarkFlagRequired("mode"); err != nil {
		panic(fmt.Sprintf("failed to mark mode flag as required: %v", err))
	}
	processCmd.MarkFlagsMutuallyExclusive("file", "text")
	processCmd.MarkFlagsOneRequired("file", "text")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), true, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	printer := observability.NewPrinter(cmd.ErrOrStderr())

	text := processText
	if processFile != "" {
		text, err = extractFile(a, processFile)
		if err != nil {
			return err
		}
		if verbose {
			printer.PrintExtraction(extraction.BaseName(processFile), text)
		}
	}

	req, err := a.validator.ValidateRequest(types.ProcessTextRequest{
		Text:           text,
		Type:           processMode,
		AdditionalInfo: processContext,
	})
	if err != nil {
		return userError(err)
	}

	if verbose {
		printer.PrintRequest(*req)
		printer.PrintPrompt(a.orchestrator.Prompt(*req))
	}

	result, err := a.orchestrator.Run(cmd.Context(), *req)
	if err != nil {
		return userError(err)
	}

	if verbose {
		printer.PrintReview(a.reviewer.Review(result))
	}

	if processOutput != "" {
		if err := os.WriteFile(processOutput, []byte(result), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully wrote %s letter to %s\n", req.Mode, processOutput)
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result)
	return nil
}

func extractFile(a *app, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	extractor := extraction.New(a.cfg.Limits)
	if info.Size() > extractor.MaxBytes {
		return "", userError(extractor.TooLarge(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	text, err := extractor.Extract(data, path)
	if err != nil {
		return "", userError(err)
	}
	return text, nil
}
