package main

import (
	"fmt"
	"io"

	"github.com/jonathan/klachtbrief/internal/observability"
	"github.com/jonathan/klachtbrief/internal/prompts"
	"github.com/jonathan/klachtbrief/internal/types"
	"github.com/spf13/cobra"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect and test the prompt set",
}

var promptsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the prompt sent for a letter",
	Long:  "Renders the system and user instruction for the given mode. Without --text the built-in sample letter is used.",
	RunE:  runPromptsShow,
}

var promptsCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Validate a prompt file",
	Long:  "Checks a prompt file against the prompt set schema without starting the service.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsCheck,
}

var promptsTryCmd = &cobra.Command{
	Use:   "try",
	Short: "Run the sample letter through both modes",
	Long:  "Sends the built-in sample letter to the configured provider in both modes concurrently and prints the results.",
	RunE:  runPromptsTry,
}

var (
	promptsShowMode    string
	promptsShowText    string
	promptsShowContext string
)

func init() {
	promptsShowCmd.Flags().StringVarP(&promptsShowMode, "mode", "m", "rewrite", `Processing mode: "rewrite" or "response"`)
	promptsShowCmd.Flags().StringVarP(&promptsShowText, "text", "t", "", "Letter text (default: sample letter)")
	promptsShowCmd.Flags().StringVarP(&promptsShowContext, "context", "c", "", "Additional information")

	promptsCmd.AddCommand(promptsShowCmd, promptsCheckCmd, promptsTryCmd)
	rootCmd.AddCommand(promptsCmd)
}

//nolint:errcheck // writing to stdout; errors are not recoverable
func runPromptsShow(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), false, io.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	text := promptsShowText
	if text == "" {
		text = prompts.SampleLetter
	}
	req, err := a.validator.ValidateRequest(types.ProcessTextRequest{
		Text:           text,
		Type:           promptsShowMode,
		AdditionalInfo: promptsShowContext,
	})
	if err != nil {
		return userError(err)
	}

	pair := a.builder.Build(*req)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== SYSTEM (prompts %s) ===\n%s\n\n", a.prompts.Version, pair.SystemInstruction)
	fmt.Fprintf(out, "=== USER (%s) ===\n%s\n", req.Mode, pair.UserInstruction)
	return nil
}

func runPromptsCheck(cmd *cobra.Command, args []string) error {
	// Bypass the cache so an edited file is re-read.
	prompts.ClearCache()
	set, err := prompts.Load(args[0])
	if err != nil {
		return fmt.Errorf("prompt file is invalid: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Prompt file is valid (version %s, %d banned phrases)\n",
		set.Version, len(set.BannedPhrases))
	return nil
}

func runPromptsTry(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.orchestrator.SelfTest(ctx, prompts.SampleLetter)
	if err != nil {
		return userError(err)
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	if verbose {
		printer.PrintReview(a.reviewer.Review(result.Rewrite))
		printer.PrintReview(a.reviewer.Review(result.Response))
	}
	printer.PrintSelfTest(result)
	return nil
}
