package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// FileViolation is one validation problem tied to the file it came from.
type FileViolation struct {
	File    string `json:"file,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool            `json:"valid"`
	Files  int             `json:"files"`
	Types  int             `json:"types"`
	Rules  int             `json:"rules"`
	Errors []FileViolation `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <rules-dir>",
		Short: "Validate interaction rule files",
		Long: `Validate YAML interaction rule files without running anything.

Each file maps entity types to their interactions documents. Every
document is checked against the strict schema and then parsed, so the
report covers unknown fields, bad trigger modes, malformed angle
windows, and broken monotonic configuration in one pass.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, rulesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadRules(rulesDir, LoadModeCollectAll)

	// A nil result means the directory itself was unusable.
	if loadResult == nil {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d rule file(s) in %s", loadResult.FileCount, rulesDir)

	result := ValidationResult{
		Valid: len(loadErrors) == 0,
		Files: loadResult.FileCount,
		Types: loadResult.TypeCount,
		Rules: len(loadResult.Rules),
	}
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			result.Errors = append(result.Errors, FileViolation{
				File:    loadErr.Path,
				Code:    loadErr.Code,
				Message: loadErr.Message,
			})
			continue
		}
		result.Errors = append(result.Errors, FileViolation{Code: ErrCodeGeneric, Message: err.Error()})
	}

	if result.Valid {
		return outputValidateSuccess(formatter, result)
	}
	return outputValidationErrors(formatter, result)
}

func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All rules valid (%d file(s), %d type(s), %d rule(s))\n",
		result.Files, result.Types, result.Rules)
	return nil
}

func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		if err := formatter.Error(result.Errors[0].Code, result.Errors[0].Message, result); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, v := range result.Errors {
		if v.File != "" {
			fmt.Fprintf(formatter.Writer, "%s\n", v.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", v.Code, v.Message)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}
