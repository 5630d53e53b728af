package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/pkg/core/services"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// AdmitCmd creates the admit command
func AdmitCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admit <roster_file>",
		Short: "Allocate majors for a csv or xlsx roster and write a results file",
		Long: `Allocate majors for every student in a roster file.

The roster needs 学号 (student ID), 分数 (score or rank) and 志愿选择 (preference code)
columns. Results are written to --output, which defaults to <roster>_results.<ext>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output, _ := cmd.Flags().GetString("output")
			opts, err := admitOptions(cmd)
			if err != nil {
				return err
			}

			if output == "" {
				output = defaultOutputPath(input)
			}
			if filepath.Clean(output) == filepath.Clean(input) {
				return fmt.Errorf("output file must differ from the roster file")
			}

			app.Logger.Debug("admit command",
				zap.String("input", input),
				zap.String("output", output))

			result, err := services.Admit(
				app.Ctx,
				roster.File{Path: input},
				roster.File{Path: output},
				app.Store,
				app.Cfg,
				app.Logger,
				opts,
			)
			if err != nil {
				return err
			}

			return reportAdmit(cmd, result, output)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Results file (.csv or .xlsx)")
	addAdmitFlags(cmd)

	return cmd
}

// addAdmitFlags registers the flags shared by admit and admitSheet
func addAdmitFlags(cmd *cobra.Command) {
	cmd.Flags().String("strategy", "", "Override the configured strategy (single-pass or multi-round)")
	cmd.Flags().Int("rounds", 0, "Preference rounds for multi-round (0 means one per major)")
	cmd.Flags().Bool("save", false, "Record the run in the database")
	cmd.Flags().Bool("dry-run", false, "Allocate and print without writing results or saving")
	cmd.Flags().Bool("force-commit", false, "Write and save even if validation fails")
	cmd.Flags().BoolP("quiet", "q", false, "Only print the summary")
	cmd.Flags().Bool("order", false, "Also print students in the order they were considered")
}

func admitOptions(cmd *cobra.Command) (services.AdmitOptions, error) {
	strategy, _ := cmd.Flags().GetString("strategy")
	rounds, _ := cmd.Flags().GetInt("rounds")
	save, _ := cmd.Flags().GetBool("save")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	forceCommit, _ := cmd.Flags().GetBool("force-commit")

	if rounds != 0 && strategy == "" {
		return services.AdmitOptions{}, fmt.Errorf("--rounds requires --strategy multi-round")
	}

	return services.AdmitOptions{
		Strategy:    strategy,
		Rounds:      rounds,
		DryRun:      dryRun,
		Save:        save,
		ForceCommit: forceCommit,
	}, nil
}

// defaultOutputPath places results next to the roster: students.xlsx -> students_results.xlsx
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	if strings.EqualFold(ext, ".xls") {
		ext = ".xlsx"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_results" + ext
}

func reportAdmit(cmd *cobra.Command, result *services.AdmitResult, destination string) error {
	w := cmd.OutOrStdout()
	quiet, _ := cmd.Flags().GetBool("quiet")
	order, _ := cmd.Flags().GetBool("order")

	headingColor.Fprintf(w, "\nAdmission results (%s, %s)\n\n", result.Source, result.Strategy)
	if !quiet {
		printResults(w, result.Records)
	}
	if order {
		printProcessingOrder(w, result.Records, result.Order)
	}
	printSummary(w, result.Summary)
	printViolations(w, result.Violations)

	if len(result.Duplicates) > 0 {
		warnColor.Fprintf(w, "\n⚠️  Duplicate student IDs: %s\n", strings.Join(result.Duplicates, ", "))
	}

	fmt.Fprintln(w)
	if result.Written {
		okColor.Fprintf(w, "✓ Results written to %s\n", destination)
	}
	if result.Saved {
		okColor.Fprintf(w, "✓ Run saved with ID %s\n", result.RunID)
	}
	if !result.Written && !result.Saved {
		warnColor.Fprintln(w, "Nothing was written.")
	}

	if !result.Success && !result.Written {
		return fmt.Errorf("allocation failed validation with %d problem(s)", len(result.Violations))
	}
	return nil
}
