package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/major-admission/pkg/core/services"
	"github.com/jakechorley/major-admission/pkg/roster"
)

// AdjustmentsCmd creates the adjustments command
func AdjustmentsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "adjustments <results_file>",
		Short: "List students in a results file who were not placed into their first choice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Logger.Debug("adjustments command", zap.String("file", args[0]))

			result, err := services.Adjustments(app.Ctx, roster.File{Path: args[0]}, app.Cfg, app.Logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			headingColor.Fprintf(w, "\nStudents not in their first choice (%d of %d)\n\n", len(result.Adjustments), result.Checked)

			if len(result.Adjustments) > 0 {
				table := newTable(w, []string{"学号", "姓名", "分数", "志愿选择", "First choice", "录取专业"})
				for _, a := range result.Adjustments {
					table.Append([]string{
						a.Student.ID,
						result.Names[a.Student.ID],
						roster.FormatScore(a.Student.Priority),
						string(a.Student.Code),
						a.FirstChoice,
						colorOutcome(a.Outcome.String()),
					})
				}
				table.Render()
			} else {
				okColor.Fprintln(w, "✓ Every placed student got their first choice")
			}

			if len(result.Missing) > 0 {
				warnColor.Fprintf(w, "\n⚠️  %d student(s) have no admitted major: %v\n", len(result.Missing), result.Missing)
			}
			fmt.Fprintln(w)
			return nil
		},
	}
}
